// Package collage reads, updates and writes photobooth collage
// configurations.
//
// A configuration is an externally owned document. Only three fields of
// each collage action are touched:
//
//	actions:
//	  collage:
//	    - processing:
//	        merge_definition: [...]      # replaced by the fresh extraction
//	        canvas_img_front_enable: true
//	        canvas_img_front_file: canvas_front.png
//
// Everything else, including key order, unknown keys and numeric literals,
// is written back exactly as read. Documents are held as a [yaml.Node] tree
// for both JSON and YAML sources so that order survives the round trip.
//
// # Carry-forward
//
// When an action's existing merge_definition has the same length as the new
// placeholder list, image_filter and predefined_image are copied from the
// old entry at the same index. When the lengths differ nothing is carried
// over and the action is counted in [MergeStats.Mismatched]. Matching is by
// position only; a reordered document silently moves filters between slots.
//
// # Non-destructive writes
//
// [MergeFile] never writes to the configuration it read. The result goes to
// [UpdatedPath], the input path with ".updated" appended.
package collage
