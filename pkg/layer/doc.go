// Package layer models a decoded layered image document as a tree of
// groups and leaves, and implements the operations the placeholder pipeline
// needs from it: locating a named group, flattening the document with that
// group hidden, and writing the result as a raster image.
//
// # Tree
//
// A [Node] is a tagged union. A node of kind [KindGroup] is a container and
// only its Name, Visible and Children fields are meaningful. A node of kind
// [KindLeaf] carries a bounding [Box] (nil when the layer has no pixels) and
// the pixel data used for compositing. Children are stored bottom-most
// first, the order in which PSD files record their layers.
//
// # Locating groups
//
// [FindGroup] returns the first group, in depth-first pre-order, whose name
// equals the requested name exactly. When nothing matches it fails with a
// GROUP_NOT_FOUND error that lists every group in the document:
//
//	group, err := layer.FindGroup(doc.Root, "photobooth_images")
//	if groups, ok := errors.NotFoundGroups(err); ok {
//	    fmt.Println("available:", strings.Join(groups, ", "))
//	}
//
// # Rendering
//
// [Document.Flatten] hides a group and composites the document. It consumes
// the document: the hidden flag is a one-way mutation, so a second call
// fails with [ErrConsumed] instead of silently rendering a stale tree.
//
//	img, err := doc.Flatten(group)
//	if err != nil {
//	    return err
//	}
//	return layer.WriteImage("canvas_front.png", img)
package layer
