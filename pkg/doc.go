// Package pkg provides the core libraries for psdlayout.
//
// # Overview
//
// psdlayout turns a layered PSD collage template into the settings a
// photobooth needs: the positions of the photo slots, an updated collage
// configuration and a background image without the slots. The pkg
// directory is organized into these areas:
//
//  1. [layer] - Layer tree, group lookup, PSD decoding, compositing
//  2. [placeholder] - Placeholder records and the positions file
//  3. [collage] - Order-preserving configuration documents and merging
//  4. [pipeline] - Orchestration (open → locate → extract → merge → render)
//  5. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow through psdlayout:
//
//	PSD template
//	     ↓
//	[layer] package (decode, find the placeholder group)
//	     ↓
//	[placeholder] package (visible leaves → positions file)
//	     ↓
//	[collage] package (merge into <config>.updated)
//	     ↓
//	[layer] package (hide group, flatten, write background)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    PSDPath:    "template.psd",
//	    ConfigPath: "config/config.json",
//	})
//	if err != nil {
//	    return err
//	}
//	for _, p := range result.Placeholders {
//	    fmt.Println(p.Description, p.PosX, p.PosY, p.Width, p.Height)
//	}
//
// [layer]: github.com/matzehuels/psdlayout/pkg/layer
// [placeholder]: github.com/matzehuels/psdlayout/pkg/placeholder
// [collage]: github.com/matzehuels/psdlayout/pkg/collage
// [pipeline]: github.com/matzehuels/psdlayout/pkg/pipeline
// [errors]: github.com/matzehuels/psdlayout/pkg/errors
// [observability]: github.com/matzehuels/psdlayout/pkg/observability
// [buildinfo]: github.com/matzehuels/psdlayout/pkg/buildinfo
package pkg
