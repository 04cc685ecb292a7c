// Package sketch is the stroke authoring pipeline of a 3D painting
// application.
//
// # Overview
//
// A Pointer receives a stream of poses and pressures from an input device.
// While drawing, each sample is converted into the space of the current
// Canvas and handed to a brush geometry generator, which decides whether it
// becomes a permanent knot of the stroke. The same decision drives the
// ControlPointStream, so the recorded control points are exactly what is
// needed to rebuild the stroke later.
//
// When the line ends, the generator's mesh is attached to the canvas as the
// stroke's Geometry and a Stroke is returned. Strokes can be destroyed and
// rebuilt from their control points (Uncreate, Recreate), moved between
// canvases (SetParent, SetParentKeepWorldPosition) and hidden.
//
// # Quick Start
//
//	catalog := brush.NewCatalog(brush.Manifest{Brushes: brushes})
//	canvas := sketch.NewSceneCanvas("main", geom.Identity())
//	p := sketch.NewPointer(catalog, sketch.WithPointerCanvas(canvas))
//
//	p.SetDrawingEnabled(true)
//	for _, sample := range samples {
//	    p.Tick(sample.Pose, sample.Pressure)
//	}
//	p.SetDrawingEnabled(false)
//	stroke, err := p.Tick(last.Pose, last.Pressure)
//
// # Architecture
//
// The module is organized into:
//   - geom: similarity transforms and quaternion helpers
//   - brush: control points, brush descriptors, catalog and generators
//   - mesh: triangle meshes and GPU vertex layout
//   - sketch: strokes, pointer, ledger, loader, history
//   - gpu, preview: drawing attached geometry
//
// # Logging
//
// sketch is silent by default. Call SetLogger to receive diagnostics from
// this package and its sub-packages.
package sketch
