package sketch

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/sketch/brush"
	"github.com/gogpu/sketch/geom"
	"github.com/gogpu/sketch/mesh"
)

// Canvas is a transformable container that owns stroke geometry. Control
// points and meshes are expressed in the canvas's local space; Pose maps
// that space into the scene.
//
// Attach and Detach may be called from several goroutines at once while
// strokes are loaded in parallel.
type Canvas interface {
	Pose() geom.TrTransform
	Attach(g *Geometry) error
	Detach(g *Geometry)
}

// Geometry is the renderable form of a stroke: the generated mesh plus the
// state a renderer needs to draw it.
type Geometry struct {
	Mesh  *mesh.Mesh
	Brush *brush.Descriptor
	Color brush.Color
	// Opacity scales Color's alpha when drawing. It is the brush opacity
	// at the stroke's mean pressure.
	Opacity float64
	// Batched is set when the stroke was created as part of a canvas batch
	// rather than as its own object.
	Batched bool

	hidden atomic.Bool
	canvas Canvas
	stroke *Stroke
}

func newGeometry(m *mesh.Mesh, desc *brush.Descriptor, c brush.Color, cps []brush.ControlPoint, drop []bool) *Geometry {
	var sum float64
	var n int
	for i, cp := range cps {
		if i < len(drop) && drop[i] {
			continue
		}
		sum += cp.Pressure
		n++
	}
	pressure := 1.0
	if n > 0 {
		pressure = sum / float64(n)
	}
	return &Geometry{Mesh: m, Brush: desc, Color: c, Opacity: desc.PressureOpacity(pressure)}
}

// DrawColor returns the color to draw with: Color with its alpha scaled
// by Opacity.
func (g *Geometry) DrawColor() brush.Color {
	c := g.Color
	c.A *= g.Opacity
	return c
}

// Canvas returns the canvas the geometry is attached to, or nil.
func (g *Geometry) Canvas() Canvas { return g.canvas }

// Stroke returns the stroke that owns the geometry.
func (g *Geometry) Stroke() *Stroke { return g.stroke }

// Hidden reports whether the geometry is excluded from drawing.
func (g *Geometry) Hidden() bool { return g.hidden.Load() }

// SetHidden shows or hides the geometry.
func (g *Geometry) SetHidden(hide bool) { g.hidden.Store(hide) }

// attach adds g to c and records c as its parent.
func (g *Geometry) attach(c Canvas) error {
	if err := c.Attach(g); err != nil {
		return err
	}
	g.canvas = c
	return nil
}

// detach removes g from its parent canvas, if any.
func (g *Geometry) detach() {
	if g.canvas != nil {
		g.canvas.Detach(g)
		g.canvas = nil
	}
}

// SceneCanvas is an in-memory Canvas. It keeps attached geometry in
// attachment order.
type SceneCanvas struct {
	mu       sync.RWMutex
	name     string
	pose     geom.TrTransform
	geometry []*Geometry
}

// NewSceneCanvas returns an empty canvas with the given pose.
func NewSceneCanvas(name string, pose geom.TrTransform) *SceneCanvas {
	return &SceneCanvas{name: name, pose: pose}
}

// Name returns the canvas name.
func (c *SceneCanvas) Name() string { return c.name }

func (c *SceneCanvas) String() string { return "canvas " + c.name }

// Pose returns the canvas-to-scene transform.
func (c *SceneCanvas) Pose() geom.TrTransform {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pose
}

// SetPose moves the canvas. Attached geometry moves with it.
func (c *SceneCanvas) SetPose(pose geom.TrTransform) {
	c.mu.Lock()
	c.pose = pose
	c.mu.Unlock()
}

// Attach adds g to the canvas.
func (c *SceneCanvas) Attach(g *Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: attach nil geometry", ErrInvalidOperation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.geometry, g) {
		return fmt.Errorf("%w: geometry already attached to %s", ErrInvalidOperation, c)
	}
	c.geometry = append(c.geometry, g)
	return nil
}

// Detach removes g. Detaching geometry that is not attached does nothing.
func (c *SceneCanvas) Detach(g *Geometry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.geometry, g); i >= 0 {
		c.geometry = slices.Delete(c.geometry, i, i+1)
	}
}

// Len returns the number of attached geometry objects.
func (c *SceneCanvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.geometry)
}

// Geometry returns a snapshot of the attached geometry.
func (c *SceneCanvas) Geometry() []*Geometry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.geometry)
}

// WorldMesh merges the visible meshes into one mesh in scene space.
func (c *SceneCanvas) WorldMesh() *mesh.Mesh {
	pose := c.Pose()
	out := &mesh.Mesh{}
	for _, g := range c.Geometry() {
		if g.Hidden() || g.Mesh == nil {
			continue
		}
		out.Append(g.Mesh.Transformed(pose))
	}
	return out
}
