package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/geom"
	"github.com/gogpu/sketch/mesh"
	"github.com/gogpu/wgpu/hal"
)

// strokeResources are the GPU objects backing one attached stroke.
type strokeResources struct {
	vertBuf    hal.Buffer
	indexBuf   hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
	indexCount uint32
	vertBytes  uint64
	indexBytes uint64
}

func (s *strokeResources) destroy(device hal.Device) {
	if s.bindGroup != nil {
		device.DestroyBindGroup(s.bindGroup)
	}
	if s.uniformBuf != nil {
		device.DestroyBuffer(s.uniformBuf)
	}
	if s.indexBuf != nil {
		device.DestroyBuffer(s.indexBuf)
	}
	if s.vertBuf != nil {
		device.DestroyBuffer(s.vertBuf)
	}
}

// CanvasStats summarizes the GPU memory held by a canvas.
type CanvasStats struct {
	Strokes     int
	Indices     int
	VertexBytes uint64
	IndexBytes  uint64
}

// Canvas is a sketch.Canvas whose strokes live in GPU buffers. Meshes are
// uploaded once on Attach in canvas-local space; the pose is applied per
// draw through the uniform block, so SetPose never re-uploads geometry.
type Canvas struct {
	renderer *StrokeRenderer

	mu        sync.Mutex
	name      string
	pose      geom.TrTransform
	order     []*sketch.Geometry
	resources map[*sketch.Geometry]*strokeResources
	closed    bool
}

var _ sketch.Canvas = (*Canvas)(nil)

// NewCanvas creates an empty canvas drawn by r.
func NewCanvas(r *StrokeRenderer, name string, pose geom.TrTransform) *Canvas {
	return &Canvas{
		renderer:  r,
		name:      name,
		pose:      pose,
		resources: make(map[*sketch.Geometry]*strokeResources),
	}
}

// Name returns the canvas name.
func (c *Canvas) Name() string { return c.name }

// Pose returns the canvas-to-scene transform.
func (c *Canvas) Pose() geom.TrTransform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

// SetPose moves the canvas.
func (c *Canvas) SetPose(pose geom.TrTransform) {
	c.mu.Lock()
	c.pose = pose
	c.mu.Unlock()
}

// Attach uploads g's mesh and makes it resident on the canvas.
func (c *Canvas) Attach(g *sketch.Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: nil geometry", sketch.ErrInvalidOperation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("%w: canvas %q is closed", sketch.ErrInvalidOperation, c.name)
	}
	if _, ok := c.resources[g]; ok {
		return fmt.Errorf("%w: geometry already on canvas %q", sketch.ErrInvalidOperation, c.name)
	}

	res, err := c.upload(g.Mesh)
	if err != nil {
		res.destroy(c.renderer.device)
		return err
	}
	c.resources[g] = res
	c.order = append(c.order, g)
	sketch.Logger().Debug("gpu: stroke resident",
		"canvas", c.name,
		"indices", res.indexCount,
		"bytes", res.vertBytes+res.indexBytes)
	return nil
}

// Detach frees the GPU buffers of g. Unknown geometry is ignored.
func (c *Canvas) Detach(g *sketch.Geometry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.resources[g]
	if !ok {
		return
	}
	delete(c.resources, g)
	for i, o := range c.order {
		if o == g {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	res.destroy(c.renderer.device)
}

// Len returns the number of resident strokes.
func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Stats reports the resident stroke count and buffer sizes.
func (c *Canvas) Stats() CanvasStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s CanvasStats
	s.Strokes = len(c.order)
	for _, res := range c.resources {
		s.Indices += int(res.indexCount)
		s.VertexBytes += res.vertBytes
		s.IndexBytes += res.indexBytes
	}
	return s
}

// Close frees every resident stroke. Later attaches fail.
func (c *Canvas) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, res := range c.resources {
		res.destroy(c.renderer.device)
	}
	c.resources = make(map[*sketch.Geometry]*strokeResources)
	c.order = nil
	c.closed = true
}

// upload creates the vertex, index and uniform buffers for m. The returned
// resources are valid for destroy even when err is non-nil.
func (c *Canvas) upload(m *mesh.Mesh) (*strokeResources, error) {
	r := c.renderer
	res := &strokeResources{}
	layout, err := r.bindGroupLayout()
	if err != nil {
		return res, err
	}
	if m.TriangleCount() == 0 {
		return res, nil
	}

	verts := m.PackVertices()
	indices := m.PackIndices()
	if res.vertBuf, err = r.createAndUploadBuffer("stroke_vertices", verts,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst); err != nil {
		return res, err
	}
	if res.indexBuf, err = r.createAndUploadBuffer("stroke_indices", indices,
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst); err != nil {
		return res, err
	}
	res.uniformBuf, err = r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "stroke_uniforms",
		Size:  strokeUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return res, fmt.Errorf("create stroke_uniforms: %w", err)
	}
	res.bindGroup, err = r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "stroke_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: res.uniformBuf.NativeHandle(), Offset: 0, Size: strokeUniformSize,
			}},
		},
	})
	if err != nil {
		return res, fmt.Errorf("create stroke bind group: %w", err)
	}

	res.indexCount = uint32(len(m.Indices)) //nolint:gosec // mesh index count fits uint32
	res.vertBytes = uint64(len(verts))
	res.indexBytes = uint64(len(indices))
	return res, nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (r *StrokeRenderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := r.queue.WriteBuffer(buf, 0, data); err != nil {
		r.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return buf, nil
}

// record writes per-stroke uniforms and records the draws. The pipeline
// is already bound.
func (c *Canvas) record(rp hal.RenderPassEncoder, viewProj mgl64.Mat4) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	model := c.pose.Mat4()
	var draws int
	for _, g := range c.order {
		res := c.resources[g]
		if res.indexCount == 0 || g.Hidden() {
			continue
		}
		uniforms := packUniforms(viewProj, model, g.DrawColor().Float32())
		if err := c.renderer.queue.WriteBuffer(res.uniformBuf, 0, uniforms); err != nil {
			return draws, fmt.Errorf("upload stroke_uniforms: %w", err)
		}
		rp.SetBindGroup(0, res.bindGroup, nil)
		rp.SetVertexBuffer(0, res.vertBuf, 0)
		rp.SetIndexBuffer(res.indexBuf, mesh.IndexFormat, 0)
		rp.DrawIndexed(res.indexCount, 1, 0, 0, 0)
		draws++
	}
	return draws, nil
}

// packUniforms lays out the stroke uniform block: two column-major
// matrices followed by the color.
func packUniforms(viewProj, model mgl64.Mat4, color [4]float32) []byte {
	buf := make([]byte, 0, strokeUniformSize)
	for _, v := range viewProj {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	}
	for _, v := range model {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	}
	for _, v := range color {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}
