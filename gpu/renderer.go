package gpu

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sketch/mesh"
	"github.com/gogpu/wgpu/hal"
)

// strokeUniformSize is the byte size of the stroke uniform block:
// view_proj (mat4x4<f32>) + model (mat4x4<f32>) + color (vec4<f32>).
const strokeUniformSize = 144

// RendererOption configures a StrokeRenderer.
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	colorFormat gputypes.TextureFormat
	depthFormat gputypes.TextureFormat
	sampleCount uint32
	spirv       bool
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		colorFormat: gputypes.TextureFormatBGRA8Unorm,
		depthFormat: gputypes.TextureFormatDepth24Plus,
		sampleCount: 1,
	}
}

// WithColorFormat sets the color target format. Default BGRA8Unorm.
func WithColorFormat(f gputypes.TextureFormat) RendererOption {
	return func(o *rendererOptions) { o.colorFormat = f }
}

// WithDepthFormat sets the depth target format. Default Depth24Plus.
// TextureFormatUndefined disables depth testing.
func WithDepthFormat(f gputypes.TextureFormat) RendererOption {
	return func(o *rendererOptions) { o.depthFormat = f }
}

// WithSampleCount sets the MSAA sample count of the render targets.
func WithSampleCount(n uint32) RendererOption {
	return func(o *rendererOptions) {
		if n > 0 {
			o.sampleCount = n
		}
	}
}

// WithSPIRV makes the renderer compile the shader to SPIR-V with naga
// instead of handing WGSL to the backend.
func WithSPIRV() RendererOption {
	return func(o *rendererOptions) { o.spirv = true }
}

// StrokeRenderer draws the strokes resident on GPU canvases.
//
// The bind group layout is created on first use by a canvas upload; the
// shader and pipeline are created lazily on the first draw. A renderer
// is shared by any number of canvases on the same device.
type StrokeRenderer struct {
	device hal.Device
	queue  hal.Queue
	opts   rendererOptions

	// mu guards the GPU objects below. Canvases upload from loader
	// goroutines.
	mu            sync.Mutex
	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
}

// NewStrokeRenderer creates a renderer for the given device and queue.
// No GPU objects are created until they are needed.
func NewStrokeRenderer(device hal.Device, queue hal.Queue, opts ...RendererOption) *StrokeRenderer {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &StrokeRenderer{
		device: device,
		queue:  queue,
		opts:   o,
	}
}

// Destroy releases all pipeline resources. Canvases created with the
// renderer must be closed first.
func (r *StrokeRenderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyPipeline()
}

// bindGroupLayout returns the uniform layout, creating it on first use.
func (r *StrokeRenderer) bindGroupLayout() (hal.BindGroupLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLayout(); err != nil {
		return nil, err
	}
	return r.uniformLayout, nil
}

func (r *StrokeRenderer) ensureLayout() error {
	if r.uniformLayout != nil {
		return nil
	}
	uniformLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "stroke_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create stroke uniform layout: %w", err)
	}
	r.uniformLayout = uniformLayout
	return nil
}

func (r *StrokeRenderer) ensurePipeline() error {
	if r.pipeline != nil {
		return nil
	}
	return r.createPipeline()
}

func (r *StrokeRenderer) shaderSource() (hal.ShaderSource, error) {
	if strokeShaderSource == "" {
		return hal.ShaderSource{}, fmt.Errorf("stroke shader source is empty")
	}
	if !r.opts.spirv {
		return hal.ShaderSource{WGSL: strokeShaderSource}, nil
	}
	words, err := CompileStrokeShader()
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: words}, nil
}

func (r *StrokeRenderer) createPipeline() error {
	if err := r.ensureLayout(); err != nil {
		return err
	}

	if r.shader == nil {
		src, err := r.shaderSource()
		if err != nil {
			return err
		}
		shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  "stroke_shader",
			Source: src,
		})
		if err != nil {
			return fmt.Errorf("compile stroke shader: %w", err)
		}
		r.shader = shader
	}

	if r.pipeLayout == nil {
		pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            "stroke_pipe_layout",
			BindGroupLayouts: []hal.BindGroupLayout{r.uniformLayout},
		})
		if err != nil {
			return fmt.Errorf("create stroke pipeline layout: %w", err)
		}
		r.pipeLayout = pipeLayout
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "stroke_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers:    mesh.VertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.opts.colorFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: r.depthState(),
		Primitive:    mesh.PrimitiveState(),
		Multisample: gputypes.MultisampleState{
			Count: r.opts.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create stroke pipeline: %w", err)
	}
	r.pipeline = pipeline
	return nil
}

func (r *StrokeRenderer) depthState() *hal.DepthStencilState {
	if r.opts.depthFormat == gputypes.TextureFormatUndefined {
		return nil
	}
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            r.opts.depthFormat,
		DepthWriteEnabled: true,
		DepthCompare:      gputypes.CompareFunctionLess,
		StencilFront:      keep,
		StencilBack:       keep,
	}
}

func (r *StrokeRenderer) destroyPipeline() {
	if r.device == nil {
		return
	}
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.uniformLayout != nil {
		r.device.DestroyBindGroupLayout(r.uniformLayout)
		r.uniformLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// RecordDraws records one indexed draw per visible stroke of each canvas
// into rp. viewProj maps world space to clip space.
func (r *StrokeRenderer) RecordDraws(rp hal.RenderPassEncoder, viewProj mgl64.Mat4, canvases ...*Canvas) (int, error) {
	r.mu.Lock()
	err := r.ensurePipeline()
	pipeline := r.pipeline
	r.mu.Unlock()
	if err != nil {
		return 0, err
	}
	rp.SetPipeline(pipeline)

	var draws int
	for _, c := range canvases {
		if c == nil {
			continue
		}
		if c.renderer != r {
			return draws, fmt.Errorf("gpu: canvas %q belongs to another renderer", c.Name())
		}
		n, err := c.record(rp, viewProj)
		draws += n
		if err != nil {
			return draws, err
		}
	}
	return draws, nil
}
