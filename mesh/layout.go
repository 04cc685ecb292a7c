package mesh

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// VertexStride is the byte stride of one packed vertex.
// Layout per vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0)
//	normal   (vec3<f32>) = 12 bytes (location 1)
//	uv       (vec2<f32>) =  8 bytes (location 2)
//
// Total = 32 bytes per vertex.
const VertexStride = 32

// IndexFormat is the format of packed indices.
const IndexFormat = gputypes.IndexFormatUint32

// VertexLayout returns the vertex buffer layout matching PackVertices.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // normal
				{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2}, // uv
			},
		},
	}
}

// PrimitiveState describes how stroke meshes are rasterized: triangle
// lists, counter-clockwise front faces, back faces culled.
func PrimitiveState() gputypes.PrimitiveState {
	return gputypes.PrimitiveState{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  gputypes.CullModeBack,
	}
}

// PackVertices encodes the vertices as little-endian float32 in the
// VertexLayout format.
func (m *Mesh) PackVertices() []byte {
	return m.AppendVertices(make([]byte, 0, m.VertexCount()*VertexStride))
}

// AppendVertices appends the packed vertices to buf, reusing its storage.
func (m *Mesh) AppendVertices(buf []byte) []byte {
	for i := range m.Positions {
		p, n, uv := m.Positions[i], m.Normals[i], m.UVs[i]
		buf = appendF32(buf, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return buf
}

// PackIndices encodes the indices as little-endian uint32.
func (m *Mesh) PackIndices() []byte {
	buf := make([]byte, 0, len(m.Indices)*int(IndexFormat.Size()))
	for _, idx := range m.Indices {
		buf = binary.LittleEndian.AppendUint32(buf, idx)
	}
	return buf
}

func appendF32(buf []byte, vals ...float64) []byte {
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	}
	return buf
}
