package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/stroke.wgsl
var strokeShaderSource string

// StrokeShaderWGSL returns the WGSL source of the stroke shader.
func StrokeShaderWGSL() string {
	return strokeShaderSource
}

// CompileStrokeShader compiles the stroke shader to SPIR-V words for
// backends that do not accept WGSL directly.
func CompileStrokeShader() ([]uint32, error) {
	spirvBytes, err := naga.Compile(strokeShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile stroke shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile stroke shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}
