package brush

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/sketch/geom"
)

// ControlPointSize is the size in bytes of one persisted control point:
// position 3×float32, orientation 4×float32 (x, y, z, w), pressure
// float32 and timestamp uint32, all little-endian.
const ControlPointSize = 36

// ControlPoint is one sample along a stroke, in the stroke's canvas space.
// Orient's local +Z axis points along the stroke.
type ControlPoint struct {
	Pos         geom.Vec3
	Orient      geom.Quat
	Pressure    float64
	TimestampMs uint32
}

// Transform returns the control point's pose with the given scale.
func (cp ControlPoint) Transform(scale float64) geom.TrTransform {
	return geom.FromTRS(cp.Pos, cp.Orient, scale)
}

// IsFinite reports whether position, orientation and pressure are finite.
func (cp ControlPoint) IsFinite() bool {
	return geom.VecFinite(cp.Pos) && geom.QuatFinite(cp.Orient) &&
		!math.IsNaN(cp.Pressure) && !math.IsInf(cp.Pressure, 0)
}

// Transformed applies xf to the point: position' = xf·position and
// orientation' = xf.rotation·orientation.
func (cp ControlPoint) Transformed(xf geom.TrTransform) ControlPoint {
	cp.Pos = xf.MultiplyPoint(cp.Pos)
	cp.Orient = xf.Rotation.Mul(cp.Orient)
	return cp
}

// AppendBinary appends the persisted form of cp to b.
func (cp ControlPoint) AppendBinary(b []byte) ([]byte, error) {
	for _, f := range [...]float64{
		cp.Pos[0], cp.Pos[1], cp.Pos[2],
		cp.Orient.V[0], cp.Orient.V[1], cp.Orient.V[2], cp.Orient.W,
		cp.Pressure,
	} {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(f)))
	}
	return binary.LittleEndian.AppendUint32(b, cp.TimestampMs), nil
}

// MarshalBinary returns the 36-byte persisted form of cp.
func (cp ControlPoint) MarshalBinary() ([]byte, error) {
	return cp.AppendBinary(make([]byte, 0, ControlPointSize))
}

// UnmarshalBinary decodes the persisted form produced by MarshalBinary.
func (cp *ControlPoint) UnmarshalBinary(data []byte) error {
	if len(data) < ControlPointSize {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(data), ControlPointSize)
	}
	f := func(i int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:])))
	}
	cp.Pos = geom.Vec3{f(0), f(1), f(2)}
	cp.Orient = geom.Quat{W: f(6), V: geom.Vec3{f(3), f(4), f(5)}}
	cp.Pressure = f(7)
	cp.TimestampMs = binary.LittleEndian.Uint32(data[32:])
	return nil
}

// EncodeControlPoints returns the tightly packed persisted form of cps.
func EncodeControlPoints(cps []ControlPoint) []byte {
	buf := make([]byte, 0, len(cps)*ControlPointSize)
	for _, cp := range cps {
		buf, _ = cp.AppendBinary(buf)
	}
	return buf
}

// DecodeControlPoints decodes a tightly packed array of control points.
func DecodeControlPoints(data []byte) ([]ControlPoint, error) {
	if len(data)%ControlPointSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d",
			ErrShortBuffer, len(data), ControlPointSize)
	}
	cps := make([]ControlPoint, len(data)/ControlPointSize)
	for i := range cps {
		if err := cps[i].UnmarshalBinary(data[i*ControlPointSize:]); err != nil {
			return nil, err
		}
	}
	return cps, nil
}
