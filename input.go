package sketch

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/sketch/geom"
)

// DesktopInput drives a Pointer from 2D pointer events. Positions are
// mapped onto a drawing plane in the scene: window X runs along the
// plane's +X axis, window Y down the plane's -Y axis.
//
// Orientations follow the direction of travel with minimal twist, so
// tubes drawn with a mouse look the same as tubes drawn with a
// controller moving along the same path. The line starts on the first
// movement after the pointer goes down, once the direction is known.
type DesktopInput struct {
	pointer   *Pointer
	plane     geom.TrTransform
	pixelSize float64

	active  int
	drawing bool
	pending *gpucontext.PointerEvent
	orient  geom.Quat
	last    geom.Vec3
}

// NewDesktopInput maps events onto plane at pixelSize scene units per
// logical pixel.
func NewDesktopInput(p *Pointer, plane geom.TrTransform, pixelSize float64) *DesktopInput {
	return &DesktopInput{
		pointer:   p,
		plane:     plane.WithScale(1),
		pixelSize: pixelSize,
		orient:    plane.Rotation,
	}
}

// Drawing reports whether a pointer is down.
func (d *DesktopInput) Drawing() bool { return d.drawing }

// HandlePointer feeds one event to the pointer. It returns the finished
// stroke when the event ends a line. Events from pointers other than the
// one that went down first are ignored. A cancelled line is discarded.
func (d *DesktopInput) HandlePointer(ev gpucontext.PointerEvent) (*Stroke, error) {
	if ev.Type == gpucontext.PointerDown {
		if d.drawing {
			return nil, nil
		}
		d.active = ev.PointerID
		d.drawing = true
		d.pending = &ev
		d.orient = d.plane.Rotation
		d.last = d.position(ev)
		return nil, nil
	}
	if !d.drawing || ev.PointerID != d.active {
		return nil, nil
	}

	switch ev.Type {
	case gpucontext.PointerMove:
		pos := d.position(ev)
		if d.pending != nil {
			t := pos.Sub(d.last)
			if t.Len() <= 1e-9 {
				return nil, nil
			}
			d.orient = geom.MinimalRotationFrame(t, nil, d.plane.Rotation)
			if err := d.start(); err != nil {
				return nil, err
			}
		}
		return d.pointer.Tick(d.advance(pos), pressure(ev))

	case gpucontext.PointerUp, gpucontext.PointerLeave:
		if d.pending != nil {
			if err := d.start(); err != nil {
				d.drawing = false
				return nil, err
			}
		}
		d.drawing = false
		d.pointer.SetDrawingEnabled(false)
		return d.pointer.Tick(geom.FromTR(d.last, d.orient), pressure(ev))

	case gpucontext.PointerCancel:
		d.drawing = false
		d.pending = nil
		d.pointer.SetDrawingEnabled(false)
		if d.pointer.State() == Drawing {
			return d.pointer.DetachLine(true)
		}
	}
	return nil, nil
}

// start begins the line at the pending down event.
func (d *DesktopInput) start() error {
	down := *d.pending
	d.pending = nil
	d.pointer.SetDrawingEnabled(true)
	_, err := d.pointer.Tick(geom.FromTR(d.position(down), d.orient), pressure(down))
	return err
}

func (d *DesktopInput) position(ev gpucontext.PointerEvent) geom.Vec3 {
	local := geom.Vec3{ev.X * d.pixelSize, -ev.Y * d.pixelSize, 0}
	return d.plane.MultiplyPoint(local)
}

// advance moves to pos and returns its pose, turning the orientation
// towards the direction of travel.
func (d *DesktopInput) advance(pos geom.Vec3) geom.TrTransform {
	if t := pos.Sub(d.last); t.Len() > 1e-9 {
		prev := d.orient
		d.orient = geom.MinimalRotationFrame(t, &prev, d.plane.Rotation)
		d.last = pos
	}
	return geom.FromTR(pos, d.orient)
}

// pressure returns the event pressure. Mice report a fixed half pressure
// while pressed, which is treated as full pressure.
func pressure(ev gpucontext.PointerEvent) float64 {
	if ev.PointerType == gpucontext.PointerTypeMouse {
		return 1
	}
	return max(0, min(1, float64(ev.Pressure)))
}
