package sketch

import "github.com/gogpu/sketch/brush"

// ControlPointStream records the control points of the stroke being drawn.
//
// Every point is first stored provisionally. A provisional point is
// overwritten by the next sample unless it was recorded as a keeper, in
// which case the next sample is appended after it. The result is that the
// stream holds exactly the points the generator turned into knots, plus
// the latest sample.
type ControlPointStream struct {
	points       []brush.ControlPoint
	lastIsKeeper bool
}

// Record stores cp and reports whether it was appended rather than written
// over the previous point. A timestamp earlier than the previous point's is
// raised to it.
func (s *ControlPointStream) Record(cp brush.ControlPoint, isKeeper bool) bool {
	n := len(s.points)
	appended := n == 0 || s.lastIsKeeper

	// The point before the slot being written bounds the timestamp.
	before := n - 1
	if !appended {
		before = n - 2
	}
	if before >= 0 && cp.TimestampMs < s.points[before].TimestampMs {
		cp.TimestampMs = s.points[before].TimestampMs
	}

	if appended {
		s.points = append(s.points, cp)
	} else {
		s.points[n-1] = cp
	}
	s.lastIsKeeper = isKeeper
	return appended
}

// Len returns the number of recorded points.
func (s *ControlPointStream) Len() int { return len(s.points) }

// Last returns the newest point. ok is false when the stream is empty.
func (s *ControlPointStream) Last() (cp brush.ControlPoint, ok bool) {
	if len(s.points) == 0 {
		return brush.ControlPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Points returns a copy of the recorded points.
func (s *ControlPointStream) Points() []brush.ControlPoint {
	if len(s.points) == 0 {
		return nil
	}
	out := make([]brush.ControlPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Reset empties the stream for a new stroke.
func (s *ControlPointStream) Reset() {
	s.points = s.points[:0]
	s.lastIsKeeper = false
}
