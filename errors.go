package sketch

import "errors"

var (
	// ErrInvalidOperation is returned when an operation is called in a
	// state that does not allow it, such as recreating a stroke that
	// already has geometry.
	ErrInvalidOperation = errors.New("sketch: invalid operation")

	// ErrNothingToDo is returned by Stroke.Recreate when called without a
	// transform or canvas on a stroke that already has geometry.
	ErrNothingToDo = errors.New("sketch: nothing to do")

	// ErrNotCreated is returned when an operation needs the stroke's
	// geometry but the stroke has none.
	ErrNotCreated = errors.New("sketch: stroke has no geometry")

	// ErrEmptyStroke is returned when a stroke without control points is
	// added to a ledger.
	ErrEmptyStroke = errors.New("sketch: stroke has no control points")

	// ErrNonFinite is returned when a transform or control point carries
	// NaN or infinite components.
	ErrNonFinite = errors.New("sketch: non-finite transform")

	// ErrNotDrawing is returned by Pointer.DetachLine when no line is live.
	ErrNotDrawing = errors.New("sketch: pointer has no live line")

	// ErrNoCanvas is returned when an operation needs a canvas and none
	// was given or configured.
	ErrNoCanvas = errors.New("sketch: no canvas")
)
