package brush

import "errors"

var (
	// ErrUnknownGenerator is returned when a descriptor names a generator
	// tag that is not registered.
	ErrUnknownGenerator = errors.New("brush: unknown geometry generator")

	// ErrInvalidRadius is returned when a stroke is initialized with a
	// size that is not a positive finite number.
	ErrInvalidRadius = errors.New("brush: brush size must be positive and finite")

	// ErrInvalidTransform is returned when a generator is initialized with
	// a non-finite or non-positive-scale transform.
	ErrInvalidTransform = errors.New("brush: invalid initial transform")

	// ErrShortBuffer is returned when decoding control points from a buffer
	// whose length is not a multiple of ControlPointSize.
	ErrShortBuffer = errors.New("brush: buffer too short for control point")

	// ErrNilDescriptor is returned when a generator is initialized without
	// a descriptor.
	ErrNilDescriptor = errors.New("brush: nil descriptor")
)
