package stretch

import "errors"

var (
	// ErrConstruction reports an invalid sample rate or channel count, or a
	// transform engine that rejected the configuration.
	ErrConstruction = errors.New("stretch: invalid construction parameters")
	// ErrInvalidRequest reports a non-positive or non-finite speed or pitch,
	// or a pitch outside [grain.MinPitch, grain.MaxPitch].
	ErrInvalidRequest = errors.New("stretch: invalid request")
	// ErrBufferSize reports a caller buffer smaller than the call requires.
	ErrBufferSize = errors.New("stretch: buffer too small")
	// ErrCallOrder reports a grain operation called out of sequence.
	ErrCallOrder = errors.New("stretch: operation called out of order")
)
