// Package stretch changes the speed and pitch of planar audio independently.
//
// Two layers are provided:
//
//   - [Stretcher] drives a transform engine one grain at a time. Each grain
//     goes through a fixed cycle that the caller steps explicitly:
//
//     Preroll -> SpecifyGrain -> AnalyseGrain -> SynthesiseGrain -> Next -> SpecifyGrain ...
//
//     SpecifyGrain reports the span of source frames the next grain needs;
//     the caller supplies exactly that span to AnalyseGrain. Calls made out of
//     order fail with [ErrCallOrder] and leave the Stretcher untouched.
//
//   - [Stream] hides the grain cycle behind block-sized calls. It buffers
//     input until a grain's span is available and buffers synthesised frames
//     until the caller asks for them, so blocks of any size can be pushed and
//     pulled.
//
// # Usage
//
//	s, err := stretch.NewStream(44100, 2, 1024)
//	n, err := s.Process(in, out, 1024, 1024/0.75, 1.0) // slow down to 75 %
//
// Passing nil input appends silence, which drains the engine at the end of a
// stream.
//
// # Errors
//
// All failures wrap one of [ErrConstruction], [ErrInvalidRequest],
// [ErrBufferSize] or [ErrCallOrder]; test them with errors.Is. Running out of
// input is not an error: Process simply returns fewer frames.
//
// Neither type is safe for concurrent use. Independent instances share no
// state.
package stretch
