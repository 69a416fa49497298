// Package grain defines the narrow contract between the grain scheduler in
// package stretch and a transform engine.
//
// An engine is driven one grain at a time:
//
//	chunk := engine.Specify(position, pitch)      // which source frames
//	_ = engine.Analyse(grain.Input{Chunk: chunk, ...})
//	n := engine.Synthesise(out, stride, capacity)  // hop-sized output
//
// Grain length and hop are engine outputs. Callers must not assume either is
// constant.
package grain
