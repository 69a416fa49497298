// Package vocoder implements the grain engine used by package stretch: a
// phase vocoder that resamples each grain by its pitch ratio, propagates
// phases from the analysis hop to a fixed synthesis hop and overlap-adds
// the result.
//
// The frame size follows the sample rate (about 21 ms, 1024 frames at
// 44.1 and 48 kHz). The synthesis hop is a quarter frame by default and can
// be shortened with WithLog2SynthesisHopAdjust.
package vocoder
