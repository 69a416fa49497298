// Package audiofile loads audio files into planar float64 clips and writes
// clips back out as PCM WAV. WAV, MP3 and FLAC input is recognised by file
// extension. Samples are scaled to [-1, 1).
package audiofile
