// Package buffer provides Planar, an explicitly owned and explicitly reset
// multi-channel frame FIFO with absolute frame addressing. It carries audio
// left over between block-sized calls, both input that has arrived but is
// not yet analysed and output that has been synthesised but not yet handed
// to the caller.
package buffer
