// Package core holds small allocation-aware helpers shared by the grain
// scheduler, the transform engine and the file tools: planar buffer
// management, (de)interleaving and numeric checks.
package core
