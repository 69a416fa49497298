// Package window generates the cosine-sum and tapered windows used to frame
// overlapping grains, and the overlap power sums needed to normalise a
// windowed overlap-add.
package window
