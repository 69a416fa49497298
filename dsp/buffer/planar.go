package buffer

import "slices"

// Planar is an ordered first-in first-out store of multi-channel frames.
//
// Frames are addressed by absolute index: the first frame ever appended is
// frame 0 and indices keep counting across Discard and Read, so callers can
// ask for source spans by their stream position. Storage is one contiguous
// span per channel, compacted lazily when the front has been consumed.
//
// Planar is owned by exactly one consumer and is not safe for concurrent use.
type Planar struct {
	spans  [][]float64
	head   int
	origin int
}

// NewPlanar returns an empty store for channels channels with room for
// capacity frames before it needs to grow.
func NewPlanar(channels, capacity int) *Planar {
	if channels < 0 {
		channels = 0
	}
	if capacity < 0 {
		capacity = 0
	}
	spans := make([][]float64, channels)
	for c := range spans {
		spans[c] = make([]float64, 0, capacity)
	}
	return &Planar{spans: spans}
}

// Channels returns the channel count.
func (p *Planar) Channels() int { return len(p.spans) }

// Len returns the number of stored frames.
func (p *Planar) Len() int {
	if len(p.spans) == 0 {
		return 0
	}
	return len(p.spans[0]) - p.head
}

// Origin returns the absolute index of the first stored frame.
func (p *Planar) Origin() int { return p.origin }

// End returns the absolute index one past the last stored frame.
func (p *Planar) End() int { return p.origin + p.Len() }

// Channel returns the stored frames of channel c. The slice aliases internal
// storage and is only valid until the next mutating call.
func (p *Planar) Channel(c int) []float64 { return p.spans[c][p.head:] }

// Append copies the first n frames of each span of src to the back.
// A nil src appends n frames of silence.
func (p *Planar) Append(src [][]float64, n int) {
	if n <= 0 {
		return
	}
	if src == nil {
		p.AppendSilence(n)
		return
	}
	start := p.extend(n)
	for c := range p.spans {
		copy(p.spans[c][start:start+n], src[c][:n])
	}
}

// AppendSilence appends n zero frames to the back.
func (p *Planar) AppendSilence(n int) {
	if n <= 0 {
		return
	}
	start := p.extend(n)
	for c := range p.spans {
		clear(p.spans[c][start : start+n])
	}
}

// CopyRange writes absolute frames [begin, end) of every channel into dst,
// channel c starting at dst[c*stride]. Frames outside the stored range are
// written as zero. It returns the number of frames taken from storage.
func (p *Planar) CopyRange(dst []float64, stride, begin, end int) int {
	if end <= begin {
		return 0
	}
	lo := max(begin, p.origin)
	hi := min(end, p.End())
	copied := max(hi-lo, 0)
	for c := range p.spans {
		out := dst[c*stride : c*stride+end-begin]
		if copied == 0 {
			clear(out)
			continue
		}
		clear(out[:lo-begin])
		copy(out[lo-begin:hi-begin], p.spans[c][p.head+lo-p.origin:p.head+hi-p.origin])
		clear(out[hi-begin:])
	}
	return copied
}

// Read moves up to n frames from the front into dst, channel c into dst[c],
// and returns the number moved.
func (p *Planar) Read(dst [][]float64, n int) int {
	n = min(n, p.Len())
	for c := range dst {
		n = min(n, len(dst[c]))
	}
	if n <= 0 {
		return 0
	}
	for c := range p.spans {
		copy(dst[c][:n], p.spans[c][p.head:p.head+n])
	}
	p.Discard(n)
	return n
}

// Discard drops up to n frames from the front.
func (p *Planar) Discard(n int) {
	n = min(n, p.Len())
	if n <= 0 {
		return
	}
	p.head += n
	p.origin += n
	if p.Len() == 0 {
		for c := range p.spans {
			p.spans[c] = p.spans[c][:0]
		}
		p.head = 0
	}
}

// DiscardBefore drops every stored frame whose absolute index is below frame.
func (p *Planar) DiscardBefore(frame int) {
	p.Discard(frame - p.origin)
}

// Reset drops all frames and restarts absolute indexing at 0. Allocated
// storage is kept.
func (p *Planar) Reset() {
	for c := range p.spans {
		p.spans[c] = p.spans[c][:0]
	}
	p.head = 0
	p.origin = 0
}

// extend makes room for n more frames and returns the storage index of the
// first new frame. New frames hold stale data.
func (p *Planar) extend(n int) int {
	if len(p.spans) == 0 {
		return 0
	}
	if p.head > 0 && len(p.spans[0])+n > cap(p.spans[0]) {
		p.compact()
	}
	start := len(p.spans[0])
	for c := range p.spans {
		p.spans[c] = slices.Grow(p.spans[c], n)[:start+n]
	}
	return start
}

func (p *Planar) compact() {
	for c := range p.spans {
		k := copy(p.spans[c], p.spans[c][p.head:])
		p.spans[c] = p.spans[c][:k]
	}
	p.head = 0
}
