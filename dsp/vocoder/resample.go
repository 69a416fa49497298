package vocoder

import (
	"math"

	"github.com/cwbudde/algo-stretch/dsp/grain"
)

// resample fills e.frame with channel c of the grain, read at frameSize
// points pitch frames apart centred on in.Position.
func (e *Engine) resample(c int, in *grain.Input) {
	half := e.frameSize / 2

	if isExact(in.Position, in.Pitch) {
		offset := int(in.Position) - half - in.Chunk.Begin
		for i := range e.frame {
			e.frame[i] = sampleAt(in, c, offset+i)
		}

		return
	}

	first := in.Position - float64(half)*in.Pitch
	for i := range e.frame {
		t := first + float64(i)*in.Pitch
		fl := math.Floor(t)
		rel := int(fl) - in.Chunk.Begin

		e.frame[i] = hermite4(t-fl,
			sampleAt(in, c, rel-1),
			sampleAt(in, c, rel),
			sampleAt(in, c, rel+1),
			sampleAt(in, c, rel+2),
		)
	}
}

// sampleAt returns frame rel (relative to the chunk start) of channel c, or
// zero where the frame is muted or outside the chunk.
func sampleAt(in *grain.Input, c, rel int) float64 {
	if in.Data == nil || rel < in.MuteHead || rel >= in.Chunk.Len()-in.MuteTail {
		return 0
	}

	return in.Data[c*in.ChannelStride+rel]
}

// hermite4 is a 4-point, 3rd-order Hermite interpolator evaluated at
// t in [0, 1) between x0 and x1.
func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}
