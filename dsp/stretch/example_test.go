package stretch_test

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/dsp/stretch"
)

func ExampleStretcher() {
	s, err := stretch.New(44100, 1)
	if err != nil {
		panic(err)
	}

	req := stretch.Request{Speed: 1, Pitch: 1, Reset: true}
	if err := s.Preroll(req); err != nil {
		panic(err)
	}

	chunk, _ := s.SpecifyGrain(req)
	fmt.Printf("grain needs frames [%d, %d)\n", chunk.Begin, chunk.End)

	// Frames before 0 are silence; nil analyses the whole grain as silence.
	_ = s.AnalyseGrain(nil, chunk.Len())

	out, _ := stretch.NewOutputChunk(make([]float64, s.SynthesisHop()), s.SynthesisHop())
	_ = s.SynthesiseGrain(out)
	fmt.Printf("%d frames, first aligned with source frame %.0f\n", out.FrameCount, out.Request[0].Position)

	_ = s.Next(&req)
	fmt.Printf("next grain at %.0f\n", req.Position)

	// Output:
	// grain needs frames [-512, 512)
	// 256 frames, first aligned with source frame -512
	// next grain at 256
}

func ExampleStream() {
	s, err := stretch.NewStream(44100, 1, 1024)
	if err != nil {
		panic(err)
	}

	in := [][]float64{make([]float64, 1024)}
	out := [][]float64{make([]float64, 1024)}

	for range 2 {
		n, err := s.Process(in, out, 1024, 1024, 1)
		if err != nil {
			panic(err)
		}

		fmt.Println(n)
	}

	fmt.Println(s.Latency())

	// Output:
	// 768
	// 1024
	// 512
}
