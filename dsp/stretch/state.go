package stretch

import "fmt"

type state uint8

const (
	stateUninitialized state = iota
	statePrerolled
	stateSpecified
	stateAnalysed
	stateSynthesised
	stateAdvanced
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case statePrerolled:
		return "prerolled"
	case stateSpecified:
		return "specified"
	case stateAnalysed:
		return "analysed"
	case stateSynthesised:
		return "synthesised"
	case stateAdvanced:
		return "advanced"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

type operation uint8

const (
	opPreroll operation = iota
	opSpecifyGrain
	opAnalyseGrain
	opSynthesiseGrain
	opNext
)

func (op operation) String() string {
	switch op {
	case opPreroll:
		return "Preroll"
	case opSpecifyGrain:
		return "SpecifyGrain"
	case opAnalyseGrain:
		return "AnalyseGrain"
	case opSynthesiseGrain:
		return "SynthesiseGrain"
	case opNext:
		return "Next"
	default:
		return fmt.Sprintf("operation(%d)", uint8(op))
	}
}

// transition returns the state op leads to from s, or ErrCallOrder when op
// is not legal in s. Preroll is legal everywhere; SpecifyGrain may repeat to
// replace a grain that was never analysed.
func transition(s state, op operation) (state, error) {
	var ok bool

	switch op {
	case opPreroll:
		return statePrerolled, nil
	case opSpecifyGrain:
		ok = s == statePrerolled || s == stateAdvanced || s == stateSpecified
	case opAnalyseGrain:
		ok = s == stateSpecified
	case opSynthesiseGrain:
		ok = s == stateAnalysed
	case opNext:
		ok = s == stateSynthesised
	}

	if !ok {
		return s, fmt.Errorf("%w: %s called in state %s", ErrCallOrder, op, s)
	}

	return targets[op], nil
}

var targets = [...]state{
	opPreroll:         statePrerolled,
	opSpecifyGrain:    stateSpecified,
	opAnalyseGrain:    stateAnalysed,
	opSynthesiseGrain: stateSynthesised,
	opNext:            stateAdvanced,
}
