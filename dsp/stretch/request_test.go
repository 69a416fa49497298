package stretch

import (
	"errors"
	"math"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"unity", Request{Speed: 1, Pitch: 1}, false},
		{"flush position", Request{Position: math.NaN(), Speed: 1, Pitch: 1}, false},
		{"negative position", Request{Position: -1000, Speed: 0.5, Pitch: 2}, false},
		{"pitch at bounds", Request{Speed: 1, Pitch: 0.25}, false},
		{"zero speed", Request{Speed: 0, Pitch: 1}, true},
		{"negative speed", Request{Speed: -1, Pitch: 1}, true},
		{"infinite speed", Request{Speed: math.Inf(1), Pitch: 1}, true},
		{"nan speed", Request{Speed: math.NaN(), Pitch: 1}, true},
		{"zero pitch", Request{Speed: 1, Pitch: 0}, true},
		{"pitch too high", Request{Speed: 1, Pitch: 4.5}, true},
		{"nan pitch", Request{Speed: 1, Pitch: math.NaN()}, true},
		{"infinite position", Request{Position: math.Inf(-1), Speed: 1, Pitch: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("Validate() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestRequestIsFlush(t *testing.T) {
	if (Request{Position: 3}).IsFlush() {
		t.Fatal("finite position reported as flush")
	}

	if !(Request{Position: math.NaN()}).IsFlush() {
		t.Fatal("NaN position not reported as flush")
	}
}
