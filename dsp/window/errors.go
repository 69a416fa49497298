package window

import (
	"errors"
	"fmt"
)

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errMismatchedLength = errors.New("samples and coefficients must have same length")
)

func validateHop(hop, size int) error {
	if hop <= 0 || hop > size {
		return fmt.Errorf("window hop must be in [1, %d]: %d", size, hop)
	}
	return nil
}

func unknownTypeError(name string) error {
	return fmt.Errorf("unknown window type: %q", name)
}
