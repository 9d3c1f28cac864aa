package synth

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/filter/design"
)

// Errors returned by setters. Every error is wrapped with the offending
// value; match with errors.Is.
var (
	ErrOutOfRange                  = errors.New("synth: parameter out of range")
	ErrInvalidParameterCombination = errors.New("synth: invalid parameter combination")
	ErrUnsupportedFilterType       = design.ErrUnsupportedType
)

// designError maps a designer failure onto the synth taxonomy.
func designError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, design.ErrUnsupportedType):
		return err
	case errors.Is(err, design.ErrInvalidParameters):
		return fmt.Errorf("%w: %w", ErrInvalidParameterCombination, err)
	default:
		return err
	}
}
