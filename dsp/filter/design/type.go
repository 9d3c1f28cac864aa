package design

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the designers.
var (
	ErrUnsupportedType   = errors.New("design: unsupported filter type")
	ErrInvalidParameters = errors.New("design: invalid parameters")
)

// Type selects a filter response.
type Type int

// Filter responses. LowShelf and HighShelf are recognised names without a
// synthesis formula; requesting them fails with ErrUnsupportedType.
const (
	Lowpass Type = iota
	Highpass
	Bandpass
	Bandstop
	LowShelf
	HighShelf
)

var typeNames = [...]string{
	Lowpass:   "lowpass",
	Highpass:  "highpass",
	Bandpass:  "bandpass",
	Bandstop:  "bandstop",
	LowShelf:  "lowshelf",
	HighShelf: "highshelf",
}

// String returns the lower-case name of t.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}

	return typeNames[t]
}

// Supported reports whether t has a synthesis formula.
func (t Type) Supported() bool {
	switch t {
	case Lowpass, Highpass, Bandpass, Bandstop:
		return true
	default:
		return false
	}
}

// ParseType maps a name such as "bandpass" to its Type. Matching ignores
// case and surrounding space; "notch" is accepted for Bandstop.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "notch" {
		return Bandstop, nil
	}

	for t, n := range typeNames {
		if n == name {
			return Type(t), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}
