// Package settings holds the threshold configuration: a nominal capacitance
// and a tolerance percentage, each cycled through a preset list or set by
// hand.
package settings

import (
	"math"
	"strings"
)

// Error is a settings error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const ErrInvalidInput = Error("invalid input")

// Manual entry limits keep "Nominal 999999nF" and "Tolerance 999%" within a
// 16 column line.
const (
	MaxNominal   = 999999
	MaxTolerance = 999
)

var (
	DefaultNominalPresets   = []int{1, 10, 50, 100, 500, 1000}
	DefaultTolerancePresets = []int{10, 20, 30, 40, 45}
)

// Store keeps the current nominal value in nF and tolerance in percent.
// Preset indices always point into their preset lists.
type Store struct {
	nominalPresets   []int
	tolerancePresets []int

	nominalIdx   int
	toleranceIdx int

	nominal   int
	tolerance int
}

// New creates a Store starting at the first preset of each list. Empty lists
// fall back to the defaults.
func New(nominalPresets, tolerancePresets []int) *Store {
	if len(nominalPresets) == 0 {
		nominalPresets = DefaultNominalPresets
	}
	if len(tolerancePresets) == 0 {
		tolerancePresets = DefaultTolerancePresets
	}
	s := &Store{
		nominalPresets:   append([]int(nil), nominalPresets...),
		tolerancePresets: append([]int(nil), tolerancePresets...),
	}
	s.nominal = s.nominalPresets[0]
	s.tolerance = s.tolerancePresets[0]
	return s
}

// Nominal returns the nominal capacitance in nF.
func (s *Store) Nominal() int {
	return s.nominal
}

// Tolerance returns the tolerance in percent.
func (s *Store) Tolerance() int {
	return s.tolerance
}

// CycleNominal advances to the next nominal preset, wrapping to the first.
func (s *Store) CycleNominal() {
	s.nominalIdx = (s.nominalIdx + 1) % len(s.nominalPresets)
	s.nominal = s.nominalPresets[s.nominalIdx]
}

// CycleTolerance advances to the next tolerance preset, wrapping to the first.
func (s *Store) CycleTolerance() {
	s.toleranceIdx = (s.toleranceIdx + 1) % len(s.tolerancePresets)
	s.tolerance = s.tolerancePresets[s.toleranceIdx]
}

// ManualSet overwrites both values from decimal digit text. Nothing changes
// unless both parse; a zero nominal and values above MaxNominal or
// MaxTolerance are rejected. The preset indices are left alone, so the next
// cycle continues from the last preset position.
func (s *Store) ManualSet(nominalText, toleranceText string) error {
	nominal, err := ParseDigits(nominalText)
	if err != nil {
		return err
	}
	if nominal == 0 || nominal > MaxNominal {
		return ErrInvalidInput
	}
	tolerance, err := ParseDigits(toleranceText)
	if err != nil {
		return err
	}
	if tolerance > MaxTolerance {
		return ErrInvalidInput
	}
	s.nominal = nominal
	s.tolerance = tolerance
	return nil
}

// ParseDigits parses an unsigned decimal integer. Surrounding blanks and
// line terminators are ignored; anything else that is not a digit, an empty
// text or a value beyond int32 range yields ErrInvalidInput.
func ParseDigits(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrInvalidInput
	}
	v := 0
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch < '0' || ch > '9' {
			return 0, ErrInvalidInput
		}
		v = v*10 + int(ch-'0')
		if v > math.MaxInt32 {
			return 0, ErrInvalidInput
		}
	}
	return v, nil
}
