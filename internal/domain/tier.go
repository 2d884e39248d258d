package domain

import "fmt"

// SeverityTier is a flight category severity. The zero value is Normal.
// Tiers are totally ordered: Normal < Marginal < Instrument < LowInstrument.
type SeverityTier uint8

const (
	Normal        SeverityTier = iota // VFR
	Marginal                          // MVFR
	Instrument                        // IFR
	LowInstrument                     // LIFR
)

var tierCodes = [...]string{
	Normal:        "VFR",
	Marginal:      "MVFR",
	Instrument:    "IFR",
	LowInstrument: "LIFR",
}

// Tiers lists every tier in ascending severity.
func Tiers() []SeverityTier {
	return []SeverityTier{Normal, Marginal, Instrument, LowInstrument}
}

// Valid reports whether t is one of the four defined tiers.
func (t SeverityTier) Valid() bool {
	return t <= LowInstrument
}

// String returns the flight category code (VFR, MVFR, IFR, LIFR).
func (t SeverityTier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("SeverityTier(%d)", uint8(t))
	}
	return tierCodes[t]
}

// MarshalText encodes the tier as its flight category code.
func (t SeverityTier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid severity tier %d", uint8(t))
	}
	return []byte(tierCodes[t]), nil
}

// UnmarshalText accepts a flight category code.
func (t *SeverityTier) UnmarshalText(text []byte) error {
	tier, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// ParseTier maps a flight category code back to its tier.
func ParseTier(code string) (SeverityTier, error) {
	for i, c := range tierCodes {
		if c == code {
			return SeverityTier(i), nil
		}
	}
	return Normal, fmt.Errorf("unknown flight category %q", code)
}

// MaxTier returns the most severe of the given tiers, or Normal if none.
func MaxTier(tiers ...SeverityTier) SeverityTier {
	m := Normal
	for _, t := range tiers {
		if t > m {
			m = t
		}
	}
	return m
}
