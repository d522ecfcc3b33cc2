package config

import (
	"fmt"
	"math/rand/v2"
)

// Rational is a probability expressed as numerator/denominator, matching
// the wire and config representation used throughout the response
// generation config (null_ratio, header_ratio, http_error_ratio, the two
// graphql_errors ratios).
type Rational struct {
	Numerator   uint64
	Denominator uint64
}

// Validate checks the invariants from the data model: denominator > 0,
// numerator <= denominator.
func (r Rational) Validate() error {
	if r.Denominator == 0 {
		return fmt.Errorf("rational denominator must be greater than zero")
	}
	if r.Numerator > r.Denominator {
		return fmt.Errorf("rational numerator %d exceeds denominator %d", r.Numerator, r.Denominator)
	}
	return nil
}

// Float64 returns the rational as a probability in [0, 1].
func (r Rational) Float64() float64 {
	if r.Denominator == 0 {
		return 0
	}
	return float64(r.Numerator) / float64(r.Denominator)
}

// Trial draws against the rational's probability using rng. A nil receiver
// (unset ratio) never fires.
func (r *Rational) Trial(rng *rand.Rand) bool {
	if r == nil || r.Denominator == 0 {
		return false
	}
	return rng.Float64() < r.Float64()
}

// UnmarshalYAML accepts either a decimal fraction (e.g. `0.25`) or an
// explicit {numerator, denominator} mapping.
func (r *Rational) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var asFloat float64
	if err := unmarshal(&asFloat); err == nil {
		if asFloat < 0 || asFloat > 1 {
			return fmt.Errorf("rational %v must lie in [0, 1]", asFloat)
		}
		const scale = 1_000_000
		r.Numerator = uint64(asFloat * scale)
		r.Denominator = scale
		return nil
	}

	var asMapping struct {
		Numerator   uint64 `yaml:"numerator"`
		Denominator uint64 `yaml:"denominator"`
	}
	if err := unmarshal(&asMapping); err != nil {
		return fmt.Errorf("rational must be a decimal fraction or {numerator, denominator}: %w", err)
	}
	r.Numerator = asMapping.Numerator
	r.Denominator = asMapping.Denominator
	return r.Validate()
}
