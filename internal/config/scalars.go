package config

import (
	"fmt"
	"math/rand/v2"
)

// ScalarKind selects which family of values a ScalarGenerator produces.
type ScalarKind string

const (
	ScalarBool   ScalarKind = "bool"
	ScalarInt    ScalarKind = "int"
	ScalarFloat  ScalarKind = "float"
	ScalarString ScalarKind = "string"
)

// ScalarGenerator is a deterministic, hashable description of how to
// fabricate a leaf value for a scalar type. Int/Float carry a [min, max]
// range; String carries a [min_len, max_len] character-count range; Bool
// carries nothing.
type ScalarGenerator struct {
	Kind   ScalarKind
	Min    float64
	Max    float64
	MinLen int
	MaxLen int
}

// Generate produces one value of this scalar's shape.
func (g ScalarGenerator) Generate(rng *rand.Rand) (interface{}, error) {
	switch g.Kind {
	case ScalarBool:
		return rng.IntN(2) == 1, nil
	case ScalarInt:
		lo, hi := int64(g.Min), int64(g.Max)
		if hi < lo {
			return nil, fmt.Errorf("int generator has max %d < min %d", hi, lo)
		}
		return lo + rng.Int64N(hi-lo+1), nil
	case ScalarFloat:
		if g.Max < g.Min {
			return nil, fmt.Errorf("float generator has max %f < min %f", g.Max, g.Min)
		}
		return g.Min + rng.Float64()*(g.Max-g.Min), nil
	case ScalarString:
		return randomString(rng, g.MinLen, g.MaxLen), nil
	default:
		return nil, fmt.Errorf("unknown scalar generator kind %q", g.Kind)
	}
}

// randomString samples a length uniformly in [minLen, maxLen] and fills it
// with runes drawn from the full Unicode scalar value range, skipping
// surrogate code points (which are not valid standalone scalar values).
func randomString(rng *rand.Rand, minLen, maxLen int) string {
	if maxLen < minLen {
		maxLen = minLen
	}
	n := minLen
	if maxLen > minLen {
		n += rng.IntN(maxLen - minLen + 1)
	}
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = randomRune(rng)
	}
	return string(runes)
}

const maxUnicodeScalar = 0x10FFFF

func randomRune(rng *rand.Rand) rune {
	for {
		r := rune(rng.Int32N(maxUnicodeScalar + 1))
		if r < 0xD800 || r > 0xDFFF {
			return r
		}
	}
}

// ArrayRange is the inclusive length range used for list fields.
type ArrayRange struct {
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`
}

// Range draws a concrete list length uniformly from [MinLength, MaxLength].
func (a ArrayRange) Range(rng *rand.Rand) int {
	if a.MaxLength <= a.MinLength {
		return a.MinLength
	}
	return a.MinLength + rng.IntN(a.MaxLength-a.MinLength+1)
}

// DefaultScalars returns the built-in generators for Boolean, Int, ID,
// Float and String. User-supplied scalar entries override these on merge.
//
// ID is modeled after Int{0,100}: federated ids are conventionally small
// integers serialized as strings, so the generator samples an integer and
// the synthesizer stringifies it for the wire (GraphQL's ID scalar always
// serializes as a string). Float's range is [-1, 1] — signed and an order
// of magnitude smaller than the others.
func DefaultScalars() map[string]ScalarGenerator {
	return map[string]ScalarGenerator{
		"Boolean": {Kind: ScalarBool},
		"Int":     {Kind: ScalarInt, Min: 0, Max: 100},
		"ID":      {Kind: ScalarInt, Min: 0, Max: 100},
		"Float":   {Kind: ScalarFloat, Min: -1.0, Max: 1.0},
		"String":  {Kind: ScalarString, MinLen: 1, MaxLen: 10},
	}
}

// UnmarshalYAML reads the internally-tagged form used by the YAML config:
//
//	MyBool: {type: bool}
//	MyInt: {type: int, min: 0, max: 100}
//	MyFloat: {type: float, min: 0, max: 1.5}
//	MyString: {type: string, min_len: 1, max_len: 10}
func (g *ScalarGenerator) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var tagged struct {
		Type   string  `yaml:"type"`
		Min    float64 `yaml:"min"`
		Max    float64 `yaml:"max"`
		MinLen int     `yaml:"min_len"`
		MaxLen int     `yaml:"max_len"`
	}
	if err := unmarshal(&tagged); err != nil {
		return fmt.Errorf("invalid scalar generator: %w", err)
	}

	switch ScalarKind(tagged.Type) {
	case ScalarBool:
		g.Kind = ScalarBool
	case ScalarInt:
		g.Kind = ScalarInt
		g.Min, g.Max = tagged.Min, tagged.Max
	case ScalarFloat:
		g.Kind = ScalarFloat
		g.Min, g.Max = tagged.Min, tagged.Max
	case ScalarString:
		g.Kind = ScalarString
		g.MinLen, g.MaxLen = tagged.MinLen, tagged.MaxLen
	default:
		return fmt.Errorf("scalar generator type must be one of bool/int/float/string, got %q", tagged.Type)
	}
	if g.Kind == ScalarInt || g.Kind == ScalarFloat {
		if g.Max < g.Min {
			return fmt.Errorf("scalar generator max %v is less than min %v", g.Max, g.Min)
		}
	}
	if g.Kind == ScalarString && g.MaxLen < g.MinLen {
		return fmt.Errorf("scalar generator max_len %d is less than min_len %d", g.MaxLen, g.MinLen)
	}
	return nil
}
