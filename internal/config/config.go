// Package config models the server's behavior configuration: headers,
// latency shaping, response generation, caching policy, and per-subgraph
// overrides. A single typed root is loaded once at startup from a YAML
// document; subgraph overrides are deep-merged onto the base and resolved
// into complete configs at parse time.
package config

import (
	"time"

	"github.com/apollosolutions/subgraph-mock/internal/latency"
)

const (
	defaultLatencyBase   = 5 * time.Millisecond
	defaultSineAmplitude = 2 * time.Millisecond
	defaultSinePeriod    = 10 * time.Second
)

// GraphQLErrors holds the two simulated GraphQL-level error ratios.
type GraphQLErrors struct {
	RequestErrorRatio *Rational `yaml:"request_error_ratio"`
	FieldErrorRatio   *Rational `yaml:"field_error_ratio"`
}

// ResponseGeneration is the deterministic, hashable description of how
// responses get fabricated and occasionally perturbed with simulated
// errors.
type ResponseGeneration struct {
	Scalars        map[string]ScalarGenerator `yaml:"scalars"`
	Array          ArrayRange                 `yaml:"array"`
	NullRatio      *Rational                  `yaml:"null_ratio"`
	HeaderRatio    map[string]*Rational       `yaml:"header_ratio"`
	HTTPErrorRatio *Rational                  `yaml:"http_error_ratio"`
	GraphQLErrors  GraphQLErrors              `yaml:"graphql_errors"`
}

// DefaultResponseGeneration returns the out-of-the-box generation profile:
// builtin scalar generators, array length 0-10, null_ratio 1/2.
func DefaultResponseGeneration() ResponseGeneration {
	return ResponseGeneration{
		Scalars:   DefaultScalars(),
		Array:     ArrayRange{MinLength: 0, MaxLength: 10},
		NullRatio: &Rational{Numerator: 1, Denominator: 2},
	}
}

// Config is the fully-resolved server configuration. A SubgraphOverrides
// entry is itself a complete Config (deep-merged onto a clone of the base
// at parse time), so resolving the "effective" config for a subgraph is
// just a map lookup — no further merging happens on the request path.
type Config struct {
	Port               uint16                  `yaml:"port"`
	Headers            map[string]HeaderValues `yaml:"headers"`
	CacheResponses     bool                    `yaml:"cache_responses"`
	LatencyGenerator   latency.Config          `yaml:"latency"`
	ResponseGeneration ResponseGeneration      `yaml:"response_generation"`
	SubgraphOverrides  map[string]*Config      `yaml:"subgraph_overrides"`
}

// Default returns the full out-of-the-box configuration: port 8080, empty
// headers, caching on, default latency (base 5ms, sine amplitude 2ms,
// period 10s), default response generation.
func Default() *Config {
	return &Config{
		Port:           8080,
		Headers:        map[string]HeaderValues{},
		CacheResponses: true,
		LatencyGenerator: latency.Config{
			Base: defaultLatencyBase,
			Sine: &latency.Shape{Amplitude: defaultSineAmplitude, Period: defaultSinePeriod},
		},
		ResponseGeneration: DefaultResponseGeneration(),
	}
}

// EffectiveResponseGeneration returns the response-generation config that
// applies to requests against the named subgraph (override if present,
// else base), and whether an override applied.
func (c *Config) EffectiveResponseGeneration(subgraph string) (ResponseGeneration, bool) {
	if ov, ok := c.SubgraphOverrides[subgraph]; ok {
		return ov.ResponseGeneration, true
	}
	return c.ResponseGeneration, false
}

// EffectiveHeaders returns the header list that applies to requests against
// the named subgraph.
func (c *Config) EffectiveHeaders(subgraph string) map[string]HeaderValues {
	if ov, ok := c.SubgraphOverrides[subgraph]; ok {
		return ov.Headers
	}
	return c.Headers
}

// EffectiveCacheResponses returns the caching policy that applies to
// requests against the named subgraph.
func (c *Config) EffectiveCacheResponses(subgraph string) bool {
	if ov, ok := c.SubgraphOverrides[subgraph]; ok {
		return ov.CacheResponses
	}
	return c.CacheResponses
}

// EffectiveLatencyGenerator returns the latency config that applies to
// requests against the named subgraph.
func (c *Config) EffectiveLatencyGenerator(subgraph string) latency.Config {
	if ov, ok := c.SubgraphOverrides[subgraph]; ok {
		return ov.LatencyGenerator
	}
	return c.LatencyGenerator
}
