package config

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestParseDefaults(t *testing.T) {
	port, cfg, err := Parse([]byte(`{}`), zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if port != 8080 {
		t.Fatalf("port = %d, want 8080", port)
	}
	if !cfg.CacheResponses {
		t.Fatalf("cache_responses should default to true")
	}
	if cfg.ResponseGeneration.NullRatio == nil || cfg.ResponseGeneration.NullRatio.Float64() != 0.5 {
		t.Fatalf("null_ratio default should be 1/2")
	}
	if _, ok := cfg.ResponseGeneration.Scalars["Int"]; !ok {
		t.Fatalf("default scalars should include Int")
	}
}

func TestParseSubgraphOverrideMergesArrayRange(t *testing.T) {
	yamlDoc := []byte(`
port: 9090
response_generation:
  array:
    min_length: 0
    max_length: 10
subgraph_overrides:
  special:
    response_generation:
      array:
        min_length: 11
        max_length: 20
`)
	port, cfg, err := Parse(yamlDoc, zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if port != 9090 {
		t.Fatalf("port = %d, want 9090", port)
	}
	baseGen, overridden := cfg.EffectiveResponseGeneration("unknown-subgraph")
	if overridden {
		t.Fatalf("unrelated subgraph should not be overridden")
	}
	if baseGen.Array.MaxLength != 10 {
		t.Fatalf("base array max = %d, want 10", baseGen.Array.MaxLength)
	}

	specialGen, overridden := cfg.EffectiveResponseGeneration("special")
	if !overridden {
		t.Fatalf("special subgraph should be overridden")
	}
	if specialGen.Array.MinLength != 11 || specialGen.Array.MaxLength != 20 {
		t.Fatalf("special array range = %+v, want [11,20]", specialGen.Array)
	}
}

func TestParseRejectsInvalidHeaderName(t *testing.T) {
	yamlDoc := []byte(`
headers:
  "bad header": value
`)
	_, _, err := Parse(yamlDoc, zap.NewNop())
	if err == nil {
		t.Fatalf("expected error for invalid header name")
	}
}

func TestParseLatencyDurations(t *testing.T) {
	yamlDoc := []byte(`
latency:
  base: 20ms
  square:
    amplitude: 4ms
    period: 2s
`)
	_, cfg, err := Parse(yamlDoc, zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lat := cfg.LatencyGenerator
	if lat.Base != 20*time.Millisecond {
		t.Fatalf("base = %s, want 20ms", lat.Base)
	}
	if lat.Square == nil || lat.Square.Amplitude != 4*time.Millisecond || lat.Square.Period != 2*time.Second {
		t.Fatalf("square shape = %+v, want amplitude 4ms period 2s", lat.Square)
	}
	if lat.Sine != nil {
		t.Fatalf("an explicit latency section must replace the default sine, got %+v", lat.Sine)
	}
}

func TestParseScalarGenerators(t *testing.T) {
	yamlDoc := []byte(`
response_generation:
  scalars:
    Duration:
      type: int
      min: 10
      max: 20
    Note:
      type: string
      min_len: 2
      max_len: 4
`)
	_, cfg, err := Parse(yamlDoc, zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	scalars := cfg.ResponseGeneration.Scalars
	d, ok := scalars["Duration"]
	if !ok || d.Kind != ScalarInt || d.Min != 10 || d.Max != 20 {
		t.Fatalf("Duration generator = %+v, want int [10, 20]", d)
	}
	n := scalars["Note"]
	if n.Kind != ScalarString || n.MinLen != 2 || n.MaxLen != 4 {
		t.Fatalf("Note generator = %+v, want string len [2, 4]", n)
	}
	// Unmentioned defaults stay available.
	if _, ok := scalars["Boolean"]; !ok {
		t.Fatalf("default Boolean generator should survive a partial scalars override")
	}
}

func TestParseHeadersScalarAndListForms(t *testing.T) {
	yamlDoc := []byte(`
headers:
  X-Single: one
  X-Multi:
    - a
    - b
`)
	_, cfg, err := Parse(yamlDoc, zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.Headers["X-Single"]; len(got) != 1 || got[0] != "one" {
		t.Fatalf("X-Single = %v, want [one]", got)
	}
	if got := cfg.Headers["X-Multi"]; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("X-Multi = %v, want [a b]", got)
	}
}

func TestParseIgnoresPortInOverride(t *testing.T) {
	yamlDoc := []byte(`
port: 8080
subgraph_overrides:
  special:
    port: 9999
`)
	port, cfg, err := Parse(yamlDoc, zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if port != 8080 {
		t.Fatalf("port = %d, want 8080 (override port must be ignored)", port)
	}
	if _, ok := cfg.SubgraphOverrides["special"]; !ok {
		t.Fatalf("special override should still be present")
	}
}
