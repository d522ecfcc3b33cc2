// Package latency computes simulated per-request response delay.
//
// A Generator combines a fixed base offset with zero or more periodic wave
// shapes (sine, square, triangle, saw), each contributing a non-negative
// number of milliseconds as a function of elapsed time since the generator
// was created. The generator itself is immutable once built; its start
// instant is captured exactly once at process init and never recomputed.
package latency

import (
	"fmt"
	"math"
	"time"
)

// Shape describes one periodic contribution: amplitude is the peak
// contribution in milliseconds-equivalent duration, period is the wave's
// cycle length.
type Shape struct {
	Amplitude time.Duration
	Period    time.Duration
}

// UnmarshalYAML reads {amplitude, period} with both durations in Go
// duration syntax ("2ms", "10s").
func (s *Shape) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var aux struct {
		Amplitude string `yaml:"amplitude"`
		Period    string `yaml:"period"`
	}
	if err := unmarshal(&aux); err != nil {
		return err
	}
	amplitude, err := time.ParseDuration(aux.Amplitude)
	if err != nil {
		return fmt.Errorf("parse shape amplitude: %w", err)
	}
	period, err := time.ParseDuration(aux.Period)
	if err != nil {
		return fmt.Errorf("parse shape period: %w", err)
	}
	s.Amplitude, s.Period = amplitude, period
	return nil
}

// Config is the full latency description: a fixed base plus up to one of
// each wave shape.
type Config struct {
	Base     time.Duration
	Saw      *Shape
	Sine     *Shape
	Square   *Shape
	Triangle *Shape
}

// UnmarshalYAML replaces the whole config with the document's latency
// section: a present `latency` mapping supplies base and its own shapes,
// rather than layering shapes onto whatever defaults the receiver held.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var aux struct {
		Base     string `yaml:"base"`
		Saw      *Shape `yaml:"saw"`
		Sine     *Shape `yaml:"sine"`
		Square   *Shape `yaml:"square"`
		Triangle *Shape `yaml:"triangle"`
	}
	if err := unmarshal(&aux); err != nil {
		return err
	}
	if aux.Base == "" {
		return fmt.Errorf("latency config requires a base duration")
	}
	base, err := time.ParseDuration(aux.Base)
	if err != nil {
		return fmt.Errorf("parse latency base: %w", err)
	}
	*c = Config{Base: base, Saw: aux.Saw, Sine: aux.Sine, Square: aux.Square, Triangle: aux.Triangle}
	return nil
}

// Generator produces a duration as a function of wall time.
type Generator struct {
	start  time.Time
	config Config
}

// New builds a Generator anchored at the given start instant. Callers
// capture start once (process init) and pass that same instant to every
// Generator they build, so the wave phase is continuous across requests.
func New(start time.Time, config Config) *Generator {
	return &Generator{start: start, config: config}
}

// Generate returns the simulated delay for the given instant.
func (g *Generator) Generate(now time.Time) time.Duration {
	elapsedMs := float64(now.Sub(g.start).Milliseconds())
	totalMs := int64(g.config.Base.Milliseconds())

	if g.config.Sine != nil {
		totalMs += sineContribution(elapsedMs, g.config.Sine)
	}
	if g.config.Square != nil {
		totalMs += squareContribution(elapsedMs, g.config.Square)
	}
	if g.config.Triangle != nil {
		totalMs += triangleContribution(elapsedMs, g.config.Triangle)
	}
	if g.config.Saw != nil {
		totalMs += sawContribution(elapsedMs, g.config.Saw)
	}

	if totalMs < 0 {
		totalMs = 0
	}
	return time.Duration(totalMs) * time.Millisecond
}

func sineContribution(elapsedMs float64, s *Shape) int64 {
	periodMs := float64(s.Period.Milliseconds())
	if periodMs <= 0 {
		return 0
	}
	amplitudeMs := float64(s.Amplitude.Milliseconds())
	wave := (math.Sin(2*math.Pi*elapsedMs/periodMs) + 1) / 2
	return int64(math.Round(wave * amplitudeMs))
}

func squareContribution(elapsedMs float64, s *Shape) int64 {
	periodMs := float64(s.Period.Milliseconds())
	if periodMs <= 0 {
		return 0
	}
	amplitudeMs := s.Amplitude.Milliseconds()
	phase := math.Mod(elapsedMs, periodMs)
	if phase < periodMs/2 {
		return amplitudeMs
	}
	return 0
}

// triangleContribution is a symmetric piecewise-linear wave: 0 at phase 0,
// amplitude at phase period/2, back to 0 at phase period. Working entirely
// in the [0, period) phase space keeps the math stable near period/2.
func triangleContribution(elapsedMs float64, s *Shape) int64 {
	periodMs := float64(s.Period.Milliseconds())
	if periodMs <= 0 {
		return 0
	}
	amplitudeMs := float64(s.Amplitude.Milliseconds())
	phase := math.Mod(elapsedMs, periodMs)
	half := periodMs / 2
	var frac float64
	if phase <= half {
		frac = phase / half
	} else {
		frac = (periodMs - phase) / half
	}
	return int64(math.Round(frac * amplitudeMs))
}

// sawContribution ramps linearly from 0 to amplitude across one period, then
// resets; at the final millisecond of the period the value is amplitude-1,
// never reaching amplitude itself.
func sawContribution(elapsedMs float64, s *Shape) int64 {
	periodMs := float64(s.Period.Milliseconds())
	if periodMs <= 0 {
		return 0
	}
	amplitudeMs := s.Amplitude.Milliseconds()
	phase := math.Mod(elapsedMs, periodMs)
	frac := phase / periodMs
	v := int64(frac * float64(amplitudeMs))
	if v >= amplitudeMs {
		v = amplitudeMs - 1
	}
	return v
}
