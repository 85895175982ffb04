// Package protocol defines deformation histories and drives materials through them
package protocol

import (
	"fmt"
	"math"
)

// DefaultStepSize is the deformation increment used when a protocol does not give one
const DefaultStepSize = 0.001

// Limits on the work a single run may request
const (
	MaxSteps      = 1000000 // increments in a discretised history
	MaxIterations = 100     // trial iterations per step (Options.Iterations)
)

// Cycle is a symmetric cycle repeated at one amplitude
type Cycle struct {
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Repeats   int     `json:"repeats" yaml:"repeats"`
}

// Protocol is a quasi-static loading protocol. Explicit targets are visited
// first, in order; the symmetric cycles follow. Every leg is discretised with
// StepSize and always ends exactly on its target.
type Protocol struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Targets     []float64 `json:"targets,omitempty" yaml:"targets,omitempty"`
	Cycles      []Cycle   `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	StepSize    float64   `json:"step_size" yaml:"step_size"`
}

// Standard returns a symmetric protocol with repeats cycles at each amplitude
// followed by a return to zero
func Standard(name string, amplitudes []float64, repeats int, step float64) *Protocol {
	p := &Protocol{Name: name, StepSize: step}
	for _, a := range amplitudes {
		p.Cycles = append(p.Cycles, Cycle{Amplitude: a, Repeats: repeats})
	}
	return p
}

// Validate checks if the protocol is usable
func (p *Protocol) Validate() error {
	if !(p.StepSize > 0) || math.IsInf(p.StepSize, 0) {
		return &ValidationError{"step size must be positive"}
	}
	if len(p.Targets) == 0 && len(p.Cycles) == 0 {
		return &ValidationError{"protocol must have at least one target or cycle"}
	}
	for i, t := range p.Targets {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &ValidationError{fmt.Sprintf("target %d is not finite", i+1)}
		}
	}
	for i, c := range p.Cycles {
		if !(c.Amplitude > 0) || math.IsInf(c.Amplitude, 0) {
			return &ValidationError{fmt.Sprintf("cycle %d must have a positive amplitude", i+1)}
		}
		if c.Repeats < 1 {
			return &ValidationError{fmt.Sprintf("cycle %d must be repeated at least once", i+1)}
		}
	}
	if n := p.steps(); n > MaxSteps {
		return &ValidationError{fmt.Sprintf("protocol needs %.4g steps, more than the limit of %d", n, MaxSteps)}
	}
	return nil
}

// steps counts the increments of History without building it
func (p *Protocol) steps() float64 {
	n, u := 0.0, 0.0
	leg := func(t float64) {
		n += math.Ceil(math.Abs(t-u) / p.StepSize)
		u = t
	}
	for _, t := range p.Targets {
		leg(t)
	}
	for _, c := range p.Cycles {
		leg(c.Amplitude)
		leg(-c.Amplitude)
		n += 2 * float64(c.Repeats-1) * math.Ceil(2*c.Amplitude/p.StepSize)
	}
	if len(p.Cycles) > 0 {
		leg(0)
	}
	return n
}

// Peaks returns the sequence of reversal points
func (p *Protocol) Peaks() []float64 {
	peaks := append([]float64(nil), p.Targets...)
	for _, c := range p.Cycles {
		for i := 0; i < c.Repeats; i++ {
			peaks = append(peaks, c.Amplitude, -c.Amplitude)
		}
	}
	if len(p.Cycles) > 0 {
		peaks = append(peaks, 0)
	}
	return peaks
}

// History returns the discretised deformation history starting from zero.
// The starting point itself is not included.
func (p *Protocol) History() []float64 {
	return Discretise(p.Peaks(), p.StepSize)
}

// Discretise splits the legs between consecutive peaks (starting from zero)
// into increments no larger than step
func Discretise(peaks []float64, step float64) (h []float64) {
	u := 0.0
	for _, t := range peaks {
		n := int(math.Ceil(math.Abs(t-u) / step))
		for i := 1; i < n; i++ {
			h = append(h, u+(t-u)*float64(i)/float64(n))
		}
		if n > 0 {
			h = append(h, t)
		}
		u = t
	}
	return
}

// ValidationError represents a protocol validation error
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}
