package osc

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Waveform selects the oscillator's sample function.
type Waveform int32

const (
	Sine Waveform = iota
	Square
	Triangle
	Sawtooth
)

var ErrUnknownWaveform = errors.New("unknown waveform")

var waveformNames = [...]string{
	Sine:     "sine",
	Square:   "square",
	Triangle: "triangle",
	Sawtooth: "sawtooth",
}

// Waveforms lists every waveform in display order.
func Waveforms() []Waveform {
	return []Waveform{Sine, Triangle, Square, Sawtooth}
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("waveform(%d)", int32(w))
	}
	return waveformNames[w]
}

// Valid reports whether w is one of the four known waveforms.
func (w Waveform) Valid() bool {
	return w >= Sine && w <= Sawtooth
}

// Impact is the touch radius in pixels the dot field uses for w. Harsher
// waveforms push the dots further.
func (w Waveform) Impact() float64 {
	switch w {
	case Sine:
		return 30
	case Triangle:
		return 70
	case Square:
		return 120
	case Sawtooth:
		return 200
	}
	return 100
}

// ParseWaveform accepts the names printed by String plus "saw".
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "square", "sqr":
		return Square, nil
	case "triangle", "tri":
		return Triangle, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	}
	return 0, fmt.Errorf("%w %q (expected sine|square|triangle|sawtooth)", ErrUnknownWaveform, name)
}

// Sample evaluates waveform w at phase in [0,1). Output is in [-1,1].
func Sample(phase float64, w Waveform) float32 {
	switch w {
	case Sine:
		return float32(math.Sin(2 * math.Pi * phase))
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		return float32(1 - 4*math.Abs(phase-0.5))
	case Sawtooth:
		return float32(2 * (phase - math.Floor(phase+0.5)))
	}
	return 0
}

// Advance adds inc to phase and wraps the result into [0,1).
func Advance(phase, inc float64) float64 {
	phase += inc
	if phase >= 1 || phase < 0 {
		phase -= math.Floor(phase)
		// Rounding can land exactly on 1 for tiny negative inputs.
		if phase >= 1 {
			phase = 0
		}
	}
	return phase
}

// Oscillator is a phase accumulator for one voice. The phase is owned by
// whoever calls Next; it is not safe for concurrent use.
type Oscillator struct {
	phase float64
}

// Phase returns the current phase in [0,1).
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// Next advances the phase by freq/sampleRate and returns the sample of w at
// the new phase. A non-positive sampleRate holds the phase.
func (o *Oscillator) Next(freq, sampleRate float64, w Waveform) float32 {
	if sampleRate > 0 {
		o.phase = Advance(o.phase, freq/sampleRate)
	}
	return Sample(o.phase, w)
}

// Reset zeros the phase.
func (o *Oscillator) Reset() {
	o.phase = 0
}
