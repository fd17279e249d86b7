// Package mapping converts gesture and tilt samples into bounded audio
// parameters. Every function is pure; screen dimensions are arguments.
package mapping

import "math"

const (
	MinFrequency = 100.0
	MaxFrequency = 1000.0

	// PitchSensitivity is octaves per 1000 px of vertical drag.
	PitchSensitivity = 2.0

	MinCutoff = 20.0
	MaxCutoff = 20000.0

	MaxResonance = 0.7

	// FullTiltDegrees is the pitch angle at which the effect vanishes.
	FullTiltDegrees = 45.0
)

var (
	logMinCutoff = math.Log(MinCutoff)
	logMaxCutoff = math.Log(MaxCutoff)
)

// Pitch maps a vertical drag to a frequency in [MinFrequency, MaxFrequency].
// touchStartY picks the base pitch (top of the screen is highest) and
// verticalTranslation bends it, positive meaning upward.
func Pitch(verticalTranslation, touchStartY, screenHeight float64) float64 {
	ny := Normalize(touchStartY, screenHeight)
	base := MinFrequency + (MaxFrequency-MinFrequency)*(1-ny)
	if !finite(verticalTranslation) {
		verticalTranslation = 0
	}
	freq := base * math.Pow(2, verticalTranslation*PitchSensitivity/1000)
	if math.IsNaN(freq) {
		return base
	}
	return Clamp(freq, MinFrequency, MaxFrequency)
}

// Filter maps a horizontal position to a low-pass cutoff on a log scale and
// a resonance that falls from MaxResonance at the left edge to 0 at the right.
func Filter(touchX, screenWidth float64) (cutoff, resonance float64) {
	nx := Normalize(touchX, screenWidth)
	cutoff = math.Exp(logMinCutoff + (logMaxCutoff-logMinCutoff)*nx)
	cutoff = Clamp(cutoff, MinCutoff, MaxCutoff)
	resonance = Clamp((1-nx)*MaxResonance, 0, 1)
	return cutoff, resonance
}

// TiltIntensity maps device pitch to effect intensity: level gives 1,
// FullTiltDegrees or more gives 0.
func TiltIntensity(pitchDegrees float64) float64 {
	if !finite(pitchDegrees) {
		if math.IsInf(pitchDegrees, 1) {
			return 0
		}
		pitchDegrees = 0
	}
	return 1 - Clamp(pitchDegrees/FullTiltDegrees, 0, 1)
}

// Normalize returns pos/extent clamped to [0,1]. Unusable input (a
// non-positive or non-finite extent, a non-finite position) maps to the
// centre of the screen.
func Normalize(pos, extent float64) float64 {
	if !finite(extent) || extent <= 0 || !finite(pos) {
		return 0.5
	}
	return Clamp(pos/extent, 0, 1)
}

// Clamp limits v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
