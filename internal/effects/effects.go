package effects

import "github.com/fidgetsynth/fidgetsynth/internal/param"

// Effector processes one mono sample. Implementations are driven from the
// audio thread only; their runtime parameters are atomics so the control
// side can change them while audio runs.
type Effector interface {
	Process(x float32) float32
	Reset()
}

// wetDry holds a wet/dry mix percentage in [0,100].
type wetDry struct {
	mix param.Float32
}

// SetWetDryMix sets the percentage of processed signal, clamped to [0,100].
func (w *wetDry) SetWetDryMix(percent float32) {
	w.mix.Store(clamp(percent, 0, 100))
}

// WetDryMix returns the current percentage of processed signal.
func (w *wetDry) WetDryMix() float32 {
	return w.mix.Load()
}

func (w *wetDry) blend(dry, wet float32) float32 {
	m := w.mix.Load() / 100
	return dry*(1-m) + wet*m
}

// clamp limits v to [lo, hi]; NaN clamps to lo.
func clamp(v, lo, hi float32) float32 {
	if v > hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}
