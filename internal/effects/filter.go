package effects

import (
	"math"

	"github.com/fidgetsynth/fidgetsynth/internal/param"
)

const (
	// baseQ is the Butterworth response used at zero resonance.
	baseQ = math.Sqrt2 / 2
	// resonanceGainDB is the peak boost at full resonance.
	resonanceGainDB = 12.0
	// maxCutoffRatio keeps the cutoff below Nyquist.
	maxCutoffRatio = 0.45
)

// Filter is a resonant RBJ biquad low-pass. Cutoff and resonance are
// published atomically; coefficients are rebuilt on the audio thread the
// first time Process sees a changed value.
type Filter struct {
	cutoff     param.Float32
	resonance  param.Float32
	sampleRate float64

	// Coefficients for the values last seen by Process.
	seenCutoff, seenRes float32
	b0, b1, b2, a1, a2  float64
	x1, x2, y1, y2      float64
}

// NewFilter creates a low-pass at cutoff Hz with resonance in [0,1].
func NewFilter(sampleRate int, cutoff, resonance float32) *Filter {
	f := &Filter{sampleRate: float64(sampleRate)}
	f.SetCutoff(cutoff)
	f.SetResonance(resonance)
	f.update(f.cutoff.Load(), f.resonance.Load())
	return f
}

// SetCutoff sets the cutoff frequency in Hz, clamped to [20, 20000].
func (f *Filter) SetCutoff(hz float32) {
	f.cutoff.Store(clamp(hz, 20, 20000))
}

func (f *Filter) Cutoff() float32 {
	return f.cutoff.Load()
}

// SetResonance sets the resonance in [0,1]; 1 boosts the peak by 12 dB.
func (f *Filter) SetResonance(r float32) {
	f.resonance.Store(clamp(r, 0, 1))
}

func (f *Filter) Resonance() float32 {
	return f.resonance.Load()
}

// Q returns the quality factor used for the current resonance.
func (f *Filter) Q() float64 {
	return filterQ(f.resonance.Load())
}

func (f *Filter) Process(x float32) float32 {
	c, r := f.cutoff.Load(), f.resonance.Load()
	if c != f.seenCutoff || r != f.seenRes {
		f.update(c, r)
	}
	in := float64(x)
	y := f.b0*in + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, in
	f.y2, f.y1 = f.y1, y
	return float32(y)
}

func (f *Filter) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

func (f *Filter) update(cutoff, resonance float32) {
	f.seenCutoff, f.seenRes = cutoff, resonance
	fc := math.Min(float64(cutoff), f.sampleRate*maxCutoffRatio)
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc / f.sampleRate
	alpha := math.Sin(w0) / (2 * filterQ(resonance))
	cosW0 := math.Cos(w0)
	a0 := 1 + alpha
	f.b0 = (1 - cosW0) / 2 / a0
	f.b1 = (1 - cosW0) / a0
	f.b2 = (1 - cosW0) / 2 / a0
	f.a1 = -2 * cosW0 / a0
	f.a2 = (1 - alpha) / a0
}

// filterQ raises the Butterworth Q by the resonance gain.
func filterQ(resonance float32) float64 {
	return baseQ * math.Pow(10, float64(resonance)*resonanceGainDB/20)
}
