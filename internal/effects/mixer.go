package effects

import "github.com/fidgetsynth/fidgetsynth/internal/param"

// Mixer is the output stage: master volume, a soft limiter and a hard clamp
// to [-1,1].
type Mixer struct {
	volume  param.Float32
	limiter *Compressor
}

func NewMixer(sampleRate int) *Mixer {
	m := &Mixer{
		limiter: NewCompressor(sampleRate, -3, 4, 1, 80, 0),
	}
	m.volume.Store(1)
	return m
}

// SetVolume sets the master volume, clamped to [0,1].
func (m *Mixer) SetVolume(v float32) {
	m.volume.Store(clamp(v, 0, 1))
}

func (m *Mixer) Volume() float32 {
	return m.volume.Load()
}

func (m *Mixer) Process(x float32) float32 {
	return clamp(m.limiter.Process(x*m.volume.Load()), -1, 1)
}

func (m *Mixer) Reset() {
	m.limiter.Reset()
}
