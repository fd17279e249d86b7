package effects

import "sync/atomic"

// MaxDelaySeconds bounds the delay line so SetDelayTime never allocates.
const MaxDelaySeconds = 2.0

// Delay implements a mono echo with feedback.
type Delay struct {
	wetDry
	buf        []float32
	pos        int
	length     atomic.Int32 // active delay in samples, <= len(buf)
	feedback   float32
	sampleRate int
}

// NewDelay creates an echo.
// delaySeconds: initial delay time
// feedback: feedback amount 0..1
// wetPercent: wet/dry mix 0..100
func NewDelay(sampleRate int, delaySeconds float64, feedback, wetPercent float32) *Delay {
	size := int(MaxDelaySeconds * float64(sampleRate))
	if size < 1 {
		size = 1
	}
	d := &Delay{
		buf:        make([]float32, size),
		feedback:   clamp(feedback, 0, 0.95),
		sampleRate: sampleRate,
	}
	d.SetDelayTime(delaySeconds)
	d.SetWetDryMix(wetPercent)
	return d
}

// SetDelayTime sets the echo time, clamped to (0, MaxDelaySeconds].
func (d *Delay) SetDelayTime(seconds float64) {
	samples := int(seconds * float64(d.sampleRate))
	if samples < 1 {
		samples = 1
	}
	if samples > len(d.buf) {
		samples = len(d.buf)
	}
	d.length.Store(int32(samples))
}

// DelayTime returns the echo time in seconds.
func (d *Delay) DelayTime() float64 {
	return float64(d.length.Load()) / float64(d.sampleRate)
}

func (d *Delay) Process(x float32) float32 {
	n := int(d.length.Load())
	if d.pos >= n {
		d.pos = 0
	}
	delayed := d.buf[d.pos]
	d.buf[d.pos] = x + delayed*d.feedback
	d.pos++
	if d.pos >= n {
		d.pos = 0
	}
	return d.blend(x, delayed)
}

func (d *Delay) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}
