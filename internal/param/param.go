package param

import (
	"math"
	"sync/atomic"
)

// Float32 is a float32 published through an atomic.Uint32 holding its bit
// pattern. One goroutine writes it, the audio thread reads it without locks.
type Float32 struct {
	bits atomic.Uint32
}

// NewFloat32 returns a Float32 initialised to v.
func NewFloat32(v float32) *Float32 {
	f := &Float32{}
	f.Store(v)
	return f
}

func (f *Float32) Load() float32 {
	return math.Float32frombits(f.bits.Load())
}

func (f *Float32) Store(v float32) {
	f.bits.Store(math.Float32bits(v))
}
