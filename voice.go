package fidgetsynth

import (
	"sync/atomic"

	"github.com/fidgetsynth/fidgetsynth/internal/graph"
	"github.com/fidgetsynth/fidgetsynth/internal/osc"
	"github.com/fidgetsynth/fidgetsynth/internal/param"
)

// params is written by the control side and read by the render side, one
// writer and one reader per field.
type params struct {
	frequency param.Float32
	amplitude param.Float32
	waveform  atomic.Int32
}

// voice is the render callback: a single oscillator feeding the graph.
type voice struct {
	params     *params
	graph      *graph.Graph
	osc        osc.Oscillator
	sampleRate float64
	tap        func([]float32)
}

func (v *voice) Process(dst []float32) {
	freq := float64(v.params.frequency.Load())
	amp := v.params.amplitude.Load()
	w := osc.Waveform(v.params.waveform.Load())
	for i := range dst {
		dst[i] = v.graph.Process(v.osc.Next(freq, v.sampleRate, w) * amp)
	}
	if v.tap != nil {
		v.tap(dst)
	}
}
