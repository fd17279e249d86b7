package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// SampleSource renders mono samples. Process is called from the audio
// thread and must not block or allocate.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the io.Reader pull model used by
// the device players, encoding float32 little-endian and duplicating the
// mono signal into every output channel.
//
// The reader is gated: while stopped it emits silence without calling the
// source. SetRunning(false) waits for an in-flight Read to finish, so once
// it returns the source is quiescent until SetRunning(true).
type StreamReader struct {
	mu       sync.Mutex
	source   SampleSource
	channels int
	running  bool
	buf      []float32
}

func NewStreamReader(source SampleSource, channels int) *StreamReader {
	if channels < 1 {
		channels = 1
	}
	return &StreamReader{source: source, channels: channels}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frameBytes := 4 * r.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([]float32, frames)
	}
	r.buf = r.buf[:frames]
	r.render(r.buf)
	for i, s := range r.buf {
		u := math.Float32bits(s)
		off := i * frameBytes
		for c := 0; c < r.channels; c++ {
			binary.LittleEndian.PutUint32(p[off+4*c:], u)
		}
	}
	return frames * frameBytes, nil
}

// Render fills dst with mono samples, or silence while stopped.
func (r *StreamReader) Render(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.render(dst)
}

func (r *StreamReader) render(dst []float32) {
	if !r.running {
		clear(dst)
		return
	}
	r.source.Process(dst)
}

// SetRunning opens or closes the gate.
func (r *StreamReader) SetRunning(running bool) {
	r.mu.Lock()
	r.running = running
	r.mu.Unlock()
}

func (r *StreamReader) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *StreamReader) Close() error { return nil }
