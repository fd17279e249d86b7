package audio

import "sync"

// Headless is a pipeline with no device behind it. Samples are produced
// only when Pull is called, which makes it the pipeline for tests and for
// scripted runs on machines without audio.
type Headless struct {
	mu       sync.Mutex
	reader   *StreamReader
	startErr error
	closed   bool
	starts   int
	stops    int
}

func NewHeadless(source SampleSource) *Headless {
	return &Headless{reader: NewStreamReader(source, 1)}
}

// FailStart makes every later Start return err; nil clears it.
func (h *Headless) FailStart(err error) {
	h.mu.Lock()
	h.startErr = err
	h.mu.Unlock()
}

func (h *Headless) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.startErr != nil {
		return h.startErr
	}
	h.starts++
	h.reader.SetRunning(true)
	return nil
}

func (h *Headless) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
	h.reader.SetRunning(false)
}

func (h *Headless) IsRunning() bool {
	return h.reader.Running()
}

func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.reader.SetRunning(false)
	return nil
}

// Pull renders len(dst) mono samples, or silence while stopped.
func (h *Headless) Pull(dst []float32) {
	h.reader.Render(dst)
}

// Read encodes mono float32 little-endian samples like a device would
// request them.
func (h *Headless) Read(p []byte) (int, error) {
	return h.reader.Read(p)
}

// Transitions reports how many successful starts and stops have happened.
func (h *Headless) Transitions() (starts, stops int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.starts, h.stops
}
