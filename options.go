package fidgetsynth

import (
	"log"

	intaudio "github.com/fidgetsynth/fidgetsynth/internal/audio"
)

const DefaultSampleRate = 44100

type Option func(*config)

type config struct {
	sampleRate int
	backend    Backend
	factory    PipelineFactory
	waveform   Waveform
	effect     EffectKind
	volume     float64
	logger     *log.Logger
	sampleTap  func([]float32)
}

func defaultConfig() config {
	return config{
		sampleRate: DefaultSampleRate,
		backend:    intaudio.BackendEbiten,
		waveform:   Sawtooth,
		effect:     EffectNone,
		volume:     1,
		logger:     log.Default(),
	}
}

func WithSampleRate(hz int) Option {
	return func(cfg *config) {
		cfg.sampleRate = hz
	}
}

// WithBackend selects the audio output. Ignored when WithPipeline is set.
func WithBackend(b Backend) Option {
	return func(cfg *config) {
		cfg.backend = b
	}
}

// WithPipeline installs a custom pipeline constructor in place of a named
// backend.
func WithPipeline(f PipelineFactory) Option {
	return func(cfg *config) {
		cfg.factory = f
	}
}

func WithWaveform(w Waveform) Option {
	return func(cfg *config) {
		cfg.waveform = w
	}
}

// WithEffect wires kind into the signal path before the pipeline starts.
func WithEffect(kind EffectKind) Option {
	return func(cfg *config) {
		cfg.effect = kind
	}
}

// WithVolume sets the master volume in [0,1].
func WithVolume(v float64) Option {
	return func(cfg *config) {
		cfg.volume = v
	}
}

// WithLogger routes pipeline start and rewiring failures to l. A nil
// logger keeps the default.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithSampleTap installs a callback invoked with each rendered mono buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *config) {
		cfg.sampleTap = tap
	}
}
