// Package fidgetsynth is a touch and tilt driven single-voice synthesizer.
//
// Gestures map to pitch and a low-pass filter, device tilt maps to the
// intensity of one insert effect (echo, reverb or distortion). Parameter
// updates are lock-free for the audio thread; switching effects briefly
// stops the output pipeline while the signal path is rewired.
package fidgetsynth

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	intaudio "github.com/fidgetsynth/fidgetsynth/internal/audio"
	"github.com/fidgetsynth/fidgetsynth/internal/graph"
	"github.com/fidgetsynth/fidgetsynth/internal/mapping"
	"github.com/fidgetsynth/fidgetsynth/internal/osc"
	"github.com/fidgetsynth/fidgetsynth/internal/param"
)

type Waveform = osc.Waveform

const (
	Sine     = osc.Sine
	Square   = osc.Square
	Triangle = osc.Triangle
	Sawtooth = osc.Sawtooth
)

type EffectKind = graph.EffectKind

const (
	EffectNone       = graph.EffectNone
	EffectEcho       = graph.EffectEcho
	EffectReverb     = graph.EffectReverb
	EffectDistortion = graph.EffectDistortion
)

type (
	Backend         = intaudio.Backend
	Pipeline        = intaudio.Pipeline
	SampleSource    = intaudio.SampleSource
	PipelineFactory = intaudio.Factory
)

const (
	BackendEbiten   = intaudio.BackendEbiten
	BackendOto      = intaudio.BackendOto
	BackendHeadless = intaudio.BackendHeadless
)

var (
	ErrUnknownWaveform   = osc.ErrUnknownWaveform
	ErrUnknownEffect     = graph.ErrUnknownEffect
	ErrUnknownBackend    = intaudio.ErrUnknownBackend
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

const (
	DefaultFrequency = 440.0
	// TouchAmplitude is the fixed loudness while a touch is held.
	TouchAmplitude = 0.5
)

func ParseWaveform(name string) (Waveform, error) { return osc.ParseWaveform(name) }
func ParseEffect(name string) (EffectKind, error) { return graph.ParseEffect(name) }
func ParseBackend(name string) (Backend, error)   { return intaudio.ParseBackend(name) }

// Waveforms lists the selectable waveforms in display order.
func Waveforms() []Waveform { return osc.Waveforms() }

// Effects lists the selectable effects, excluding EffectNone.
func Effects() []EffectKind { return graph.Effects() }

type Synth struct {
	// mu serializes pipeline transitions with effect routing and
	// intensity. The render path never takes it.
	mu         sync.Mutex
	logger     *log.Logger
	sampleRate int
	params     params
	graph      *graph.Graph
	voice      *voice
	pipeline   Pipeline
	effect     atomic.Int32
	intensity  param.Float32
}

// New builds the synth, wires the configured effect and starts the output
// pipeline. A pipeline that fails to start is logged, not returned; the
// next TouchDown retries it.
func New(opts ...Option) (*Synth, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, cfg.sampleRate)
	}
	if !cfg.waveform.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWaveform, int(cfg.waveform))
	}
	if !cfg.effect.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEffect, int(cfg.effect))
	}
	factory := cfg.factory
	if factory == nil {
		f, err := cfg.backend.Factory()
		if err != nil {
			return nil, err
		}
		factory = f
	}

	s := &Synth{
		logger:     cfg.logger,
		sampleRate: cfg.sampleRate,
		graph:      graph.New(cfg.sampleRate),
	}
	s.params.frequency.Store(DefaultFrequency)
	s.params.waveform.Store(int32(cfg.waveform))
	s.graph.Mixer().SetVolume(float32(cfg.volume))
	s.voice = &voice{
		params:     &s.params,
		graph:      s.graph,
		sampleRate: float64(cfg.sampleRate),
		tap:        cfg.sampleTap,
	}
	if err := s.graph.Route(cfg.effect); err != nil {
		return nil, fmt.Errorf("route %s: %w", cfg.effect, err)
	}
	s.effect.Store(int32(cfg.effect))
	s.graph.ApplyIntensity(cfg.effect, 0)

	p, err := factory(cfg.sampleRate, s.voice)
	if err != nil {
		return nil, fmt.Errorf("open audio pipeline: %w", err)
	}
	s.pipeline = p

	s.mu.Lock()
	s.startLocked()
	s.mu.Unlock()
	return s, nil
}

func (s *Synth) startLocked() {
	if err := s.pipeline.Start(); err != nil {
		s.logger.Printf("fidgetsynth: start audio pipeline: %v", err)
	}
}

// TouchDown starts the pipeline if needed and opens the amplitude gate.
func (s *Synth) TouchDown() {
	s.mu.Lock()
	if !s.pipeline.IsRunning() {
		s.startLocked()
	}
	s.mu.Unlock()
	s.params.amplitude.Store(TouchAmplitude)
}

// TouchUp closes the amplitude gate. The pipeline keeps running so the
// next touch is heard immediately.
func (s *Synth) TouchUp() {
	s.params.amplitude.Store(0)
}

// MoveVertical sets the pitch from a drag: touchStartY picks the base
// frequency and translation (positive is upward) bends it.
func (s *Synth) MoveVertical(translation, touchStartY, screenHeight float64) {
	s.params.frequency.Store(float32(mapping.Pitch(translation, touchStartY, screenHeight)))
}

// MoveHorizontal sets filter cutoff and resonance from the touch x.
func (s *Synth) MoveHorizontal(x, screenWidth float64) {
	cutoff, resonance := mapping.Filter(x, screenWidth)
	f := s.graph.Filter()
	f.SetCutoff(float32(cutoff))
	f.SetResonance(float32(resonance))
}

// Drag reports one sample of an active touch the way a touch surface does
// on every change: the tone is (re)started, the pitch follows y and bends
// by the upward distance from startY, and the filter follows x.
func (s *Synth) Drag(startY, x, y, screenWidth, screenHeight float64) {
	s.TouchDown()
	s.MoveVertical(startY-y, y, screenHeight)
	s.MoveHorizontal(x, screenWidth)
}

// Tilt converts a device pitch angle to effect intensity.
func (s *Synth) Tilt(pitchDegrees float64) {
	s.SetEffectIntensity(mapping.TiltIntensity(pitchDegrees))
}

// SelectWaveform switches the oscillator; unknown kinds are ignored.
func (s *Synth) SelectWaveform(w Waveform) {
	if !w.Valid() {
		return
	}
	s.params.waveform.Store(int32(w))
}

// SelectEffect toggles kind: choosing the active effect turns effects off.
func (s *Synth) SelectEffect(kind EffectKind) {
	if !kind.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setEffectLocked(graph.Toggle(s.Effect(), kind))
}

// SetEffect rewires the signal path for kind. The pipeline is stopped for
// the duration, then restarted. Rewiring happens even when kind is already
// active, which also clears the stage's tail.
func (s *Synth) SetEffect(kind EffectKind) {
	if !kind.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setEffectLocked(kind)
}

func (s *Synth) setEffectLocked(kind EffectKind) {
	s.pipeline.Stop()
	s.effect.Store(int32(kind))
	if err := s.graph.Route(kind); err != nil {
		s.logger.Printf("fidgetsynth: rewire %s: %v", kind, err)
		return
	}
	s.graph.ApplyIntensity(kind, float64(s.intensity.Load()))
	s.startLocked()
}

// SetEffectIntensity updates the active effect's wet/dry mix without
// touching the pipeline. v is clamped to [0,1].
func (s *Synth) SetEffectIntensity(v float64) {
	v = mapping.Clamp(v, 0, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intensity.Store(float32(v))
	s.graph.ApplyIntensity(s.Effect(), v)
}

// SetVolume sets the master volume in [0,1].
func (s *Synth) SetVolume(v float64) {
	s.graph.Mixer().SetVolume(float32(v))
}

func (s *Synth) Frequency() float64 { return float64(s.params.frequency.Load()) }
func (s *Synth) Amplitude() float64 { return float64(s.params.amplitude.Load()) }
func (s *Synth) Waveform() Waveform { return Waveform(s.params.waveform.Load()) }
func (s *Synth) Effect() EffectKind { return EffectKind(s.effect.Load()) }
func (s *Synth) SampleRate() int    { return s.sampleRate }
func (s *Synth) Volume() float64    { return float64(s.graph.Mixer().Volume()) }

// EffectIntensity is the current intensity in [0,1].
func (s *Synth) EffectIntensity() float64 { return float64(s.intensity.Load()) }

// IntensityPercent is the intensity as shown to the user, 0 to 100.
func (s *Synth) IntensityPercent() int {
	return int(math.Round(100 * s.EffectIntensity()))
}

func (s *Synth) FilterCutoff() float64    { return float64(s.graph.Filter().Cutoff()) }
func (s *Synth) FilterResonance() float64 { return float64(s.graph.Filter().Resonance()) }

// WetDryMix reports the mix percentage of the stage for kind.
func (s *Synth) WetDryMix(kind EffectKind) float64 {
	return float64(s.graph.WetDryMix(kind))
}

func (s *Synth) PipelineRunning() bool {
	return s.pipeline.IsRunning()
}

// Route describes the current signal path, e.g. "source -> filter -> mixer".
func (s *Synth) Route() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.PathString()
}

func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.amplitude.Store(0)
	return s.pipeline.Close()
}
