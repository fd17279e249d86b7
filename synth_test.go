package fidgetsynth

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"testing"

	intaudio "github.com/fidgetsynth/fidgetsynth/internal/audio"
	"github.com/fidgetsynth/fidgetsynth/internal/script"
)

var _ script.Controller = (*Synth)(nil)

const (
	screenW = 400.0
	screenH = 800.0
)

func newHeadlessSynth(t *testing.T, opts ...Option) (*Synth, *intaudio.Headless) {
	t.Helper()
	s, err := New(append([]Option{WithBackend(BackendHeadless)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	h, ok := s.pipeline.(*intaudio.Headless)
	if !ok {
		t.Fatalf("pipeline is %T, want *audio.Headless", s.pipeline)
	}
	return s, h
}

// recordingPipeline logs transitions and can be told to fail on Start.
type recordingPipeline struct {
	mu       sync.Mutex
	running  bool
	startErr error
	calls    []string
	source   SampleSource
}

func (p *recordingPipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "start")
	if p.startErr != nil {
		return p.startErr
	}
	p.running = true
	return nil
}

func (p *recordingPipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "stop")
	p.running = false
}

func (p *recordingPipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *recordingPipeline) Close() error { return nil }

func (p *recordingPipeline) transitions() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.calls, ",")
}

func newRecordingSynth(t *testing.T, rp *recordingPipeline, opts ...Option) *Synth {
	t.Helper()
	factory := func(sampleRate int, src SampleSource) (Pipeline, error) {
		rp.source = src
		return rp, nil
	}
	s, err := New(append([]Option{WithPipeline(factory)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewDefaults(t *testing.T) {
	s, _ := newHeadlessSynth(t)
	if got := s.Frequency(); got != 440 {
		t.Errorf("frequency = %v, want 440", got)
	}
	if got := s.Amplitude(); got != 0 {
		t.Errorf("amplitude = %v, want 0", got)
	}
	if got := s.Waveform(); got != Sawtooth {
		t.Errorf("waveform = %v, want sawtooth", got)
	}
	if got := s.Effect(); got != EffectNone {
		t.Errorf("effect = %v, want none", got)
	}
	if got := s.FilterCutoff(); got != 20000 {
		t.Errorf("cutoff = %v, want 20000", got)
	}
	if got := s.FilterResonance(); got != 0 {
		t.Errorf("resonance = %v, want 0", got)
	}
	if !s.PipelineRunning() {
		t.Error("pipeline should start at construction")
	}
	if got := s.SampleRate(); got != DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", got, DefaultSampleRate)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		opt  Option
		want error
	}{
		{"sample rate", WithSampleRate(0), ErrInvalidSampleRate},
		{"waveform", WithWaveform(Waveform(9)), ErrUnknownWaveform},
		{"effect", WithEffect(EffectKind(-1)), ErrUnknownEffect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(WithBackend(BackendHeadless), tc.opt)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if _, err := New(WithBackend("jack")); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("unknown backend err = %v", err)
	}
	boom := errors.New("no device")
	_, err := New(WithPipeline(func(int, SampleSource) (Pipeline, error) { return nil, boom }))
	if !errors.Is(err, boom) {
		t.Fatalf("factory err = %v, want wrapped %v", err, boom)
	}
}

func TestCenterTouchScenario(t *testing.T) {
	s, _ := newHeadlessSynth(t)
	s.SelectWaveform(Sawtooth)
	s.MoveHorizontal(screenW/2, screenW)
	s.MoveVertical(0, screenH/2, screenH)
	s.TouchDown()

	if got := s.Frequency(); math.Abs(got-550) > 0.01 {
		t.Errorf("frequency = %v, want 550", got)
	}
	if got := s.Amplitude(); got != 0.5 {
		t.Errorf("amplitude = %v, want 0.5", got)
	}
	if got, want := s.FilterCutoff(), math.Sqrt(20*20000); math.Abs(got-want) > 0.5 {
		t.Errorf("cutoff = %v, want %v", got, want)
	}
	if got := s.FilterResonance(); math.Abs(got-0.35) > 1e-6 {
		t.Errorf("resonance = %v, want 0.35", got)
	}
}

func TestDragFollowsFinger(t *testing.T) {
	s, _ := newHeadlessSynth(t)
	s.Drag(screenH/2, screenW/2, screenH/2, screenW, screenH)
	if got := s.Frequency(); math.Abs(got-550) > 0.01 {
		t.Fatalf("frequency = %v, want 550", got)
	}
	if got := s.Amplitude(); got != TouchAmplitude {
		t.Fatalf("amplitude = %v, want %v", got, TouchAmplitude)
	}
	// Moving up raises both the base pitch and the bend.
	s.Drag(screenH/2, screenW/2, screenH/2-40, screenW, screenH)
	if got, want := s.Frequency(), 595*math.Pow(2, 0.08); math.Abs(got-want) > 0.01 {
		t.Fatalf("frequency = %v, want %v", got, want)
	}
	s.Drag(screenH/2, 0, screenH/2, screenW, screenH)
	if got := s.FilterCutoff(); got != 20 {
		t.Fatalf("cutoff at left edge = %v, want 20", got)
	}
}

func TestTouchUpSilencesButKeepsRunning(t *testing.T) {
	s, h := newHeadlessSynth(t, WithWaveform(Sine))
	s.MoveVertical(0, screenH/2, screenH)
	s.TouchDown()

	buf := make([]float32, 512)
	h.Pull(buf)
	if peak(buf) < 0.1 {
		t.Fatalf("touch produced peak %v, want audible tone", peak(buf))
	}

	s.TouchUp()
	if got := s.Amplitude(); got != 0 {
		t.Fatalf("amplitude = %v after touch up", got)
	}
	if !s.PipelineRunning() {
		t.Fatal("pipeline must keep running after touch up")
	}
	h.Pull(buf)
	h.Pull(buf)
	if p := peak(buf); p > 1e-3 {
		t.Fatalf("peak after touch up = %v, want silence", p)
	}
}

func TestRenderedLevelFollowsAmplitude(t *testing.T) {
	s, h := newHeadlessSynth(t, WithWaveform(Sine))
	s.TouchDown()
	buf := make([]float32, 4410)
	h.Pull(buf)
	if p := peak(buf[1000:]); p < 0.45 || p > 0.55 {
		t.Fatalf("sine peak = %v, want about 0.5", p)
	}
}

func TestEchoThenReverb(t *testing.T) {
	s, _ := newHeadlessSynth(t)
	s.SetEffectIntensity(0.8)
	s.SelectEffect(EffectEcho)
	s.SelectEffect(EffectReverb)

	if got := s.Effect(); got != EffectReverb {
		t.Fatalf("effect = %v, want reverb", got)
	}
	if got := s.WetDryMix(EffectEcho); got != 0 {
		t.Errorf("echo mix = %v, want 0", got)
	}
	if got := s.WetDryMix(EffectReverb); math.Abs(got-80) > 1e-3 {
		t.Errorf("reverb mix = %v, want 80", got)
	}
	if got, want := s.Route(), "source -> filter -> reverb -> mixer"; got != want {
		t.Errorf("route = %q, want %q", got, want)
	}
	if !s.PipelineRunning() {
		t.Error("pipeline should be running after rewiring")
	}
}

func TestSelectSameEffectTogglesOff(t *testing.T) {
	s, _ := newHeadlessSynth(t)
	s.SetEffectIntensity(1)
	s.SelectEffect(EffectEcho)
	s.SelectEffect(EffectEcho)
	if got := s.Effect(); got != EffectNone {
		t.Fatalf("effect = %v, want none", got)
	}
	if got, want := s.Route(), "source -> filter -> mixer"; got != want {
		t.Fatalf("route = %q, want %q", got, want)
	}
	for _, k := range Effects() {
		if mix := s.WetDryMix(k); mix != 0 {
			t.Errorf("%v mix = %v with effects off", k, mix)
		}
	}
}

func TestAtMostOneEffectWet(t *testing.T) {
	s, _ := newHeadlessSynth(t)
	s.SetEffectIntensity(0.6)
	for _, k := range []EffectKind{EffectDistortion, EffectEcho, EffectReverb, EffectDistortion} {
		s.SetEffect(k)
		s.Tilt(10)
		wet := 0
		for _, other := range Effects() {
			if s.WetDryMix(other) > 0 {
				wet++
				if other != k {
					t.Errorf("after selecting %v, %v is wet", k, other)
				}
			}
		}
		if wet != 1 {
			t.Errorf("after selecting %v, %d effects wet", k, wet)
		}
	}
}

func TestSetEffectStopsAndRestarts(t *testing.T) {
	rp := &recordingPipeline{}
	s := newRecordingSynth(t, rp)
	s.SetEffect(EffectEcho)
	if got, want := rp.transitions(), "start,stop,start"; got != want {
		t.Fatalf("transitions = %q, want %q", got, want)
	}
	s.SetEffectIntensity(0.3)
	s.Tilt(5)
	if got, want := rp.transitions(), "start,stop,start"; got != want {
		t.Fatalf("intensity change touched the pipeline: %q", got)
	}
	// Same kind still rewires.
	s.SetEffect(EffectEcho)
	if got, want := rp.transitions(), "start,stop,start,stop,start"; got != want {
		t.Fatalf("transitions = %q, want %q", got, want)
	}
}

func TestStartFailureIsSwallowed(t *testing.T) {
	var logs bytes.Buffer
	rp := &recordingPipeline{startErr: errors.New("device busy")}
	s := newRecordingSynth(t, rp, WithLogger(log.New(&logs, "", 0)))

	s.TouchDown()
	if got := s.Amplitude(); got != TouchAmplitude {
		t.Errorf("amplitude = %v, want %v", got, TouchAmplitude)
	}
	if s.PipelineRunning() {
		t.Error("pipeline should not be running")
	}
	if !strings.Contains(logs.String(), "device busy") {
		t.Errorf("log = %q, want start failure", logs.String())
	}

	// The next touch retries.
	rp.mu.Lock()
	rp.startErr = nil
	rp.mu.Unlock()
	s.TouchUp()
	s.TouchDown()
	if !s.PipelineRunning() {
		t.Error("retry on touch down should start the pipeline")
	}
}

func TestTiltDrivesIntensity(t *testing.T) {
	s, _ := newHeadlessSynth(t, WithEffect(EffectDistortion))
	cases := []struct {
		deg     float64
		percent int
	}{
		{0, 100},
		{22.5, 50},
		{45, 0},
		{90, 0},
		{-30, 100},
	}
	for _, tc := range cases {
		s.Tilt(tc.deg)
		if got := s.IntensityPercent(); got != tc.percent {
			t.Errorf("Tilt(%v): intensity = %d%%, want %d%%", tc.deg, got, tc.percent)
		}
	}
	s.Tilt(22.5)
	if got := s.graph.Distortion().PreGain(); math.Abs(float64(got)-10) > 1e-4 {
		t.Errorf("distortion pre-gain = %v dB, want 10", got)
	}
	if got := s.WetDryMix(EffectDistortion); math.Abs(got-50) > 1e-3 {
		t.Errorf("distortion mix = %v, want 50", got)
	}
}

func TestSetEffectIntensityClamps(t *testing.T) {
	s, _ := newHeadlessSynth(t, WithEffect(EffectEcho))
	s.SetEffectIntensity(3)
	if got := s.EffectIntensity(); got != 1 {
		t.Errorf("intensity = %v, want 1", got)
	}
	s.SetEffectIntensity(math.NaN())
	if got := s.EffectIntensity(); got != 0 {
		t.Errorf("NaN intensity = %v, want 0", got)
	}
}

func TestSelectWaveformIgnoresUnknown(t *testing.T) {
	s, _ := newHeadlessSynth(t)
	s.SelectWaveform(Triangle)
	s.SelectWaveform(Waveform(42))
	if got := s.Waveform(); got != Triangle {
		t.Fatalf("waveform = %v, want triangle", got)
	}
}

func TestVolumeClamps(t *testing.T) {
	s, _ := newHeadlessSynth(t, WithVolume(0.25))
	if got := s.Volume(); got != 0.25 {
		t.Fatalf("volume = %v, want 0.25", got)
	}
	s.SetVolume(-1)
	if got := s.Volume(); got != 0 {
		t.Fatalf("volume = %v, want 0", got)
	}
}

func TestSampleTapSeesRenderedBuffer(t *testing.T) {
	var tapped int
	s, h := newHeadlessSynth(t, WithSampleTap(func(buf []float32) { tapped += len(buf) }))
	s.TouchDown()
	h.Pull(make([]float32, 256))
	if tapped != 256 {
		t.Fatalf("tap saw %d samples, want 256", tapped)
	}
}

func TestRewireWhileRendering(t *testing.T) {
	s, h := newHeadlessSynth(t)
	s.TouchDown()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]float32, 128)
		for {
			select {
			case <-done:
				return
			default:
				h.Pull(buf)
			}
		}
	}()
	kinds := []EffectKind{EffectEcho, EffectReverb, EffectDistortion, EffectNone}
	for i := 0; i < 200; i++ {
		s.SetEffect(kinds[i%len(kinds)])
		s.Tilt(float64(i % 45))
	}
	close(done)
	wg.Wait()
	if !strings.HasSuffix(s.Route(), "-> mixer") {
		t.Fatalf("route = %q, want a complete path", s.Route())
	}
}

func TestCloseStopsPipeline(t *testing.T) {
	s, _ := newHeadlessSynth(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.PipelineRunning() {
		t.Fatal("pipeline running after Close")
	}
}

func peak(buf []float32) float64 {
	var p float64
	for _, v := range buf {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}
