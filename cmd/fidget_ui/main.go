package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/fidgetsynth/fidgetsynth"
	"github.com/fidgetsynth/fidgetsynth/internal/dots"
	"github.com/fidgetsynth/fidgetsynth/internal/mapping"
)

const (
	windowW = 480
	windowH = 800

	scopeH     = 80
	ringBufLen = 8192
	tiltStep   = 5.0
)

var (
	bgColor    = color.RGBA{14, 16, 22, 255}
	scopeColor = color.RGBA{80, 200, 255, 220}
	midColor   = color.RGBA{40, 44, 58, 100}
)

// analyzer keeps the most recent rendered samples for the scope.
type analyzer struct {
	mu       sync.Mutex
	ring     []float32
	writePos int
}

func newAnalyzer() *analyzer {
	return &analyzer{ring: make([]float32, ringBufLen)}
}

// Tap is called from the audio thread. Keep it minimal: just copy into ring.
func (a *analyzer) Tap(samples []float32) {
	a.mu.Lock()
	for _, s := range samples {
		a.ring[a.writePos] = s
		a.writePos = (a.writePos + 1) % ringBufLen
	}
	a.mu.Unlock()
}

// Snapshot copies the newest len(out) samples into out.
func (a *analyzer) Snapshot(out []float32) {
	n := min(len(out), ringBufLen)
	a.mu.Lock()
	start := (a.writePos - n + ringBufLen) % ringBufLen
	for i := 0; i < n; i++ {
		out[i] = a.ring[(start+i)%ringBufLen]
	}
	a.mu.Unlock()
}

type game struct {
	synth    *fidgetsynth.Synth
	analyzer *analyzer
	field    *dots.Field
	scope    []float32

	laziness float64
	dotSize  float32

	viewW, viewH int
	touching     bool
	startY       float64
	lastX, lastY int
	tilt         float64
}

func newGame(synth *fidgetsynth.Synth, a *analyzer, spacing, laziness, dotSize float64) *game {
	g := &game{
		synth:    synth,
		analyzer: a,
		field:    dots.NewField(windowW+20, windowH+20, spacing),
		scope:    make([]float32, 1024),
		laziness: laziness,
		dotSize:  float32(dotSize),
		viewW:    windowW,
		viewH:    windowH,
	}
	synth.Tilt(g.tilt)
	return g
}

func (g *game) Update() error {
	g.handleKeys()
	g.handlePointer()
	mx, my := ebiten.CursorPosition()
	g.field.Step(float64(mx), float64(my), g.touching,
		g.synth.Waveform().Impact(), g.laziness, g.synth.EffectIntensity())
	return nil
}

func (g *game) handlePointer() {
	mx, my := ebiten.CursorPosition()
	w, h := float64(g.viewW), float64(g.viewH)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.touching = true
		g.startY = float64(my)
		g.synth.Drag(g.startY, float64(mx), float64(my), w, h)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.touching = false
		g.synth.TouchUp()
	case g.touching && (mx != g.lastX || my != g.lastY):
		g.synth.Drag(g.startY, float64(mx), float64(my), w, h)
	}
	g.lastX, g.lastY = mx, my
}

func (g *game) handleKeys() {
	waveKeys := []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4}
	for i, k := range waveKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.synth.SelectWaveform(fidgetsynth.Waveforms()[i])
		}
	}
	effectKeys := map[ebiten.Key]fidgetsynth.EffectKind{
		ebiten.KeyE: fidgetsynth.EffectEcho,
		ebiten.KeyR: fidgetsynth.EffectReverb,
		ebiten.KeyD: fidgetsynth.EffectDistortion,
	}
	for k, effect := range effectKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.synth.SelectEffect(effect)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.Key0) {
		g.synth.SetEffect(fidgetsynth.EffectNone)
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.setTilt(g.tilt - tiltStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.setTilt(g.tilt + tiltStep)
	}
}

// setTilt treats Down as tilting the device forward, which fades the
// effect out.
func (g *game) setTilt(deg float64) {
	g.tilt = mapping.Clamp(deg, -90, 90)
	g.synth.Tilt(g.tilt)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	r := g.dotSize / 2
	for _, d := range g.field.Dots {
		vector.DrawFilledCircle(screen, float32(d.X), float32(d.Y), r, hueColor(d.Hue()), true)
	}
	g.drawScope(screen)
	msg := fmt.Sprintf("%s  %.1f Hz  cutoff %.0f Hz\n%s %d%%  tilt %+.0f\n1-4 waveform  E/R/D effect  0 off  Up/Down tilt",
		g.synth.Waveform(), g.synth.Frequency(), g.synth.FilterCutoff(),
		g.synth.Effect(), g.synth.IntensityPercent(), g.tilt)
	ebitenutil.DebugPrintAt(screen, msg, 8, 8)
}

func (g *game) drawScope(screen *ebiten.Image) {
	g.analyzer.Snapshot(g.scope)
	top := float64(g.viewH - scopeH)
	mid := top + scopeH/2
	width := g.viewW
	ebitenutil.DrawRect(screen, 0, mid, float64(width), 1, midColor)
	gain := float64(scopeH/2 - 2)
	prevY := mid - float64(g.scope[0])*gain
	for px := 1; px < width; px++ {
		si := px * len(g.scope) / width
		y := mid - float64(g.scope[si])*gain
		ebitenutil.DrawLine(screen, float64(px-1), prevY, float64(px), y, scopeColor)
		prevY = y
	}
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	if outsideW != g.viewW || outsideH != g.viewH {
		g.viewW, g.viewH = outsideW, outsideH
		g.field.Resize(float64(outsideW+20), float64(outsideH+20))
	}
	return outsideW, outsideH
}

// hueColor converts a hue in [0,1) at full saturation and brightness.
func hueColor(h float64) color.RGBA {
	h = (h - math.Floor(h)) * 6
	x := uint8(255 * (1 - math.Abs(math.Mod(h, 2)-1)))
	switch int(h) {
	case 0:
		return color.RGBA{255, x, 0, 255}
	case 1:
		return color.RGBA{x, 255, 0, 255}
	case 2:
		return color.RGBA{0, 255, x, 255}
	case 3:
		return color.RGBA{0, x, 255, 255}
	case 4:
		return color.RGBA{x, 0, 255, 255}
	default:
		return color.RGBA{255, 0, x, 255}
	}
}

func main() {
	var (
		backendName  = flag.String("backend", "ebiten", "audio backend: ebiten|headless")
		sampleRate   = flag.Int("sample-rate", fidgetsynth.DefaultSampleRate, "output sample rate")
		waveformName = flag.String("waveform", "sine", "waveform: sine|triangle|square|sawtooth")
		effectName   = flag.String("effect", "echo", "effect: none|echo|reverb|distortion")
		volume       = flag.Float64("volume", 1.0, "master volume (0..1)")
		spacing      = flag.Float64("spacing", dots.DefaultSpacing, "dot spacing in px")
		laziness     = flag.Float64("laziness", dots.DefaultLaziness, "dot laziness (0..100)")
		dotSize      = flag.Float64("dot-size", dots.DefaultDotSize, "dot diameter in px")
	)
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	backend, err := fidgetsynth.ParseBackend(*backendName)
	if err != nil {
		log.Fatal(err)
	}
	if backend == fidgetsynth.BackendOto {
		// ebiten owns the only oto context in this process.
		log.Fatal("the oto backend cannot run alongside the ebiten window; use -backend=ebiten")
	}
	waveform, err := fidgetsynth.ParseWaveform(*waveformName)
	if err != nil {
		log.Fatal(err)
	}
	effect, err := fidgetsynth.ParseEffect(*effectName)
	if err != nil {
		log.Fatal(err)
	}

	a := newAnalyzer()
	synth, err := fidgetsynth.New(
		fidgetsynth.WithSampleRate(*sampleRate),
		fidgetsynth.WithBackend(backend),
		fidgetsynth.WithWaveform(waveform),
		fidgetsynth.WithEffect(effect),
		fidgetsynth.WithVolume(*volume),
		fidgetsynth.WithSampleTap(a.Tap),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer synth.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("fidget")
	if err := ebiten.RunGame(newGame(synth, a, *spacing, *laziness, *dotSize)); err != nil {
		log.Fatal(err)
	}
}
