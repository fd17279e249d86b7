// Package script drives a synth from Lua gesture scripts.
//
//	screen(390, 844)
//	waveform("square")
//	effect("echo")
//	touch_down(195, 422)
//	for i = 1, 20 do drag(0, -10); sleep(25) end
//	tilt(10)
//	log(string.format("%.1f Hz, %d%%", frequency(), intensity()))
//	touch_up()
package script

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/fidgetsynth/fidgetsynth/internal/graph"
	"github.com/fidgetsynth/fidgetsynth/internal/osc"
)

// Controller is the synth surface a script can reach.
type Controller interface {
	TouchDown()
	TouchUp()
	MoveVertical(translation, touchStartY, screenHeight float64)
	MoveHorizontal(x, screenWidth float64)
	Tilt(pitchDegrees float64)
	SelectWaveform(w osc.Waveform)
	SelectEffect(kind graph.EffectKind)
	SetEffect(kind graph.EffectKind)
	Frequency() float64
	IntensityPercent() int
	Effect() graph.EffectKind
}

const (
	DefaultWidth  = 390.0
	DefaultHeight = 844.0
)

type Option func(*Runner)

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithScreen(width, height float64) Option {
	return func(r *Runner) {
		r.width, r.height = width, height
	}
}

// WithSleep replaces the wall-clock sleep used by sleep(ms).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// Runner executes scripts against a Controller. A Runner keeps the touch
// state between runs and is not safe for concurrent use.
type Runner struct {
	ctrl          Controller
	logger        *log.Logger
	sleep         func(ctx context.Context, d time.Duration) error
	width, height float64

	touching       bool
	startY         float64
	touchX, touchY float64
}

func New(ctrl Controller, opts ...Option) *Runner {
	r := &Runner{
		ctrl:   ctrl,
		logger: log.Default(),
		sleep:  sleepContext,
		width:  DefaultWidth,
		height: DefaultHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RunFile runs the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.Run(ctx, path, string(src))
}

// Run executes src. name labels error positions. A touch left down when
// the script ends or fails is released.
func (r *Runner) Run(ctx context.Context, name, src string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	r.register(L)
	defer r.release()

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (r *Runner) release() {
	if r.touching {
		r.touching = false
		r.ctrl.TouchUp()
	}
}

func (r *Runner) register(L *lua.LState) {
	fns := map[string]lua.LGFunction{
		"screen":         r.luaScreen,
		"touch_down":     r.luaTouchDown,
		"drag":           r.luaDrag,
		"touch_up":       r.luaTouchUp,
		"tilt":           r.luaTilt,
		"waveform":       r.luaWaveform,
		"effect":         r.luaEffect,
		"set_effect":     r.luaSetEffect,
		"sleep":          r.luaSleep,
		"frequency":      r.luaFrequency,
		"intensity":      r.luaIntensity,
		"current_effect": r.luaCurrentEffect,
		"log":            r.luaLog,
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

func (r *Runner) luaScreen(L *lua.LState) int {
	w, h := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
	if w <= 0 || h <= 0 {
		L.RaiseError("screen size must be positive, got %gx%g", w, h)
	}
	r.width, r.height = w, h
	return 0
}

func (r *Runner) luaTouchDown(L *lua.LState) int {
	x, y := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
	r.touching = true
	r.startY = y
	r.touchX, r.touchY = x, y
	r.apply()
	return 0
}

func (r *Runner) luaDrag(L *lua.LState) int {
	dx, dy := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
	if !r.touching {
		L.RaiseError("drag without touch_down")
	}
	r.touchX += dx
	r.touchY += dy
	r.apply()
	return 0
}

// apply reports the current touch the way a touch surface does on every
// change: the tone is (re)started, pitch bends by the upward distance
// from the start point and the filter follows x.
func (r *Runner) apply() {
	r.ctrl.TouchDown()
	r.ctrl.MoveVertical(r.startY-r.touchY, r.touchY, r.height)
	r.ctrl.MoveHorizontal(r.touchX, r.width)
}

func (r *Runner) luaTouchUp(L *lua.LState) int {
	r.touching = false
	r.ctrl.TouchUp()
	return 0
}

func (r *Runner) luaTilt(L *lua.LState) int {
	r.ctrl.Tilt(float64(L.CheckNumber(1)))
	return 0
}

func (r *Runner) luaWaveform(L *lua.LState) int {
	w, err := osc.ParseWaveform(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	r.ctrl.SelectWaveform(w)
	return 0
}

func (r *Runner) luaEffect(L *lua.LState) int {
	r.ctrl.SelectEffect(checkEffect(L, 1))
	return 0
}

func (r *Runner) luaSetEffect(L *lua.LState) int {
	r.ctrl.SetEffect(checkEffect(L, 1))
	return 0
}

func checkEffect(L *lua.LState, n int) graph.EffectKind {
	k, err := graph.ParseEffect(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return k
}

func (r *Runner) luaSleep(L *lua.LState) int {
	ms := float64(L.CheckNumber(1))
	if ms <= 0 {
		return 0
	}
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.sleep(ctx, time.Duration(ms*float64(time.Millisecond))); err != nil {
		L.RaiseError("sleep: %v", err)
	}
	return 0
}

func (r *Runner) luaFrequency(L *lua.LState) int {
	L.Push(lua.LNumber(r.ctrl.Frequency()))
	return 1
}

func (r *Runner) luaIntensity(L *lua.LState) int {
	L.Push(lua.LNumber(r.ctrl.IntensityPercent()))
	return 1
}

func (r *Runner) luaCurrentEffect(L *lua.LState) int {
	L.Push(lua.LString(r.ctrl.Effect().String()))
	return 1
}

func (r *Runner) luaLog(L *lua.LState) int {
	top := L.GetTop()
	args := make([]any, 0, top)
	for i := 1; i <= top; i++ {
		args = append(args, L.ToStringMeta(L.Get(i)).String())
	}
	r.logger.Println(args...)
	return 0
}
