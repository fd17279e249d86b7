package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/fidgetsynth/fidgetsynth"
	"github.com/fidgetsynth/fidgetsynth/internal/script"
)

var errQuit = errors.New("quit")

func main() {
	var (
		backendName  = flag.String("backend", "oto", "audio backend: ebiten|oto|headless")
		sampleRate   = flag.Int("sample-rate", fidgetsynth.DefaultSampleRate, "output sample rate")
		waveformName = flag.String("waveform", "sine", "waveform: sine|triangle|square|sawtooth")
		effectName   = flag.String("effect", "echo", "effect: none|echo|reverb|distortion")
		volume       = flag.Float64("volume", 1.0, "master volume (0..1)")
		scriptPath   = flag.String("script", "", "run a Lua gesture script instead of the keyboard")
		width        = flag.Float64("width", script.DefaultWidth, "virtual screen width in px")
		height       = flag.Float64("height", script.DefaultHeight, "virtual screen height in px")
	)
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	backend, err := fidgetsynth.ParseBackend(*backendName)
	if err != nil {
		log.Fatal(err)
	}
	waveform, err := fidgetsynth.ParseWaveform(*waveformName)
	if err != nil {
		log.Fatal(err)
	}
	effect, err := fidgetsynth.ParseEffect(*effectName)
	if err != nil {
		log.Fatal(err)
	}
	synth, err := fidgetsynth.New(
		fidgetsynth.WithSampleRate(*sampleRate),
		fidgetsynth.WithBackend(backend),
		fidgetsynth.WithWaveform(waveform),
		fidgetsynth.WithEffect(effect),
		fidgetsynth.WithVolume(*volume),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer synth.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *scriptPath != "" {
		runner := script.New(synth, script.WithScreen(*width, *height))
		if err := runner.RunFile(ctx, *scriptPath); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal(err)
		}
		return
	}

	if err := play(ctx, synth, *width, *height); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

// play runs the interactive keyboard instrument until quit or signal.
func play(ctx context.Context, synth *fidgetsynth.Synth, width, height float64) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal; use -script to drive the synth")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Print(helpText)
	in := newInstrument(synth, width, height)

	g, ctx := errgroup.WithContext(ctx)

	// Blocking stdin reads cannot be interrupted, so the reader lives
	// outside the group and is abandoned at exit.
	input := make(chan []byte)
	go func() {
		buf := make([]byte, 16)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(input)
				return
			}
			b := append([]byte(nil), buf[:n]...)
			select {
			case input <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case b, ok := <-input:
				if !ok {
					return errQuit
				}
				for _, k := range decodeKeys(b) {
					if !in.handle(k) {
						return errQuit
					}
				}
			}
		}
	})
	g.Go(func() error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fmt.Print("\r\n")
				return ctx.Err()
			case <-ticker.C:
				fmt.Printf("\r%-78s", in.status())
			}
		}
	})
	return g.Wait()
}

const helpText = "fidget: arrows/hjkl move  space touch  1-4 waveform  e/r/d effect  0 off  [ ] tilt  q quit\r\n"
