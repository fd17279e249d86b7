package audio

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline is a running audio output. Start and Stop are coarse and may be
// expensive; Stop guarantees the source is no longer being rendered when it
// returns.
type Pipeline interface {
	Start() error
	Stop()
	IsRunning() bool
	Close() error
}

// Factory opens a pipeline that pulls from source at sampleRate.
type Factory func(sampleRate int, source SampleSource) (Pipeline, error)

type Backend string

const (
	BackendEbiten   Backend = "ebiten"
	BackendOto      Backend = "oto"
	BackendHeadless Backend = "headless"
)

var (
	ErrUnknownBackend = errors.New("unknown audio backend")
	ErrClosed         = errors.New("audio pipeline closed")
)

func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendEbiten, BackendOto, BackendHeadless:
		return b, nil
	}
	return "", fmt.Errorf("%w %q (expected ebiten|oto|headless)", ErrUnknownBackend, name)
}

// Factory returns the constructor for b.
func (b Backend) Factory() (Factory, error) {
	switch b {
	case BackendEbiten:
		return func(sampleRate int, source SampleSource) (Pipeline, error) {
			return NewEbitenPlayer(sampleRate, source)
		}, nil
	case BackendOto:
		return func(sampleRate int, source SampleSource) (Pipeline, error) {
			return NewOtoPlayer(sampleRate, source)
		}, nil
	case BackendHeadless:
		return func(_ int, source SampleSource) (Pipeline, error) {
			return NewHeadless(source), nil
		}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownBackend, string(b))
}
