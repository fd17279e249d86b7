package audio

import (
	"fmt"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// EbitenPlayer plays through the shared ebiten audio context, which is
// always stereo float32.
type EbitenPlayer struct {
	mu     sync.Mutex
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func NewEbitenPlayer(sampleRate int, source SampleSource) (*EbitenPlayer, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, 2)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	// Short buffer so amplitude changes are heard promptly.
	pl.SetBufferSize(20 * time.Millisecond)
	return &EbitenPlayer{
		player: pl,
		reader: reader,
	}, nil
}

func (p *EbitenPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil {
		return ErrClosed
	}
	p.reader.SetRunning(true)
	p.player.Play()
	return nil
}

func (p *EbitenPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		p.player.Pause()
	}
	p.reader.SetRunning(false)
}

func (p *EbitenPlayer) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.reader.Running()
}

func (p *EbitenPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reader.SetRunning(false)
	if p.player == nil {
		return nil
	}
	p.player.Pause()
	err := p.player.Close()
	p.player = nil
	return err
}
