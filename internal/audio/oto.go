package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer plays mono float32 straight through oto, without ebiten.
// oto allows a single context per process, so it cannot share a process
// with EbitenPlayer.
type OtoPlayer struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	reader *StreamReader
}

var (
	otoContextOnce sync.Once
	otoContext     *oto.Context
	otoContextErr  error
	otoSampleRate  int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoContextOnce.Do(func() {
		otoSampleRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoContextErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoContextErr != nil {
		return nil, otoContextErr
	}
	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoSampleRate, sampleRate)
	}
	return otoContext, nil
}

func NewOtoPlayer(sampleRate int, source SampleSource) (*OtoPlayer, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, 1)
	return &OtoPlayer{
		ctx:    ctx,
		player: ctx.NewPlayer(reader),
		reader: reader,
	}, nil
}

func (p *OtoPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil {
		return ErrClosed
	}
	if err := p.ctx.Err(); err != nil {
		return err
	}
	p.reader.SetRunning(true)
	p.player.Play()
	return nil
}

func (p *OtoPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		p.player.Pause()
	}
	p.reader.SetRunning(false)
}

func (p *OtoPlayer) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.reader.Running()
}

func (p *OtoPlayer) Close() error {
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
