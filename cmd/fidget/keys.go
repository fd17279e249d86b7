package main

import (
	"fmt"

	"github.com/fidgetsynth/fidgetsynth"
	"github.com/fidgetsynth/fidgetsynth/internal/mapping"
)

type key int

const (
	keyNone key = iota
	keyUp
	keyDown
	keyLeft
	keyRight
	keyTouch
	keyTiltForward
	keyTiltBack
	keyWaveform1
	keyWaveform2
	keyWaveform3
	keyWaveform4
	keyEcho
	keyReverb
	keyDistortion
	keyEffectsOff
	keyQuit
)

// decodeKeys turns a raw-mode read into keys. Arrow keys arrive as
// ESC [ A..D.
func decodeKeys(b []byte) []key {
	var keys []key
	for i := 0; i < len(b); i++ {
		if b[i] == 0x1b {
			if i+1 < len(b) && b[i+1] == '[' {
				if i+2 < len(b) {
					switch b[i+2] {
					case 'A':
						keys = append(keys, keyUp)
					case 'B':
						keys = append(keys, keyDown)
					case 'C':
						keys = append(keys, keyRight)
					case 'D':
						keys = append(keys, keyLeft)
					}
				}
				i += 2
			}
			continue
		}
		if k := singleKeys[b[i]]; k != keyNone {
			keys = append(keys, k)
		}
	}
	return keys
}

var singleKeys = [256]key{
	'k': keyUp, 'j': keyDown, 'h': keyLeft, 'l': keyRight,
	' ':  keyTouch,
	'[':  keyTiltBack,
	']':  keyTiltForward,
	'1':  keyWaveform1,
	'2':  keyWaveform2,
	'3':  keyWaveform3,
	'4':  keyWaveform4,
	'e':  keyEcho,
	'r':  keyReverb,
	'd':  keyDistortion,
	'0':  keyEffectsOff,
	'q':  keyQuit,
	0x03: keyQuit, // ctrl-c in raw mode
}

const (
	moveStep = 20.0
	tiltStep = 5.0
)

// instrument holds a virtual finger on a virtual screen.
type instrument struct {
	synth         *fidgetsynth.Synth
	width, height float64
	x, y, startY  float64
	touching      bool
	tilt          float64
}

func newInstrument(synth *fidgetsynth.Synth, width, height float64) *instrument {
	in := &instrument{synth: synth, width: width, height: height, x: width / 2, y: height / 2}
	synth.Tilt(in.tilt)
	return in
}

// handle applies k and reports whether to keep running.
func (in *instrument) handle(k key) bool {
	switch k {
	case keyUp:
		in.move(0, -moveStep)
	case keyDown:
		in.move(0, moveStep)
	case keyLeft:
		in.move(-moveStep, 0)
	case keyRight:
		in.move(moveStep, 0)
	case keyTouch:
		if in.touching {
			in.touching = false
			in.synth.TouchUp()
		} else {
			in.touching = true
			in.startY = in.y
			in.drag()
		}
	case keyTiltForward, keyTiltBack:
		step := tiltStep
		if k == keyTiltBack {
			step = -tiltStep
		}
		in.tilt = mapping.Clamp(in.tilt+step, -90, 90)
		in.synth.Tilt(in.tilt)
	case keyWaveform1, keyWaveform2, keyWaveform3, keyWaveform4:
		in.synth.SelectWaveform(fidgetsynth.Waveforms()[k-keyWaveform1])
	case keyEcho:
		in.synth.SelectEffect(fidgetsynth.EffectEcho)
	case keyReverb:
		in.synth.SelectEffect(fidgetsynth.EffectReverb)
	case keyDistortion:
		in.synth.SelectEffect(fidgetsynth.EffectDistortion)
	case keyEffectsOff:
		in.synth.SetEffect(fidgetsynth.EffectNone)
	case keyQuit:
		if in.touching {
			in.synth.TouchUp()
		}
		return false
	}
	return true
}

func (in *instrument) move(dx, dy float64) {
	in.x = mapping.Clamp(in.x+dx, 0, in.width)
	in.y = mapping.Clamp(in.y+dy, 0, in.height)
	if in.touching {
		in.drag()
	}
}

func (in *instrument) drag() {
	in.synth.Drag(in.startY, in.x, in.y, in.width, in.height)
}

func (in *instrument) status() string {
	touch := " "
	if in.touching {
		touch = "*"
	}
	return fmt.Sprintf("%s %-8s %7.1f Hz  cutoff %7.0f Hz  %-10s %3d%%  tilt %+3.0f°",
		touch,
		in.synth.Waveform(),
		in.synth.Frequency(),
		in.synth.FilterCutoff(),
		in.synth.Effect(),
		in.synth.IntensityPercent(),
		in.tilt)
}
