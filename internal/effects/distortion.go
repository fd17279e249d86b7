package effects

import (
	"math"

	"github.com/fidgetsynth/fidgetsynth/internal/param"
)

// Distortion implements tanh waveshaping with a pre-gain in dB, a fixed
// post gain and an optional one-pole LPF, blended by the wet/dry mix.
type Distortion struct {
	wetDry
	preGainDB param.Float32
	postGain  float32
	lpfAlpha  float32
	lpf       float32

	// drive caches the linear gain for driveDB.
	driveDB float32
	drive   float32
}

// MaxPreGainDB and MinPreGainDB bound SetPreGain.
const (
	MinPreGainDB = -80
	MaxPreGainDB = 20
)

// NewDistortion creates a distortion effect.
// preGainDB: input gain in dB (higher = more distortion)
// postGain: output gain
// lpfCutoff: lowpass filter cutoff in Hz (0 = no filter)
func NewDistortion(sampleRate int, preGainDB, postGain, lpfCutoff float32) *Distortion {
	d := &Distortion{postGain: postGain, drive: 1}
	d.SetPreGain(preGainDB)
	if lpfCutoff > 0 && lpfCutoff < float32(sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(lpfCutoff))
		dt := 1.0 / float64(sampleRate)
		d.lpfAlpha = float32(dt / (rc + dt))
	}
	return d
}

// SetPreGain sets the drive in dB, clamped to [MinPreGainDB, MaxPreGainDB].
func (d *Distortion) SetPreGain(db float32) {
	d.preGainDB.Store(clamp(db, MinPreGainDB, MaxPreGainDB))
}

func (d *Distortion) PreGain() float32 {
	return d.preGainDB.Load()
}

func (d *Distortion) Process(x float32) float32 {
	if db := d.preGainDB.Load(); db != d.driveDB {
		d.driveDB = db
		d.drive = float32(math.Pow(10, float64(db)/20))
	}
	y := float32(math.Tanh(float64(x*d.drive))) * d.postGain
	if d.lpfAlpha > 0 {
		d.lpf += d.lpfAlpha * (y - d.lpf)
		y = d.lpf
	}
	return d.blend(x, y)
}

func (d *Distortion) Reset() {
	d.lpf = 0
}
