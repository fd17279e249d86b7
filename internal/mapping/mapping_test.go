package mapping

import (
	"math"
	"testing"
)

const (
	screenW = 1024.0
	screenH = 768.0
)

func TestPitchCentreIsMidpoint(t *testing.T) {
	got := Pitch(0, screenH/2, screenH)
	if math.Abs(got-550) > 1e-9 {
		t.Fatalf("centre pitch = %v, want 550", got)
	}
}

func TestPitchEdges(t *testing.T) {
	if got := Pitch(0, 0, screenH); got != MaxFrequency {
		t.Errorf("top edge = %v, want %v", got, MaxFrequency)
	}
	if got := Pitch(0, screenH, screenH); got != MinFrequency {
		t.Errorf("bottom edge = %v, want %v", got, MinFrequency)
	}
}

func TestPitchOctavePerFiveHundredPixels(t *testing.T) {
	// sensitivity 2 octaves per 1000 px.
	base := Pitch(0, screenH*0.75, screenH)
	up := Pitch(500, screenH*0.75, screenH)
	if math.Abs(up-2*base) > 1e-9 {
		t.Fatalf("500 px up: %v, want %v", up, 2*base)
	}
}

func TestPitchMonotonicInStartY(t *testing.T) {
	prev := math.Inf(1)
	for y := 0.0; y <= screenH; y += 8 {
		f := Pitch(0, y, screenH)
		if f > prev {
			t.Fatalf("pitch rose moving down the screen at y=%v: %v > %v", y, f, prev)
		}
		prev = f
	}
}

func TestPitchMonotonicInTranslation(t *testing.T) {
	for _, y := range []float64{100, 384, 700} {
		prev := 0.0
		for dy := -1000.0; dy <= 1000; dy += 25 {
			f := Pitch(dy, y, screenH)
			if f < prev {
				t.Fatalf("y=%v: pitch fell for upward drag %v", y, dy)
			}
			prev = f
		}
		if Pitch(50, y, screenH) < Pitch(0, y, screenH) || Pitch(-50, y, screenH) > Pitch(0, y, screenH) {
			t.Errorf("y=%v: drag direction has the wrong sign", y)
		}
	}
}

func TestPitchAlwaysInRange(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	inputs := [][3]float64{
		{1e9, 0, screenH},
		{-1e9, screenH, screenH},
		{0, -500, screenH},
		{0, 5000, screenH},
		{0, 100, -768},
		{0, 100, 0},
		{nan, 100, screenH},
		{inf, 100, screenH},
		{0, nan, screenH},
		{0, 100, inf},
		{-inf, inf, nan},
	}
	for _, in := range inputs {
		f := Pitch(in[0], in[1], in[2])
		if math.IsNaN(f) || f < MinFrequency || f > MaxFrequency {
			t.Errorf("Pitch%v = %v, out of range", in, f)
		}
	}
}

func TestFilterEndpoints(t *testing.T) {
	c, r := Filter(0, screenW)
	if math.Abs(c-20) > 1e-6 || math.Abs(r-0.7) > 1e-12 {
		t.Errorf("left edge = (%v, %v), want (20, 0.7)", c, r)
	}
	c, r = Filter(screenW, screenW)
	if math.Abs(c-20000) > 1e-6 || r != 0 {
		t.Errorf("right edge = (%v, %v), want (20000, 0)", c, r)
	}
	c, _ = Filter(screenW/2, screenW)
	if want := math.Sqrt(20 * 20000); math.Abs(c-want) > 1e-6 {
		t.Errorf("centre cutoff = %v, want %v", c, want)
	}
}

func TestFilterMonotonic(t *testing.T) {
	prevC, prevR := 0.0, math.Inf(1)
	for x := 0.0; x <= screenW; x += 4 {
		c, r := Filter(x, screenW)
		if c < prevC {
			t.Fatalf("cutoff fell at x=%v", x)
		}
		if r > prevR {
			t.Fatalf("resonance rose at x=%v", x)
		}
		prevC, prevR = c, r
	}
}

func TestFilterMalformedInputStaysInRange(t *testing.T) {
	for _, in := range [][2]float64{{-50, screenW}, {5000, screenW}, {10, -1}, {10, 0}, {math.NaN(), screenW}, {10, math.Inf(1)}} {
		c, r := Filter(in[0], in[1])
		if math.IsNaN(c) || c < MinCutoff || c > MaxCutoff {
			t.Errorf("Filter%v cutoff = %v", in, c)
		}
		if math.IsNaN(r) || r < 0 || r > 1 {
			t.Errorf("Filter%v resonance = %v", in, r)
		}
	}
}

func TestTiltIntensity(t *testing.T) {
	cases := []struct {
		deg, want float64
	}{
		{0, 1},
		{-30, 1},
		{22.5, 0.5},
		{45, 0},
		{90, 0},
		{math.NaN(), 1},
		{math.Inf(1), 0},
		{math.Inf(-1), 1},
	}
	for _, tc := range cases {
		if got := TiltIntensity(tc.deg); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("TiltIntensity(%v) = %v, want %v", tc.deg, got, tc.want)
		}
	}
	prev := math.Inf(1)
	for d := 0.0; d <= 45; d += 0.5 {
		v := TiltIntensity(d)
		if v > prev {
			t.Fatalf("intensity rose at %v degrees", d)
		}
		prev = v
	}
}

func TestClamp(t *testing.T) {
	if Clamp(math.NaN(), 1, 2) != 1 {
		t.Error("NaN should clamp to lo")
	}
	if Clamp(3, 1, 2) != 2 || Clamp(0, 1, 2) != 1 || Clamp(1.5, 1, 2) != 1.5 {
		t.Error("Clamp bounds wrong")
	}
}
