package features

import (
	"math"
	"testing"
)

func TestMelScale_RoundTrip(t *testing.T) {
	for _, hz := range []float64{50, 200, 999, 1000, 1001, 4000, 8000} {
		mel := hzToMel(hz)
		back := melToHz(mel)
		if math.Abs(back-hz) > 1e-6 {
			t.Errorf("round trip %g Hz -> %g mel -> %g Hz", hz, mel, back)
		}
	}
}

func TestMelScale_LinearBelowCut(t *testing.T) {
	// below 1 kHz the scale is linear: doubling Hz doubles mel
	if math.Abs(hzToMel(400)-2*hzToMel(200)) > 1e-9 {
		t.Error("mel scale should be linear below 1 kHz")
	}
	// above the cut it grows slower than linear
	if hzToMel(4000) >= 4*hzToMel(1000) {
		t.Error("mel scale should compress above 1 kHz")
	}
}

func TestMelFilterbank_Shape(t *testing.T) {
	p := trainingParams()
	bank := melFilterbank(p)

	if len(bank) != p.NMels {
		t.Fatalf("filter count = %d, want %d", len(bank), p.NMels)
	}
	for m, row := range bank {
		if len(row) != p.NFFT/2+1 {
			t.Fatalf("filter %d has %d bins, want %d", m, len(row), p.NFFT/2+1)
		}
	}
}

func TestMelFilterbank_RespectsFrequencyBounds(t *testing.T) {
	p := trainingParams()
	bank := melFilterbank(p)

	binHz := func(k int) float64 {
		return float64(k) * float64(p.SampleRate) / float64(p.NFFT)
	}

	for m, row := range bank {
		nonzero := 0
		for k, w := range row {
			if w < 0 {
				t.Fatalf("negative filter weight at (%d, %d)", m, k)
			}
			if w > 0 {
				nonzero++
				hz := binHz(k)
				if hz < p.FMin || hz > p.FMax {
					t.Fatalf("filter %d has weight at %g Hz, outside [%g, %g]",
						m, hz, p.FMin, p.FMax)
				}
			}
		}
		if nonzero == 0 {
			t.Errorf("filter %d is empty", m)
		}
	}
}

func TestResampleLinear(t *testing.T) {
	in := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	same := resampleLinear(in, 16000, 16000)
	if &same[0] != &in[0] {
		t.Error("equal rates should pass through")
	}

	half := resampleLinear(in, 16000, 8000)
	if len(half) != 4 {
		t.Fatalf("2:1 downsample length = %d, want 4", len(half))
	}
	// on a linear ramp every interpolated value is exact
	for i, v := range half {
		if math.Abs(v-float64(2*i)) > 1e-9 {
			t.Errorf("half[%d] = %g, want %d", i, v, 2*i)
		}
	}

	double := resampleLinear(in, 8000, 16000)
	if len(double) != 16 {
		t.Fatalf("1:2 upsample length = %d, want 16", len(double))
	}
	if math.Abs(double[3]-1.5) > 1e-9 {
		t.Errorf("double[3] = %g, want 1.5", double[3])
	}
}
