package features

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"hypernasality-server-go/internal/domain/audio"
	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// aminPower is the floor applied before taking logarithms, matching the
// training pipeline's power-to-dB conversion.
const aminPower = 1e-10

// FrameSet is the fixed-shape normalized mel spectrogram. Values is indexed
// [mel band][time frame] and every cell is in [0, 1].
type FrameSet struct {
	Values [][]float64
}

// Shape returns (mel bands, time frames).
func (f *FrameSet) Shape() (int, int) {
	if len(f.Values) == 0 {
		return 0, 0
	}
	return len(f.Values), len(f.Values[0])
}

// Extractor computes fixed-shape mel spectrograms. The window, filterbank
// and FFT plan are built once and shared read-only across requests.
type Extractor struct {
	params  Params
	fft     *fourier.FFT
	window  []float64
	melBank [][]float64
}

func NewExtractor(p Params) (*Extractor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// periodic Hann window, as used when the weights were produced
	window := make([]float64, p.NFFT)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(p.NFFT))
	}

	return &Extractor{
		params:  p,
		fft:     fourier.NewFFT(p.NFFT),
		window:  window,
		melBank: melFilterbank(p),
	}, nil
}

func (e *Extractor) Params() Params {
	return e.params
}

// Extract produces the (NMels, FrameCount) normalized frame set for a
// waveform. Input length never changes the output shape: short signals are
// zero-padded, long ones are truncated to the fixed duration.
func (e *Extractor) Extract(w *audio.Waveform) (*FrameSet, error) {
	if w == nil || len(w.Samples) == 0 {
		return nil, platformerrors.New(platformerrors.KindFeature,
			"feature extract", "empty waveform")
	}
	if w.SampleRate <= 0 {
		return nil, platformerrors.New(platformerrors.KindFeature,
			"feature extract", fmt.Sprintf("invalid sample rate %d", w.SampleRate))
	}

	samples := resampleLinear(w.Samples, w.SampleRate, e.params.SampleRate)
	samples = fixLength(samples, e.params.TargetSamples())

	power := e.powerSpectrogram(samples)
	mel := e.applyMelBank(power)
	toDB(mel, e.params.MinDB)
	normalizeInPlace(mel, e.params.MinDB, e.params.MaxDB)

	return &FrameSet{Values: mel}, nil
}

// fixLength pads with trailing zeros or truncates to exactly target samples.
func fixLength(samples []float64, target int) []float64 {
	if len(samples) == target {
		return samples
	}
	out := make([]float64, target)
	copy(out, samples)
	return out
}

// powerSpectrogram runs the centered short-time transform: the signal is
// zero-padded by NFFT/2 on each side so frame t is centered on sample
// t*HopLength, then windowed and transformed per frame. Returns
// [NFFT/2+1 bins][frames] power values.
func (e *Extractor) powerSpectrogram(samples []float64) [][]float64 {
	p := e.params
	half := p.NFFT / 2

	padded := make([]float64, half+len(samples)+half)
	copy(padded[half:], samples)

	nFrames := (len(padded)-p.NFFT)/p.HopLength + 1
	nBins := p.NFFT/2 + 1

	power := make([][]float64, nBins)
	for k := range power {
		power[k] = make([]float64, nFrames)
	}

	frame := make([]float64, p.NFFT)
	coeffs := make([]complex128, nBins)
	for t := 0; t < nFrames; t++ {
		start := t * p.HopLength
		for i := range frame {
			frame[i] = padded[start+i] * e.window[i]
		}
		coeffs = e.fft.Coefficients(coeffs, frame)
		for k := 0; k < nBins; k++ {
			mag := cmplx.Abs(coeffs[k])
			power[k][t] = mag * mag
		}
	}
	return power
}

// applyMelBank projects the power spectrogram onto the mel filterbank,
// producing [NMels][frames].
func (e *Extractor) applyMelBank(power [][]float64) [][]float64 {
	nFrames := len(power[0])
	mel := make([][]float64, e.params.NMels)
	for m := range mel {
		row := make([]float64, nFrames)
		bank := e.melBank[m]
		for k, weight := range bank {
			if weight == 0 {
				continue
			}
			bins := power[k]
			for t := 0; t < nFrames; t++ {
				row[t] += weight * bins[t]
			}
		}
		mel[m] = row
	}
	return mel
}

// toDB converts power values in place to decibels relative to the maximum
// power in the set. A set whose maximum is at the amin floor carries no
// signal at all; it is pinned to minDB so silence lands on the noise floor
// instead of a degenerate 0 dB reference.
func toDB(mel [][]float64, minDB float64) {
	ref := 0.0
	for _, row := range mel {
		for _, v := range row {
			if v > ref {
				ref = v
			}
		}
	}

	if ref <= aminPower {
		for _, row := range mel {
			for t := range row {
				row[t] = minDB
			}
		}
		return
	}

	logRef := 10 * math.Log10(ref)
	for _, row := range mel {
		for t, v := range row {
			if v < aminPower {
				v = aminPower
			}
			row[t] = 10*math.Log10(v) - logRef
		}
	}
}

// normalizeInPlace maps [minDB, maxDB] linearly onto [0, 1] and clamps
// everything outside the assumed operating range.
func normalizeInPlace(mel [][]float64, minDB, maxDB float64) {
	span := maxDB - minDB
	for _, row := range mel {
		for t, v := range row {
			n := (v - minDB) / span
			if n < 0 {
				n = 0
			} else if n > 1 {
				n = 1
			}
			row[t] = n
		}
	}
}
