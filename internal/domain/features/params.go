// Package features turns a mono waveform into the fixed-shape, normalized
// mel-spectrogram the classifier was trained on. Every constant here is part
// of the training contract: changing one without retraining silently degrades
// accuracy, which is why bootstrap self-checks them before serving.
package features

import (
	"fmt"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// Params are the fixed transform constants shared between training and
// inference.
type Params struct {
	SampleRate      int
	NFFT            int
	HopLength       int
	NMels           int
	FMin            float64
	FMax            float64
	DurationSeconds int
	MinDB           float64
	MaxDB           float64
}

// TargetSamples is the fixed sample count every waveform is padded or
// truncated to before the transform.
func (p Params) TargetSamples() int {
	return p.SampleRate * p.DurationSeconds
}

// FrameCount is the time resolution of the output. With the centered
// transform (NFFT/2 padding on each side) it is 1 + TargetSamples/HopLength.
func (p Params) FrameCount() int {
	return 1 + p.TargetSamples()/p.HopLength
}

// Validate rejects parameter sets that cannot produce a well-formed frame set.
func (p Params) Validate() error {
	switch {
	case p.SampleRate <= 0:
		return paramErr("sample rate must be positive, got %d", p.SampleRate)
	case p.NFFT <= 0:
		return paramErr("FFT window must be positive, got %d", p.NFFT)
	case p.HopLength <= 0:
		return paramErr("hop length must be positive, got %d", p.HopLength)
	case p.NMels <= 0:
		return paramErr("mel band count must be positive, got %d", p.NMels)
	case p.FMin < 0 || p.FMax <= p.FMin:
		return paramErr("invalid frequency bounds [%g, %g]", p.FMin, p.FMax)
	case p.FMax > float64(p.SampleRate)/2:
		return paramErr("max frequency %g exceeds Nyquist for %d Hz", p.FMax, p.SampleRate)
	case p.DurationSeconds <= 0:
		return paramErr("duration must be positive, got %d", p.DurationSeconds)
	case p.MaxDB <= p.MinDB:
		return paramErr("invalid dB range [%g, %g]", p.MinDB, p.MaxDB)
	case p.TargetSamples() < p.NFFT:
		return paramErr("fixed duration shorter than one FFT window")
	}
	return nil
}

func paramErr(format string, args ...any) error {
	return platformerrors.New(platformerrors.KindFeature,
		"params validate", fmt.Sprintf(format, args...))
}
