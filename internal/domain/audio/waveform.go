// Package audio turns uploaded audio byte streams into mono floating-point
// waveforms. Decoding runs through an ordered list of strategies; the first
// one that parses the container wins.
package audio

import (
	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// Waveform is a decoded mono signal. Samples are in [-1, 1].
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Validate checks the invariants every downstream stage relies on.
func (w *Waveform) Validate() error {
	if len(w.Samples) == 0 {
		return platformerrors.New(platformerrors.KindDecode,
			"waveform validate", "waveform has no samples")
	}
	if w.SampleRate <= 0 {
		return platformerrors.New(platformerrors.KindDecode,
			"waveform validate", "waveform has no sample rate")
	}
	return nil
}

// downmix averages interleaved multi-channel samples into a single mono
// channel. Arithmetic mean, not an energy-weighted perceptual downmix.
func downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
