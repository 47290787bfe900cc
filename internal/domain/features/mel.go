package features

import "math"

// Slaney mel scale: linear below 1 kHz, logarithmic above. This is the
// variant the training pipeline used, so the filterbank must reproduce it
// bin-for-bin.
const (
	melLinearStep = 200.0 / 3.0
	melLogCutHz   = 1000.0
	melLogCutMel  = melLogCutHz / melLinearStep
)

var melLogStep = math.Log(6.4) / 27.0

func hzToMel(hz float64) float64 {
	if hz < melLogCutHz {
		return hz / melLinearStep
	}
	return melLogCutMel + math.Log(hz/melLogCutHz)/melLogStep
}

func melToHz(mel float64) float64 {
	if mel < melLogCutMel {
		return mel * melLinearStep
	}
	return melLogCutHz * math.Exp(melLogStep*(mel-melLogCutMel))
}

// melFilterbank builds nMels triangular filters over the nFFT/2+1 power
// spectrum bins, with Slaney area normalization (each filter scaled by
// 2 / bandwidth so filter energy is roughly constant per band).
func melFilterbank(p Params) [][]float64 {
	nBins := p.NFFT/2 + 1

	// band edges: nMels+2 points equally spaced on the mel scale
	melMin := hzToMel(p.FMin)
	melMax := hzToMel(p.FMax)
	edges := make([]float64, p.NMels+2)
	for i := range edges {
		mel := melMin + (melMax-melMin)*float64(i)/float64(p.NMels+1)
		edges[i] = melToHz(mel)
	}

	// center frequency of each FFT bin
	binHz := make([]float64, nBins)
	for k := range binHz {
		binHz[k] = float64(k) * float64(p.SampleRate) / float64(p.NFFT)
	}

	bank := make([][]float64, p.NMels)
	for m := 0; m < p.NMels; m++ {
		lower, center, upper := edges[m], edges[m+1], edges[m+2]
		norm := 2.0 / (upper - lower)

		row := make([]float64, nBins)
		for k, hz := range binHz {
			rising := (hz - lower) / (center - lower)
			falling := (upper - hz) / (upper - center)
			w := math.Min(rising, falling)
			if w > 0 {
				row[k] = w * norm
			}
		}
		bank[m] = row
	}
	return bank
}
