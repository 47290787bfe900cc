package features

// resampleLinear converts a signal between sample rates by linear
// interpolation. Vowel recordings are narrowband relative to either rate, so
// interpolation error is negligible next to the transform's own quantization.
func resampleLinear(in []float64, from, to int) []float64 {
	if from == to || len(in) == 0 {
		return in
	}

	outLen := int(float64(len(in)) * float64(to) / float64(from))
	if outLen == 0 {
		outLen = 1
	}
	out := make([]float64, outLen)
	step := float64(from) / float64(to)

	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}
