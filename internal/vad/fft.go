package vad

import "math"

// rfftPower returns the power spectrum |X[k]|^2 of x for k in [0, n/2], via
// a radix-2 Cooley-Tukey FFT over the next power of two ≥ len(x) (x is
// zero-padded). No pack example ships a DSP/FFT primitive for entropy
// estimation, so this is a small hand-rolled implementation kept local to
// the VAD package.
func rfftPower(x []float32) []float64 {
	n := nextPow2(len(x))
	re := make([]float64, n)
	im := make([]float64, n)
	for i, v := range x {
		re[i] = float64(v)
	}
	fft(re, im)

	out := make([]float64, n/2+1)
	for k := 0; k <= n/2; k++ {
		out[k] = re[k]*re[k] + im[k]*im[k]
	}
	return out
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fft performs an in-place iterative radix-2 FFT on re+i*im; len(re) must be
// a power of two.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for i := 0; i < n; i += length {
			curRe, curIm := 1.0, 0.0
			for j := 0; j < length/2; j++ {
				uRe, uIm := re[i+j], im[i+j]
				vRe := re[i+j+length/2]*curRe - im[i+j+length/2]*curIm
				vIm := re[i+j+length/2]*curIm + im[i+j+length/2]*curRe
				re[i+j] = uRe + vRe
				im[i+j] = uIm + vIm
				re[i+j+length/2] = uRe - vRe
				im[i+j+length/2] = uIm - vIm
				nextRe := curRe*wRe - curIm*wIm
				nextIm := curRe*wIm + curIm*wRe
				curRe, curIm = nextRe, nextIm
			}
		}
	}
}
