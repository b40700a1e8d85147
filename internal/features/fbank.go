package features

import "math"

// FbankConfig mirrors the frontend parameters the reference embeddings were
// trained against: 25ms/10ms framing, a Hamming window, and an 80-bin
// mel filterbank over a 16kHz signal.
type FbankConfig struct {
	SampleRate     float64
	NumMelBins     int
	FrameLengthMs  float64
	FrameShiftMs   float64
}

// DefaultFbankConfig returns the SenseVoice-style frontend parameters.
func DefaultFbankConfig() FbankConfig {
	return FbankConfig{SampleRate: 16000, NumMelBins: 80, FrameLengthMs: 25, FrameShiftMs: 10}
}

// Fbank extracts log-mel filterbank energies: one row of NumMelBins per
// frame. No example in the reference pack ships a fbank/mel-filterbank
// primitive, so this is a compact hand-rolled implementation local to the
// features package.
func Fbank(samples []float32, cfg FbankConfig) [][]float32 {
	frameLen := int(cfg.FrameLengthMs / 1000 * cfg.SampleRate)
	frameShift := int(cfg.FrameShiftMs / 1000 * cfg.SampleRate)
	if frameLen < 1 || frameShift < 1 || len(samples) < frameLen {
		return nil
	}

	window := hammingWindow(frameLen)
	melFilters := melFilterbank(cfg.NumMelBins, nextPow2(frameLen), cfg.SampleRate)

	numFrames := (len(samples)-frameLen)/frameShift + 1
	out := make([][]float32, numFrames)

	for f := 0; f < numFrames; f++ {
		start := f * frameShift
		frame := make([]float64, nextPow2(frameLen))
		for i := 0; i < frameLen; i++ {
			frame[i] = float64(samples[start+i]) * window[i]
		}
		im := make([]float64, len(frame))
		fftInPlace(frame, im)

		power := make([]float64, len(frame)/2+1)
		for k := range power {
			power[k] = frame[k]*frame[k] + im[k]*im[k]
		}

		row := make([]float32, cfg.NumMelBins)
		for m := 0; m < cfg.NumMelBins; m++ {
			var energy float64
			for k, w := range melFilters[m] {
				energy += power[k] * w
			}
			if energy < 1e-10 {
				energy = 1e-10
			}
			row[m] = float32(math.Log(energy))
		}
		out[f] = row
	}
	return out
}

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// melFilterbank builds a triangular mel filterbank over numBins mel bands
// spanning the spectrum of an fftSize-point FFT at sampleRate.
func melFilterbank(numBins, fftSize int, sampleRate float64) [][]float64 {
	toMel := func(hz float64) float64 { return 2595 * math.Log10(1+hz/700) }
	toHz := func(mel float64) float64 { return 700 * (math.Pow(10, mel/2595) - 1) }

	lowMel, highMel := toMel(0), toMel(sampleRate/2)
	points := make([]float64, numBins+2)
	for i := range points {
		points[i] = toHz(lowMel + (highMel-lowMel)*float64(i)/float64(numBins+1))
	}

	bins := make([]int, len(points))
	for i, hz := range points {
		bins[i] = int(math.Floor((float64(fftSize) + 1) * hz / sampleRate))
	}

	nBinsFFT := fftSize/2 + 1
	filters := make([][]float64, numBins)
	for m := 0; m < numBins; m++ {
		filter := make([]float64, nBinsFFT)
		left, center, right := bins[m], bins[m+1], bins[m+2]
		for k := left; k < center && k < nBinsFFT; k++ {
			if center != left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k < right && k < nBinsFFT; k++ {
			if right != center {
				filter[k] = float64(right-k) / float64(right-center)
			}
		}
		filters[m] = filter
	}
	return filters
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fftInPlace is the same radix-2 Cooley-Tukey transform used by the VAD
// package's spectral entropy feature, duplicated here to keep the two
// packages independently buildable without a shared internal/dsp package.
func fftInPlace(re, im []float64) {
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
