// Package vad classifies resampled chunks as speech or non-speech using
// RMS energy against an adaptive noise floor, with zero-crossing rate and
// spectral entropy as confirming features.
package vad

import (
	"math"

	"github.com/msto63/streamvox/internal/model"
)

// Mode selects how many features VoiceActivityDetector computes once a
// chunk clears the RMS-above-floor gate.
type Mode int

const (
	ModeFast Mode = iota
	ModeAccurate
)

// ParseMode maps the VAD_MODE configuration value to Mode, defaulting to
// accurate on anything unrecognized.
func ParseMode(s string) Mode {
	if s == "fast" {
		return ModeFast
	}
	return ModeAccurate
}

// Params holds the thresholds a Detector decision is made against.
type Params struct {
	Enabled       bool
	AdaptiveFloor bool
	Mode          Mode
	ZCRMin        float64
	ZCRMax        float64
	EntropyMax    float64
	RMSMargin     float64
}

// Detector classifies chunks against a shared NoiseFloor.
type Detector struct {
	params Params
	floor  *NoiseFloor
}

// NewDetector builds a Detector reading and adapting the given floor.
func NewDetector(params Params, floor *NoiseFloor) *Detector {
	return &Detector{params: params, floor: floor}
}

// Classify computes VadFeatures for the chunk and decides speech/non-speech.
// Non-speech decisions feed the noise floor's adaptive update.
func (d *Detector) Classify(chunk model.AudioChunk) model.VadDecision {
	chunkRMS := rms(chunk.Samples)

	if !d.params.Enabled {
		return model.VadDecision{IsSpeech: true, Features: model.VadFeatures{RMS: chunkRMS}}
	}

	if chunkRMS <= d.floor.Value()+d.params.RMSMargin {
		if d.params.AdaptiveFloor {
			d.floor.Adapt(chunkRMS)
		}
		return model.VadDecision{IsSpeech: false, Features: model.VadFeatures{RMS: chunkRMS}}
	}

	zcr := zeroCrossingRate(chunk.Samples)
	inZCRRange := zcr >= d.params.ZCRMin && zcr <= d.params.ZCRMax

	var decision model.VadDecision
	switch d.params.Mode {
	case ModeFast:
		decision = model.VadDecision{
			IsSpeech: inZCRRange,
			Features: model.VadFeatures{RMS: chunkRMS, ZCR: zcr},
		}
	default:
		entropy := spectralEntropy(chunk.Samples)
		decision = model.VadDecision{
			IsSpeech: inZCRRange || entropy <= d.params.EntropyMax,
			Features: model.VadFeatures{RMS: chunkRMS, ZCR: zcr, SpectralEntropy: entropy, HasEntropy: true},
		}
	}

	if !decision.IsSpeech && d.params.AdaptiveFloor {
		d.floor.Adapt(chunkRMS)
	}
	return decision
}

func rms(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

func zeroCrossingRate(x []float32) float64 {
	if len(x) < 2 {
		return 0
	}
	crossings := 0
	for i := 0; i < len(x)-1; i++ {
		if x[i]*x[i+1] < 0 {
			crossings++
		}
	}
	return float64(crossings) / float64(len(x))
}

// spectralEntropy computes H(p)/log2(len(p)) over the power spectrum,
// counting only non-zero bins in both the entropy sum and the normalizer.
func spectralEntropy(x []float32) float64 {
	power := rfftPower(x)

	var total float64
	nonZero := 0
	for _, p := range power {
		if p > 0 {
			total += p
			nonZero++
		}
	}
	if total <= 0 || nonZero <= 1 {
		return 0
	}

	var h float64
	for _, p := range power {
		if p <= 0 {
			continue
		}
		prob := p / total
		h -= prob * math.Log2(prob)
	}
	return h / math.Log2(float64(nonZero))
}
