package vad

import "sort"

// NoiseFloor tracks the adaptive non-speech RMS estimate. Bootstrap runs
// once at startup; after that, every non-speech decision feeds Adapt.
type NoiseFloor struct {
	sampleRate   float64
	calibSamples int

	bootstrap    []float32
	bootstrapped bool

	value      float64
	calibrated bool
	history    []float64 // bounded to 100, oldest first
	sinceMedian int
}

const (
	historyCap        = 100
	adaptEveryN       = 50
	subWindowMs       = 50
)

// NewNoiseFloor prepares a calibrator that bootstraps over calibSecs of audio.
func NewNoiseFloor(sampleRate, calibSecs float64) *NoiseFloor {
	return &NoiseFloor{
		sampleRate:   sampleRate,
		calibSamples: int(calibSecs * sampleRate),
	}
}

// Calibrated reports whether bootstrap has completed.
func (n *NoiseFloor) Calibrated() bool { return n.calibrated }

// Value returns the current noise floor RMS estimate.
func (n *NoiseFloor) Value() float64 { return n.value }

// Bootstrap accumulates chunk samples until calibSamples is reached, then
// sets value to the median RMS of 50ms sub-windows and marks calibrated.
// Returns true once calibration completes on this call.
func (n *NoiseFloor) Bootstrap(samples []float32) bool {
	if n.calibrated {
		return false
	}
	n.bootstrap = append(n.bootstrap, samples...)
	if len(n.bootstrap) < n.calibSamples {
		return false
	}

	subLen := int(subWindowMs / 1000.0 * n.sampleRate)
	if subLen < 1 {
		subLen = 1
	}
	var rmsValues []float64
	for i := 0; i+subLen <= len(n.bootstrap); i += subLen {
		rmsValues = append(rmsValues, rms(n.bootstrap[i : i+subLen]))
	}
	if len(rmsValues) == 0 {
		rmsValues = []float64{rms(n.bootstrap)}
	}
	n.value = median(rmsValues)
	n.calibrated = true
	n.bootstrap = nil
	return true
}

// Adapt records a non-speech chunk's RMS and, every 50 updates, recomputes
// value as the median of the bounded history. Speech chunks never call this.
func (n *NoiseFloor) Adapt(chunkRMS float64) {
	n.history = append(n.history, chunkRMS)
	if len(n.history) > historyCap {
		n.history = n.history[len(n.history)-historyCap:]
	}
	n.sinceMedian++
	if n.sinceMedian >= adaptEveryN {
		n.value = median(n.history)
		n.sinceMedian = 0
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
