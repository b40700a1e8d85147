package audio

import (
	"crypto/md5"
	"encoding/binary"
	"math"

	"github.com/msto63/streamvox/internal/logx"
	"github.com/msto63/streamvox/internal/model"
)

// Resampler converts an incoming frame stream at deviceRate to modelRate via
// linear interpolation, and slices the resulting stream into AudioChunks of
// chunkDurationS with hopMs step. It is the only stage permitted to drop
// samples, and only under downstream queue saturation.
type Resampler struct {
	log *logx.Logger

	deviceRate float64
	modelRate  float64

	chunkSamples int
	hopSamples   int

	window     *RingBuffer
	carry      float64 // fractional source-sample position left over between Feed calls
	emitted    int64   // number of model-rate samples produced so far
	nextEmitAt int64   // emitted-sample count at which the next chunk becomes due
	nextIndex  int64

	out chan model.AudioChunk
}

// NewResampler builds a Resampler targeting modelRate, with chunk/hop
// durations expressed in seconds/milliseconds against modelRate.
func NewResampler(deviceRate, modelRate float64, chunkDurationS, hopMs float64, log *logx.Logger) *Resampler {
	chunkSamples := int(chunkDurationS * modelRate)
	hopSamples := int(hopMs / 1000.0 * modelRate)
	if hopSamples < 1 {
		hopSamples = 1
	}
	return &Resampler{
		log:          log.WithComponent("audio.resampler"),
		deviceRate:   deviceRate,
		modelRate:    modelRate,
		chunkSamples: chunkSamples,
		hopSamples:   hopSamples,
		window:       NewRingBuffer(chunkSamples * 2),
		nextEmitAt:   int64(chunkSamples),
		out:          make(chan model.AudioChunk, 4),
	}
}

// Output returns the channel of emitted AudioChunks.
func (r *Resampler) Output() <-chan model.AudioChunk { return r.out }

// Feed resamples one device-rate frame and emits any chunks that become
// available as a result. Called from the single resampler-owning goroutine.
func (r *Resampler) Feed(frame []float32) {
	resampled := r.resample(frame)
	if len(resampled) == 0 {
		return
	}
	r.window.Write(resampled)
	r.emitted += int64(len(resampled))

	for r.emitted >= r.nextEmitAt && r.window.Len() >= r.chunkSamples {
		r.emitChunk()
		r.nextEmitAt += int64(r.hopSamples)
	}
}

func (r *Resampler) emitChunk() {
	samples := r.window.Snapshot(r.chunkSamples)
	startMs := float64(r.nextIndex*int64(r.hopSamples)) / r.modelRate * 1000.0
	chunk := model.AudioChunk{
		Samples:     samples,
		ChunkIndex:  r.nextIndex,
		StartTimeMs: startMs,
		Fingerprint: fingerprintOf(samples),
	}
	r.nextIndex++

	select {
	case r.out <- chunk:
	default:
		r.log.Warn("chunk queue saturated, dropping chunk", logx.Fields{"chunk_index": chunk.ChunkIndex})
	}
}

// resample performs linear interpolation from deviceRate to modelRate,
// carrying the fractional source position across calls so chunk boundaries
// never show mixed stale/fresh samples.
func (r *Resampler) resample(frame []float32) []float32 {
	if r.deviceRate == r.modelRate {
		return frame
	}
	ratio := r.deviceRate / r.modelRate
	var out []float32
	pos := r.carry
	for pos < float64(len(frame))-1 {
		i := int(pos)
		frac := pos - float64(i)
		sample := frame[i] + float32(frac)*(frame[i+1]-frame[i])
		out = append(out, sample)
		pos += ratio
	}
	r.carry = pos - float64(len(frame))
	if r.carry < 0 {
		r.carry = 0
	}
	return out
}

// fingerprintOf computes the fingerprint eagerly at chunk assembly time so
// the fingerprinter stage only needs to compare digests, not recompute them.
func fingerprintOf(samples []float32) [16]byte {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return md5.Sum(buf)
}
