// Package telemetry exposes Prometheus metrics for the pipeline and tracks
// the consecutive-failure/rolling-error-rate counters the orchestrator uses
// to decide when a run of per-chunk errors has become fatal.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "streamvox"

// Metrics holds all Prometheus instruments for one session.
type Metrics struct {
	ChunksCaptured   prometheus.Counter
	ChunksDropped    *prometheus.CounterVec
	ChunksTranscribed prometheus.Counter

	VADSpeechChunks    prometheus.Counter
	VADNonSpeechChunks prometheus.Counter

	EncoderErrors  prometheus.Counter
	DecoderErrors  prometheus.Counter
	ParserErrors   prometheus.Counter

	WordsEmitted      prometheus.Counter
	DuplicatesSuppressed prometheus.Counter

	InferenceLatency prometheus.Histogram

	LanguageLockPhase prometheus.Gauge
}

// NewMetrics builds and registers the instrument set against the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		ChunksCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunks_captured_total", Help: "Total audio chunks assembled by the resampler.",
		}),
		ChunksDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunks_dropped_total", Help: "Chunks dropped before reaching the encoder.",
		}, []string{"reason"}),
		ChunksTranscribed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunks_transcribed_total", Help: "Chunks that produced a non-empty decode result.",
		}),
		VADSpeechChunks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "vad_speech_chunks_total", Help: "Chunks classified as speech.",
		}),
		VADNonSpeechChunks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "vad_non_speech_chunks_total", Help: "Chunks classified as non-speech.",
		}),
		EncoderErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "encoder_errors_total", Help: "Inference errors returned by the encoder client.",
		}),
		DecoderErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "decoder_errors_total", Help: "CTC decode errors.",
		}),
		ParserErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "parser_errors_total", Help: "Metadata parser errors.",
		}),
		WordsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "words_emitted_total", Help: "Words appended to the timeline and sent to the sink.",
		}),
		DuplicatesSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "duplicates_suppressed_total", Help: "Emits suppressed by the duplicate suppressor.",
		}),
		InferenceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "inference_latency_seconds", Help: "EncoderClient.Infer wall time.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
		LanguageLockPhase: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "language_lock_phase", Help: "0=warmup, 1=locked, 2=free.",
		}),
	}
}
