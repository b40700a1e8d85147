// Package model holds the data types shared across pipeline stages: audio
// chunks, decode results, word timings, and the small amount of
// session-scoped state (noise floor, timeline, language lock) that is
// owned by one component and read by value elsewhere.
package model

// AudioChunk is a semantic window of resampled, model-rate audio.
type AudioChunk struct {
	Samples     []float32
	ChunkIndex  int64
	StartTimeMs float64
	Fingerprint [16]byte
}

// NoiseFloor is the adaptive non-speech RMS estimate owned by the
// NoiseFloorCalibrator and copied by value into the VAD per chunk.
type NoiseFloor struct {
	Value      float64
	Calibrated bool
	History    []float64 // bounded to 100, oldest first
}

// VadFeatures are the telemetry-only signal features computed for a chunk.
type VadFeatures struct {
	RMS             float64
	ZCR             float64
	SpectralEntropy float64
	HasEntropy      bool // false in fast mode, where entropy is never computed
}

// VadDecision is the outcome of classifying one chunk.
type VadDecision struct {
	IsSpeech bool
	Features VadFeatures
}

// TokenTiming is a single decoded CTC token with its chunk-local timing.
type TokenTiming struct {
	TokenID    int
	StartMs    float64
	EndMs      float64
	Confidence float64
}

// WordTiming is a word assembled from consecutive subword TokenTimings.
type WordTiming struct {
	Text          string
	StartMs       float64
	EndMs         float64
	Confidence    float64
	GlobalStartMs float64
	GlobalEndMs   float64
}

// DecodeResult is the output of CTCDecoder + MetadataParser for one chunk.
type DecodeResult struct {
	Words        []WordTiming
	Text         string
	AvgConfidence float64
	Language      string // canonical name, e.g. "English"; "" if absent
	Emotion       string
	AudioEvents   []string
	HasITN        bool
}

// ChunkTail is the trailing context carried from one chunk to the next for
// the ConfidenceStitcher.
type ChunkTail struct {
	Words      []WordTiming
	Text       string
	Confidence float64
}

// TimelineState is the global, append-mostly word timeline owned
// exclusively by the TimelineMerger.
type TimelineState struct {
	Words             []WordTiming
	LastEmittedEndMs  float64
}

// LanguageLockPhase distinguishes the three LanguageLockState variants.
type LanguageLockPhase int

const (
	PhaseWarmup LanguageLockPhase = iota
	PhaseLocked
	PhaseFree
)

// LanguageLockState is the session-scoped auto-lock state machine.
type LanguageLockState struct {
	Phase       LanguageLockPhase
	StartedAt   float64 // unix seconds when warmup began
	Samples     map[string]int
	Total       int
	Language    string // set once Phase == PhaseLocked or PhaseFree
}
