// Package orchestrator wires the capture, resampling, VAD, inference, and
// broadcast stages into one pipeline, owns the process lifecycle, and
// decides when a run of per-chunk errors has become fatal.
package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/msto63/streamvox/internal/apperr"
	"github.com/msto63/streamvox/internal/audio"
	"github.com/msto63/streamvox/internal/config"
	"github.com/msto63/streamvox/internal/decoder"
	"github.com/msto63/streamvox/internal/dedup"
	"github.com/msto63/streamvox/internal/encoder"
	"github.com/msto63/streamvox/internal/features"
	"github.com/msto63/streamvox/internal/fingerprint"
	"github.com/msto63/streamvox/internal/format"
	"github.com/msto63/streamvox/internal/langlock"
	"github.com/msto63/streamvox/internal/logx"
	"github.com/msto63/streamvox/internal/model"
	"github.com/msto63/streamvox/internal/sink"
	"github.com/msto63/streamvox/internal/stitcher"
	"github.com/msto63/streamvox/internal/telemetry"
	"github.com/msto63/streamvox/internal/timeline"
	"github.com/msto63/streamvox/internal/vad"
)

// Calibration is the session-scoped, strictly forward-only state machine
// for noise-floor bootstrap, mirrored alongside the language lock's own
// forward-only phase progression.
type Calibration int

const (
	Uncalibrated Calibration = iota
	Calibrating
	Calibrated
)

// Orchestrator owns every stage's lifecycle.
type Orchestrator struct {
	cfg config.Config
	log *logx.Logger

	source    *audio.Source
	resampler *audio.Resampler

	noiseFloor *vad.NoiseFloor
	detector   *vad.Detector
	fpCache    *fingerprint.Cache
	builder    *features.Builder
	enc        encoder.Client
	dec        *decoder.Decoder
	lock       *langlock.Lock
	stitch     *stitcher.Stitcher
	merger     *timeline.Merger
	suppressor *dedup.Suppressor
	formatter  *format.Formatter
	out        sink.Sink

	metrics  *telemetry.Metrics
	failures *telemetry.FailureTracker

	calibration Calibration
	encoderInfo encoder.LoadResult

	nowS func() float64

	paused atomic.Bool
}

// Pause stops feeding chunks into the inference stage without tearing down
// capture; the resampler keeps assembling chunks, which are simply dropped.
// Used by the tray/hotkey companion to let an operator mute transcription.
func (o *Orchestrator) Pause() { o.paused.Store(true) }

// Resume undoes Pause.
func (o *Orchestrator) Resume() { o.paused.Store(false) }

// Paused reports the current pause state.
func (o *Orchestrator) Paused() bool { return o.paused.Load() }

// LanguageLockState reports the current language-lock phase and the locked
// (or explicit) language, for tray/TUI status display.
func (o *Orchestrator) LanguageLockState() model.LanguageLockState {
	return o.lock.State()
}

// LanguageLockStatus reports warmup progress and leading-language
// confidence alongside the raw phase/language, for tray/TUI status display.
func (o *Orchestrator) LanguageLockStatus() langlock.Status {
	return o.lock.Status(o.nowS())
}

// TimelineStats summarizes the emitted word timeline: count and the min,
// mean, and max word confidence observed so far.
type TimelineStats struct {
	WordCount int
	MinConfidence float64
	AvgConfidence float64
	MaxConfidence float64
}

// TimelineStats computes TimelineStats over the merger's current state.
func (o *Orchestrator) TimelineStats() TimelineStats {
	state := o.merger.State()
	stats := TimelineStats{WordCount: len(state.Words)}
	if len(state.Words) == 0 {
		return stats
	}
	stats.MinConfidence = state.Words[0].Confidence
	stats.MaxConfidence = state.Words[0].Confidence
	sum := 0.0
	for _, w := range state.Words {
		sum += w.Confidence
		if w.Confidence < stats.MinConfidence {
			stats.MinConfidence = w.Confidence
		}
		if w.Confidence > stats.MaxConfidence {
			stats.MaxConfidence = w.Confidence
		}
	}
	stats.AvgConfidence = sum / float64(len(state.Words))
	return stats
}

// New wires every stage from cfg. nowS supplies the current time in seconds
// (the CLI passes Unix wall-clock seconds; injected so tests can control time).
func New(
	cfg config.Config,
	log *logx.Logger,
	source *audio.Source,
	enc encoder.Client,
	vocab decoder.Detokenizer,
	embeddings *features.EmbeddingTable,
	out sink.Sink,
	metrics *telemetry.Metrics,
	nowS func() float64,
) *Orchestrator {
	resampler := audio.NewResampler(source.Rate(), float64(cfg.ModelRateHz), cfg.ChunkDurationS, cfg.HopMs(), log)

	explicitLang := ""
	if cfg.Language != "auto" {
		explicitLang = cfg.Language
	}

	noiseFloor := vad.NewNoiseFloor(float64(cfg.ModelRateHz), cfg.NoiseCalibSecs)

	return &Orchestrator{
		cfg:       cfg,
		log:       log.WithComponent("orchestrator"),
		source:    source,
		resampler: resampler,

		noiseFloor: noiseFloor,
		detector: vad.NewDetector(vad.Params{
			Enabled: cfg.EnableVAD, AdaptiveFloor: cfg.AdaptiveNoiseFloor, Mode: vad.ParseMode(cfg.VADMode),
			ZCRMin: cfg.VADZCRMin, ZCRMax: cfg.VADZCRMax, EntropyMax: cfg.VADEntropyMax, RMSMargin: cfg.RMSMargin,
		}, noiseFloor),
		fpCache: fingerprint.NewCache(),
		builder: features.NewBuilder(embeddings, features.DefaultFbankConfig()),
		enc:     enc,
		dec:     decoder.NewDecoder(vocab),
		lock: langlock.New(langlock.Params{
			Enabled: cfg.EnableLanguageLock, WarmupS: cfg.LanguageLockWarmupS,
			MinSamples: cfg.LanguageLockMinSamples, Confidence: cfg.LanguageLockConfidence,
		}, explicitLang, nowS()),
		stitch: stitcher.New(stitcher.Params{
			Enabled: cfg.EnableConfidenceStitching, ConfidenceThresh: cfg.ConfidenceThreshold, OverlapWordCount: cfg.OverlapWordCount,
		}),
		merger: timeline.New(timeline.Params{
			Enabled: cfg.EnableTimelineMerging,
			MinWordConfidence: cfg.TimelineMinWordConfidence, OverlapConfidence: cfg.TimelineOverlapConfidence,
			ConfidenceReplacement: cfg.TimelineConfidenceReplacement,
		}),
		suppressor: dedup.New(dedup.Params{SimilarityThreshold: cfg.SimilarityThreshold, CooldownS: cfg.DuplicateCooldownS}),
		formatter: format.New(format.Params{
			FilterBGM: cfg.FilterBGM, FilterEvents: cfg.FilterEvents, MinChars: cfg.MinChars,
			ShowEmotions: cfg.ShowEmotions, ShowEvents: cfg.ShowEvents, ShowLanguage: cfg.ShowLanguage,
		}, "streamvox"),
		out:         out,
		metrics:     metrics,
		failures:    telemetry.NewFailureTracker(),
		calibration: Uncalibrated,
		nowS:        nowS,
	}
}

// Run starts capture and blocks until ctx is canceled or a fatal error
// occurs; it then stops capture and waits 2s before closing the sink.
func (o *Orchestrator) Run(ctx context.Context) error {
	loadResult, err := o.enc.Load(o.cfg.ModelPath)
	if err != nil {
		return apperr.New(apperr.Load, "orchestrator", "load_encoder", err)
	}
	o.encoderInfo = loadResult

	if err := o.source.Start(ctx); err != nil {
		return err
	}
	o.calibration = Calibrating

	chunkErrs := make(chan error, 4)
	go o.feedLoop(ctx)
	go o.inferenceLoop(ctx, chunkErrs)

	select {
	case <-ctx.Done():
		return o.shutdown()
	case err := <-chunkErrs:
		o.shutdown()
		return err
	}
}

func (o *Orchestrator) shutdown() error {
	_ = o.source.Stop()
	<-time.After(2 * time.Second)
	return o.out.Close() // best-effort flush; errors here are non-fatal by contract
}

// feedLoop pulls device-rate frames and resamples them. Enqueue into the
// chunk channel does not block: when it is full the resampler drops the chunk.
func (o *Orchestrator) feedLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-o.source.Output():
			if !ok {
				return
			}
			o.resampler.Feed(frame)
		}
	}
}

// inferenceLoop is the single-threaded T3 stage: VAD -> Fingerprinter ->
// FeatureBuilder -> EncoderClient -> CTCDecoder -> MetadataParser ->
// LanguageLock -> Stitcher -> TimelineMerger -> Formatter -> Sink.
func (o *Orchestrator) inferenceLoop(ctx context.Context, fatal chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-o.resampler.Output():
			if !ok {
				return
			}
			o.processChunk(chunk, fatal)
		}
	}
}

func (o *Orchestrator) processChunk(chunk model.AudioChunk, fatal chan<- error) {
	if o.calibration != Calibrated {
		if o.noiseFloor.Bootstrap(chunk.Samples) {
			o.calibration = Calibrated
		}
		return
	}

	if o.paused.Load() {
		o.metrics.ChunksDropped.WithLabelValues("paused").Inc()
		return
	}

	decision := o.detector.Classify(chunk)
	if decision.IsSpeech {
		o.metrics.VADSpeechChunks.Inc()
	} else {
		o.metrics.VADNonSpeechChunks.Inc()
		o.metrics.ChunksDropped.WithLabelValues("non_speech").Inc()
		return
	}

	if !o.fpCache.Admit(chunk) {
		o.metrics.ChunksDropped.WithLabelValues("duplicate_fingerprint").Inc()
		return
	}

	tensor := o.builder.Build(chunk, o.lock.ActiveLanguage(), o.cfg.UseITN, o.encoderInfo.InputLen)

	start := time.Now()
	logits, err := o.enc.Infer(tensor.Rows)
	o.metrics.InferenceLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		o.metrics.EncoderErrors.Inc()
		o.failures.RecordFailure(o.nowS())
		if o.failures.ShouldAbort() {
			fatal <- apperr.New(apperr.Transient, "orchestrator", "infer", err).WithField("escalated", true)
		}
		return
	}
	o.failures.RecordSuccess(o.nowS())

	logitsF64 := transposeAndSlice(logits, tensor.TaskRows)

	result := o.dec.Decode(logitsF64, o.cfg.ChunkDurationS*1000)
	if len(result.Words) == 0 {
		o.metrics.ChunksDropped.WithLabelValues("empty_decode").Inc()
		return
	}
	o.metrics.ChunksTranscribed.Inc()

	o.lock.Observe(result.Language, o.nowS())
	o.metrics.LanguageLockPhase.Set(float64(o.lock.State().Phase))

	stitched := o.stitch.Process(result)
	newWords := o.merger.Merge(stitched, chunk.StartTimeMs)
	if len(newWords) == 0 {
		return
	}
	o.metrics.WordsEmitted.Add(float64(len(newWords)))

	result.Words = newWords
	result.Text = joinWords(newWords)

	display, record, ok := o.formatter.Format(result, time.Now())
	if !ok {
		return
	}
	if !o.suppressor.Admit(display, o.nowS()) {
		o.metrics.DuplicatesSuppressed.Inc()
		return
	}

	o.out.Broadcast(record)
}

func joinWords(words []model.WordTiming) string {
	s := ""
	for i, w := range words {
		if i > 0 {
			s += " "
		}
		s += w.Text
	}
	return s
}

// transposeAndSlice converts the encoder's [V, T_total] float32 output to
// [V, T_audio] float64 logits, discarding the task-query prefix columns.
func transposeAndSlice(logits [][]float32, taskRows int) [][]float64 {
	out := make([][]float64, len(logits))
	for v, row := range logits {
		if taskRows >= len(row) {
			out[v] = []float64{}
			continue
		}
		sliced := row[taskRows:]
		converted := make([]float64, len(sliced))
		for t, val := range sliced {
			converted[t] = float64(val)
		}
		out[v] = converted
	}
	return out
}
