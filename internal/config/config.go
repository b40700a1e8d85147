// Package config builds the flat, immutable Config record streamvox runs
// with: defaults, then an optional TOML overlay file, then environment
// variable overrides. Config is built once at startup; invalid values
// fail fast with a Configuration error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/msto63/streamvox/internal/apperr"
)

// Config is the full set of knobs the pipeline reads at runtime. It is
// built once by Load and never mutated afterward.
type Config struct {
	ModelPath string
	Language  string // "auto", "en", "zh", "ja", "ko", "yue"
	UseITN    bool

	ChunkDurationS   float64
	OverlapDurationS float64
	ModelRateHz      int

	AudioDevice string

	LogLevel  string
	LogFormat string

	EnableVAD      bool
	VADMode        string // "fast", "accurate"
	VADZCRMin      float64
	VADZCRMax      float64
	VADEntropyMax  float64
	RMSMargin      float64
	NoiseCalibSecs float64
	AdaptiveNoiseFloor bool

	SimilarityThreshold float64
	DuplicateCooldownS  float64
	MinChars            int

	EnableConfidenceStitching bool
	ConfidenceThreshold       float64
	OverlapWordCount          int

	EnableTimelineMerging       bool
	TimelineMinWordConfidence   float64
	TimelineOverlapConfidence   float64
	TimelineConfidenceReplacement bool

	EnableLanguageLock    bool
	LanguageLockWarmupS   float64
	LanguageLockMinSamples int
	LanguageLockConfidence float64

	FilterBGM    bool
	FilterEvents map[string]bool

	ShowEmotions bool
	ShowEvents   bool
	ShowLanguage bool

	MetricsAddr string
}

// HopMs is the global-time increment per chunk index: (chunk-overlap)*1000.
func (c Config) HopMs() float64 {
	return (c.ChunkDurationS - c.OverlapDurationS) * 1000.0
}

// Defaults returns the out-of-the-box configuration before any TOML
// overlay or environment override is applied.
func Defaults() Config {
	return Config{
		Language:         "auto",
		UseITN:           true,
		ChunkDurationS:   3.0,
		OverlapDurationS: 1.5,
		ModelRateHz:      16000,
		AudioDevice:      "default",
		LogLevel:         "info",
		LogFormat:        "kv",

		EnableVAD:          true,
		VADMode:            "accurate",
		VADZCRMin:          0.02,
		VADZCRMax:          0.35,
		VADEntropyMax:      0.85,
		RMSMargin:          0.004,
		NoiseCalibSecs:     1.5,
		AdaptiveNoiseFloor: true,

		SimilarityThreshold: 0.85,
		DuplicateCooldownS:  4.0,
		MinChars:            3,

		EnableConfidenceStitching: true,
		ConfidenceThreshold:       0.6,
		OverlapWordCount:          4,

		EnableTimelineMerging:         true,
		TimelineMinWordConfidence:     0.4,
		TimelineOverlapConfidence:     0.6,
		TimelineConfidenceReplacement: true,

		EnableLanguageLock:     true,
		LanguageLockWarmupS:    10.0,
		LanguageLockMinSamples: 3,
		LanguageLockConfidence: 0.6,

		FilterEvents: map[string]bool{},
		FilterBGM:    false,
		ShowEmotions: false,
		ShowEvents:   true,
		ShowLanguage: true,

		MetricsAddr: "127.0.0.1:9090",
	}
}

// overlay is the subset of Config a TOML file may set; env vars always win.
type overlay struct {
	ModelPath        *string  `toml:"model_path"`
	Language         *string  `toml:"language"`
	ChunkDurationS   *float64 `toml:"chunk_duration_s"`
	OverlapDurationS *float64 `toml:"overlap_duration_s"`
	AudioDevice      *string  `toml:"audio_device"`
	LogLevel         *string  `toml:"log_level"`
	VADMode          *string  `toml:"vad_mode"`
	MetricsAddr      *string  `toml:"metrics_addr"`
}

// Load builds Config from defaults, an optional STREAMVOX_CONFIG_FILE TOML
// overlay, and environment variables, then validates it.
func Load(getenv func(string) string) (Config, error) {
	cfg := Defaults()

	if path := getenv("STREAMVOX_CONFIG_FILE"); path != "" {
		var ov overlay
		if _, err := toml.DecodeFile(path, &ov); err != nil {
			return Config{}, apperr.New(apperr.Configuration, "config", "decode_overlay", err).WithField("path", path)
		}
		applyOverlay(&cfg, ov)
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyOverlay(cfg *Config, ov overlay) {
	if ov.ModelPath != nil {
		cfg.ModelPath = *ov.ModelPath
	}
	if ov.Language != nil {
		cfg.Language = *ov.Language
	}
	if ov.ChunkDurationS != nil {
		cfg.ChunkDurationS = *ov.ChunkDurationS
	}
	if ov.OverlapDurationS != nil {
		cfg.OverlapDurationS = *ov.OverlapDurationS
	}
	if ov.AudioDevice != nil {
		cfg.AudioDevice = *ov.AudioDevice
	}
	if ov.LogLevel != nil {
		cfg.LogLevel = *ov.LogLevel
	}
	if ov.VADMode != nil {
		cfg.VADMode = *ov.VADMode
	}
	if ov.MetricsAddr != nil {
		cfg.MetricsAddr = *ov.MetricsAddr
	}
}

type envErr struct {
	key string
	err error
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	var errs []envErr

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, envErr{key, err})
				return
			}
			*dst = b
		}
	}
	floatVal := func(key string, dst *float64) {
		if v := getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, envErr{key, err})
				return
			}
			*dst = f
		}
	}
	intVal := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, envErr{key, err})
				return
			}
			*dst = i
		}
	}

	str("MODEL_PATH", &cfg.ModelPath)
	str("LANGUAGE", &cfg.Language)
	boolean("USE_ITN", &cfg.UseITN)
	floatVal("CHUNK_DURATION", &cfg.ChunkDurationS)
	floatVal("OVERLAP_DURATION", &cfg.OverlapDurationS)
	str("AUDIO_DEVICE", &cfg.AudioDevice)
	str("LOG_LEVEL", &cfg.LogLevel)

	boolean("ENABLE_VAD", &cfg.EnableVAD)
	str("VAD_MODE", &cfg.VADMode)
	floatVal("VAD_ZCR_MIN", &cfg.VADZCRMin)
	floatVal("VAD_ZCR_MAX", &cfg.VADZCRMax)
	floatVal("VAD_ENTROPY_MAX", &cfg.VADEntropyMax)
	floatVal("RMS_MARGIN", &cfg.RMSMargin)
	floatVal("NOISE_CALIB_SECS", &cfg.NoiseCalibSecs)
	boolean("ADAPTIVE_NOISE_FLOOR", &cfg.AdaptiveNoiseFloor)

	floatVal("SIMILARITY_THRESHOLD", &cfg.SimilarityThreshold)
	floatVal("DUPLICATE_COOLDOWN_S", &cfg.DuplicateCooldownS)
	intVal("MIN_CHARS", &cfg.MinChars)

	boolean("ENABLE_CONFIDENCE_STITCHING", &cfg.EnableConfidenceStitching)
	floatVal("CONFIDENCE_THRESHOLD", &cfg.ConfidenceThreshold)
	intVal("OVERLAP_WORD_COUNT", &cfg.OverlapWordCount)

	boolean("ENABLE_TIMELINE_MERGING", &cfg.EnableTimelineMerging)
	floatVal("TIMELINE_MIN_WORD_CONFIDENCE", &cfg.TimelineMinWordConfidence)
	floatVal("TIMELINE_OVERLAP_CONFIDENCE", &cfg.TimelineOverlapConfidence)
	boolean("TIMELINE_CONFIDENCE_REPLACEMENT", &cfg.TimelineConfidenceReplacement)

	boolean("ENABLE_LANGUAGE_LOCK", &cfg.EnableLanguageLock)
	floatVal("LANGUAGE_LOCK_WARMUP_S", &cfg.LanguageLockWarmupS)
	intVal("LANGUAGE_LOCK_MIN_SAMPLES", &cfg.LanguageLockMinSamples)
	floatVal("LANGUAGE_LOCK_CONFIDENCE", &cfg.LanguageLockConfidence)

	boolean("FILTER_BGM", &cfg.FilterBGM)
	if v := getenv("FILTER_EVENTS"); v != "" {
		cfg.FilterEvents = map[string]bool{}
		for _, tag := range strings.Split(v, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				cfg.FilterEvents[tag] = true
			}
		}
	}

	boolean("SHOW_EMOTIONS", &cfg.ShowEmotions)
	boolean("SHOW_EVENTS", &cfg.ShowEvents)
	boolean("SHOW_LANGUAGE", &cfg.ShowLanguage)

	if len(errs) > 0 {
		first := errs[0]
		e := apperr.New(apperr.Configuration, "config", "parse_env", first.err).WithField("variable", first.key)
		return e
	}
	return nil
}

var validLanguages = map[string]bool{"auto": true, "en": true, "zh": true, "ja": true, "ko": true, "yue": true}
var validVADModes = map[string]bool{"fast": true, "accurate": true}

func validate(cfg Config) error {
	fail := func(op, msg string) error {
		return apperr.New(apperr.Configuration, "config", op, fmt.Errorf("%s", msg))
	}

	if cfg.ModelPath == "" {
		return fail("validate", "MODEL_PATH is required")
	}
	if !validLanguages[cfg.Language] {
		return fail("validate", "LANGUAGE must be one of auto,en,zh,ja,ko,yue")
	}
	if !validVADModes[cfg.VADMode] {
		return fail("validate", "VAD_MODE must be fast or accurate")
	}
	if cfg.ChunkDurationS <= 0 || cfg.OverlapDurationS < 0 {
		return fail("validate", "CHUNK_DURATION must be positive and OVERLAP_DURATION must not be negative")
	}
	if cfg.OverlapDurationS >= cfg.ChunkDurationS {
		return fail("validate", "OVERLAP_DURATION must be less than CHUNK_DURATION")
	}
	if cfg.ModelRateHz <= 0 {
		return fail("validate", "model rate must be positive")
	}
	if cfg.MinChars < 0 {
		return fail("validate", "MIN_CHARS must be non-negative")
	}
	if cfg.OverlapWordCount <= 0 {
		return fail("validate", "OVERLAP_WORD_COUNT must be positive")
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return fail("validate", "CONFIDENCE_THRESHOLD must be within [0,1]")
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return fail("validate", "SIMILARITY_THRESHOLD must be within [0,1]")
	}
	return nil
}

// LookupEnv adapts os.LookupEnv to the getenv-without-presence signature Load wants.
func LookupEnv(key string) string {
	v, _ := os.LookupEnv(key)
	return v
}
