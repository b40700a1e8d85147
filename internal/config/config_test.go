package config

import (
	"os"
	"path/filepath"
	"testing"
)

func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadAppliesDefaultsAndRequiresModelPath(t *testing.T) {
	_, err := Load(fakeEnv(nil))
	if err == nil {
		t.Fatal("Load() with no MODEL_PATH should fail validation")
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	cfg, err := Load(fakeEnv(map[string]string{
		"MODEL_PATH": "/models/sensevoice.onnx",
		"LANGUAGE":   "en",
		"LOG_LEVEL":  "debug",
	}))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.ModelPath != "/models/sensevoice.onnx" {
		t.Errorf("ModelPath = %q; want /models/sensevoice.onnx", cfg.ModelPath)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q; want en", cfg.Language)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want debug", cfg.LogLevel)
	}
	// Untouched defaults should survive.
	if cfg.ChunkDurationS != 3.0 {
		t.Errorf("ChunkDurationS = %v; want default 3.0", cfg.ChunkDurationS)
	}
}

func TestLoadRejectsUnknownLanguage(t *testing.T) {
	_, err := Load(fakeEnv(map[string]string{
		"MODEL_PATH": "/models/x.onnx",
		"LANGUAGE":   "klingon",
	}))
	if err == nil {
		t.Fatal("Load() with unknown language should fail validation")
	}
}

func TestLoadRejectsOverlapGreaterThanChunk(t *testing.T) {
	_, err := Load(fakeEnv(map[string]string{
		"MODEL_PATH":       "/models/x.onnx",
		"CHUNK_DURATION":   "1.0",
		"OVERLAP_DURATION": "2.0",
	}))
	if err == nil {
		t.Fatal("Load() with overlap >= chunk duration should fail validation")
	}
}

func TestLoadRejectsMalformedNumericEnv(t *testing.T) {
	_, err := Load(fakeEnv(map[string]string{
		"MODEL_PATH":     "/models/x.onnx",
		"CHUNK_DURATION": "not-a-number",
	}))
	if err == nil {
		t.Fatal("Load() with malformed CHUNK_DURATION should fail")
	}
}

func TestLoadParsesFilterEventsList(t *testing.T) {
	cfg, err := Load(fakeEnv(map[string]string{
		"MODEL_PATH":    "/models/x.onnx",
		"FILTER_EVENTS": "BGM, Applause ,Laughter",
	}))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	for _, tag := range []string{"BGM", "Applause", "Laughter"} {
		if !cfg.FilterEvents[tag] {
			t.Errorf("FilterEvents missing %q: %v", tag, cfg.FilterEvents)
		}
	}
}

func TestLoadTOMLOverlayIsOverriddenByEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streamvox.toml")
	if err := os.WriteFile(path, []byte(`
model_path = "/overlay/model.onnx"
language = "zh"
`), 0o644); err != nil {
		t.Fatalf("write overlay file: %v", err)
	}

	cfg, err := Load(fakeEnv(map[string]string{
		"STREAMVOX_CONFIG_FILE": path,
		"LANGUAGE":              "ja", // env wins over overlay
	}))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.ModelPath != "/overlay/model.onnx" {
		t.Errorf("ModelPath = %q; want overlay value", cfg.ModelPath)
	}
	if cfg.Language != "ja" {
		t.Errorf("Language = %q; want env override ja", cfg.Language)
	}
}

func TestHopMs(t *testing.T) {
	cfg := Defaults()
	cfg.ChunkDurationS = 3.0
	cfg.OverlapDurationS = 1.5
	if got := cfg.HopMs(); got != 1500.0 {
		t.Errorf("HopMs() = %v; want 1500.0", got)
	}
}

func TestLookupEnvUnsetReturnsEmpty(t *testing.T) {
	if v := LookupEnv("STREAMVOX_DEFINITELY_UNSET_VAR"); v != "" {
		t.Errorf("LookupEnv unset var = %q; want empty", v)
	}
}
