package orchestrator

import (
	"testing"

	"github.com/msto63/streamvox/internal/langlock"
	"github.com/msto63/streamvox/internal/model"
	"github.com/msto63/streamvox/internal/timeline"
)

func TestPauseResumeToggleState(t *testing.T) {
	o := &Orchestrator{}
	if o.Paused() {
		t.Fatal("new orchestrator should start unpaused")
	}
	o.Pause()
	if !o.Paused() {
		t.Error("Pause() should set Paused() true")
	}
	o.Resume()
	if o.Paused() {
		t.Error("Resume() should clear Paused()")
	}
}

func TestLanguageLockStatusReflectsWarmupProgress(t *testing.T) {
	lock := langlock.New(langlock.Params{Enabled: true, WarmupS: 10, MinSamples: 1, Confidence: 0.9}, "", 0)
	o := &Orchestrator{lock: lock, nowS: func() float64 { return 5 }}

	status := o.LanguageLockStatus()
	if status.Phase != model.PhaseWarmup {
		t.Fatalf("Phase = %v; want PhaseWarmup", status.Phase)
	}
	if status.WarmupProgress != 0.5 {
		t.Errorf("WarmupProgress = %v; want 0.5", status.WarmupProgress)
	}
}

func TestJoinWordsSpacesBetweenWords(t *testing.T) {
	got := joinWords([]model.WordTiming{{Text: "hello"}, {Text: "there"}})
	if got != "hello there" {
		t.Errorf("joinWords() = %q; want %q", got, "hello there")
	}
}

func TestJoinWordsEmptyReturnsEmptyString(t *testing.T) {
	if got := joinWords(nil); got != "" {
		t.Errorf("joinWords(nil) = %q; want empty string", got)
	}
}

func TestTransposeAndSliceDropsTaskRowsAndConvertsToFloat64(t *testing.T) {
	logits := [][]float32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
	}
	out := transposeAndSlice(logits, 2)
	if len(out) != 2 {
		t.Fatalf("transposeAndSlice() returned %d rows; want 2", len(out))
	}
	if len(out[0]) != 2 || out[0][0] != 3 || out[0][1] != 4 {
		t.Errorf("row 0 = %v; want [3 4]", out[0])
	}
}

func TestTransposeAndSliceHandlesShortRows(t *testing.T) {
	logits := [][]float32{{1, 2}}
	out := transposeAndSlice(logits, 5)
	if len(out[0]) != 0 {
		t.Errorf("row shorter than taskRows should yield an empty slice, got %v", out[0])
	}
}

func TestTimelineStatsEmptyTimeline(t *testing.T) {
	o := &Orchestrator{merger: timeline.New(timeline.Params{})}
	stats := o.TimelineStats()
	if stats.WordCount != 0 {
		t.Errorf("WordCount = %d; want 0", stats.WordCount)
	}
}

func TestTimelineStatsComputesMinMaxAvg(t *testing.T) {
	merger := timeline.New(timeline.Params{Enabled: true, MinWordConfidence: 0})
	merger.Merge([]model.WordTiming{
		{Text: "a", StartMs: 0, EndMs: 100, Confidence: 0.2},
		{Text: "b", StartMs: 100, EndMs: 200, Confidence: 0.8},
		{Text: "c", StartMs: 200, EndMs: 300, Confidence: 0.5},
	}, 0)

	o := &Orchestrator{merger: merger}
	stats := o.TimelineStats()
	if stats.WordCount != 3 {
		t.Fatalf("WordCount = %d; want 3", stats.WordCount)
	}
	if stats.MinConfidence != 0.2 {
		t.Errorf("MinConfidence = %v; want 0.2", stats.MinConfidence)
	}
	if stats.MaxConfidence != 0.8 {
		t.Errorf("MaxConfidence = %v; want 0.8", stats.MaxConfidence)
	}
	wantAvg := (0.2 + 0.8 + 0.5) / 3
	if stats.AvgConfidence != wantAvg {
		t.Errorf("AvgConfidence = %v; want %v", stats.AvgConfidence, wantAvg)
	}
}
