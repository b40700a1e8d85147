package decoder

import (
	"testing"

	"github.com/msto63/streamvox/internal/model"
)

func TestDecodeProducesWordsFromLogits(t *testing.T) {
	vocab := fakeVocab{0: "<blank>", 1: "▁hi", 2: "▁there"}
	d := NewDecoder(vocab)

	logits := [][]float64{
		{0, 0, 5, 0}, // blank
		{5, 5, 0, 0}, // "hi"
		{0, 0, 0, 5}, // "there"
	}

	result := d.Decode(logits, 400)
	if len(result.Words) != 2 {
		t.Fatalf("Decode() produced %d words; want 2: %+v", len(result.Words), result.Words)
	}
	if result.Words[0].Text != "hi" || result.Words[1].Text != "there" {
		t.Errorf("words = %+v; want [hi there]", result.Words)
	}
	if result.Text != "hi there" {
		t.Errorf("Text = %q; want %q", result.Text, "hi there")
	}
	if result.AvgConfidence < 0.9 {
		t.Errorf("AvgConfidence = %v; want >= 0.9", result.AvgConfidence)
	}
	if result.Words[1].StartMs != 300 {
		t.Errorf("second word StartMs = %v; want 300", result.Words[1].StartMs)
	}
}

func TestDecodeGatesOutAllBlankChunk(t *testing.T) {
	vocab := fakeVocab{0: "<blank>", 1: "▁hi"}
	d := NewDecoder(vocab)

	logits := [][]float64{
		{5, 5, 5, 5}, // blank dominates every frame
		{0, 0, 0, 0},
	}
	result := d.Decode(logits, 400)
	if len(result.Words) != 0 {
		t.Errorf("expected the blank-posterior gate to drop this chunk, got %+v", result.Words)
	}
}

func TestDecodeEmptyLogitsReturnsZeroValue(t *testing.T) {
	d := NewDecoder(fakeVocab{})
	result := d.Decode(nil, 400)
	if len(result.Words) != 0 || result.Text != "" {
		t.Errorf("expected zero-value DecodeResult for empty logits, got %+v", result)
	}
}

func TestDetokenizeAttachesPunctuationToPrecedingWord(t *testing.T) {
	vocab := fakeVocab{1: "▁hello", 2: ","}
	tokens := detokenize([]model.TokenTiming{
		{TokenID: 1, StartMs: 0, EndMs: 100, Confidence: 0.9},
		{TokenID: 2, StartMs: 100, EndMs: 120, Confidence: 0.8},
	}, vocab)
	if len(tokens) != 1 {
		t.Fatalf("expected punctuation to merge into one word, got %d words: %+v", len(tokens), tokens)
	}
	if tokens[0].Text != "hello," {
		t.Errorf("Text = %q; want %q", tokens[0].Text, "hello,")
	}
}

func TestDetokenizeAveragesConfidenceAcrossAllMergedPieces(t *testing.T) {
	// Three pieces merging into one word must average to the true mean
	// (0.9+0.3+0.3)/3 = 0.5, not the pairwise-running-average result
	// ((0.9+0.3)/2 + 0.3)/2 = 0.45 that overweights the last piece.
	vocab := fakeVocab{1: "▁go", 2: "ing", 3: "!"}
	tokens := detokenize([]model.TokenTiming{
		{TokenID: 1, StartMs: 0, EndMs: 100, Confidence: 0.9},
		{TokenID: 2, StartMs: 100, EndMs: 150, Confidence: 0.3},
		{TokenID: 3, StartMs: 150, EndMs: 160, Confidence: 0.3},
	}, vocab)
	if len(tokens) != 1 {
		t.Fatalf("expected all three pieces to merge into one word, got %d words: %+v", len(tokens), tokens)
	}
	if tokens[0].Text != "going!" {
		t.Errorf("Text = %q; want %q", tokens[0].Text, "going!")
	}
	if got, want := tokens[0].Confidence, 0.5; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Confidence = %v; want %v (true mean of 0.9, 0.3, 0.3)", got, want)
	}
}
