package decoder

import (
	"testing"

	"github.com/msto63/streamvox/internal/model"
)

func TestParseMetadataExtractsLanguageEmotionEventsAndITN(t *testing.T) {
	vocab := fakeVocab{
		1: "<|en|>",
		2: "<|HAPPY|>",
		3: "<|Laughter|>",
		4: "<|withitn|>",
		5: "▁hello",
	}
	tokens := []model.TokenTiming{
		{TokenID: 1}, {TokenID: 2}, {TokenID: 3}, {TokenID: 4}, {TokenID: 5},
	}
	result := parseMetadata(tokens, vocab)

	if result.Language != "English" {
		t.Errorf("Language = %q; want English", result.Language)
	}
	if result.Emotion != "HAPPY" {
		t.Errorf("Emotion = %q; want HAPPY", result.Emotion)
	}
	if len(result.AudioEvents) != 1 || result.AudioEvents[0] != "Laughter" {
		t.Errorf("AudioEvents = %v; want [Laughter]", result.AudioEvents)
	}
	if !result.HasITN {
		t.Error("HasITN should be true after a <|withitn|> tag")
	}
	if len(result.contentTokens) != 1 || result.contentTokens[0].TokenID != 5 {
		t.Errorf("contentTokens = %+v; want only the content token", result.contentTokens)
	}
}

func TestParseMetadataLastLanguageWins(t *testing.T) {
	vocab := fakeVocab{1: "<|en|>", 2: "<|zh|>"}
	tokens := []model.TokenTiming{{TokenID: 1}, {TokenID: 2}}
	result := parseMetadata(tokens, vocab)
	if result.Language != "Chinese" {
		t.Errorf("Language = %q; want Chinese (last tag wins)", result.Language)
	}
}

func TestParseMetadataDeduplicatesEvents(t *testing.T) {
	vocab := fakeVocab{1: "<|Laughter|>", 2: "<|Laughter|>"}
	tokens := []model.TokenTiming{{TokenID: 1}, {TokenID: 2}}
	result := parseMetadata(tokens, vocab)
	if len(result.AudioEvents) != 1 {
		t.Errorf("AudioEvents = %v; want exactly one deduplicated entry", result.AudioEvents)
	}
}

func TestParseMetadataIgnoresUnknownTag(t *testing.T) {
	vocab := fakeVocab{1: "<|some_unknown_tag|>", 2: "▁hi"}
	tokens := []model.TokenTiming{{TokenID: 1}, {TokenID: 2}}
	result := parseMetadata(tokens, vocab)
	if result.Language != "" || result.Emotion != "" || len(result.AudioEvents) != 0 {
		t.Errorf("unknown tag should be silently ignored, got %+v", result.DecodeResult)
	}
	if len(result.contentTokens) != 1 {
		t.Errorf("unknown tag should not become a content token, got %+v", result.contentTokens)
	}
}

func TestParseMetadataWoitnClearsITN(t *testing.T) {
	vocab := fakeVocab{1: "<|withitn|>", 2: "<|woitn|>"}
	tokens := []model.TokenTiming{{TokenID: 1}, {TokenID: 2}}
	result := parseMetadata(tokens, vocab)
	if result.HasITN {
		t.Error("a later <|woitn|> tag should clear HasITN")
	}
}
