// Package format turns a DecodeResult into the broadcast record: a display
// string with emoji/language decoration, plus the structured JSON record
// the sink transmits.
package format

import (
	"strings"
	"time"

	"github.com/msto63/streamvox/internal/model"
)

// Params are the filter and display-flag settings.
type Params struct {
	FilterBGM    bool
	FilterEvents map[string]bool
	MinChars     int

	ShowEmotions bool
	ShowEvents   bool
	ShowLanguage bool
}

// Record is the structured broadcast payload, one per emitted chunk.
type Record struct {
	Type        string   `json:"type"`
	Text        string   `json:"text"`
	Language    string   `json:"language,omitempty"`
	Emotion     string   `json:"emotion,omitempty"`
	AudioEvents []string `json:"audio_events"`
	HasITN      bool     `json:"has_itn"`
	RawText     string   `json:"raw_text"`
	Confidence  string   `json:"confidence"`
	Timestamp   string   `json:"timestamp"`
	Source      string   `json:"source"`
}

// Formatter applies filters and composes the display string and Record.
type Formatter struct {
	params Params
	source string
}

// New builds a Formatter; source identifies this process in broadcast records.
func New(params Params, source string) *Formatter {
	return &Formatter{params: params, source: source}
}

// Format returns (displayText, record, ok). ok is false when the chunk is
// filtered out entirely (BGM/filtered event, or too little alnum content).
func (f *Formatter) Format(result model.DecodeResult, now time.Time) (string, Record, bool) {
	if f.filtered(result) {
		return "", Record{}, false
	}
	if countAlnum(result.Text) < f.params.MinChars {
		return "", Record{}, false
	}

	var parts []string
	if f.params.ShowEmotions && result.Emotion != "" {
		if emoji, ok := model.EmotionEmoji[result.Emotion]; ok {
			parts = append(parts, emoji)
		}
	}
	if f.params.ShowEvents {
		for _, event := range result.AudioEvents {
			if emoji, ok := model.EventEmoji[event]; ok {
				parts = append(parts, emoji)
			}
		}
	}
	parts = append(parts, result.Text)
	if f.params.ShowLanguage && result.Language != "" {
		parts = append(parts, "["+result.Language+"]")
	}
	display := strings.Join(parts, " ")

	record := Record{
		Type:        "transcription",
		Text:        result.Text,
		Language:    result.Language,
		Emotion:     result.Emotion,
		AudioEvents: result.AudioEvents,
		HasITN:      result.HasITN,
		RawText:     result.Text,
		Confidence:  confidenceBucket(result.AvgConfidence),
		Timestamp:   now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Source:      f.source,
	}
	return display, record, true
}

func (f *Formatter) filtered(result model.DecodeResult) bool {
	if f.params.FilterBGM {
		for _, e := range result.AudioEvents {
			if e == "BGM" {
				return true
			}
		}
	}
	for _, e := range result.AudioEvents {
		if f.params.FilterEvents[e] {
			return true
		}
	}
	return false
}

func countAlnum(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			n++
		}
	}
	return n
}

func confidenceBucket(c float64) string {
	switch {
	case c >= 0.75:
		return "HIGH"
	case c >= 0.5:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
