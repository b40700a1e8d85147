// Package stitcher removes garbled duplicate words at chunk boundaries
// before the timeline merger sees them, using text similarity between the
// previous chunk's tail and the current chunk's head.
package stitcher

import (
	"strings"

	"github.com/msto63/streamvox/internal/model"
	"github.com/msto63/streamvox/internal/textsim"
)

// Params are the overlap-detection and confidence thresholds.
type Params struct {
	Enabled          bool
	ConfidenceThresh float64
	OverlapWordCount int
}

// Stitcher holds the previous chunk's trailing words across calls.
type Stitcher struct {
	params Params
	tail   model.ChunkTail
}

// New builds a Stitcher with no tail recorded yet.
func New(params Params) *Stitcher {
	return &Stitcher{params: params}
}

// Process trims overlap from result's head words against the stored tail,
// updates the stored tail from the (possibly trimmed) result, and returns
// the possibly-trimmed word list.
func (s *Stitcher) Process(result model.DecodeResult) []model.WordTiming {
	words := result.Words
	if !s.params.Enabled || len(s.tail.Words) == 0 || len(words) == 0 {
		s.updateTail(words)
		return words
	}

	overlap := s.overlapLength(words)
	if overlap == 0 {
		s.updateTail(words)
		return words
	}

	switch {
	case s.tail.Confidence < s.params.ConfidenceThresh:
		// trust the new, higher-confidence pass: drop the overlapping head
		words = words[overlap:]
	case result.AvgConfidence < s.params.ConfidenceThresh:
		// trust the old tail: drop the overlap region from the current head
		words = words[overlap:]
	default:
		// both sides confident: no action here, downstream dedup handles it
	}

	s.updateTail(words)
	return words
}

// overlapLength finds the length of the actual duplicated prefix of words
// against the stored tail, trying window sizes from the configured
// OverlapWordCount down to 1 and returning the largest one that passes the
// length-ratio and similarity checks. Returns 0 when no window matches,
// meaning the chunk boundary carries no detectable duplicate audio.
func (s *Stitcher) overlapLength(words []model.WordTiming) int {
	maxWindow := s.params.OverlapWordCount
	if maxWindow > len(words) {
		maxWindow = len(words)
	}
	if maxWindow > len(s.tail.Words) {
		maxWindow = len(s.tail.Words)
	}

	for k := maxWindow; k >= 1; k-- {
		tailK := joinText(s.tail.Words[len(s.tail.Words)-k:])
		headK := joinText(words[:k])
		if lengthRatioDiffers(tailK, headK) {
			continue
		}
		if textsim.Similarity(tailK, headK) >= 0.7 {
			return k
		}
	}
	return 0
}

func (s *Stitcher) updateTail(words []model.WordTiming) {
	n := s.params.OverlapWordCount
	if n > len(words) {
		n = len(words)
	}
	tailWords := words[len(words)-n:]
	s.tail = model.ChunkTail{
		Words:      tailWords,
		Text:       joinText(tailWords),
		Confidence: avgConfidence(tailWords),
	}
}

func joinText(words []model.WordTiming) string {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}

func avgConfidence(words []model.WordTiming) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}

func lengthRatioDiffers(a, b string) bool {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return true
	}
	ratio := float64(la) / float64(lb)
	if ratio < 1 {
		ratio = 1 / ratio
	}
	return ratio > 1.5
}

