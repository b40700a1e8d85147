// Package dedup is a coarse safety net on top of the timeline merger: it
// suppresses near-identical text re-emitted within a short cooldown window,
// principally for very short chunks where the merger's word-level logic
// doesn't catch the repeat.
package dedup

import "github.com/msto63/streamvox/internal/textsim"

const ringSize = 6

// Params are the similarity and cooldown thresholds.
type Params struct {
	SimilarityThreshold float64
	CooldownS           float64
}

type entry struct {
	text string
	atS  float64
}

// Suppressor holds the last few emitted strings and their timestamps.
type Suppressor struct {
	params  Params
	ring    [ringSize]entry
	count   int
	next    int
}

// New builds an empty Suppressor.
func New(params Params) *Suppressor {
	return &Suppressor{params: params}
}

// Admit reports whether candidate is novel enough to emit at time nowS. On
// admission, candidate is recorded into the ring.
func (s *Suppressor) Admit(candidate string, nowS float64) bool {
	for i := 0; i < s.count; i++ {
		e := s.ring[i]
		if textsim.Similarity(candidate, e.text) >= s.params.SimilarityThreshold && (nowS-e.atS) < s.params.CooldownS {
			return false
		}
	}
	s.ring[s.next] = entry{text: candidate, atS: nowS}
	s.next = (s.next + 1) % ringSize
	if s.count < ringSize {
		s.count++
	}
	return true
}
