// Package timeline owns the global, append-mostly word timeline. It is the
// single-owner structure that decides which words from a chunk are new
// enough to emit.
package timeline

import "github.com/msto63/streamvox/internal/model"

// Params control how chunk-local words are folded into the global timeline.
type Params struct {
	Enabled               bool
	MinWordConfidence     float64
	OverlapConfidence     float64
	ConfidenceReplacement bool
}

// Merger owns the TimelineState for one session.
type Merger struct {
	params Params
	state  model.TimelineState
}

// New builds an empty Merger.
func New(params Params) *Merger {
	return &Merger{params: params}
}

// Merge adjusts chunk-local timings to global time and merges the chunk's
// words into the timeline, returning only the newly-appended words (the
// formatter emits exactly those).
func (m *Merger) Merge(words []model.WordTiming, chunkStartTimeMs float64) []model.WordTiming {
	var appended []model.WordTiming

	for _, w := range words {
		w.GlobalStartMs = w.StartMs + chunkStartTimeMs
		w.GlobalEndMs = w.EndMs + chunkStartTimeMs

		if !m.params.Enabled {
			m.state.Words = append(m.state.Words, w)
			m.state.LastEmittedEndMs = w.GlobalEndMs
			appended = append(appended, w)
			continue
		}

		if w.Confidence < m.params.MinWordConfidence {
			continue
		}
		if w.GlobalEndMs <= m.state.LastEmittedEndMs {
			continue
		}

		straddles := w.GlobalStartMs < m.state.LastEmittedEndMs && m.state.LastEmittedEndMs < w.GlobalEndMs
		if straddles {
			if !m.params.ConfidenceReplacement || len(m.state.Words) == 0 {
				continue
			}
			last := &m.state.Words[len(m.state.Words)-1]
			if w.Confidence > last.Confidence+(m.params.OverlapConfidence-0.5) {
				*last = w
				m.state.LastEmittedEndMs = w.GlobalEndMs
				appended = append(appended, w)
			}
			continue
		}

		m.state.Words = append(m.state.Words, w)
		m.state.LastEmittedEndMs = w.GlobalEndMs
		appended = append(appended, w)
	}

	return appended
}

// State returns a snapshot of the full timeline, for statistics/telemetry.
func (m *Merger) State() model.TimelineState {
	return m.state
}
