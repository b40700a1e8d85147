// Package langlock implements the auto-lock state machine that fixes the
// active language embedding once enough confident samples of a single
// language have been seen, or stays fixed throughout when the user set an
// explicit language.
package langlock

import (
	"github.com/msto63/streamvox/internal/model"
)

// Params are the thresholds controlling the Warmup→Locked transition.
type Params struct {
	Enabled    bool
	WarmupS    float64
	MinSamples int
	Confidence float64
}

// Lock owns the LanguageLockState for one session.
type Lock struct {
	params Params
	state  model.LanguageLockState
}

// New builds a Lock. If enabled is false (auto-lock disabled or the user
// configured an explicit language), the lock starts and stays in PhaseFree
// with that language.
func New(params Params, explicitLanguage string, now float64) *Lock {
	if !params.Enabled || explicitLanguage != "" {
		return &Lock{params: params, state: model.LanguageLockState{Phase: model.PhaseFree, Language: explicitLanguage}}
	}
	return &Lock{
		params: params,
		state: model.LanguageLockState{
			Phase:     model.PhaseWarmup,
			StartedAt: now,
			Samples:   map[string]int{},
		},
	}
}

// ActiveLanguage returns the language code currently used for feature
// building: the locked/free language, or "" during warmup (meaning "auto").
// State().Language tracks display names (as reported by the decoder), so
// this converts back to a code via model.LanguageByName when the stored
// value is a name; an explicit configured language is already a code and
// passes through unchanged.
func (l *Lock) ActiveLanguage() string {
	if l.state.Phase == model.PhaseWarmup {
		return ""
	}
	if lang, ok := model.LanguageByName(l.state.Language); ok {
		return lang.Code
	}
	return l.state.Language
}

// State returns a snapshot of the current lock state.
func (l *Lock) State() model.LanguageLockState {
	return l.state
}

// Status is the tray/TUI-facing view of lock progress: how far warmup has
// gotten and how confident the current leading language is, alongside the
// raw phase/language State already reports.
type Status struct {
	Phase            model.LanguageLockPhase
	Language         string
	LeadingLanguage  string // leading warmup candidate; equals Language once locked/free
	WarmupProgress   float64 // elapsed/WarmupS, clamped to [0,1]; 1 outside warmup
	LeaderConfidence float64 // leaderCount/Total; 0 if no samples observed yet
}

// Status computes a Status snapshot as of now (session seconds, same clock
// as Observe).
func (l *Lock) Status(now float64) Status {
	st := l.state
	status := Status{Phase: st.Phase, Language: st.Language}

	if st.Phase != model.PhaseWarmup {
		status.LeadingLanguage = st.Language
		status.WarmupProgress = 1
		status.LeaderConfidence = 1
		return status
	}

	if l.params.WarmupS > 0 {
		progress := (now - st.StartedAt) / l.params.WarmupS
		if progress < 0 {
			progress = 0
		} else if progress > 1 {
			progress = 1
		}
		status.WarmupProgress = progress
	}

	leader, leaderCount := "", 0
	for lang, count := range st.Samples {
		if count > leaderCount {
			leader, leaderCount = lang, count
		}
	}
	status.LeadingLanguage = leader
	if st.Total > 0 {
		status.LeaderConfidence = float64(leaderCount) / float64(st.Total)
	}
	return status
}

// Observe feeds one successful DecodeResult's detected language into the
// warmup sample counts and evaluates the lock condition. No-op outside
// PhaseWarmup or when language is empty.
func (l *Lock) Observe(language string, now float64) {
	if l.state.Phase != model.PhaseWarmup || language == "" {
		return
	}
	l.state.Samples[language]++
	l.state.Total++

	if now-l.state.StartedAt < l.params.WarmupS {
		return
	}
	if l.state.Total < l.params.MinSamples {
		return
	}

	leader, leaderCount := "", 0
	for lang, count := range l.state.Samples {
		if count > leaderCount {
			leader, leaderCount = lang, count
		}
	}
	if leader == "" {
		return
	}
	if float64(leaderCount)/float64(l.state.Total) >= l.params.Confidence {
		l.state.Phase = model.PhaseLocked
		l.state.Language = leader
		return
	}
	// Warmup elapsed but no language cleared the confidence bar yet: keep
	// collecting rather than locking permanently to the current leader.
}
