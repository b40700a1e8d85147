package dedup

import "testing"

func TestAdmitNovelText(t *testing.T) {
	s := New(Params{SimilarityThreshold: 0.85, CooldownS: 4.0})
	if !s.Admit("hello world", 0) {
		t.Error("first Admit of novel text should succeed")
	}
}

func TestAdmitSuppressesNearDuplicateWithinCooldown(t *testing.T) {
	s := New(Params{SimilarityThreshold: 0.85, CooldownS: 4.0})
	s.Admit("the quick brown fox", 0)
	if s.Admit("the quick brown fox", 1) {
		t.Error("near-identical text within cooldown should be suppressed")
	}
}

func TestAdmitAllowsRepeatAfterCooldown(t *testing.T) {
	s := New(Params{SimilarityThreshold: 0.85, CooldownS: 4.0})
	s.Admit("the quick brown fox", 0)
	if !s.Admit("the quick brown fox", 10) {
		t.Error("repeat text after cooldown has elapsed should be admitted")
	}
}

func TestAdmitAllowsDissimilarTextImmediately(t *testing.T) {
	s := New(Params{SimilarityThreshold: 0.85, CooldownS: 4.0})
	s.Admit("the quick brown fox", 0)
	if !s.Admit("completely different sentence here", 0.1) {
		t.Error("dissimilar text should not be suppressed")
	}
}

func TestSuppressorRingEvictsOldEntries(t *testing.T) {
	s := New(Params{SimilarityThreshold: 0.99, CooldownS: 100})
	for i := 0; i < ringSize+1; i++ {
		letter := string(rune('a' + i))
		if !s.Admit(letter+letter, float64(i)) {
			t.Fatalf("entry %d should be admitted as distinct", i)
		}
	}
	// One entry past capacity should have evicted the very first ("aa"),
	// so an identical string is treated as novel again despite the long
	// cooldown still being in effect.
	if !s.Admit("aa", float64(ringSize+1)) {
		t.Error("evicted entry should be admitted again")
	}
}
