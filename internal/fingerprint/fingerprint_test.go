package fingerprint

import (
	"testing"

	"github.com/msto63/streamvox/internal/model"
)

func chunkWithFingerprint(b byte) model.AudioChunk {
	var fp [16]byte
	fp[0] = b
	return model.AudioChunk{Fingerprint: fp}
}

func TestAdmitNovelChunk(t *testing.T) {
	c := NewCache()
	if !c.Admit(chunkWithFingerprint(1)) {
		t.Error("first Admit of a novel chunk should return true")
	}
}

func TestAdmitRejectsRepeat(t *testing.T) {
	c := NewCache()
	chunk := chunkWithFingerprint(7)
	if !c.Admit(chunk) {
		t.Fatal("first Admit should succeed")
	}
	if c.Admit(chunk) {
		t.Error("second Admit of the identical fingerprint should be rejected")
	}
}

func TestCacheEvictsOldestBeyondCapacity(t *testing.T) {
	c := NewCache()
	for i := 0; i <= cacheSize; i++ {
		if !c.Admit(chunkWithFingerprint(byte(i))) {
			t.Fatalf("Admit of distinct fingerprint %d should succeed", i)
		}
	}
	// One insert past capacity has overwritten the very first fingerprint
	// in the ring buffer, so it should be admitted again as if novel.
	if !c.Admit(chunkWithFingerprint(0)) {
		t.Error("evicted fingerprint should be admitted again")
	}
}
