package audio

import "testing"

func TestRingBufferWriteAndSnapshot(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Write([]float32{1, 2, 3})
	if rb.Len() != 3 {
		t.Fatalf("Len() = %d; want 3", rb.Len())
	}
	got := rb.Snapshot(3)
	want := []float32{1, 2, 3}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("Snapshot()[%d] = %v; want %v", i, got[i], v)
		}
	}
}

func TestRingBufferOverwritesOldestOnOverflow(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Write([]float32{1, 2, 3, 4, 5})
	if rb.Len() != 3 {
		t.Fatalf("Len() = %d; want 3 (capped at capacity)", rb.Len())
	}
	got := rb.Snapshot(3)
	want := []float32{3, 4, 5}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("Snapshot()[%d] = %v; want %v", i, got[i], v)
		}
	}
}

func TestRingBufferSnapshotCapsAtAvailable(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Write([]float32{1, 2})
	got := rb.Snapshot(5)
	if len(got) != 2 {
		t.Fatalf("Snapshot(5) len = %d; want 2 when only 2 samples written", len(got))
	}
}

func TestRingBufferCap(t *testing.T) {
	rb := NewRingBuffer(7)
	if rb.Cap() != 7 {
		t.Errorf("Cap() = %d; want 7", rb.Cap())
	}
}

func TestRingBufferSnapshotDoesNotConsume(t *testing.T) {
	rb := NewRingBuffer(5)
	rb.Write([]float32{1, 2, 3})
	rb.Snapshot(3)
	if rb.Len() != 3 {
		t.Errorf("Snapshot should not consume samples, Len() = %d; want 3", rb.Len())
	}
}
