package encoder

import "testing"

func TestNewReturnsStubWhenForced(t *testing.T) {
	client, err := New("/some/model/path", true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := client.(*StubClient); !ok {
		t.Errorf("expected a StubClient when forceStub is set, got %T", client)
	}
}

func TestNewReturnsStubWhenModelPathEmpty(t *testing.T) {
	client, err := New("", false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := client.(*StubClient); !ok {
		t.Errorf("expected a StubClient for an empty model path, got %T", client)
	}
}

func TestNewFallsBackToStubWithoutNativeBuild(t *testing.T) {
	client, err := New("/some/model/path", false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := client.(*StubClient); !ok {
		t.Errorf("expected a StubClient since this binary has no native backend, got %T", client)
	}
}

func TestNativeAvailableIsFalseWithoutBuildTag(t *testing.T) {
	if NativeAvailable() {
		t.Error("NativeAvailable() should be false in a non-native build")
	}
}

func TestStubClientLoadReportsDeclaredShapes(t *testing.T) {
	c := NewStubClient()
	res, err := c.Load("ignored")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.InputLen == 0 || res.Dim == 0 || res.VocabSize == 0 {
		t.Errorf("Load() returned zero-valued shapes: %+v", res)
	}
}

func TestStubClientInferShapeMatchesDeclaredVocab(t *testing.T) {
	c := NewStubClient()
	res, _ := c.Load("ignored")
	input := make([][]float32, 10)
	out, err := c.Infer(input)
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	if len(out) != res.VocabSize {
		t.Fatalf("Infer() returned %d rows; want VocabSize %d", len(out), res.VocabSize)
	}
	if len(out[0]) != len(input) {
		t.Errorf("Infer() frame dimension = %d; want %d", len(out[0]), len(input))
	}
}

func TestStubClientInferBiasesTowardBlank(t *testing.T) {
	c := NewStubClient()
	input := make([][]float32, 5)
	out, _ := c.Infer(input)
	for frame := 0; frame < len(input); frame++ {
		if out[0][frame] <= out[1][frame] {
			t.Errorf("frame %d: blank logit %v should dominate non-blank logit %v", frame, out[0][frame], out[1][frame])
		}
	}
}

func TestStubClientCloseIsNoop(t *testing.T) {
	c := NewStubClient()
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v; want nil", err)
	}
}
