// Package encoder wraps the opaque NPU/accelerator inference call behind a
// small load/infer contract, with a stub implementation for selftest and
// environments without the native accelerator runtime available.
package encoder

// LoadResult reports the encoder's declared tensor shapes, read from the
// loaded model rather than assumed by the caller.
type LoadResult struct {
	InputLen  int // T_total the encoder expects on its input tensor
	Dim       int // D, the feature width per input row
	VocabSize int // V, the output vocabulary size
}

// Client is the opaque inference contract. Implementations are not safe for
// concurrent Infer calls; the orchestrator's inference stage is single-threaded
// for exactly this reason.
type Client interface {
	Load(modelPath string) (LoadResult, error)
	// Infer runs one forward pass. input is [T_total, D] row-major; the
	// result is [V, T_total] logits (already squeezed of the batch axis).
	Infer(input [][]float32) ([][]float32, error)
	Close() error
}

// New resolves the configured backend: the native accelerator runtime when
// built with the "native" tag and a model path is set, otherwise the stub.
func New(modelPath string, forceStub bool) (Client, error) {
	if forceStub || modelPath == "" {
		return NewStubClient(), nil
	}
	if NativeAvailable() {
		native, err := newNativeClient(modelPath)
		if err != nil {
			return nil, err
		}
		return native, nil
	}
	return NewStubClient(), nil
}
