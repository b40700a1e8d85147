package encoder

import "math/rand"

// StubClient produces deterministic-shaped, low-confidence logits without
// invoking any accelerator. Used by selftest and whenever the native
// backend is unavailable or explicitly disabled.
type StubClient struct {
	result LoadResult
	rng    *rand.Rand
}

// NewStubClient returns a Client with plausible but fixed declared shapes.
func NewStubClient() *StubClient {
	return &StubClient{
		result: LoadResult{InputLen: 171, Dim: 560, VocabSize: 25055},
		rng:    rand.New(rand.NewSource(1)),
	}
}

func (c *StubClient) Load(modelPath string) (LoadResult, error) {
	return c.result, nil
}

// Infer returns a [V, T_total] logit matrix heavily biased toward the blank
// id (0), so downstream decoding naturally collapses to near-empty output
// rather than fabricating plausible-looking transcripts.
func (c *StubClient) Infer(input [][]float32) ([][]float32, error) {
	t := len(input)
	out := make([][]float32, c.result.VocabSize)
	for v := range out {
		out[v] = make([]float32, t)
	}
	for frame := 0; frame < t; frame++ {
		out[0][frame] = 8.0 + float32(c.rng.Float64())
	}
	return out, nil
}

func (c *StubClient) Close() error { return nil }
