// Package decoder turns raw encoder logits into word-level transcripts:
// CTC argmax decoding with consecutive-run collapsing, inline metadata-tag
// parsing, and subword detokenization into timed words.
package decoder

import (
	"math"
	"strings"

	"github.com/msto63/streamvox/internal/model"
)

const blankTokenID = 0

// blankPosteriorGate drops a chunk outright when the mean blank probability
// across all frames exceeds this threshold, ahead of full CTC collapse.
// Not in the distilled component design; carried over from the reference
// decoder because it is cheap and measurably reduces silence-chunk churn.
const blankPosteriorGate = 0.97

// run is one collapsed run of identical consecutive token ids.
type run struct {
	tokenID    int
	startFrame int
	endFrame   int
	confidence float64
}

// Detokenizer maps token ids to subword piece text. The vocabulary uses a
// word-boundary marker prefix (U+2581, "▁") on pieces that start a new word.
type Detokenizer interface {
	Piece(id int) string
}

// Decoder is a stateless CTC decoder parameterized by a vocabulary.
type Decoder struct {
	vocab Detokenizer
}

// NewDecoder builds a Decoder over the given subword vocabulary.
func NewDecoder(vocab Detokenizer) *Decoder {
	return &Decoder{vocab: vocab}
}

// Decode runs the full CTC-to-words pipeline over [V, T] logits for one
// chunk and returns the parsed words, metadata, and concatenated text.
// chunkDurationMs is the logical window duration used to convert frame
// indices to milliseconds.
func (d *Decoder) Decode(logits [][]float64, chunkDurationMs float64) model.DecodeResult {
	vocabSize := len(logits)
	if vocabSize == 0 {
		return model.DecodeResult{}
	}
	numFrames := len(logits[0])
	if numFrames == 0 {
		return model.DecodeResult{}
	}

	probs := softmaxOverVocab(logits)

	if avgBlankProb(probs) > blankPosteriorGate {
		return model.DecodeResult{}
	}

	ids, conf := argmax(probs)
	runs := collapseRuns(ids, conf)
	runs = removeBlankRuns(runs)
	if len(runs) == 0 {
		return model.DecodeResult{}
	}

	msPerFrame := chunkDurationMs / float64(numFrames)
	tokens := make([]model.TokenTiming, len(runs))
	for i, r := range runs {
		tokens[i] = model.TokenTiming{
			TokenID:    r.tokenID,
			StartMs:    float64(r.startFrame) * msPerFrame,
			EndMs:      float64(r.endFrame) * msPerFrame,
			Confidence: r.confidence,
		}
	}

	result := parseMetadata(tokens, d.vocab)
	result.Words = detokenize(result.contentTokens, d.vocab)
	result.Text = joinWords(result.Words)
	result.AvgConfidence = avgWordConfidence(result.Words)
	return result.DecodeResult
}

func softmaxOverVocab(logits [][]float64) [][]float64 {
	vocabSize := len(logits)
	numFrames := len(logits[0])
	probs := make([][]float64, vocabSize)
	for v := range probs {
		probs[v] = make([]float64, numFrames)
	}

	for t := 0; t < numFrames; t++ {
		max := logits[0][t]
		for v := 1; v < vocabSize; v++ {
			if logits[v][t] > max {
				max = logits[v][t]
			}
		}
		var sum float64
		exps := make([]float64, vocabSize)
		for v := 0; v < vocabSize; v++ {
			e := math.Exp(logits[v][t] - max)
			exps[v] = e
			sum += e
		}
		for v := 0; v < vocabSize; v++ {
			probs[v][t] = exps[v] / sum
		}
	}
	return probs
}

func avgBlankProb(probs [][]float64) float64 {
	if len(probs) <= blankTokenID {
		return 0
	}
	blank := probs[blankTokenID]
	if len(blank) == 0 {
		return 0
	}
	var sum float64
	for _, p := range blank {
		sum += p
	}
	return sum / float64(len(blank))
}

func argmax(probs [][]float64) (ids []int, conf []float64) {
	numFrames := len(probs[0])
	ids = make([]int, numFrames)
	conf = make([]float64, numFrames)
	for t := 0; t < numFrames; t++ {
		bestV, bestP := 0, probs[0][t]
		for v := 1; v < len(probs); v++ {
			if probs[v][t] > bestP {
				bestV, bestP = v, probs[v][t]
			}
		}
		ids[t] = bestV
		conf[t] = bestP
	}
	return ids, conf
}

func collapseRuns(ids []int, conf []float64) []run {
	var runs []run
	for t := 0; t < len(ids); t++ {
		if t > 0 && ids[t] == ids[t-1] {
			last := &runs[len(runs)-1]
			last.endFrame = t
			if conf[t] > last.confidence {
				last.confidence = conf[t]
			}
			continue
		}
		runs = append(runs, run{tokenID: ids[t], startFrame: t, endFrame: t, confidence: conf[t]})
	}
	return runs
}

func removeBlankRuns(runs []run) []run {
	out := runs[:0]
	for _, r := range runs {
		if r.tokenID != blankTokenID {
			out = append(out, r)
		}
	}
	return out
}

const wordBoundaryMarker = "▁"

// detokenize merges subword pieces into words, attaching pieces with no
// alphanumeric content (punctuation) to the preceding word instead of
// emitting them as standalone words.
func detokenize(tokens []model.TokenTiming, vocab Detokenizer) []model.WordTiming {
	var words []model.WordTiming
	// confSum/pieceCount run alongside words, tracking the true sum and
	// count of constituent piece confidences so the final Confidence is an
	// unweighted mean, not a running pairwise average that overweights the
	// most recently merged piece.
	var confSum []float64
	var pieceCount []int
	for _, tok := range tokens {
		piece := vocab.Piece(tok.TokenID)
		if piece == "" {
			continue
		}
		startsWord := strings.HasPrefix(piece, wordBoundaryMarker)
		text := strings.TrimPrefix(piece, wordBoundaryMarker)

		isPunct := !hasAlnum(text)

		switch {
		case len(words) == 0:
			words = append(words, model.WordTiming{Text: text, StartMs: tok.StartMs, EndMs: tok.EndMs, Confidence: tok.Confidence})
			confSum = append(confSum, tok.Confidence)
			pieceCount = append(pieceCount, 1)
		case startsWord && !isPunct:
			words = append(words, model.WordTiming{Text: text, StartMs: tok.StartMs, EndMs: tok.EndMs, Confidence: tok.Confidence})
			confSum = append(confSum, tok.Confidence)
			pieceCount = append(pieceCount, 1)
		default:
			i := len(words) - 1
			last := &words[i]
			last.Text += text
			last.EndMs = tok.EndMs
			confSum[i] += tok.Confidence
			pieceCount[i]++
			last.Confidence = confSum[i] / float64(pieceCount[i])
		}
	}
	return words
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return true
		}
		if r > 127 {
			// non-ASCII scripts (CJK, etc.) count as alphanumeric content.
			return true
		}
	}
	return false
}

func joinWords(words []model.WordTiming) string {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}

func avgWordConfidence(words []model.WordTiming) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}
