package decoder

import (
	"bufio"
	"os"

	"github.com/msto63/streamvox/internal/apperr"
)

// Vocabulary is a flat list of subword pieces indexed by token id, loaded
// from a plain newline-delimited file (one piece per line, blank lines
// preserved as empty pieces so ids stay aligned). No tokenizer/BPE library
// appears anywhere in the reference pack, so this loader is a small
// hand-rolled stand-in for a full SentencePiece model.
type Vocabulary struct {
	pieces []string
}

// Piece returns the subword text for id, or "" if id is out of range.
func (v *Vocabulary) Piece(id int) string {
	if id < 0 || id >= len(v.pieces) {
		return ""
	}
	return v.pieces[id]
}

// Size reports the vocabulary length.
func (v *Vocabulary) Size() int { return len(v.pieces) }

// LoadVocabulary reads a piece-per-line vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.New(apperr.Load, "decoder", "open_vocab", err).WithField("path", path)
	}
	defer f.Close()

	var pieces []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		pieces = append(pieces, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.New(apperr.Load, "decoder", "scan_vocab", err).WithField("path", path)
	}
	return &Vocabulary{pieces: pieces}, nil
}
