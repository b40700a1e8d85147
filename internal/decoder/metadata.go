package decoder

import (
	"regexp"

	"github.com/msto63/streamvox/internal/model"
)

var metaTagPattern = regexp.MustCompile(`^<\|(.+)\|>$`)

// metadataResult carries the in-progress DecodeResult plus the tokens left
// over after metadata tags are stripped, ready for detokenize.
type metadataResult struct {
	model.DecodeResult
	contentTokens []model.TokenTiming
}

// parseMetadata walks tokens in order, classifying "<|TAG|>" tokens into
// language/emotion/event/ITN fields (last-seen-wins for language and
// emotion, set-accumulation for events) and passing everything else through
// as content tokens for detokenization.
func parseMetadata(tokens []model.TokenTiming, vocab Detokenizer) metadataResult {
	var result metadataResult
	eventSet := map[string]bool{}

	for _, tok := range tokens {
		piece := vocab.Piece(tok.TokenID)
		m := metaTagPattern.FindStringSubmatch(piece)
		if m == nil {
			result.contentTokens = append(result.contentTokens, tok)
			continue
		}

		tag := m[1]
		switch tag {
		case "withitn":
			result.HasITN = true
		case "woitn":
			result.HasITN = false
		default:
			if lang, ok := model.LanguageByCode(tag); ok {
				result.Language = lang.Name
				continue
			}
			emotion := model.ParseEmotion(tag)
			if emotion.Unknown == "" {
				result.Emotion = emotion.Tag
				continue
			}
			event := model.ParseEvent(tag)
			if event.Unknown == "" {
				if !eventSet[event.Tag] {
					eventSet[event.Tag] = true
					result.AudioEvents = append(result.AudioEvents, event.Tag)
				}
				continue
			}
			// Unknown tag: dropped. It is neither re-emitted as content text
			// nor kept in any field of the result.
		}
	}
	return result
}
