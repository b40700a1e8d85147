package model

// Language is a closed enumeration of the languages SenseVoice-style
// encoders report, with an Unknown arm for forward compatibility with
// tags the current vocabulary doesn't define.
type Language struct {
	Code    string // "en", "zh", "ja", "ko", "yue", or "" for Unknown
	Name    string // canonical display name, e.g. "English"
	Unknown string // raw tag text when Code == ""
}

var languageByCode = map[string]Language{
	"en":  {Code: "en", Name: "English"},
	"zh":  {Code: "zh", Name: "Chinese"},
	"ja":  {Code: "ja", Name: "Japanese"},
	"ko":  {Code: "ko", Name: "Korean"},
	"yue": {Code: "yue", Name: "Cantonese"},
}

// LanguageByCode looks up a canonical language by its wire code.
func LanguageByCode(code string) (Language, bool) {
	l, ok := languageByCode[code]
	return l, ok
}

// LanguageByName reverses LanguageByCode for the name used by LanguageLock.
func LanguageByName(name string) (Language, bool) {
	for _, l := range languageByCode {
		if l.Name == name {
			return l, true
		}
	}
	return Language{}, false
}

// Emotion is a closed enumeration with an Unknown arm.
type Emotion struct {
	Tag     string
	Unknown string
}

var knownEmotions = map[string]bool{
	"HAPPY": true, "SAD": true, "ANGRY": true, "NEUTRAL": true,
	"FEARFUL": true, "DISGUSTED": true, "SURPRISED": true,
}

// ParseEmotion classifies a raw "<|TAG|>" payload as a known emotion or Unknown.
func ParseEmotion(tag string) Emotion {
	if knownEmotions[tag] {
		return Emotion{Tag: tag}
	}
	return Emotion{Unknown: tag}
}

// Event is a closed enumeration of audio-event tags with an Unknown arm.
type Event struct {
	Tag     string
	Unknown string
}

var knownEvents = map[string]bool{
	"BGM": true, "Applause": true, "Laughter": true, "Crying": true,
	"Sneeze": true, "Cough": true, "Breath": true, "Speech": true,
}

// ParseEvent classifies a raw "<|TAG|>" payload as a known event or Unknown.
func ParseEvent(tag string) Event {
	if knownEvents[tag] {
		return Event{Tag: tag}
	}
	return Event{Unknown: tag}
}

// EmotionEmoji maps known emotions to a display glyph; unknown emotions have none.
var EmotionEmoji = map[string]string{
	"HAPPY":     "😊",
	"SAD":       "😢",
	"ANGRY":     "😠",
	"NEUTRAL":   "😐",
	"FEARFUL":   "😨",
	"DISGUSTED": "🤢",
	"SURPRISED": "😲",
}

// EventEmoji maps known audio events to a display glyph.
var EventEmoji = map[string]string{
	"BGM":      "🎵",
	"Applause": "👏",
	"Laughter": "😂",
	"Crying":   "😭",
	"Sneeze":   "🤧",
	"Cough":    "😷",
	"Breath":   "💨",
	"Speech":   "🗣️",
}

// LanguageTaskID returns the embedding-table row index SenseVoice-style
// encoders use to select the language task query. "auto"/unknown codes
// fall back to row 0.
func LanguageTaskID(code string) int {
	switch code {
	case "zh":
		return 3
	case "en":
		return 4
	case "yue":
		return 7
	case "ja":
		return 11
	case "ko":
		return 12
	default:
		return 0
	}
}
