package prompts

import "strings"

// Canonical subject labels.
const (
	SubjectEnglish  = "English"
	SubjectJapanese = "Japanese"
	SubjectMath     = "Math"
)

// Canonical format labels.
const (
	FormatFourChoice           = "four-choice"
	FormatFourChoiceVocabulary = "four-choice (vocabulary)"
	FormatFourChoiceGrammar    = "four-choice (grammar)"
	FormatFourChoiceIdiom      = "four-choice (idiom)"
	FormatLongPassage          = "long passage"
	FormatFreeInput            = "free input"
	FormatModernProse          = "modern prose"
	FormatClassicalJapanese    = "classical Japanese"
	FormatClassicalChinese     = "classical Chinese"
)

type formatInfo struct {
	label      string
	aliases    []string
	fourChoice bool
}

// SubjectInfo describes a subject and the formats offered for it.
type SubjectInfo struct {
	Label   string   `json:"label"`
	Aliases []string `json:"aliases"`
	Formats []string `json:"formats"`
}

var subjects = []SubjectInfo{
	{
		Label:   SubjectJapanese,
		Aliases: []string{"国語"},
		Formats: []string{FormatModernProse, FormatClassicalJapanese, FormatClassicalChinese},
	},
	{
		Label:   SubjectMath,
		Aliases: []string{"数学"},
		Formats: []string{FormatFreeInput, FormatFourChoice},
	},
	{
		Label:   SubjectEnglish,
		Aliases: []string{"英語"},
		Formats: []string{FormatFourChoiceGrammar, FormatFourChoiceVocabulary, FormatFourChoiceIdiom, FormatLongPassage},
	},
}

var formats = []formatInfo{
	{label: FormatFourChoice, aliases: []string{"四択"}, fourChoice: true},
	{label: FormatFourChoiceVocabulary, aliases: []string{"四択（語彙）", "語彙", "vocabulary"}, fourChoice: true},
	{label: FormatFourChoiceGrammar, aliases: []string{"四択（文法）", "文法", "grammar"}, fourChoice: true},
	{label: FormatFourChoiceIdiom, aliases: []string{"四択（イディオム）", "イディオム", "idiom"}, fourChoice: true},
	{label: FormatLongPassage, aliases: []string{"長文"}},
	{label: FormatFreeInput, aliases: []string{"入力"}},
	{label: FormatModernProse, aliases: []string{"現代文"}},
	{label: FormatClassicalJapanese, aliases: []string{"古文"}},
	{label: FormatClassicalChinese, aliases: []string{"漢文"}},
}

// Subjects returns the subject catalog in display order.
func Subjects() []SubjectInfo {
	out := make([]SubjectInfo, len(subjects))
	copy(out, subjects)
	return out
}

// CanonicalSubject maps an alias to its canonical label. Unknown subjects
// are returned trimmed and unchanged.
func CanonicalSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	for _, s := range subjects {
		if strings.EqualFold(subject, s.Label) {
			return s.Label
		}
		for _, a := range s.Aliases {
			if subject == a {
				return s.Label
			}
		}
	}
	return subject
}

// CanonicalFormat maps an alias to its canonical label. Full-width and
// half-width parentheses are treated alike.
func CanonicalFormat(format string) string {
	if f, ok := lookupFormat(format); ok {
		return f.label
	}
	return strings.TrimSpace(format)
}

// IsFourChoice reports whether the format is one of the four-choice formats.
func IsFourChoice(format string) bool {
	f, ok := lookupFormat(format)
	return ok && f.fourChoice
}

func lookupFormat(format string) (formatInfo, bool) {
	key := normalizeParens(strings.TrimSpace(format))
	for _, f := range formats {
		if strings.EqualFold(key, f.label) {
			return f, true
		}
		for _, a := range f.aliases {
			if strings.EqualFold(key, normalizeParens(a)) {
				return f, true
			}
		}
	}
	return formatInfo{}, false
}

var parenReplacer = strings.NewReplacer("（", "(", "）", ")")

func normalizeParens(s string) string { return parenReplacer.Replace(s) }
