package textnorm

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes free text for matching: lower-case, trim, collapse
// internal whitespace, strip leading/trailing punctuation. No stemming.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	fields := strings.Fields(text)
	cleaned := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f != "" {
			cleaned = append(cleaned, f)
		}
	}
	return strings.Join(cleaned, " ")
}

// Tokens splits normalized text into bare words.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// ContainsPhrase reports whether the normalized phrase occurs inside the
// normalized text. Multi-word phrases match as substrings of the collapsed
// text, which keeps "sakit ng ulo" matching regardless of extra spacing.
func ContainsPhrase(normalizedText, phrase string) bool {
	phrase = Normalize(phrase)
	if phrase == "" || normalizedText == "" {
		return false
	}
	return strings.Contains(normalizedText, phrase)
}
