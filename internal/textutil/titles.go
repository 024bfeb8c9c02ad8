package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeTitle produces the canonical comparison form of a movie title:
// trimmed, lowercased, and with internal whitespace collapsed. Ban lists and
// lineup dedup both key on this form.
func NormalizeTitle(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	if lowered == "" {
		return ""
	}
	return strings.Join(strings.Fields(lowered), " ")
}

// SameTitle reports whether two titles are equal under normalization.
func SameTitle(a, b string) bool {
	return NormalizeTitle(a) == NormalizeTitle(b) && NormalizeTitle(a) != ""
}

// DisplayTitle renders a title for user-facing output, title-casing fully
// lowercased input while leaving mixed-case titles as the provider sent them.
func DisplayTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ""
	}
	if trimmed != strings.ToLower(trimmed) {
		return trimmed
	}
	return cases.Title(language.Und).String(trimmed)
}

// ContainsAnyFold reports whether text contains any of the keywords,
// case-insensitively. Empty keywords are skipped.
func ContainsAnyFold(text string, keywords []string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// ClipSentences bounds free text to at most maxSentences sentences and
// maxChars characters, whichever is hit first. Sentence boundaries are the
// usual terminators followed by whitespace.
func ClipSentences(text string, maxSentences, maxChars int) string {
	trimmed := strings.Join(strings.Fields(text), " ")
	if trimmed == "" {
		return ""
	}

	if maxSentences > 0 {
		count := 0
		for i := 0; i < len(trimmed); i++ {
			switch trimmed[i] {
			case '.', '!', '?':
				// Treat a run of terminators ("?!", "...") as one boundary.
				j := i
				for j+1 < len(trimmed) && isTerminator(trimmed[j+1]) {
					j++
				}
				if j+1 >= len(trimmed) || trimmed[j+1] == ' ' {
					count++
					if count >= maxSentences {
						trimmed = trimmed[:j+1]
						i = len(trimmed)
					}
				}
				i = j
			}
		}
	}

	if maxChars > 0 {
		runes := []rune(trimmed)
		if len(runes) > maxChars {
			trimmed = strings.TrimSpace(string(runes[:maxChars]))
		}
	}
	return trimmed
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}
