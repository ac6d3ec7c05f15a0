package tts

import (
	"strings"
	"unicode"
)

// Separator characters seen in rich voice labels.
const labelSeparators = "•·" // bullet, middle dot

// trimVoiceLabel strips surrounding whitespace from a raw voice setting.
func trimVoiceLabel(raw string) string {
	return strings.TrimSpace(raw)
}

// containsToken reports whether label contains voiceID as a standalone
// token, so "Emma" matches "GB Emma Natural" but not "Gemma".
func containsToken(label, voiceID string) bool {
	for _, token := range splitLabel(label) {
		if token == voiceID {
			return true
		}
	}

	return false
}

// longestAlphaToken returns the longest purely-alphabetic token of the
// label, the last-resort guess at the voice id inside a decorated string.
func longestAlphaToken(label string) string {
	longest := ""

	for _, token := range splitLabel(label) {
		if !isAlphabetic(token) {
			continue
		}

		if len(token) > len(longest) {
			longest = token
		}
	}

	if longest == "" {
		return label
	}

	return longest
}

func splitLabel(label string) []string {
	replaced := label
	for _, sep := range labelSeparators {
		replaced = strings.ReplaceAll(replaced, string(sep), " ")
	}

	return strings.Fields(replaced)
}

func isAlphabetic(token string) bool {
	if token == "" {
		return false
	}

	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}
