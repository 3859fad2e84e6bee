// Package snippet locates a bounded excerpt of source text around a concept
// mention, used as quiz context.
package snippet

import "unicode"

// Window is the number of characters of context kept on each side of the
// match.
const Window = 200

// Extract returns up to Window characters before and after the first
// case-insensitive occurrence of topic in content, with "..." affixes where
// the excerpt was truncated. It returns "" when topic is absent. The window
// is measured in runes, not bytes, so multi-byte text never gets cut
// mid-character.
func Extract(content, topic string) string {
	if content == "" || topic == "" {
		return ""
	}
	runes := []rune(content)
	target := []rune(topic)
	idx := indexFold(runes, target)
	if idx == -1 {
		return ""
	}

	start := idx - Window
	if start < 0 {
		start = 0
	}
	end := idx + len(target) + Window
	if end > len(runes) {
		end = len(runes)
	}
	excerpt := runes[start:end]

	// Clamping can in principle cut the match itself; re-verify before
	// returning the excerpt.
	if indexFold(excerpt, target) == -1 {
		return ""
	}

	out := string(excerpt)
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out = out + "..."
	}
	return out
}

// indexFold returns the rune index of the first case-insensitive occurrence
// of target in runes, or -1. Comparing rune by rune keeps byte offsets out of
// the search entirely, so lowercasing can never misalign the window.
func indexFold(runes, target []rune) int {
	if len(target) == 0 || len(target) > len(runes) {
		return -1
	}
	for i := 0; i+len(target) <= len(runes); i++ {
		match := true
		for j, r := range target {
			if unicode.ToLower(runes[i+j]) != unicode.ToLower(r) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
