package utils

import "unicode"

// CountTokens is a rough prompt-size estimate: the larger of one token per
// four runes and four tokens per three words. Markup-heavy text is dominated
// by the rune count, prose by the word count.
func CountTokens(text string) int {
	var runes, words int
	inWord := false
	for _, r := range text {
		runes++
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			words++
			inWord = true
		}
	}
	if runes == 0 {
		return 0
	}
	n := max(runes/4, words*4/3)
	return max(n, 1)
}
