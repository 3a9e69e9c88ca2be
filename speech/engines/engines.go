// Package engines contains the synthesis engine implementations and
// the playback driver they share. An engine turns text into PCM, the
// driver plays it on an audio sink and reports word boundaries from
// the playback position.
package engines

import (
	"unicode"
)

// WordOffsets returns the rune offset of the first rune of each word
// in text. Words are maximal runs of non-space runes.
func WordOffsets(text string) []int {
	var offsets []int
	inWord := false
	i := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			offsets = append(offsets, i)
			inWord = true
		}
		i++
	}
	return offsets
}
