package markdown

import (
	"strings"
	"unicode/utf8"
)

// Stats summarizes a document for the status bar.
type Stats struct {
	Words int
	Chars int
	Lines int
}

// ComputeStats counts words, runes and lines of the raw text.
func ComputeStats(text string) Stats {
	return Stats{
		Words: len(strings.Fields(text)),
		Chars: utf8.RuneCountInString(text),
		Lines: countLines(text),
	}
}
