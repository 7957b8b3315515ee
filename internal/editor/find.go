package editor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match is a half-open byte range of one search hit.
type Match struct {
	Start int
	End   int
}

// FindState holds find/replace state for a document: the search options,
// the match list and the current match index.
type FindState struct {
	SearchTerm    string
	ReplaceTerm   string
	CaseSensitive bool
	WholeWord     bool
	UseRegex      bool

	current int
	matches []Match
}

func NewFindState() *FindState {
	return &FindState{}
}

// FindMatches scans text for the search term and rebuilds the match
// list. Returns the number of matches found.
func (f *FindState) FindMatches(text string) int {
	f.matches = f.matches[:0]

	if f.SearchTerm == "" {
		return 0
	}

	if f.UseRegex {
		f.findRegex(text)
	} else {
		f.findLiteral(text)
	}

	if len(f.matches) > 0 && f.current >= len(f.matches) {
		f.current = 0
	}
	return len(f.matches)
}

func (f *FindState) findLiteral(text string) {
	haystack := text
	needle := f.SearchTerm
	if !f.CaseSensitive {
		haystack = strings.ToLower(text)
		needle = strings.ToLower(needle)
	}

	start := 0
	for {
		pos := strings.Index(haystack[start:], needle)
		if pos < 0 {
			return
		}
		matchStart := start + pos
		matchEnd := matchStart + len(needle)

		if f.WholeWord && !wordBoundaries(text, matchStart, matchEnd) {
			start = matchStart + 1
			continue
		}

		f.matches = append(f.matches, Match{Start: matchStart, End: matchEnd})
		start = matchEnd
	}
}

func (f *FindState) findRegex(text string) {
	pattern := f.SearchTerm
	if !f.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	if f.WholeWord {
		pattern = `\b` + pattern + `\b`
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		// Invalid pattern finds nothing.
		return
	}
	for _, loc := range re.FindAllStringIndex(text, -1) {
		f.matches = append(f.matches, Match{Start: loc[0], End: loc[1]})
	}
}

func wordBoundaries(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// NextMatch advances to the next match, wrapping at the end.
func (f *FindState) NextMatch() (int, bool) {
	if len(f.matches) == 0 {
		return 0, false
	}
	f.current = (f.current + 1) % len(f.matches)
	return f.current, true
}

// PrevMatch steps back to the previous match, wrapping at the start.
func (f *FindState) PrevMatch() (int, bool) {
	if len(f.matches) == 0 {
		return 0, false
	}
	if f.current == 0 {
		f.current = len(f.matches) - 1
	} else {
		f.current--
	}
	return f.current, true
}

// CurrentMatch returns the position of the current match.
func (f *FindState) CurrentMatch() (Match, bool) {
	if f.current >= len(f.matches) {
		return Match{}, false
	}
	return f.matches[f.current], true
}

// ReplaceCurrent replaces the current match with the replace term and
// returns the new text.
func (f *FindState) ReplaceCurrent(text string) (string, bool) {
	m, ok := f.CurrentMatch()
	if !ok {
		return text, false
	}
	return text[:m.Start] + f.ReplaceTerm + text[m.End:], true
}

// ReplaceAll replaces every match with the replace term.
func (f *FindState) ReplaceAll(text string) string {
	if len(f.matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	lastEnd := 0
	for _, m := range f.matches {
		b.WriteString(text[lastEnd:m.Start])
		b.WriteString(f.ReplaceTerm)
		lastEnd = m.End
	}
	b.WriteString(text[lastEnd:])
	return b.String()
}

// Clear drops all matches and resets the cursor.
func (f *FindState) Clear() {
	f.matches = f.matches[:0]
	f.current = 0
}

// HasMatches reports whether the last scan found anything.
func (f *FindState) HasMatches() bool { return len(f.matches) > 0 }

// MatchCount returns the number of matches from the last scan.
func (f *FindState) MatchCount() int { return len(f.matches) }

// Find returns the editor's find/replace state.
func (e *Editor) Find() *FindState { return e.find }

// Search scans the current text for a term and returns the match count.
func (e *Editor) Search(term string) int {
	e.find.SearchTerm = term
	return e.find.FindMatches(e.doc.Content())
}

// MatchLine converts a match to its 1-indexed document line.
func (e *Editor) MatchLine(m Match) int {
	return strings.Count(e.doc.Content()[:m.Start], "\n") + 1
}

// ReplaceNext replaces the current match and rescans.
func (e *Editor) ReplaceNext() bool {
	m, ok := e.find.CurrentMatch()
	if !ok {
		return false
	}
	line := e.MatchLine(m)
	text, _ := e.find.ReplaceCurrent(e.doc.Content())
	e.doc.SetContent(text)
	e.log.EditApplied("replace", line)
	e.Cycle()
	e.find.FindMatches(text)
	return true
}

// ReplaceAllMatches replaces every match and rescans. Returns how many
// replacements were made.
func (e *Editor) ReplaceAllMatches() int {
	n := e.find.MatchCount()
	if n == 0 {
		return 0
	}
	text := e.find.ReplaceAll(e.doc.Content())
	e.doc.SetContent(text)
	e.log.EditApplied("replace all", 0)
	e.Cycle()
	e.find.FindMatches(text)
	return n
}
