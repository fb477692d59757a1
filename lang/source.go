package lang

import (
	"strings"
	"unicode/utf8"
)

// Source is template text and the label used for it in diagnostics.
type Source struct {
	Name string
	Text string
}

// NewSource returns a Source with the given label and text.
func NewSource(name, text string) *Source {
	return &Source{Name: name, Text: text}
}

// Position returns the 1-based line and column of the byte offset.
// Columns count runes, not bytes. A nil Source has no positions.
func (s *Source) Position(offset int) (line, col int) {
	if s == nil {
		return 0, 0
	}

	offset = min(max(offset, 0), len(s.Text))

	lineStart := strings.LastIndexByte(s.Text[:offset], '\n') + 1
	line = strings.Count(s.Text[:lineStart], "\n") + 1
	col = utf8.RuneCountInString(s.Text[lineStart:offset]) + 1

	return line, col
}

// Line returns the text of the 1-based line n without its line terminator.
func (s *Source) Line(n int) string {
	if s == nil || n < 1 {
		return ""
	}

	rest := s.Text
	for range n - 1 {
		i := strings.IndexByte(rest, '\n')
		if i < 0 {
			return ""
		}

		rest = rest[i+1:]
	}

	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}

	return strings.TrimSuffix(rest, "\r")
}

// Span is a byte range of a Source.
type Span struct {
	Source *Source
	Offset int
	Length int
}

// spanOf returns the span covered by l in src.
func spanOf(src *Source, l Lexeme) Span {
	return Span{Source: src, Offset: l.Offset, Length: l.Len()}
}

// IsZero reports whether s refers to no source.
func (s Span) IsZero() bool { return s.Source == nil }
