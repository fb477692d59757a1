package repl

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "vars", "clear", "quit"}

// Sigils introducing a completable name.
const (
	sigilComponent = '&'
	sigilFunction  = '$'
	sigilVariable  = '@'
)

func isSigil(r rune) bool {
	return r == sigilComponent || r == sigilFunction || r == sigilVariable
}

// isWordBoundary reports whether r separates words for completion purposes.
// Dots are not boundaries since they join path segments and function
// namespaces.
func isWordBoundary(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}

	switch r {
	case '\\', '{', '}', '(', ')', ',', '=', '/', '#', '"', '\'', '*':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte boundaries within input.
// A word starts after a boundary or at a sigil, which it includes.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size

		if isSigil(r) {
			break
		}
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) || isSigil(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completions for a word beginning with a sigil, each
// including the sigil.
func candidates(ctx context.Context, s *Session, word string) []string {
	r, _ := utf8.DecodeRuneInString(word)

	var names []string

	switch r {
	case sigilComponent:
		names = s.Components(ctx)
	case sigilFunction:
		names = s.Functions(ctx)
	case sigilVariable:
		names = s.Paths()
	default:
		return nil
	}

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = string(r) + name
	}

	return out
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. A bare sigil lists every candidate unfiltered.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	word, wordStart, wordEnd := wordBounds(m.input.Value(), m.input.Position())
	if word == "" {
		return nil, wordStart, wordEnd
	}

	var list []string

	if m.mode == modeCtrl {
		list = ctrlCommands
	} else {
		list = candidates(m.ctxFunc(), m.session, word)
	}

	if len(list) == 0 {
		return nil, wordStart, wordEnd
	}

	if utf8.RuneCountInString(word) == 1 && isSigil(rune(word[0])) {
		matches = make(fuzzy.Matches, len(list))
		for i, c := range list {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, list), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	selected int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		entry := renderCandidate(match, tabActive && i == selected)
		if i > 0 {
			entry = sep + entry
		}

		w := lipgloss.Width(entry)

		if i > 0 && i < len(matches)-1 && used+w+reserve > width {
			b.WriteString(sep + ellipsis)

			break
		}

		b.WriteString(entry)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters in bold.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	if selected {
		base = selectedStyle
	}

	bold := base.Bold(true)

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(bold.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
