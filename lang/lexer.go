package lang

import (
	"strings"
	"unicode"
)

// Lex splits src into words and operator symbols.
//
// Whitespace never produces a lexeme. A word that is ended by whitespace keeps
// one trailing space and the rest of that whitespace run is dropped. A word
// preceded by whitespace that was not already absorbed this way gets one
// leading space instead. Lexing cannot fail.
func Lex(src string) []Lexeme {
	var lx lexer

	for i, r := range src {
		lx.next(i, r)
	}

	lx.flush(false)

	return lx.out
}

type lexer struct {
	out    []Lexeme
	word   strings.Builder
	start  int  // offset of the word being built
	active bool // a word is being built
	spaced bool // whitespace seen since the previous lexeme
	eaten  bool // previous lexeme was a word that kept a trailing space
}

func (lx *lexer) next(offset int, r rune) {
	if unicode.IsSpace(r) {
		if lx.active {
			lx.flush(true)

			return
		}

		lx.spaced = true

		return
	}

	if op, ok := operatorOf(r); ok {
		lx.flush(false)
		lx.out = append(lx.out, Lexeme{
			Kind:   LexemeSymbol,
			Op:     op,
			Offset: offset,
			Text:   string(r),
		})
		lx.spaced, lx.eaten = false, false

		return
	}

	if !lx.active {
		lx.active = true
		lx.start = offset

		if lx.spaced && !lx.eaten && len(lx.out) > 0 {
			lx.word.WriteByte(' ')
		}
	}

	lx.word.WriteRune(r)
}

// flush emits the pending word, if any.
func (lx *lexer) flush(trailing bool) {
	if !lx.active {
		return
	}

	if trailing {
		lx.word.WriteByte(' ')
	}

	lx.out = append(lx.out, Word(lx.start, lx.word.String()))
	lx.word.Reset()
	lx.active = false
	lx.spaced = false
	lx.eaten = trailing
}
