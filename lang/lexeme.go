package lang

import (
	"strconv"
	"unicode/utf8"
)

// Operator is one of the single-character symbols recognized by the lexer.
type Operator uint8

const (
	OpAmpersand    Operator = iota + 1 // &
	OpAt                               // @
	OpBackSlash                        // \
	OpCloseBrace                       // }
	OpCloseParam                       // )
	OpComma                            // ,
	OpDollar                           // $
	OpDot                              // .
	OpEquals                           // =
	OpForwardSlash                     // /
	OpOpenBrace                        // {
	OpOpenParam                        // (
	OpPound                            // #
	OpQuote                            // " or '
	OpStar                             // *
)

var operatorChar = [...]rune{
	OpAmpersand:    '&',
	OpAt:           '@',
	OpBackSlash:    '\\',
	OpCloseBrace:   '}',
	OpCloseParam:   ')',
	OpComma:        ',',
	OpDollar:       '$',
	OpDot:          '.',
	OpEquals:       '=',
	OpForwardSlash: '/',
	OpOpenBrace:    '{',
	OpOpenParam:    '(',
	OpPound:        '#',
	OpQuote:        '"',
	OpStar:         '*',
}

var operatorName = [...]string{
	OpAmpersand:    "ampersand",
	OpAt:           "at",
	OpBackSlash:    "backslash",
	OpCloseBrace:   "close brace",
	OpCloseParam:   "close paren",
	OpComma:        "comma",
	OpDollar:       "dollar",
	OpDot:          "dot",
	OpEquals:       "equals",
	OpForwardSlash: "slash",
	OpOpenBrace:    "open brace",
	OpOpenParam:    "open paren",
	OpPound:        "pound",
	OpQuote:        "quote",
	OpStar:         "star",
}

// operatorOf returns the operator for r, if r is an operator character.
func operatorOf(r rune) (Operator, bool) {
	switch r {
	case '&':
		return OpAmpersand, true
	case '@':
		return OpAt, true
	case '\\':
		return OpBackSlash, true
	case '}':
		return OpCloseBrace, true
	case ')':
		return OpCloseParam, true
	case ',':
		return OpComma, true
	case '$':
		return OpDollar, true
	case '.':
		return OpDot, true
	case '=':
		return OpEquals, true
	case '/':
		return OpForwardSlash, true
	case '{':
		return OpOpenBrace, true
	case '(':
		return OpOpenParam, true
	case '#':
		return OpPound, true
	case '"', '\'':
		return OpQuote, true
	case '*':
		return OpStar, true
	}

	return 0, false
}

// Char returns the canonical display character of op.
func (op Operator) Char() rune {
	if int(op) >= len(operatorChar) || op == 0 {
		return utf8.RuneError
	}

	return operatorChar[op]
}

// String returns the name of op.
func (op Operator) String() string {
	if int(op) >= len(operatorName) || op == 0 {
		return "Operator(" + strconv.Itoa(int(op)) + ")"
	}

	return operatorName[op]
}

// LexemeKind distinguishes words from operator symbols.
type LexemeKind uint8

const (
	LexemeWord LexemeKind = iota
	LexemeSymbol
)

// Lexeme is a single word or operator symbol and its byte offset in the
// source.
//
// Words carry their text, including at most one boundary space on either
// side. Symbols carry the operator and the character actually written, which
// only differs from [Operator.Char] for single quotes.
type Lexeme struct {
	Kind   LexemeKind
	Op     Operator
	Offset int
	Text   string
}

// Word returns a word lexeme.
func Word(offset int, text string) Lexeme {
	return Lexeme{Kind: LexemeWord, Offset: offset, Text: text}
}

// Symbol returns an operator lexeme displayed with its canonical character.
func Symbol(offset int, op Operator) Lexeme {
	return Lexeme{
		Kind:   LexemeSymbol,
		Op:     op,
		Offset: offset,
		Text:   string(op.Char()),
	}
}

// Is reports whether l is a symbol lexeme for op.
func (l Lexeme) Is(op Operator) bool {
	return l.Kind == LexemeSymbol && l.Op == op
}

// IsWord reports whether l is a word lexeme.
func (l Lexeme) IsWord() bool { return l.Kind == LexemeWord }

// String returns the literal text of l.
func (l Lexeme) String() string { return l.Text }

// Len returns the number of source bytes l spans, ignoring the boundary
// spaces of a word.
func (l Lexeme) Len() int {
	if l.Kind == LexemeSymbol {
		return len(l.Text)
	}

	n := len(l.Text)
	if n > 0 && l.Text[0] == ' ' {
		n--
	}

	if n > 0 && l.Text[len(l.Text)-1] == ' ' {
		n--
	}

	return max(n, 1)
}

// describe returns a short human-readable form of l for error messages.
func (l Lexeme) describe() string {
	if l.Kind == LexemeSymbol {
		return l.Op.String() + " " + strconv.Quote(l.Text)
	}

	return "word " + strconv.Quote(l.Text)
}
