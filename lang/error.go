package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput          = NewError("failed to read input")
	ErrInvalidVariables   = NewError("variables must be a JSON object")
	ErrInvalidLocale      = NewError("invalid locale tag")
	ErrDuplicateComponent = NewError("component already defined")
	ErrDuplicateFunction  = NewError("function already registered")
	ErrRegistrySealed     = NewError("registry is sealed for rendering")
	ErrResourceConflict   = NewError(
		"element resource and children are mutually exclusive",
	)
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message, so that
// copies made by [Error.Wrap] and [Error.With] still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ParseErrorKind classifies a [ParseError].
type ParseErrorKind uint8

const (
	ParseEOF ParseErrorKind = iota
	ParseExpectedVariable
	ParseExpectedCompCall
	ParseInvalidComponent
	ParseInvalidElement
	ParseInvalidFunctionCall
	ParseInvalidTokenInAttributes
	ParseNoNameAttachedToClass
	ParseNoNameAttachedToID
	ParseUnclosedOpenBraces
	ParseUnclosedCloseBraces
	ParseUnexpectedEOF
	ParseUnexpectedToken
)

var parseErrorText = [...]string{
	ParseEOF:                      "end of file",
	ParseExpectedVariable:         "expected variable name",
	ParseExpectedCompCall:         "expected component name",
	ParseInvalidComponent:         "invalid component",
	ParseInvalidElement:           "invalid element",
	ParseInvalidFunctionCall:      "invalid function call",
	ParseInvalidTokenInAttributes: "invalid token in attributes",
	ParseNoNameAttachedToClass:    "no name attached to class",
	ParseNoNameAttachedToID:       "no name attached to id",
	ParseUnclosedOpenBraces:       "unclosed open brace",
	ParseUnclosedCloseBraces:      "unmatched close brace",
	ParseUnexpectedEOF:            "unexpected end of file",
	ParseUnexpectedToken:          "unexpected token",
}

func (k ParseErrorKind) String() string {
	if int(k) < len(parseErrorText) {
		return parseErrorText[k]
	}

	return "ParseErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// Parse error sentinels. Any [ParseError] of the same kind matches with
// errors.Is.
var (
	ErrEOF                      = &ParseError{Kind: ParseEOF}
	ErrExpectedVariable         = &ParseError{Kind: ParseExpectedVariable}
	ErrExpectedCompCall         = &ParseError{Kind: ParseExpectedCompCall}
	ErrInvalidComponent         = &ParseError{Kind: ParseInvalidComponent}
	ErrInvalidElement           = &ParseError{Kind: ParseInvalidElement}
	ErrInvalidFunctionCall      = &ParseError{Kind: ParseInvalidFunctionCall}
	ErrInvalidTokenInAttributes = &ParseError{
		Kind: ParseInvalidTokenInAttributes,
	}
	ErrNoNameAttachedToClass = &ParseError{Kind: ParseNoNameAttachedToClass}
	ErrNoNameAttachedToID    = &ParseError{Kind: ParseNoNameAttachedToID}
	ErrUnclosedOpenBraces    = &ParseError{Kind: ParseUnclosedOpenBraces}
	ErrUnclosedCloseBraces   = &ParseError{Kind: ParseUnclosedCloseBraces}
	ErrUnexpectedEOF         = &ParseError{Kind: ParseUnexpectedEOF}
	ErrUnexpectedToken       = &ParseError{Kind: ParseUnexpectedToken}
)

// ParseError is a syntax error found while parsing a document.
//
// Brace imbalance and end-of-file errors locate by Offset alone; every other
// kind carries the offending Lexeme.
type ParseError struct {
	Kind   ParseErrorKind
	Lexeme Lexeme
	Offset int
	Source *Source
	Err    error // construction error behind an InvalidElement, if any
}

func (e *ParseError) hasLexeme() bool {
	switch e.Kind {
	case ParseEOF, ParseUnclosedOpenBraces, ParseUnclosedCloseBraces:
		return false
	}

	return true
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	if e.hasLexeme() && e.Lexeme.Text != "" {
		b.WriteString(": ")
		b.WriteString(e.Lexeme.describe())
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the construction error, if any.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is a ParseError of the same kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)

	return ok && t.Kind == e.Kind
}

// Span returns the source range the error points at.
func (e *ParseError) Span() Span {
	if e.hasLexeme() {
		return spanOf(e.Source, e.Lexeme)
	}

	length := 1
	if e.Kind == ParseEOF {
		length = 0
	}

	return Span{Source: e.Source, Offset: e.Offset, Length: length}
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	sp := e.Span()
	attrs := []slog.Attr{
		slog.String("error", e.Kind.String()),
		slog.Int("offset", sp.Offset),
	}

	if sp.Source != nil {
		line, col := sp.Source.Position(sp.Offset)
		attrs = append(attrs,
			slog.String("file", sp.Source.Name),
			slog.Int("line", line),
			slog.Int("col", col),
		)
	}

	if e.hasLexeme() {
		attrs = append(attrs, slog.String("lexeme", e.Lexeme.Text))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// RenderErrorKind classifies a [RenderError].
type RenderErrorKind uint8

const (
	RenderAST RenderErrorKind = iota
	RenderNoSuchComponent
	RenderNoSuchFunction
	RenderWrongNumberOfArguments
	RenderCompPassedToComp
	RenderNotAnObjectOrNull
	RenderFunctionError
	RenderIO
	RenderMaxDepthExceeded
)

var renderErrorText = [...]string{
	RenderAST:                    "syntax error",
	RenderNoSuchComponent:        "no such component",
	RenderNoSuchFunction:         "no such function",
	RenderWrongNumberOfArguments: "wrong number of arguments",
	RenderCompPassedToComp:       "component passed to component",
	RenderNotAnObjectOrNull:      "not an object or null",
	RenderFunctionError:          "function error",
	RenderIO:                     "write output",
	RenderMaxDepthExceeded:       "maximum component depth exceeded",
}

func (k RenderErrorKind) String() string {
	if int(k) < len(renderErrorText) {
		return renderErrorText[k]
	}

	return "RenderErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// Render error sentinels. Any [RenderError] of the same kind matches with
// errors.Is.
var (
	ErrAST                    = &RenderError{Kind: RenderAST}
	ErrNoSuchComponent        = &RenderError{Kind: RenderNoSuchComponent}
	ErrNoSuchFunction         = &RenderError{Kind: RenderNoSuchFunction}
	ErrWrongNumberOfArguments = &RenderError{
		Kind: RenderWrongNumberOfArguments,
	}
	ErrCompPassedToComp  = &RenderError{Kind: RenderCompPassedToComp}
	ErrNotAnObjectOrNull = &RenderError{Kind: RenderNotAnObjectOrNull}
	ErrFunction          = &RenderError{Kind: RenderFunctionError}
	ErrIO                = &RenderError{Kind: RenderIO}
	ErrMaxDepthExceeded  = &RenderError{Kind: RenderMaxDepthExceeded}
)

// RenderError is a failure while rendering a document. Any RenderError
// aborts the whole render.
type RenderError struct {
	Kind RenderErrorKind

	// Name is the component, function or variable path involved.
	Name string

	// Expected and Actual are the argument counts of a
	// WrongNumberOfArguments error.
	Expected, Actual int

	// Chain lists the component invocations active when the error occurred,
	// outermost first.
	Chain []string

	// Span locates the call site or variable, when known.
	Span Span

	// Err is the parse error, function error or I/O error behind the failure.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	switch e.Kind {
	case RenderWrongNumberOfArguments:
		b.WriteString(": ")
		b.WriteString(strconv.Quote(e.Name))
		b.WriteString(" expects ")
		b.WriteString(strconv.Itoa(e.Expected))
		b.WriteString(", got ")
		b.WriteString(strconv.Itoa(e.Actual))

	case RenderMaxDepthExceeded:
		b.WriteString(": ")
		b.WriteString(formatChain(e.Chain))

	default:
		if e.Name != "" {
			b.WriteString(": ")
			b.WriteString(strconv.Quote(e.Name))
		}
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// chainEdge is the number of entries kept at each end of a long chain.
const chainEdge = 3

// formatChain joins chain outermost first. Runs of the same component are
// counted, and only the ends of a chain longer than 2*chainEdge+1 are kept.
func formatChain(chain []string) string {
	var parts []string

	for i := 0; i < len(chain); {
		j := i + 1
		for j < len(chain) && chain[j] == chain[i] {
			j++
		}

		if n := j - i; n > 1 {
			parts = append(parts, chain[i]+" ×"+strconv.Itoa(n))
		} else {
			parts = append(parts, chain[i])
		}

		i = j
	}

	if len(parts) > 2*chainEdge+1 {
		omitted := len(parts) - 2*chainEdge
		parts = slices.Concat(
			parts[:chainEdge],
			[]string{"… " + strconv.Itoa(omitted) + " more …"},
			parts[len(parts)-chainEdge:],
		)
	}

	return strings.Join(parts, " → ")
}

// Unwrap returns the underlying error, if any.
func (e *RenderError) Unwrap() error { return e.Err }

// Is reports whether target is a RenderError of the same kind.
func (e *RenderError) Is(target error) bool {
	t, ok := target.(*RenderError)

	return ok && t.Kind == e.Kind
}

// LogValue implements slog.LogValuer.
func (e *RenderError) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", e.Kind.String())}

	if e.Name != "" {
		attrs = append(attrs, slog.String("name", e.Name))
	}

	if e.Kind == RenderWrongNumberOfArguments {
		attrs = append(attrs,
			slog.Int("expected", e.Expected),
			slog.Int("got", e.Actual),
		)
	}

	if len(e.Chain) > 0 {
		attrs = append(attrs, slog.String("chain", formatChain(e.Chain)))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.Any("cause", e.Err))
	}

	return slog.GroupValue(attrs...)
}
