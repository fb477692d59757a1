package lang

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/readahead"
)

// ParseReader reads all of r and parses it as a document labeled name.
func ParseReader(
	ctx context.Context,
	name string,
	r io.Reader,
	opts ...Option,
) (*Document, error) {
	text, err := ReadText(name, r)
	if err != nil {
		return nil, err
	}

	return ParseString(ctx, name, text, opts...), nil
}

// ReadText reads all of r through a read-ahead buffer. Errors are reported
// as [ErrReadInput] labeled with name.
func ReadText(name string, r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.With(slog.String("file", name)).Wrap(err)
	}

	return string(data), nil
}

// ParseString lexes and parses text as a document labeled name.
//
// Parsing does not fail as a whole: syntax errors are recorded as the final
// node of the sequence they interrupt. See [Document.Err].
func ParseString(
	ctx context.Context,
	name, text string,
	opts ...Option,
) *Document {
	cfg := makeConfig(opts...)
	src := NewSource(name, text)
	lexemes := Lex(text)

	cfg.logger.TraceContext(ctx, "lex complete",
		slog.String("file", name),
		slog.Int("lexeme_count", len(lexemes)),
	)

	doc := Parse(src, lexemes)

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.String("file", name),
		slog.Int("node_count", len(doc.Nodes)),
		slog.Int("component_count", len(doc.Components)),
	)

	return doc
}

// Parse builds a document from the lexemes of src.
func Parse(src *Source, lexemes []Lexeme) *Document {
	doc := &Document{Source: src}

	p := &parser{
		src:     src,
		lexemes: slices.Clone(lexemes),
		defs:    &doc.Components,
	}

	doc.Nodes = p.document()

	return doc
}

// parser holds the state of one sequence being parsed. Child sequences get
// their own parser sharing src and defs.
type parser struct {
	src     *Source
	lexemes []Lexeme
	pos     int
	loose   []int // offsets of bare open braces awaiting a match
	defs    *[]*Component
}

func (p *parser) eof() bool { return p.pos >= len(p.lexemes) }

func (p *parser) peek() (Lexeme, bool) { return p.peekAt(0) }

func (p *parser) peekAt(n int) (Lexeme, bool) {
	if p.pos+n >= len(p.lexemes) {
		return Lexeme{}, false
	}

	return p.lexemes[p.pos+n], true
}

func (p *parser) next() (Lexeme, bool) {
	l, ok := p.peek()
	if ok {
		p.pos++
	}

	return l, ok
}

// unread pushes l back as the next lexeme.
func (p *parser) unread(l Lexeme) {
	p.lexemes = slices.Insert(p.lexemes, p.pos, l)
}

// peekIs reports whether the next lexeme is op.
func (p *parser) peekIs(op Operator) bool {
	l, ok := p.peek()

	return ok && l.Is(op)
}

func (p *parser) fail(kind ParseErrorKind, l Lexeme) *ParseError {
	return &ParseError{Kind: kind, Lexeme: l, Offset: l.Offset, Source: p.src}
}

func (p *parser) failAt(kind ParseErrorKind, offset int) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Source: p.src}
}

func (p *parser) span(l Lexeme) Span { return spanOf(p.src, l) }

// document parses nodes until input is exhausted or a node fails. A bare
// open brace still unmatched at the end fails the sequence.
func (p *parser) document() []Node {
	var nodes []Node

	for !p.eof() {
		n := p.node()
		nodes = append(nodes, n)

		if n.Err != nil {
			return nodes
		}
	}

	if len(p.loose) > 0 {
		nodes = append(nodes,
			errNode(p.failAt(ParseUnclosedOpenBraces, p.loose[len(p.loose)-1])))
	}

	return nodes
}

func (p *parser) node() Node {
	l, ok := p.next()
	if !ok {
		return errNode(p.failAt(ParseEOF, p.endOffset()))
	}

	if l.IsWord() {
		return p.text(l)
	}

	var (
		tok *Token
		err *ParseError
	)

	switch l.Op {
	case OpAt:
		tok, err = p.variable(l)

	case OpForwardSlash:
		tok, err = p.element(l)

	case OpAmpersand:
		tok, err = p.component(l)

	case OpDollar:
		tok, err = p.function(l)

	case OpBackSlash:
		next, ok := p.next()
		if !ok {
			return errNode(p.failAt(ParseEOF, l.Offset))
		}

		return textNode(next.String(), p.span(next))

	case OpOpenBrace:
		p.loose = append(p.loose, l.Offset)

		return textNode(l.String(), p.span(l))

	case OpCloseBrace:
		if len(p.loose) == 0 {
			return errNode(p.failAt(ParseUnclosedCloseBraces, l.Offset))
		}

		p.loose = p.loose[:len(p.loose)-1]

		return textNode(l.String(), p.span(l))

	default:
		return textNode(l.String(), p.span(l))
	}

	if err != nil {
		return errNode(err)
	}

	return Node{Token: tok}
}

func (p *parser) endOffset() int {
	if len(p.lexemes) == 0 {
		return 0
	}

	last := p.lexemes[len(p.lexemes)-1]

	return last.Offset + len(last.Text)
}

// text merges first and the words following it into one text node.
func (p *parser) text(first Lexeme) Node {
	var b strings.Builder

	b.WriteString(first.Text)

	end := first.Offset + len(first.Text)

	for {
		l, ok := p.peek()
		if !ok || !l.IsWord() {
			break
		}

		p.pos++

		b.WriteString(l.Text)
		end = l.Offset + len(l.Text)
	}

	return textNode(b.String(), Span{
		Source: p.src,
		Offset: first.Offset,
		Length: end - first.Offset,
	})
}

// splitName splits the identifier prefix off a word. The remainder keeps any
// punctuation and boundary space that followed the name.
func splitName(word string) (name, rest string) {
	end := 0

	for end < len(word) {
		r, size := utf8.DecodeRuneInString(word[end:])
		if r != '_' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		end += size
	}

	return word[:end], word[end:]
}

// variable parses the path following at. Member access continues only while
// a dot is directly followed by a word; text after the last name is returned
// to the input.
func (p *parser) variable(at Lexeme) (*Token, *ParseError) {
	l, ok := p.next()
	if !ok {
		return nil, p.fail(ParseUnexpectedEOF, at)
	}

	name, rest, perr := p.pathSegment(l)
	if perr != nil {
		return nil, perr
	}

	path := []string{name}
	last := l

	for rest == "" && p.peekIs(OpDot) {
		if after, ok := p.peekAt(1); ok && after.IsWord() &&
			strings.HasPrefix(after.Text, " ") {
			break
		}

		dot, _ := p.next()

		l, ok = p.next()
		if !ok {
			return nil, p.fail(ParseUnexpectedEOF, dot)
		}

		name, rest, perr = p.pathSegment(l)
		if perr != nil {
			return nil, perr
		}

		path = append(path, name)
		last = l
	}

	if rest != "" {
		p.unread(Word(last.Offset+len(name), rest))
	}

	return &Token{
		Kind: TokenVariable,
		Path: strings.Join(path, "."),
		Span: Span{
			Source: p.src,
			Offset: at.Offset,
			Length: last.Offset + len(name) - at.Offset,
		},
	}, nil
}

func (p *parser) pathSegment(l Lexeme) (name, rest string, err *ParseError) {
	if !l.IsWord() || strings.HasPrefix(l.Text, " ") {
		return "", "", p.fail(ParseExpectedVariable, l)
	}

	name, rest = splitName(l.Text)
	if name == "" {
		return "", "", p.fail(ParseExpectedVariable, l)
	}

	return name, rest, nil
}

// path parses a dotted argument path after at. Argument lists end names with
// operators, so boundary spaces are simply trimmed.
func (p *parser) path(at Lexeme) (string, *ParseError) {
	l, ok := p.next()
	if !ok {
		return "", p.fail(ParseUnexpectedEOF, at)
	}

	if !l.IsWord() || strings.TrimSpace(l.Text) == "" {
		return "", p.fail(ParseExpectedVariable, l)
	}

	segs := []string{strings.TrimSpace(l.Text)}

	for p.peekIs(OpDot) {
		dot, _ := p.next()

		l, ok = p.next()
		if !ok {
			return "", p.fail(ParseUnexpectedEOF, dot)
		}

		if !l.IsWord() || strings.TrimSpace(l.Text) == "" {
			return "", p.fail(ParseExpectedVariable, l)
		}

		segs = append(segs, strings.TrimSpace(l.Text))
	}

	return strings.Join(segs, "."), nil
}

// name parses the word naming a component after amp.
func (p *parser) name(amp Lexeme) (string, Lexeme, *ParseError) {
	l, ok := p.next()
	if !ok {
		return "", l, p.fail(ParseUnexpectedEOF, amp)
	}

	name := strings.TrimSpace(l.Text)
	if !l.IsWord() || name == "" {
		return "", l, p.fail(ParseExpectedCompCall, l)
	}

	return name, l, nil
}

// element parses an element after its slash.
func (p *parser) element(slash Lexeme) (*Token, *ParseError) {
	tagLex, ok := p.next()
	if !ok {
		return nil, p.fail(ParseUnexpectedEOF, slash)
	}

	tag := strings.TrimSpace(tagLex.Text)
	if !tagLex.IsWord() || tag == "" {
		return nil, p.fail(ParseInvalidElement, tagLex)
	}

	el := NewElement(tag)
	tok := &Token{Kind: TokenHTML, Element: el, Span: p.span(tagLex)}

	for {
		l, ok := p.next()
		if !ok {
			return tok, nil
		}

		if l.IsWord() {
			err := el.AppendChildren(textNode(l.Text, p.span(l)))
			if err != nil {
				return nil, p.conflict(l, err)
			}

			continue
		}

		switch l.Op {
		case OpAmpersand:
			call, perr := p.call(l)
			if perr != nil {
				return nil, perr
			}

			if err := el.SetResource(call); err != nil {
				return nil, p.conflict(l, err)
			}

		case OpOpenParam:
			if perr := p.attributes(el, l); perr != nil {
				return nil, perr
			}

			if !p.peekIs(OpOpenBrace) {
				return tok, nil
			}

		case OpDot:
			name, perr := p.modifier(l, ParseNoNameAttachedToClass)
			if perr != nil {
				return nil, perr
			}

			el.AddClass(name)

		case OpPound:
			name, perr := p.modifier(l, ParseNoNameAttachedToID)
			if perr != nil {
				return nil, perr
			}

			el.SetID(name)

		case OpOpenBrace:
			children, perr := p.children(l)
			if perr != nil {
				return nil, perr
			}

			if err := el.AppendChildren(children...); err != nil {
				return nil, p.conflict(l, err)
			}

			return tok, nil

		default:
			return nil, p.fail(ParseUnexpectedToken, l)
		}
	}
}

func (p *parser) conflict(l Lexeme, err error) *ParseError {
	perr := p.fail(ParseInvalidElement, l)
	perr.Err = err

	return perr
}

// modifier parses the name following a class dot or id pound.
func (p *parser) modifier(
	op Lexeme,
	kind ParseErrorKind,
) (string, *ParseError) {
	l, ok := p.next()
	if !ok {
		return "", p.fail(ParseUnexpectedEOF, op)
	}

	name := strings.TrimSpace(l.Text)
	if !l.IsWord() || name == "" {
		return "", p.fail(kind, l)
	}

	return name, nil
}

// attributes parses a parenthesized attribute list into el.
func (p *parser) attributes(el *Element, open Lexeme) *ParseError {
	for {
		l, ok := p.next()
		if !ok {
			return p.fail(ParseUnexpectedEOF, open)
		}

		var key string

		switch {
		case l.Is(OpCloseParam):
			return nil

		case l.Is(OpQuote):
			run, perr := p.quoted(l)
			if perr != nil {
				return perr
			}

			el.SetAttribute(`"`+run+`"`, "")

			continue

		case l.IsWord():
			key = strings.TrimSpace(l.Text)

		default:
			return p.fail(ParseInvalidTokenInAttributes, l)
		}

		next, ok := p.peek()
		if !ok {
			return p.fail(ParseUnexpectedEOF, l)
		}

		switch {
		case next.Is(OpEquals):
			p.pos++

			value, perr := p.attributeValue(next)
			if perr != nil {
				return perr
			}

			el.SetAttribute(key, value)

		case next.IsWord(), next.Is(OpCloseParam), next.Is(OpQuote):
			el.SetAttribute(key, "")

		default:
			return p.fail(ParseInvalidTokenInAttributes, next)
		}
	}
}

func (p *parser) attributeValue(eq Lexeme) (string, *ParseError) {
	l, ok := p.next()
	if !ok {
		return "", p.fail(ParseUnexpectedEOF, eq)
	}

	switch {
	case l.IsWord():
		return strings.TrimSpace(l.Text), nil

	case l.Is(OpQuote):
		return p.quoted(l)

	default:
		return "", p.fail(ParseInvalidTokenInAttributes, l)
	}
}

// quoted absorbs the literal text of every lexeme up to the quote closing
// open.
func (p *parser) quoted(open Lexeme) (string, *ParseError) {
	var b strings.Builder

	for {
		l, ok := p.next()
		if !ok {
			return "", p.fail(ParseUnexpectedEOF, open)
		}

		if l.Is(OpQuote) {
			return b.String(), nil
		}

		b.WriteString(l.Text)
	}
}

// children extracts the lexemes up to the brace matching open and parses
// them as an independent sequence.
func (p *parser) children(open Lexeme) ([]Node, *ParseError) {
	start := p.pos
	depth := []int{open.Offset}

	for {
		l, ok := p.next()
		if !ok {
			return nil, p.failAt(ParseUnclosedOpenBraces, depth[len(depth)-1])
		}

		switch {
		case l.Is(OpBackSlash):
			p.next()

		case l.Is(OpOpenBrace):
			depth = append(depth, l.Offset)

		case l.Is(OpCloseBrace):
			depth = depth[:len(depth)-1]
			if len(depth) == 0 {
				child := &parser{
					src:     p.src,
					lexemes: slices.Clone(p.lexemes[start : p.pos-1]),
					defs:    p.defs,
				}

				return child.document(), nil
			}
		}
	}
}

// component parses a component definition or call after amp. A brace after
// the name and optional parameter list makes it a definition, which yields
// empty text in place.
func (p *parser) component(amp Lexeme) (*Token, *ParseError) {
	call, perr := p.call(amp)
	if perr != nil {
		return nil, perr
	}

	if !p.peekIs(OpOpenBrace) {
		return &Token{Kind: TokenCompCall, Call: call, Span: call.Span}, nil
	}

	params := make([]string, 0, len(call.Args))

	for _, arg := range call.Args {
		if arg.Kind != ArgJSON || strings.Contains(arg.Name, ".") {
			return nil, p.fail(ParseInvalidComponent, p.lexemeAt(call.Span))
		}

		params = append(params, arg.Name)
	}

	open, _ := p.next()

	body, perr := p.children(open)
	if perr != nil {
		return nil, perr
	}

	*p.defs = append(*p.defs, &Component{
		Name:   call.Name,
		Params: params,
		Body:   body,
		Span:   call.Span,
	})

	return &Token{Kind: TokenText, Span: call.Span}, nil
}

// lexemeAt rebuilds a word lexeme covering span for error reporting.
func (p *parser) lexemeAt(span Span) Lexeme {
	return Word(span.Offset, p.src.Text[span.Offset:span.Offset+span.Length])
}

// call parses a component name and optional argument list after amp.
func (p *parser) call(amp Lexeme) (*ComponentCall, *ParseError) {
	name, nameLex, perr := p.name(amp)
	if perr != nil {
		return nil, perr
	}

	call := &ComponentCall{Name: name, Span: p.span(nameLex)}

	if !p.peekIs(OpOpenParam) {
		return call, nil
	}

	open, _ := p.next()

	for {
		l, ok := p.next()
		if !ok {
			return nil, p.fail(ParseUnexpectedEOF, open)
		}

		switch {
		case l.Is(OpCloseParam):
			return call, nil

		case l.Is(OpComma):

		case l.Is(OpAt):
			path, perr := p.path(l)
			if perr != nil {
				return nil, perr
			}

			call.Args = append(call.Args, ArgKey{Kind: ArgJSON, Name: path})

		case l.Is(OpAmpersand):
			name, _, perr := p.name(l)
			if perr != nil {
				return nil, perr
			}

			call.Args = append(call.Args, ArgKey{Kind: ArgComp, Name: name})

		default:
			return nil, p.fail(ParseUnexpectedToken, l)
		}
	}
}

// function parses a function call after dollar.
func (p *parser) function(dollar Lexeme) (*Token, *ParseError) {
	l, ok := p.next()
	if !ok {
		return nil, p.fail(ParseUnexpectedEOF, dollar)
	}

	if !l.IsWord() || strings.TrimSpace(l.Text) == "" {
		return nil, p.fail(ParseInvalidFunctionCall, l)
	}

	ident := []string{strings.TrimSpace(l.Text)}
	span := p.span(l)

	for p.peekIs(OpDot) {
		if after, ok := p.peekAt(1); !ok || !after.IsWord() {
			break
		}

		p.pos++

		l, _ = p.next()
		ident = append(ident, strings.TrimSpace(l.Text))
		span.Length = l.Offset + l.Len() - span.Offset
	}

	open, ok := p.next()
	if !ok {
		return nil, p.fail(ParseUnexpectedEOF, l)
	}

	if !open.Is(OpOpenParam) {
		return nil, p.fail(ParseInvalidFunctionCall, open)
	}

	fn := &FunctionCall{
		Name: strings.Join(ident, "."),
		Args: make(map[string]ArgKey),
		Span: span,
	}

	for {
		l, ok := p.next()
		if !ok {
			return nil, p.fail(ParseUnexpectedEOF, open)
		}

		switch {
		case l.Is(OpCloseParam):
			return &Token{Kind: TokenFunction, Function: fn, Span: span}, nil

		case l.Is(OpComma):

		case l.IsWord():
			key := strings.TrimSpace(l.Text)

			arg, perr := p.functionArg(l)
			if perr != nil {
				return nil, perr
			}

			fn.Args[key] = arg

		default:
			return nil, p.fail(ParseUnexpectedToken, l)
		}
	}
}

// functionArg parses "= @path" or "= &component" after an argument name.
func (p *parser) functionArg(key Lexeme) (ArgKey, *ParseError) {
	eq, ok := p.next()
	if !ok {
		return ArgKey{}, p.fail(ParseUnexpectedEOF, key)
	}

	if !eq.Is(OpEquals) {
		return ArgKey{}, p.fail(ParseInvalidFunctionCall, eq)
	}

	l, ok := p.next()
	if !ok {
		return ArgKey{}, p.fail(ParseUnexpectedEOF, eq)
	}

	switch {
	case l.Is(OpAt):
		path, perr := p.path(l)
		if perr != nil {
			return ArgKey{}, perr
		}

		return ArgKey{Kind: ArgJSON, Name: path}, nil

	case l.Is(OpAmpersand):
		name, _, perr := p.name(l)
		if perr != nil {
			return ArgKey{}, perr
		}

		return ArgKey{Kind: ArgComp, Name: name}, nil

	default:
		return ArgKey{}, p.fail(ParseUnexpectedToken, l)
	}
}
