package lang

import (
	"iter"
	"slices"
)

// TokenKind identifies the variant held by a [Token].
type TokenKind uint8

const (
	TokenText TokenKind = iota
	TokenVariable
	TokenHTML
	TokenCompCall
	TokenFunction
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenVariable:
		return "variable"
	case TokenHTML:
		return "html"
	case TokenCompCall:
		return "call"
	case TokenFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Token is a successfully parsed document entry.
// Exactly one of the payload fields is meaningful, selected by Kind.
type Token struct {
	Kind     TokenKind
	Text     string         // TokenText
	Path     string         // TokenVariable, dotted
	Element  *Element       // TokenHTML
	Call     *ComponentCall // TokenCompCall
	Function *FunctionCall  // TokenFunction
	Span     Span
}

// Node is one entry of a parsed sequence: a token, or the parse error that
// ended the sequence. Exactly one field is non-nil.
type Node struct {
	Token *Token
	Err   *ParseError
}

func textNode(text string, span Span) Node {
	return Node{Token: &Token{Kind: TokenText, Text: text, Span: span}}
}

func errNode(err *ParseError) Node { return Node{Err: err} }

// Document is the result of parsing one source.
type Document struct {
	Source *Source
	Nodes  []Node

	// Components holds every component definition found while parsing, in
	// source order, including definitions nested in element children.
	Components []*Component
}

// Err returns the first parse error in the top-level sequence other than a
// benign end of file, or nil.
func (d *Document) Err() *ParseError {
	for _, n := range d.Nodes {
		if n.Err != nil && n.Err.Kind != ParseEOF {
			return n.Err
		}
	}

	return nil
}

// Walk returns an iterator over every node of nodes, depth first, including
// element children.
func Walk(nodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(nodes, yield)
	}
}

func walk(nodes []Node, yield func(Node) bool) bool {
	for _, n := range nodes {
		if !yield(n) {
			return false
		}

		if n.Token != nil && n.Token.Kind == TokenHTML {
			if !walk(n.Token.Element.Children, yield) {
				return false
			}
		}
	}

	return true
}

// Attribute is a single element attribute. An empty Value renders as a
// boolean attribute.
type Attribute struct {
	Key   string
	Value string
}

// Element is a markup node.
//
// An element has either children or a component resource rendered in place
// of them, never both.
type Element struct {
	Tag        string
	Classes    []string
	Attributes []Attribute // unique keys, in order of first definition
	Resource   *ComponentCall
	Children   []Node
}

// NewElement returns an empty element with the given tag.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

var voidElements = []string{
	"area", "base", "br", "col", "hr", "img", "input", "link", "meta",
	"command", "keygen", "source", "!DOCTYPE",
}

// IsVoid reports whether e renders without children or a closing tag.
func (e *Element) IsVoid() bool {
	return slices.Contains(voidElements, e.Tag)
}

// AddClass appends a CSS class.
func (e *Element) AddClass(name string) {
	e.Classes = append(e.Classes, name)
}

// SetAttribute defines or redefines an attribute. The key "class" adds to
// the class list instead.
func (e *Element) SetAttribute(key, value string) {
	if key == "class" {
		e.AddClass(value)

		return
	}

	for i := range e.Attributes {
		if e.Attributes[i].Key == key {
			e.Attributes[i].Value = value

			return
		}
	}

	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
}

// Attribute returns the value of the attribute key.
func (e *Element) Attribute(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}

	return "", false
}

// SetID sets the id attribute.
func (e *Element) SetID(id string) { e.SetAttribute("id", id) }

// SetResource attaches the component call rendered in place of children.
func (e *Element) SetResource(call *ComponentCall) error {
	if e.Resource != nil || len(e.Children) > 0 {
		return ErrResourceConflict.Wrap(NewError("element " + e.Tag))
	}

	e.Resource = call

	return nil
}

// AppendChildren adds child nodes.
func (e *Element) AppendChildren(nodes ...Node) error {
	if e.Resource != nil {
		return ErrResourceConflict.Wrap(NewError("element " + e.Tag))
	}

	e.Children = append(e.Children, nodes...)

	return nil
}

// ArgKind says whether an argument refers to a JSON value or a component.
type ArgKind uint8

const (
	ArgJSON ArgKind = iota
	ArgComp
)

func (k ArgKind) String() string {
	if k == ArgComp {
		return "component"
	}

	return "json"
}

// ArgKey is an unresolved argument: a dotted variable path (ArgJSON) or a
// component name (ArgComp).
type ArgKey struct {
	Kind ArgKind
	Name string
}

// Component is a named, parameterized template fragment.
type Component struct {
	Name   string
	Params []string
	Body   []Node
	Span   Span
}

// ComponentCall invokes a component with positional arguments.
type ComponentCall struct {
	Name string
	Args []ArgKey
	Span Span
}

// FunctionCall invokes a native function with named arguments.
type FunctionCall struct {
	Name string
	Args map[string]ArgKey
	Span Span
}

// ArgValue is a resolved function argument. A nil JSON or Component means
// the referenced variable or component does not exist.
type ArgValue struct {
	Kind      ArgKind
	JSON      *Value
	Component *Component
}
