package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// String returns the argument as written in source: @path or &name.
func (k ArgKey) String() string {
	if k.Kind == ArgComp {
		return "&" + k.Name
	}

	return "@" + k.Name
}

// FormatLexemes writes one line per lexeme of src: its position, offset,
// kind and quoted text.
func FormatLexemes(w io.Writer, src *Source, lexemes []Lexeme) error {
	for _, l := range lexemes {
		line, col := src.Position(l.Offset)

		kind := "word"
		if !l.IsWord() {
			kind = l.Op.String()
		}

		_, err := fmt.Fprintf(w, "%s\t%d\t%-10s %s\n",
			location(src.Name, line, col), l.Offset, kind, strconv.Quote(l.Text))
		if err != nil {
			return err
		}
	}

	return nil
}

// Format writes the document as an indented tree, one node per line,
// followed by its component definitions.
func (d *Document) Format(_ context.Context, w io.Writer, indent int) error {
	if indent < 1 {
		indent = 2
	}

	f := &treeFormatter{w: w, src: d.Source, indent: indent}

	f.nodes(d.Nodes, 0)

	for _, c := range d.Components {
		f.line(0, "component %s(%s)", c.Name, strings.Join(c.Params, ", "))
		f.nodes(c.Body, 1)
	}

	return f.err
}

type treeFormatter struct {
	w      io.Writer
	src    *Source
	indent int
	err    error
}

func (f *treeFormatter) line(depth int, format string, args ...any) {
	if f.err != nil {
		return
	}

	_, f.err = fmt.Fprintf(f.w, "%s%s\n",
		strings.Repeat(" ", depth*f.indent), fmt.Sprintf(format, args...))
}

func (f *treeFormatter) nodes(nodes []Node, depth int) {
	for _, n := range nodes {
		if n.Err != nil {
			line, col := n.Err.Span().Source.Position(n.Err.Offset)
			f.line(depth, "error %d:%d %s", line, col, n.Err.Error())

			continue
		}

		f.token(n.Token, depth)
	}
}

func (f *treeFormatter) token(tok *Token, depth int) {
	switch tok.Kind {
	case TokenText:
		if tok.Text != "" {
			f.line(depth, "text %s", strconv.Quote(tok.Text))
		}

	case TokenVariable:
		f.line(depth, "variable %s", tok.Path)

	case TokenHTML:
		f.line(depth, "html %s", elementHead(tok.Element))

		if tok.Element.Resource != nil {
			f.line(depth+1, "resource %s", callString(tok.Element.Resource))
		}

		f.nodes(tok.Element.Children, depth+1)

	case TokenCompCall:
		f.line(depth, "call %s", callString(tok.Call))

	case TokenFunction:
		f.line(depth, "function %s", functionString(tok.Function))
	}
}

func elementHead(el *Element) string {
	var b strings.Builder

	b.WriteString(el.Tag)

	for _, c := range el.Classes {
		b.WriteString(" ." + c)
	}

	for _, a := range el.Attributes {
		b.WriteString(" " + a.Key)

		if a.Value != "" {
			b.WriteString("=" + strconv.Quote(a.Value))
		}
	}

	return b.String()
}

func callString(c *ComponentCall) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}

	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

func functionString(c *FunctionCall) string {
	keys := slices.Sorted(maps.Keys(c.Args))

	args := make([]string, len(keys))
	for i, k := range keys {
		args[i] = k + "=" + c.Args[k].String()
	}

	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// FormatJSON writes the document as JSON to the writer.
func (d *Document) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(d, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(d)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the document as YAML to the writer.
func (d *Document) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, d.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// MarshalJSON implements json.Marshaler for Document.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}

// ToMap converts the document to plain maps and slices for serialization.
func (d *Document) ToMap() map[string]any {
	comps := make([]any, len(d.Components))
	for i, c := range d.Components {
		comps[i] = map[string]any{
			"name":   c.Name,
			"params": slices.Clone(c.Params),
			"body":   nodesToList(c.Body),
		}
	}

	m := map[string]any{
		"nodes":      nodesToList(d.Nodes),
		"components": comps,
	}

	if d.Source != nil {
		m["source"] = d.Source.Name
	}

	return m
}

func nodesToList(nodes []Node) []any {
	list := make([]any, 0, len(nodes))

	for _, n := range nodes {
		if n.Err != nil {
			line, col := n.Err.Span().Source.Position(n.Err.Offset)
			list = append(list, map[string]any{
				"error": map[string]any{
					"kind":    n.Err.Kind.String(),
					"message": n.Err.Error(),
					"line":    line,
					"col":     col,
				},
			})

			continue
		}

		list = append(list, tokenToMap(n.Token))
	}

	return list
}

func tokenToMap(tok *Token) map[string]any {
	switch tok.Kind {
	case TokenVariable:
		return map[string]any{"variable": tok.Path}

	case TokenHTML:
		el := tok.Element

		attrs := make([]any, len(el.Attributes))
		for i, a := range el.Attributes {
			attrs[i] = map[string]any{"key": a.Key, "value": a.Value}
		}

		m := map[string]any{
			"tag":        el.Tag,
			"classes":    slices.Clone(el.Classes),
			"attributes": attrs,
			"children":   nodesToList(el.Children),
		}

		if el.Resource != nil {
			m["resource"] = callToMap(el.Resource)
		}

		return map[string]any{"html": m}

	case TokenCompCall:
		return map[string]any{"call": callToMap(tok.Call)}

	case TokenFunction:
		args := make(map[string]any, len(tok.Function.Args))
		for k, a := range tok.Function.Args {
			args[k] = a.String()
		}

		return map[string]any{
			"function": map[string]any{"name": tok.Function.Name, "args": args},
		}

	default:
		return map[string]any{"text": tok.Text}
	}
}

func callToMap(c *ComponentCall) map[string]any {
	args := make([]any, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}

	return map[string]any{"name": c.Name, "args": args}
}
