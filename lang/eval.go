package lang

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
)

// Renderer walks parsed nodes and writes their output.
//
// A Renderer borrows a sealed registry for the duration of a render and is
// not safe for concurrent use. Functions receive the active Renderer so they
// can render components themselves.
type Renderer struct {
	ctx      context.Context
	registry *Registry
	cfg      config
	chain    []string
}

// NewRenderer returns a renderer over registry, sealing it.
func NewRenderer(
	ctx context.Context,
	registry *Registry,
	opts ...Option,
) *Renderer {
	return newRenderer(ctx, registry, makeConfig(opts...))
}

func newRenderer(ctx context.Context, registry *Registry, cfg config) *Renderer {
	if ctx == nil {
		ctx = context.Background()
	}

	registry.Seal()

	return &Renderer{ctx: ctx, registry: registry, cfg: cfg}
}

// Context returns the context of the render.
func (r *Renderer) Context() context.Context { return r.ctx }

// Locale returns the locale tag requested for the render.
func (r *Renderer) Locale() string { return r.cfg.locale }

// Registry returns the registry being rendered against.
func (r *Renderer) Registry() *Registry { return r.registry }

// Render renders nodes against scope.
func (r *Renderer) Render(nodes []Node, scope Scope) (string, error) {
	var b strings.Builder

	if err := r.nodes(&b, nodes, scope); err != nil {
		return "", err
	}

	return b.String(), nil
}

// RenderComponent renders the body of c with scope bound as its arguments.
// Scope is used as given; no arity check is made.
func (r *Renderer) RenderComponent(c *Component, scope Scope) (string, error) {
	var b strings.Builder

	if err := r.component(&b, c, scope, c.Span); err != nil {
		return "", err
	}

	return b.String(), nil
}

// nodes renders a sequence. An end-of-file entry ends the sequence
// successfully, any other parse error aborts.
func (r *Renderer) nodes(b *strings.Builder, nodes []Node, scope Scope) error {
	for _, n := range nodes {
		if n.Err != nil {
			if n.Err.Kind == ParseEOF {
				return nil
			}

			return &RenderError{
				Kind:  RenderAST,
				Span:  n.Err.Span(),
				Chain: slices.Clone(r.chain),
				Err:   n.Err,
			}
		}

		if err := r.token(b, n.Token, scope); err != nil {
			return err
		}
	}

	return nil
}

func (r *Renderer) token(b *strings.Builder, tok *Token, scope Scope) error {
	switch tok.Kind {
	case TokenText:
		b.WriteString(tok.Text)

	case TokenVariable:
		v, err := scope.Resolve(tok.Path)
		if err != nil {
			return r.locate(err, tok.Span)
		}

		b.WriteString(v.String())

	case TokenHTML:
		return r.element(b, tok.Element, scope)

	case TokenCompCall:
		return r.call(b, tok.Call, scope)

	case TokenFunction:
		return r.function(b, tok.Function, scope)
	}

	return nil
}

// locate fills in the span and call chain of a render error raised without
// them.
func (r *Renderer) locate(err error, span Span) error {
	var re *RenderError
	if errors.As(err, &re) && re.Span.IsZero() {
		re.Span = span
		re.Chain = slices.Clone(r.chain)
	}

	return err
}

func (r *Renderer) element(b *strings.Builder, el *Element, scope Scope) error {
	b.WriteString("<")
	b.WriteString(el.Tag)

	if len(el.Classes) > 0 {
		b.WriteString(` class="`)
		b.WriteString(el.Classes[0])

		for _, c := range el.Classes[1:] {
			if c == "" {
				continue
			}

			b.WriteString(" ")
			b.WriteString(c)
		}

		b.WriteString(`"`)
	}

	for _, a := range el.Attributes {
		if a.Key == "" {
			continue
		}

		b.WriteString(" ")
		b.WriteString(a.Key)

		if a.Value != "" {
			b.WriteString(`="`)
			b.WriteString(a.Value)
			b.WriteString(`"`)
		}
	}

	b.WriteString(">")

	if el.IsVoid() {
		return nil
	}

	if el.Resource != nil {
		if err := r.call(b, el.Resource, scope); err != nil {
			return err
		}
	} else if err := r.nodes(b, el.Children, scope); err != nil {
		return err
	}

	b.WriteString("</")
	b.WriteString(el.Tag)
	b.WriteString(">")

	return nil
}

// call binds the actual arguments of call, looked up in the caller's scope,
// to the parameters of the callee and renders its body.
func (r *Renderer) call(b *strings.Builder, call *ComponentCall, scope Scope) error {
	comp, ok := r.registry.Component(call.Name)
	if !ok {
		return r.fail(RenderNoSuchComponent, call.Name, call.Span)
	}

	if len(comp.Params) != len(call.Args) {
		err := r.fail(RenderWrongNumberOfArguments, call.Name, call.Span)
		err.Expected = len(comp.Params)
		err.Actual = len(call.Args)

		return err
	}

	child := make(Scope, len(comp.Params))

	for i, arg := range call.Args {
		if arg.Kind == ArgComp {
			return r.fail(RenderCompPassedToComp, arg.Name, call.Span)
		}

		v, _ := scope.Lookup(arg.Name)
		child[comp.Params[i]] = v
	}

	return r.component(b, comp, child, call.Span)
}

// component renders the body of c into a scratch buffer so that a failed
// invocation leaves no partial output.
func (r *Renderer) component(
	b *strings.Builder,
	c *Component,
	scope Scope,
	site Span,
) error {
	if err := r.ctx.Err(); err != nil {
		return context.Cause(r.ctx)
	}

	if len(r.chain) >= r.cfg.maxDepth {
		err := r.fail(RenderMaxDepthExceeded, c.Name, site)
		err.Chain = append(err.Chain, c.Name)

		return err
	}

	r.chain = append(r.chain, c.Name)
	defer func() { r.chain = r.chain[:len(r.chain)-1] }()

	var body strings.Builder

	if err := r.nodes(&body, c.Body, scope); err != nil {
		return err
	}

	b.WriteString(body.String())

	return nil
}

func (r *Renderer) function(
	b *strings.Builder,
	call *FunctionCall,
	scope Scope,
) error {
	fn, ok := r.registry.Function(call.Name)
	if !ok {
		return r.fail(RenderNoSuchFunction, call.Name, call.Span)
	}

	args := make(Args, len(call.Args))

	for name, key := range call.Args {
		switch key.Kind {
		case ArgJSON:
			arg := ArgValue{Kind: ArgJSON}
			if v, ok := scope.Lookup(key.Name); ok {
				arg.JSON = &v
			}

			args[name] = arg

		case ArgComp:
			arg := ArgValue{Kind: ArgComp}
			if c, ok := r.registry.Component(key.Name); ok {
				arg.Component = c
			}

			args[name] = arg
		}
	}

	r.cfg.logger.TraceContext(r.ctx, "function call",
		slog.String("function", call.Name),
		slog.Int("arg_count", len(args)),
	)

	out, err := fn(r, args)
	if err != nil {
		var re *RenderError
		if errors.As(err, &re) {
			return err
		}

		fail := r.fail(RenderFunctionError, call.Name, call.Span)
		fail.Err = err

		return fail
	}

	b.WriteString(out)

	return nil
}

func (r *Renderer) fail(kind RenderErrorKind, name string, span Span) *RenderError {
	return &RenderError{
		Kind:  kind,
		Name:  name,
		Span:  span,
		Chain: slices.Clone(r.chain),
	}
}
