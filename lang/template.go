package lang

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Template is a parsed document together with the component libraries,
// locale overlays and native functions it renders with.
//
// Every call to Render builds its own registry, so a Template may be
// rendered by several goroutines once it is fully configured.
type Template struct {
	cfg       config
	doc       *Document
	imports   []*Document
	overlays  map[string]*Document
	functions map[string]Function
}

// NewTemplate parses text as a template labeled name.
//
// Component definitions are checked for duplicates immediately. Syntax errors
// in the document body are reported when it is rendered; see [Document.Err]
// to check for them earlier.
func NewTemplate(
	ctx context.Context,
	name, text string,
	opts ...Option,
) (*Template, error) {
	t := &Template{
		cfg:       makeConfig(opts...),
		overlays:  make(map[string]*Document),
		functions: make(map[string]Function),
	}

	t.doc = t.cfg.parse(ctx, name, text)

	if _, err := t.baseRegistry(); err != nil {
		return nil, err
	}

	if err := t.RegisterAll(t.cfg.functions); err != nil {
		return nil, err
	}

	return t, nil
}

// Document returns the parsed main document.
func (t *Template) Document() *Document { return t.doc }

// Import adds the component definitions of another document. Its top-level
// output is discarded, but a syntax error in it is reported.
func (t *Template) Import(ctx context.Context, name, text string) error {
	doc := t.cfg.parse(ctx, name, text)
	if perr := doc.Err(); perr != nil {
		return perr
	}

	t.imports = append(t.imports, doc)

	if _, err := t.baseRegistry(); err != nil {
		t.imports = t.imports[:len(t.imports)-1]

		return err
	}

	t.cfg.logger.TraceContext(ctx, "import complete",
		slog.String("file", name),
		slog.Int("component_count", len(doc.Components)),
	)

	return nil
}

// AddOverlay registers the components of text as the overlay for locale.
// Overlay components shadow base components of the same name when locale is
// selected for rendering.
func (t *Template) AddOverlay(
	ctx context.Context,
	locale, name, text string,
) error {
	tag, err := CanonicalLocale(locale)
	if err != nil {
		return err
	}

	doc := t.cfg.parse(ctx, name, text)
	if perr := doc.Err(); perr != nil {
		return perr
	}

	if err := NewRegistry().DefineLocale(doc.Components...); err != nil {
		return err
	}

	t.overlays[tag] = doc

	t.cfg.logger.TraceContext(ctx, "overlay added",
		slog.String("locale", tag),
		slog.String("file", name),
		slog.Int("component_count", len(doc.Components)),
	)

	return nil
}

// Locales returns the locale tags that have overlays, sorted.
func (t *Template) Locales() []string {
	return slices.Sorted(maps.Keys(t.overlays))
}

// Register adds a native function. Registering a name twice is an error.
func (t *Template) Register(name string, fn Function) error {
	if _, ok := t.functions[name]; ok {
		return ErrDuplicateFunction.With(slog.String("function", name))
	}

	t.functions[name] = fn

	return nil
}

// RegisterAll adds every function of fns.
func (t *Template) RegisterAll(fns map[string]Function) error {
	for _, name := range slices.Sorted(maps.Keys(fns)) {
		if err := t.Register(name, fns[name]); err != nil {
			return err
		}
	}

	return nil
}

func (t *Template) baseRegistry() (*Registry, error) {
	reg := NewRegistry()

	if err := reg.Define(t.doc.Components...); err != nil {
		return nil, err
	}

	for _, doc := range t.imports {
		if err := reg.Define(doc.Components...); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// Registry builds the registry a render with the given locale uses: base and
// imported components, the matching overlay namespaced under
// [LocalePrefix], and the native functions.
func (t *Template) Registry(locale string) (*Registry, error) {
	reg, err := t.baseRegistry()
	if err != nil {
		return nil, err
	}

	if tag, ok := MatchLocale(locale, t.Locales()); ok {
		if err := reg.DefineLocale(t.overlays[tag].Components...); err != nil {
			return nil, err
		}
	}

	for name, fn := range t.functions {
		if err := reg.Register(name, fn); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// Render renders the template against vars, which must be an object or
// null. Options override those given to [NewTemplate] for this render only.
func (t *Template) Render(
	ctx context.Context,
	vars Value,
	opts ...Option,
) (string, error) {
	cfg := t.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	scope, err := ScopeOf(vars)
	if err != nil {
		return "", err
	}

	reg, err := t.Registry(cfg.locale)
	if err != nil {
		return "", err
	}

	start := time.Now()

	out, err := newRenderer(ctx, reg, cfg).Render(t.doc.Nodes, scope)
	if err != nil {
		cfg.logger.TraceContext(ctx, "render failed",
			slog.String("file", t.doc.Source.Name),
			slog.Any("error", err),
		)

		return "", err
	}

	cfg.logger.TraceContext(ctx, "render complete",
		slog.String("file", t.doc.Source.Name),
		slog.String("locale", cfg.locale),
		slog.Int("bytes", len(out)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}

// Execute renders the template and writes the result to w.
func (t *Template) Execute(
	ctx context.Context,
	w io.Writer,
	vars Value,
	opts ...Option,
) error {
	out, err := t.Render(ctx, vars, opts...)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return &RenderError{Kind: RenderIO, Name: t.doc.Source.Name, Err: err}
	}

	return nil
}
