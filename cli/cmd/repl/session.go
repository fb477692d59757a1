package repl

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/polly/lang"
	"github.com/ardnew/polly/log"
)

// Source is a named template text, such as a component library.
type Source struct {
	Name string
	Text string
}

// Session renders template snippets against fixed root variables and a
// growing set of component libraries. Components defined by a snippet that
// renders successfully stay available to later snippets.
type Session struct {
	vars    lang.Value
	imports []Source
	opts    []lang.Option
	logger  log.Logger
	count   int
}

// NewSession returns a Session rendering against vars with the given
// template options.
func NewSession(vars lang.Value, logger log.Logger, opts ...lang.Option) *Session {
	if vars.IsNull() {
		vars = lang.Object(nil)
	}

	return &Session{
		vars:   vars,
		opts:   append(slices.Clip(opts), lang.WithLogger(logger)),
		logger: logger,
	}
}

// Import adds a component library. It is rejected, and not added, when it
// fails to parse or defines a component that already exists.
func (s *Session) Import(ctx context.Context, src Source) error {
	if _, err := s.template(ctx, "", src); err != nil {
		return err
	}

	s.imports = append(s.imports, src)

	return nil
}

// template builds a template from text with every import, followed by the
// extra sources.
func (s *Session) template(
	ctx context.Context,
	text string,
	extra ...Source,
) (*lang.Template, error) {
	tmpl, err := lang.NewTemplate(ctx, s.snippetName(), text, s.opts...)
	if err != nil {
		return nil, err
	}

	for _, src := range slices.Concat(s.imports, extra) {
		if err := tmpl.Import(ctx, src.Name, src.Text); err != nil {
			return nil, err
		}
	}

	return tmpl, nil
}

func (s *Session) snippetName() string {
	return fmt.Sprintf("<repl:%d>", s.count+1)
}

// Eval renders snippet and returns the HTML.
func (s *Session) Eval(ctx context.Context, snippet string) (string, error) {
	name := s.snippetName()

	tmpl, err := s.template(ctx, snippet)
	if err != nil {
		return "", err
	}

	out, err := tmpl.Render(ctx, s.vars)
	if err != nil {
		return "", err
	}

	s.count++

	if n := len(tmpl.Document().Components); n > 0 {
		s.imports = append(s.imports, Source{Name: name, Text: snippet})

		s.logger.DebugContext(ctx, "components retained",
			slog.String("snippet", name),
			slog.Int("component_count", n),
		)
	}

	return out, nil
}

func (s *Session) registry(ctx context.Context) *lang.Registry {
	tmpl, err := s.template(ctx, "")
	if err != nil {
		return lang.NewRegistry()
	}

	reg, err := tmpl.Registry("")
	if err != nil {
		return lang.NewRegistry()
	}

	return reg
}

// Components returns the names of the available components.
func (s *Session) Components(ctx context.Context) []string {
	var names []string

	for name := range s.registry(ctx).ComponentNames() {
		if !strings.HasPrefix(name, lang.LocalePrefix) {
			names = append(names, name)
		}
	}

	return names
}

// Component returns the component called name.
func (s *Session) Component(ctx context.Context, name string) (*lang.Component, bool) {
	return s.registry(ctx).Component(name)
}

// Functions returns the names of the registered native functions.
func (s *Session) Functions(ctx context.Context) []string {
	return slices.Collect(s.registry(ctx).FunctionNames())
}

// Vars returns the root variables.
func (s *Session) Vars() lang.Value { return s.vars }

// Paths returns every dotted variable path reachable through objects in the
// root variables, sorted.
func (s *Session) Paths() []string {
	var paths []string

	var visit func(prefix string, v lang.Value)

	visit = func(prefix string, v lang.Value) {
		if v.Kind() != lang.KindObject {
			return
		}

		for _, key := range slices.Sorted(maps.Keys(v.Fields())) {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}

			paths = append(paths, path)
			visit(path, v.Fields()[key])
		}
	}

	visit("", s.vars)
	slices.Sort(paths)

	return paths
}
