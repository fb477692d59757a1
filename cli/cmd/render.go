package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/polly/lang"
	"github.com/ardnew/polly/lang/std"
	"github.com/ardnew/polly/log"
)

// Render compiles template files to HTML.
//
// Each input is rendered on its own; a failing input prints its diagnostic
// and the remaining inputs are still rendered.
type Render struct {
	Inputs     []string `arg:"" default:"-" help:"Template files, or '-' for stdin." name:"input"`
	Vars       string   `short:"v" help:"JSON or YAML file holding the root variables." type:"path"`
	Define     []string `short:"D" help:"Compute a root variable from an expression." placeholder:"NAME=EXPR" sep:"none"`
	Imports    []string `short:"i" help:"Component library files." name:"import" type:"existingfile"`
	Locale     string   `short:"l" help:"Locale tag selecting component overlays." default:"en"`
	LocalesDir string   `help:"Directory holding one overlay directory per locale." default:"./templates/locales" type:"path"`
	NoLocales  bool     `help:"Ignore locale overlays."`
	Output     string   `short:"o" help:"Write HTML to this file instead of stdout." type:"path"`
	MaxDepth   int      `help:"Maximum depth of nested component calls." default:"100"`
	Watch      bool     `short:"w" help:"Render again whenever an input changes."`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.Watch {
		return r.watch(ctx)
	}

	return r.renderAll(ctx, lang.NewCache())
}

type source struct {
	name, text string
}

// renderAll renders every input once, sharing parsed documents through
// cache.
func (r *Render) renderAll(ctx context.Context, cache *lang.Cache) error {
	vars, err := loadVars(ctx, r.Vars, r.Define)
	if err != nil {
		return err
	}

	imports := make([]source, 0, len(r.Imports))

	for _, path := range r.Imports {
		text, err := readSource(ctx, path)
		if err != nil {
			return err
		}

		imports = append(imports, source{name: path, text: text})
	}

	out, closeOut, err := r.output(ctx)
	if err != nil {
		return err
	}
	defer closeOut()

	inputs := uniqueSources(r.Inputs)
	failed := 0

	for _, in := range inputs {
		html, err := r.renderFile(ctx, cache, in, vars, imports)
		if err != nil {
			failed++

			log.DebugContext(ctx, "render failed",
				slog.String("file", sourceLabel(in)),
				slog.Any("error", err),
			)
			report(streamsFrom(ctx).Err, err)

			continue
		}

		if _, err := io.WriteString(out, html+"\n"); err != nil {
			return ErrWriteOutput.With(slog.String("file", r.Output)).Wrap(err)
		}
	}

	if failed > 0 {
		return ErrRenderFailed.With(
			slog.Int("failed", failed),
			slog.Int("inputs", len(inputs)),
		)
	}

	return nil
}

func (r *Render) output(ctx context.Context) (io.Writer, func(), error) {
	if r.Output == "" {
		return streamsFrom(ctx).Out, func() {}, nil
	}

	f, err := os.Create(r.Output)
	if err != nil {
		return nil, nil, ErrWriteOutput.With(slog.String("file", r.Output)).Wrap(err)
	}

	return f, func() { _ = f.Close() }, nil
}

func (r *Render) options(cache *lang.Cache) []lang.Option {
	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithCache(cache),
		lang.WithMaxDepth(r.MaxDepth),
		lang.WithLocale(r.Locale),
		lang.WithFunctions(std.Functions()),
	}
}

func (r *Render) renderFile(
	ctx context.Context,
	cache *lang.Cache,
	in string,
	vars lang.Value,
	imports []source,
) (string, error) {
	text, err := readSource(ctx, in)
	if err != nil {
		return "", err
	}

	tmpl, err := lang.NewTemplate(ctx, sourceLabel(in), text, r.options(cache)...)
	if err != nil {
		return "", err
	}

	for _, imp := range imports {
		if err := tmpl.Import(ctx, imp.name, imp.text); err != nil {
			return "", err
		}
	}

	if err := r.addOverlay(ctx, tmpl, in); err != nil {
		return "", err
	}

	return tmpl.Render(ctx, vars)
}

// addOverlay registers <LocalesDir>/<tag>/<base name of in> with tmpl, where
// tag is the overlay directory best matching the requested locale. A missing
// directory or file is not an error.
func (r *Render) addOverlay(ctx context.Context, tmpl *lang.Template, in string) error {
	if r.NoLocales || in == stdinSource {
		return nil
	}

	tag, ok := lang.MatchLocale(r.Locale, localeDirs(r.LocalesDir))
	if !ok {
		return nil
	}

	path := filepath.Join(r.LocalesDir, tag, filepath.Base(in))

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return lang.ErrReadInput.With(slog.String("file", path)).Wrap(err)
	}

	return tmpl.AddOverlay(ctx, tag, path, string(data))
}

// localeDirs lists the subdirectories of dir.
func localeDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var tags []string

	for _, e := range entries {
		if e.IsDir() {
			tags = append(tags, e.Name())
		}
	}

	return tags
}
