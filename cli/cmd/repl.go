package cmd

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/polly/cli/cmd/repl"
	"github.com/ardnew/polly/lang"
	"github.com/ardnew/polly/lang/std"
	"github.com/ardnew/polly/log"
)

// Repl renders template snippets interactively.
type Repl struct {
	Vars     string   `short:"v" help:"JSON or YAML file holding the root variables." type:"path"`
	Define   []string `short:"D" help:"Compute a root variable from an expression." placeholder:"NAME=EXPR" sep:"none"`
	Imports  []string `short:"i" help:"Component library files." name:"import" type:"existingfile"`
	Locale   string   `short:"l" help:"Locale tag used when rendering." default:"en"`
	MaxDepth int      `help:"Maximum depth of nested component calls." default:"100"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	vars, err := loadVars(ctx, r.Vars, r.Define)
	if err != nil {
		return err
	}

	session := repl.NewSession(vars, log.Default(),
		lang.WithCache(lang.NewCache()),
		lang.WithMaxDepth(r.MaxDepth),
		lang.WithLocale(r.Locale),
		lang.WithFunctions(std.Functions()),
	)

	for _, path := range r.Imports {
		text, err := readSource(ctx, path)
		if err != nil {
			return err
		}

		if err := session.Import(ctx, repl.Source{Name: path, Text: text}); err != nil {
			return err
		}
	}

	cacheDir := ktx.Model.Vars()[CacheIdentifier]

	log.DebugContext(ctx, "repl session ready",
		slog.Int("imports", len(r.Imports)),
		slog.String("cache_dir", cacheDir),
	)

	s := streamsFrom(ctx)

	return repl.Run(ctx, session, cacheDir, log.Default(),
		tea.WithInput(s.In),
		tea.WithOutput(s.Out),
	)
}
