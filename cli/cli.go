package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/ardnew/polly/cli/cmd"
	"github.com/ardnew/polly/pkg"
)

// CLI is the top-level command-line interface for polly.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render templates to HTML."`
	Fmt    cmd.Fmt    `cmd:""                    help:"Print the lexemes or syntax tree of a template."`
	Init   cmd.Init   `cmd:""                    help:"Write the effective flags to the configuration file."`
	Repl   cmd.Repl   `cmd:""                    help:"Render template snippets interactively."`
}

// Run executes the polly CLI with the given context and arguments.
// The exit function is called by kong for --help, --version and usage
// errors.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// Apply logging flags before kong reports anything.
	cli.Log.scan(args)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFile(".yaml"),
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	// Commands receive the kong context through runCtx, set once parsing
	// succeeds.
	runCtx := ctx

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindToProvider(func() (context.Context, error) {
			return runCtx, nil
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFile(".json")),
		kong.Configuration(resolveYAML(ctx), configFile(".yaml")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	runCtx = cmd.WithContext(ctx, ktx)

	cli.Log.start(runCtx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(runCtx)()

	return ktx.Run()
}
