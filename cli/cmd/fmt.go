package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/polly/lang"
	"github.com/ardnew/polly/log"
)

// Fmt prints the structure of a template.
type Fmt struct {
	Tree Tree `cmd:"" default:"withargs" help:"Print the syntax tree (default)."`
	Lex  Lex  `cmd:""                    help:"Print the lexemes with their offsets."`
	JSON JSON `cmd:""                    help:"Print the syntax tree as JSON."`
	YAML YAML `cmd:""                    help:"Print the syntax tree as YAML."`
}

// printTree reads and parses the template at path and prints it with
// write. A syntax error is reported on the error stream afterwards.
func printTree(
	ctx context.Context,
	path, format string,
	write func(*lang.Document) error,
) error {
	text, err := readSource(ctx, path)
	if err != nil {
		return err
	}

	doc := lang.ParseString(ctx, sourceLabel(path), text,
		lang.WithLogger(log.Default()))

	if err := write(doc); err != nil {
		return ErrWriteOutput.With(slog.String("format", format)).Wrap(err)
	}

	if perr := doc.Err(); perr != nil {
		report(streamsFrom(ctx).Err, perr)

		return ErrSyntax.With(slog.String("file", doc.Source.Name)).Wrap(perr)
	}

	return nil
}

// Tree prints the syntax tree as indented text.
type Tree struct {
	Indent int `default:"2" help:"Indent width." short:"n"`

	Source string `arg:"" default:"-" help:"Template file, or '-' for stdin." name:"source"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return printTree(ctx, t.Source, "tree", func(doc *lang.Document) error {
		return doc.Format(ctx, streamsFrom(ctx).Out, t.Indent)
	})
}

// Lex prints one line per lexeme: location, byte offset, kind and text.
type Lex struct {
	Source string `arg:"" default:"-" help:"Template file, or '-' for stdin." name:"source"`
}

// Run executes the lex command.
func (l *Lex) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := readSource(ctx, l.Source)
	if err != nil {
		return err
	}

	src := lang.NewSource(sourceLabel(l.Source), text)

	if err := lang.FormatLexemes(streamsFrom(ctx).Out, src, lang.Lex(text)); err != nil {
		return ErrWriteOutput.With(slog.String("format", "lex")).Wrap(err)
	}

	return nil
}

// JSON prints the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width, 0 for compact output." short:"n"`

	Source string `arg:"" default:"-" help:"Template file, or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return printTree(ctx, j.Source, "json", func(doc *lang.Document) error {
		return doc.FormatJSON(ctx, streamsFrom(ctx).Out, j.Indent)
	})
}

// YAML prints the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width, 0 for flow style." short:"n"`

	Source string `arg:"" default:"-" help:"Template file, or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return printTree(ctx, y.Source, "yaml", func(doc *lang.Document) error {
		return doc.FormatYAML(ctx, streamsFrom(ctx).Out, y.Indent)
	})
}
