package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/polly/lang"
)

// loadVars reads the root variables from path and applies defines.
//
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// An empty path starts from an empty object.
func loadVars(ctx context.Context, path string, defines []string) (lang.Value, error) {
	root := lang.Object(nil)

	if path != "" {
		text, err := readSource(ctx, path)
		if err != nil {
			return root, ErrReadVars.With(slog.String("file", path)).Wrap(err)
		}

		root, err = decodeVars(ctx, path, text)
		if err != nil {
			return root, ErrReadVars.With(slog.String("file", path)).Wrap(err)
		}
	}

	return define(root, defines)
}

func decodeVars(ctx context.Context, path, text string) (lang.Value, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.UnmarshalContext(ctx, []byte(text), &raw); err != nil {
			return lang.Null(), err
		}

		return lang.FromAny(raw)

	default:
		var v lang.Value
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return lang.Null(), err
		}

		return v, nil
	}
}

// define evaluates each "name=expression" in order and adds the result to
// root under name. Expressions see the variables of root, including earlier
// definitions.
func define(root lang.Value, defines []string) (lang.Value, error) {
	if len(defines) == 0 {
		return root, nil
	}

	if k := root.Kind(); k != lang.KindObject && k != lang.KindNull {
		return root, ErrDefine.Wrap(lang.ErrInvalidVariables)
	}

	fields := maps.Clone(root.Fields())
	if fields == nil {
		fields = make(map[string]lang.Value)
	}

	for _, def := range defines {
		name, src, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)

		if !ok || name == "" || strings.ContainsAny(name, ". @") {
			return root, ErrDefine.With(slog.String("define", def))
		}

		env := lang.Object(fields).Any()

		program, err := expr.Compile(src, expr.Env(env))
		if err != nil {
			return root, ErrDefine.With(slog.String("name", name)).Wrap(err)
		}

		out, err := expr.Run(program, env)
		if err != nil {
			return root, ErrDefine.With(slog.String("name", name)).Wrap(err)
		}

		val, err := lang.FromAny(out)
		if err != nil {
			return root, ErrDefine.With(slog.String("name", name)).Wrap(err)
		}

		fields[name] = val
	}

	return lang.Object(fields), nil
}
