package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/polly/log"
)

// resolveYAML returns a [kong.ConfigurationLoader] for YAML configuration
// files such as the one written by "polly init":
//
//	log-level: debug
//	log_format: json
//
// Keys name global flags. Hyphens and underscores are interchangeable.
// Command-line flags override configuration values. A file that is not a
// YAML mapping is ignored with a warning.
func resolveYAML(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var raw map[string]any

		if err := yaml.NewDecoder(r).DecodeContext(ctx, &raw); err != nil &&
			err != io.EOF {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config, len(raw))
		for k, v := range raw {
			cfg[normalizeKey(k)] = flagValue(v)
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] over normalized keys.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[normalizeKey(flag.Name)]; ok {
		return v, nil
	}

	return nil, nil
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// flagValue converts decoded YAML scalars to the strings kong parses flag
// values from. Lists keep their structure.
func flagValue(v any) any {
	switch t := v.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}
