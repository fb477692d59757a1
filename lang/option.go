package lang

import (
	"maps"

	"github.com/ardnew/polly/log"
)

// DefaultMaxDepth is the default maximum depth of nested component
// invocations. Users may modify this before rendering to change the default.
var DefaultMaxDepth = 100

// DefaultLocale is the locale tag used when none is requested.
const DefaultLocale = "en"

// config holds parse and render options.
type config struct {
	logger    log.Logger
	maxDepth  int
	locale    string
	functions map[string]Function
	cache     *Cache
}

// Option configures parsing, templates and rendering.
type Option func(*config)

func makeConfig(opts ...Option) config {
	cfg := config{
		maxDepth: DefaultMaxDepth,
		locale:   DefaultLocale,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMaxDepth sets the maximum depth of nested component invocations.
// Values less than 1 select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		cfg.maxDepth = depth
	}
}

// WithLocale sets the locale tag used to select overlay components and by
// locale-aware functions.
func WithLocale(tag string) Option {
	return func(cfg *config) {
		if tag == "" {
			tag = DefaultLocale
		}

		cfg.locale = tag
	}
}

// WithFunctions registers native functions with a [Template] when it is
// created. It has no effect on render-time options.
func WithFunctions(fns map[string]Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = make(map[string]Function, len(fns))
		}

		maps.Copy(cfg.functions, fns)
	}
}
