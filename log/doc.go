// Package log is the structured logging layer shared by the polly compiler
// and its command line.
//
// A [Logger] wraps a [log/slog] logger with a fixed set of levels, including
// [LevelTrace] for per-phase compiler events, and three encodings:
// [FormatPretty] for terminals, [FormatText] (logfmt) and [FormatJSON].
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339"))
//
//	logger.Info("rendered", slog.String("file", "index.polly"))
//
// Attributes added with [Logger.With] are included in every record:
//
//	logger = logger.With(slog.String("locale", "de"))
//
// The zero Logger discards all records. Each level has a context-aware
// method and a variant using [DefaultContextProvider].
//
// The package-level functions log through a default logger writing to
// standard error, which [Config] and [SetDefault] replace.
package log
