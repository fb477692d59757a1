package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/polly/log"
)

func ExampleMake() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithLevel(log.LevelInfo),
		log.WithTimeLayout("none"))

	logger.Debug("hidden")
	logger.Info("rendered", slog.String("file", "index.polly"))

	// Output:
	// level=INFO msg=rendered file=index.polly
}

func ExampleLogger_With() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("none")).
		With(slog.String("locale", "de"))

	logger.Trace("overlay added", slog.Int("components", 2))

	// Output:
	// {"level":"TRACE","msg":"overlay added","locale":"de","components":2}
}
