package repl

import "github.com/ardnew/polly/lang"

// Sentinel errors.
var (
	ErrOutOfBounds    = lang.NewError("index out of range")
	ErrUnknownCommand = lang.NewError("unknown command")
	ErrLoadHistory    = lang.NewError("load history")
)
