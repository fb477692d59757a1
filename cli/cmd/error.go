package cmd

import "github.com/ardnew/polly/lang"

// Predefined errors (sentinel values).
var (
	ErrRenderFailed  = lang.NewError("one or more inputs failed to render")
	ErrSyntax        = lang.NewError("template has syntax errors")
	ErrReadVars      = lang.NewError("read variables")
	ErrDefine        = lang.NewError("invalid variable definition")
	ErrWriteOutput   = lang.NewError("write output")
	ErrWatch         = lang.NewError("watch inputs")
	ErrWriteConfig   = lang.NewError("write configuration file")
	ErrFileExists    = lang.NewError("file exists (use --force to overwrite)")
	ErrMarshalConfig = lang.NewError("marshal configuration")
)
