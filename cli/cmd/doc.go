// Package cmd implements the polly subcommands:
//
//   - render: compile templates to HTML (the default command)
//   - fmt: print the lexemes or syntax tree of a template
//   - init: write the effective flags as a configuration file
//   - repl: render template snippets interactively
package cmd

var (
	// CacheIdentifier is the kong variable holding the cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the path of the YAML
	// configuration file written by [Init].
	ConfigIdentifier = "config"
)
