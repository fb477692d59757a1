// Package cli contains the command line interface for polly.
//
// # Usage
//
//	polly [flags] [render] <input> ... [flags]
//	polly fmt (tree|lex|json|yaml) <source>
//	polly init [--force]
//	polly repl [flags]
//
// Rendering is the default command, so "polly index.polly" renders
// index.polly to standard output.
//
// # Configuration
//
// Global flags may also be set in the per-user configuration directory,
// in config.json (kong's JSON loader) or config.yaml. YAML keys name flags
// with hyphens or underscores:
//
//	log-level: debug
//	log_format: json
//
// "polly init" writes the effective flags to config.yaml. Command-line
// flags take precedence over both files.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (pretty, text, json)
//   - --log-time-layout: timestamp layout, a name like rfc3339 or kitchen,
//     a Go time layout, or none
//   - --[no-]log-caller: include the source location of each record
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem,
//     mutex, thread or trace
//   - --pprof-dir: profile output directory (default: <cache dir>/pprof)
package cli
