// Package profile runs optional pprof profiling of the polly command.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	polly --pprof-mode=cpu render index.polly
//	go tool pprof -http=: ~/.cache/polly/pprof/cpu.pprof
//
// The supported modes are listed by [Modes]: allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread and trace. The tagged build also
// registers the [net/http/pprof] handlers.
//
// Without the tag [Modes] is empty and [Profiler.Start] does nothing.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
