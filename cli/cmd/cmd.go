package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/polly/lang"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying ktx.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// Streams are the standard streams used by commands.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type streamsKey struct{}

// WithStreams returns a copy of ctx whose commands read and write s instead
// of the process streams. Nil members keep the process stream.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// stdinSource is the input path naming standard input.
const stdinSource = "-"

// readSource returns the text of the file at path, or of standard input
// when path is "-".
func readSource(ctx context.Context, path string) (string, error) {
	if path == stdinSource {
		return lang.ReadText("<stdin>", streamsFrom(ctx).In)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", lang.ErrReadInput.Wrap(err)
	}
	defer f.Close()

	return lang.ReadText(path, f)
}

// sourceLabel is the file name shown in diagnostics for path.
func sourceLabel(path string) string {
	if path == stdinSource {
		return "<stdin>"
	}

	return path
}

// fileKey identifies a file by device and inode, so the same file reached
// through different paths or symlinks is seen once.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (fileKey, bool) {
	if info == nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// uniqueSources drops repeated inputs from paths, keeping the first
// occurrence. "-" is kept at most once. Paths that cannot be resolved are
// kept so that reading them reports the error.
func uniqueSources(paths []string) []string {
	var (
		out   = make([]string, 0, len(paths))
		seen  = make(map[fileKey]struct{})
		named = make(map[string]struct{})
	)

	for _, path := range paths {
		id := path

		if path != stdinSource {
			if abs, err := filepath.Abs(path); err == nil {
				id = abs
			}

			if resolved, err := filepath.EvalSymlinks(id); err == nil {
				id = resolved
			}

			if info, err := os.Stat(id); err == nil {
				if key, ok := makeFileKey(info); ok {
					if _, dup := seen[key]; dup {
						continue
					}

					seen[key] = struct{}{}
				}
			}
		}

		if _, dup := named[id]; dup {
			continue
		}

		named[id] = struct{}{}

		out = append(out, path)
	}

	return out
}
