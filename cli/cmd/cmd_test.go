package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/polly/lang"
)

// testContext returns a context whose commands read stdin and write to the
// returned buffers.
func testContext(t *testing.T, stdin string) (ctx context.Context, stdout, stderr *bytes.Buffer) {
	t.Helper()

	stdout, stderr = new(bytes.Buffer), new(bytes.Buffer)
	ctx = WithStreams(t.Context(), Streams{
		In:  strings.NewReader(stdin),
		Out: stdout,
		Err: stderr,
	})

	return ctx, stdout, stderr
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestReadSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.polly", "/p{file}")
	ctx, _, _ := testContext(t, "/p{stdin}")

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "file", path: path, want: "/p{file}"},
		{name: "stdin", path: "-", want: "/p{stdin}"},
		{name: "missing", path: filepath.Join(dir, "missing.polly"), wantErr: lang.ErrReadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSource(ctx, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("read error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUniqueSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.polly", "a")
	b := writeFile(t, dir, "b.polly", "b")

	link := filepath.Join(dir, "link.polly")
	if err := os.Symlink(a, link); err != nil {
		t.Fatal(err)
	}

	missing := filepath.Join(dir, "missing.polly")

	got := uniqueSources([]string{
		a, "-", b,
		filepath.Join(dir, ".", "a.polly"),
		link, "-", missing, missing,
	})

	want := []string{a, "-", b, missing}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStreamsDefault(t *testing.T) {
	t.Parallel()

	s := streamsFrom(t.Context())
	if s.In != os.Stdin || s.Out != os.Stdout || s.Err != os.Stderr {
		t.Errorf("expected process streams, got %+v", s)
	}

	if sourceLabel("-") != "<stdin>" || sourceLabel("x.polly") != "x.polly" {
		t.Errorf("unexpected source labels")
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	report(&buf, errors.New("boom"))

	if got := buf.String(); got != "error: boom\n" {
		t.Errorf("unexpected report %q", got)
	}

	buf.Reset()

	doc := lang.ParseString(t.Context(), "bad.polly", "/p{x")
	report(&buf, doc.Err())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, excerpt and caret, got %q", buf.String())
	}

	if !strings.HasPrefix(lines[0], "bad.polly:1:") || !strings.Contains(lines[0], "error:") {
		t.Errorf("unexpected header %q", lines[0])
	}

	if !strings.Contains(lines[1], "/p{x") || !strings.Contains(lines[2], "^") {
		t.Errorf("unexpected excerpt %q", lines[1:])
	}
}
