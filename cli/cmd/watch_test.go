package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardnew/polly/lang"
)

func TestWatchSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "site/index.polly", "x")
	lib := writeFile(t, dir, "lib/lib.polly", "&a{a}")
	vars := writeFile(t, dir, "vars.json", "{}")
	writeFile(t, dir, "locales/de/index.polly", "&a{b}")

	r := Render{
		Inputs:     []string{in},
		Imports:    []string{lib},
		Vars:       vars,
		LocalesDir: filepath.Join(dir, "locales"),
	}

	ws, err := r.watchSet()
	if err != nil {
		t.Fatalf("watch set error: %v", err)
	}

	for _, d := range []string{"site", "lib", ".", "locales", "locales/de"} {
		if _, ok := ws.dirs[filepath.Join(dir, d)]; !ok {
			t.Errorf("expected %s watched", d)
		}
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "input", path: in, want: true},
		{name: "import", path: lib, want: true},
		{name: "variables", path: vars, want: true},
		{name: "overlay", path: filepath.Join(dir, "locales", "fr", "new.polly"), want: true},
		{name: "sibling", path: filepath.Join(dir, "site", "other.polly"), want: false},
		{name: "locales prefix", path: filepath.Join(dir, "locales-old", "x"), want: false},
	}

	for _, tt := range tests {
		if got := ws.relevant(tt.path); got != tt.want {
			t.Errorf("%s: relevant(%s) = %v, want %v", tt.name, tt.path, got, tt.want)
		}
	}

	r.NoLocales = true

	ws, err = r.watchSet()
	if err != nil {
		t.Fatalf("watch set error: %v", err)
	}

	if ws.relevant(filepath.Join(dir, "locales", "de", "index.polly")) {
		t.Errorf("overlays should be ignored")
	}

	r.Imports = append(r.Imports, "-")
	if _, err := r.watchSet(); !errors.Is(err, ErrWatch) {
		t.Errorf("expected %v, got %v", ErrWatch, err)
	}
}

func TestRenderAll_ReplacesChangedInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "index.polly", "/p{1}")

	ctx, stdout, _ := testContext(t, "")

	r := &Render{Inputs: []string{in}, NoLocales: true, MaxDepth: 10}
	cache := lang.NewCache()

	for _, text := range []string{"/p{2}", "/p{3}", "/p{4}"} {
		if err := r.renderAll(ctx, cache); err != nil {
			t.Fatalf("render error: %v", err)
		}

		writeFile(t, dir, "index.polly", text)
	}

	if got := stdout.String(); got != "<p>1</p>\n<p>2</p>\n<p>3</p>\n" {
		t.Errorf("unexpected output %q", got)
	}

	if cache.Len() != 1 {
		t.Errorf("expected one cached document, got %d", cache.Len())
	}
}
