package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	index := writeFile(t, dir, "index.polly", "&hi{Hello}/p{&hi}")
	writeFile(t, dir, "locales/de/index.polly", "&hi{Hallo}")
	writeFile(t, dir, "locales/fr/other.polly", "&hi{Bonjour}")

	vars := writeFile(t, dir, "vars.json", `{"title": "Welcome", "n": 2}`)
	yamlVars := writeFile(t, dir, "vars.yaml", "title: Willkommen\nname: polly\n")
	lib := writeFile(t, dir, "lib.polly", "&card(@t){/h1{@t}}")
	card := writeFile(t, dir, "card.polly", "&card(@title)")
	title := writeFile(t, dir, "title.polly", "/p{@title}")
	locales := filepath.Join(dir, "locales")

	tests := []struct {
		name   string
		render Render
		stdin  string
		want   string
	}{
		{
			name:   "variables",
			render: Render{Inputs: []string{title}, Vars: vars},
			want:   "<p>Welcome</p>\n",
		},
		{
			name:   "yaml variables",
			render: Render{Inputs: []string{title}, Vars: yamlVars},
			want:   "<p>Willkommen</p>\n",
		},
		{
			name:   "stdin",
			render: Render{Inputs: []string{"-"}},
			stdin:  "/b{x}",
			want:   "<b>x</b>\n",
		},
		{
			name:   "imports",
			render: Render{Inputs: []string{card}, Vars: vars, Imports: []string{lib}},
			want:   "<h1>Welcome</h1>\n",
		},
		{
			name: "defines",
			render: Render{
				Inputs: []string{writeFile(t, dir, "def.polly", "/p{@double}/p{@shout}")},
				Vars:   yamlVars,
				Define: []string{"double=2*3", "shout=upper(name)"},
			},
			want: "<p>6</p><p>POLLY</p>\n",
		},
		{
			name:   "overlay",
			render: Render{Inputs: []string{index}, Locale: "de-AT", LocalesDir: locales},
			want:   "<p>Hallo</p>\n",
		},
		{
			name:   "overlay missing for input",
			render: Render{Inputs: []string{index}, Locale: "fr", LocalesDir: locales},
			want:   "<p>Hello</p>\n",
		},
		{
			name: "overlays disabled",
			render: Render{
				Inputs: []string{index}, Locale: "de", LocalesDir: locales, NoLocales: true,
			},
			want: "<p>Hello</p>\n",
		},
		{
			name:   "duplicate inputs",
			render: Render{Inputs: []string{title, title}, Vars: vars},
			want:   "<p>Welcome</p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, stdout, stderr := testContext(t, tt.stdin)

			if err := tt.render.Run(ctx); err != nil {
				t.Fatalf("render error: %v\n%s", err, stderr)
			}

			if got := stdout.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRenderRun_ContinueOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.polly", "&missing")
	good := writeFile(t, dir, "good.polly", "/i{ok}")

	ctx, stdout, stderr := testContext(t, "")

	err := (&Render{Inputs: []string{bad, good}}).Run(ctx)
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("expected %v, got %v", ErrRenderFailed, err)
	}

	if got := stdout.String(); got != "<i>ok</i>\n" {
		t.Errorf("expected remaining input rendered, got %q", got)
	}

	// the diagnostic points at the component name after the ampersand
	if !strings.Contains(stderr.String(), bad+":1:2") {
		t.Errorf("expected located diagnostic, got %q", stderr.String())
	}
}

func TestRenderRun_Output(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.html")

	ctx, stdout, _ := testContext(t, "")

	r := Render{
		Inputs: []string{
			writeFile(t, dir, "a.polly", "/p{a}"),
			writeFile(t, dir, "b.polly", "/p{b}"),
		},
		Output: out,
	}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("render error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "<p>a</p>\n<p>b</p>\n" {
		t.Errorf("unexpected output file %q", data)
	}

	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", stdout)
	}
}

func TestRenderRun_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "in.polly", "x")

	tests := []struct {
		name    string
		render  Render
		wantErr error
	}{
		{
			name:    "bad variables",
			render:  Render{Inputs: []string{in}, Vars: writeFile(t, dir, "v.json", "{")},
			wantErr: ErrReadVars,
		},
		{
			name:    "bad define",
			render:  Render{Inputs: []string{in}, Define: []string{"a.b=1"}},
			wantErr: ErrDefine,
		},
		{
			name:    "unwritable output",
			render:  Render{Inputs: []string{in}, Output: filepath.Join(dir, "no", "such", "dir", "o")},
			wantErr: ErrWriteOutput,
		},
		{
			name:    "watch stdin",
			render:  Render{Inputs: []string{"-"}, Watch: true},
			wantErr: ErrWatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, _, _ := testContext(t, "")

			if err := tt.render.Run(ctx); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
