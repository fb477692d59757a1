package lang

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func TestTemplate_Overlay(t *testing.T) {
	tmpl, err := NewTemplate(t.Context(), "index.polly",
		"&hello{Hello}&bye{Bye}/p{&hello}/p{&bye}")
	if err != nil {
		t.Fatalf("template error: %v", err)
	}

	if err := tmpl.AddOverlay(t.Context(), "de", "de/index.polly", "&hello{Hallo}"); err != nil {
		t.Fatalf("overlay error: %v", err)
	}

	if err := tmpl.AddOverlay(t.Context(), "fr", "fr/index.polly", "&hello{Bonjour}&bye{Salut}"); err != nil {
		t.Fatalf("overlay error: %v", err)
	}

	if got := tmpl.Locales(); !slices.Equal(got, []string{"de", "fr"}) {
		t.Errorf("unexpected locales %v", got)
	}

	tests := []struct {
		name   string
		locale string
		want   string
	}{
		{name: "default locale without overlay", locale: "", want: "<p>Hello</p><p>Bye</p>"},
		{name: "exact overlay", locale: "de", want: "<p>Hallo</p><p>Bye</p>"},
		{name: "regional fallback", locale: "de-AT", want: "<p>Hallo</p><p>Bye</p>"},
		{name: "full overlay", locale: "fr-CA", want: "<p>Bonjour</p><p>Salut</p>"},
		{name: "unmatched locale", locale: "ja", want: "<p>Hello</p><p>Bye</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tmpl.Render(t.Context(), Null(), WithLocale(tt.locale))
			if err != nil {
				t.Fatalf("render error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTemplate_Import(t *testing.T) {
	tmpl, err := NewTemplate(t.Context(), "index.polly", "&card(@title)")
	if err != nil {
		t.Fatalf("template error: %v", err)
	}

	if err := tmpl.Import(t.Context(), "lib.polly", "ignored &card(@t){/h1{@t}}"); err != nil {
		t.Fatalf("import error: %v", err)
	}

	var out bytes.Buffer

	vars := Object(map[string]Value{"title": String("Welcome")})
	if err := tmpl.Execute(t.Context(), &out, vars); err != nil {
		t.Fatalf("execute error: %v", err)
	}

	if out.String() != "<h1>Welcome</h1>" {
		t.Errorf("unexpected output %q", out.String())
	}

	err = tmpl.Import(t.Context(), "dup.polly", "&card{x}")
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("expected duplicate component, got %v", err)
	}

	err = tmpl.Import(t.Context(), "bad.polly", "&broken{")
	if !errors.Is(err, ErrUnclosedOpenBraces) {
		t.Errorf("expected syntax error, got %v", err)
	}

	if got, _ := tmpl.Render(t.Context(), vars); got != "<h1>Welcome</h1>" {
		t.Errorf("failed imports must not change the template, got %q", got)
	}
}

func TestTemplate_Errors(t *testing.T) {
	if _, err := NewTemplate(t.Context(), "", "&a{1}&a{2}"); !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("expected duplicate component, got %v", err)
	}

	loose, err := NewTemplate(t.Context(), "", "Hello { world")
	if err != nil {
		t.Fatalf("template error: %v", err)
	}

	if out, err := loose.Render(t.Context(), Null()); !errors.Is(err, ErrUnclosedOpenBraces) {
		t.Errorf("expected unclosed open brace, got %q, %v", out, err)
	}

	tmpl, err := NewTemplate(t.Context(), "", "x")
	if err != nil {
		t.Fatalf("template error: %v", err)
	}

	if err := tmpl.AddOverlay(t.Context(), "not a tag!", "", ""); !errors.Is(err, ErrInvalidLocale) {
		t.Errorf("expected invalid locale, got %v", err)
	}

	if err := tmpl.AddOverlay(t.Context(), "de", "", "&a{1}&a{2}"); !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("expected duplicate overlay component, got %v", err)
	}

	noop := func(*Renderer, Args) (string, error) { return "", nil }

	if err := tmpl.Register("f", noop); err != nil {
		t.Fatalf("register error: %v", err)
	}

	if err := tmpl.Register("f", noop); !errors.Is(err, ErrDuplicateFunction) {
		t.Errorf("expected duplicate function, got %v", err)
	}

	if _, err := tmpl.Render(t.Context(), String("root")); !errors.Is(err, ErrInvalidVariables) {
		t.Errorf("expected invalid variables, got %v", err)
	}
}

func TestMatchLocale(t *testing.T) {
	available := []string{"de", "en-GB", "pt-BR"}

	tests := []struct {
		requested string
		want      string
		ok        bool
	}{
		{requested: "de", want: "de", ok: true},
		{requested: "de-CH", want: "de", ok: true},
		{requested: "zz-bad-!", ok: false},
		{requested: "ko", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			got, ok := MatchLocale(tt.requested, available)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v (%q)", tt.ok, ok, got)
			}

			if ok && got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
