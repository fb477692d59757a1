package repl

import (
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/polly/lang"
	"github.com/ardnew/polly/log"
)

func TestSession_Eval(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		name    string
		snippet string
		want    string
		wantErr error
	}{
		{name: "imported component", snippet: "&card(@title)", want: "<h1>Hi</h1>"},
		{name: "variable path", snippet: "/p{@site.name}", want: "<p>polly</p>"},
		{name: "define", snippet: "&badge{/b{new}}", want: ""},
		{name: "defined earlier", snippet: "/p{&badge}", want: "<p><b>new</b></p>"},
		{name: "redefine", snippet: "&badge{x}", wantErr: lang.ErrDuplicateComponent},
		{name: "syntax", snippet: "/p{", wantErr: lang.ErrUnclosedOpenBraces},
		{name: "missing component", snippet: "&nope", wantErr: lang.ErrNoSuchComponent},
	}

	// Subtests share the session and run in order.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Eval(t.Context(), tt.snippet)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	want := []string{"badge", "card", "cart", "list"}
	if got := s.Components(t.Context()); !slices.Equal(got, want) {
		t.Errorf("expected components %v, got %v", want, got)
	}
}

func TestSession_Import(t *testing.T) {
	s := testSession(t)

	err := s.Import(t.Context(), Source{Name: "bad.polly", Text: "&broken{"})
	if !errors.Is(err, lang.ErrUnclosedOpenBraces) {
		t.Errorf("expected syntax error, got %v", err)
	}

	err = s.Import(t.Context(), Source{Name: "dup.polly", Text: "&card{x}"})
	if !errors.Is(err, lang.ErrDuplicateComponent) {
		t.Errorf("expected duplicate component, got %v", err)
	}

	if got := s.Components(t.Context()); len(got) != 3 {
		t.Errorf("rejected imports must not be kept, got %v", got)
	}

	if c, ok := s.Component(t.Context(), "card"); !ok || len(c.Params) != 1 {
		t.Errorf("expected card with one parameter, got %+v", c)
	}
}

func TestSession_Paths(t *testing.T) {
	want := []string{"site", "site.name", "title"}
	if got := testSession(t).Paths(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	s := NewSession(lang.Null(), log.Logger{})
	if got := s.Paths(); got != nil {
		t.Errorf("expected no paths, got %v", got)
	}

	if s.Vars().Kind() != lang.KindObject {
		t.Errorf("null variables should become an empty object")
	}
}
