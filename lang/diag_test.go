package lang

import (
	"errors"
	"testing"
)

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unexpected token",
			input: "/p{x}\n/div$",
			want: "page.polly:2:5: unexpected token: dollar \"$\"\n" +
				"  2 | /div$\n" +
				"    |     ^",
		},
		{
			name:  "underline spans lexeme",
			input: "$fn nope",
			want: "page.polly:1:5: invalid function call: word \"nope\"\n" +
				"  1 | $fn nope\n" +
				"    |     ^~~~",
		},
		{
			name:  "tab indented",
			input: "\t/p.{x}",
			want: "page.polly:1:5: no name attached to class: open brace \"{\"\n" +
				"  1 | \t/p.{x}\n" +
				"    | \t   ^",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := ParseString(t.Context(), "page.polly", tt.input).Err()
			if perr == nil {
				t.Fatal("expected parse error")
			}

			d, ok := Diagnose(perr)
			if !ok {
				t.Fatalf("expected located diagnostic for %v", perr)
			}

			if got := d.String(); got != tt.want {
				t.Errorf("expected\n%s\ngot\n%s", tt.want, got)
			}
		})
	}
}

func TestDiagnose_Unlocated(t *testing.T) {
	d, ok := Diagnose(errors.New("plain"))
	if ok {
		t.Error("expected plain error to be unlocated")
	}

	if d.String() != "plain" {
		t.Errorf("expected message only, got %q", d.String())
	}
}
