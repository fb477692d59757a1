package lang

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

const formatInput = `&item(@x){/li{@x}}/ul.list{&item(@a)}$std.join(array=@xs)`

func TestDocument_Format(t *testing.T) {
	doc := ParseString(t.Context(), "list.polly", formatInput)

	var buf bytes.Buffer
	if err := doc.Format(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	want := strings.Join([]string{
		"html ul .list",
		"  call item(@a)",
		"function std.join(array=@xs)",
		"component item(x)",
		"  html li",
		"    variable x",
		"",
	}, "\n")

	if buf.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, buf.String())
	}
}

func TestDocument_FormatJSON(t *testing.T) {
	doc := ParseString(t.Context(), "list.polly", formatInput)

	var buf bytes.Buffer
	if err := doc.FormatJSON(t.Context(), &buf, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var got struct {
		Source     string           `json:"source"`
		Nodes      []map[string]any `json:"nodes"`
		Components []struct {
			Name   string   `json:"name"`
			Params []string `json:"params"`
		} `json:"components"`
	}

	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}

	if got.Source != "list.polly" {
		t.Errorf("expected source list.polly, got %q", got.Source)
	}

	if len(got.Components) != 1 || got.Components[0].Name != "item" {
		t.Errorf("unexpected components %+v", got.Components)
	}

	if len(got.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(got.Nodes))
	}

	if _, ok := got.Nodes[1]["html"]; !ok {
		t.Errorf("expected html node, got %v", got.Nodes[1])
	}
}

func TestDocument_FormatYAML(t *testing.T) {
	doc := ParseString(t.Context(), "list.polly", formatInput)

	var buf bytes.Buffer
	if err := doc.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	for _, want := range []string{"source: list.polly", "name: std.join", "tag: ul"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in\n%s", want, buf.String())
		}
	}
}

func TestFormatLexemes(t *testing.T) {
	src := NewSource("a.polly", "/p{hi}")

	var buf bytes.Buffer
	if err := FormatLexemes(&buf, src, Lex(src.Text)); err != nil {
		t.Fatalf("format error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}

	if !strings.HasPrefix(lines[3], "a.polly:1:4\t3\tword") {
		t.Errorf("unexpected line %q", lines[3])
	}
}
