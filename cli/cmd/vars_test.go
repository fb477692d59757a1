package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardnew/polly/lang"
)

func TestDefine(t *testing.T) {
	t.Parallel()

	root := lang.Object(map[string]lang.Value{
		"n":    lang.Int(3),
		"name": lang.String("polly"),
	})

	tests := []struct {
		name    string
		root    lang.Value
		defines []string
		want    map[string]string // JSON
		wantErr error
	}{
		{
			name:    "arithmetic",
			root:    root,
			defines: []string{"twice=n*2"},
			want:    map[string]string{"twice": "6"},
		},
		{
			name:    "later sees earlier",
			root:    root,
			defines: []string{"a=n+1", "b=a*10"},
			want:    map[string]string{"a": "4", "b": "40"},
		},
		{
			name:    "strings and lists",
			root:    root,
			defines: []string{"upper=upper(name)", "list=[1, 2]"},
			want:    map[string]string{"upper": `"POLLY"`, "list": "[1,2]"},
		},
		{
			name:    "null root",
			root:    lang.Null(),
			defines: []string{"x=true"},
			want:    map[string]string{"x": "true"},
		},
		{name: "missing equals", root: root, defines: []string{"x"}, wantErr: ErrDefine},
		{name: "empty name", root: root, defines: []string{"=1"}, wantErr: ErrDefine},
		{name: "dotted name", root: root, defines: []string{"a.b=1"}, wantErr: ErrDefine},
		{name: "compile error", root: root, defines: []string{"x=1 +"}, wantErr: ErrDefine},
		{name: "unknown variable", root: root, defines: []string{"x=missing + 1"}, wantErr: ErrDefine},
		{name: "array root", root: lang.Array(), defines: []string{"x=1"}, wantErr: lang.ErrInvalidVariables},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := define(tt.root, tt.defines)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("define error: %v", err)
			}

			for name, want := range tt.want {
				v, ok := got.Get(name)
				if !ok {
					t.Fatalf("missing %q", name)
				}

				if got := jsonOf(t, v); got != want {
					t.Errorf("%s: expected %s, got %s", name, want, got)
				}
			}
		})
	}
}

func TestLoadVars(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx, _, _ := testContext(t, `{"from": "stdin"}`)

	tests := []struct {
		name    string
		path    string
		key     string
		want    string
		wantErr error
	}{
		{name: "json", path: writeFile(t, dir, "v.json", `{"a": "json"}`), key: "a", want: `"json"`},
		{name: "yaml", path: writeFile(t, dir, "v.yml", "a: [1, 2]\n"), key: "a", want: "[1,2]"},
		{name: "stdin", path: "-", key: "from", want: `"stdin"`},
		{name: "invalid", path: writeFile(t, dir, "bad.yaml", "a: [1\n"), wantErr: ErrReadVars},
		{name: "missing", path: dir + "/nope.json", wantErr: ErrReadVars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := loadVars(ctx, tt.path, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("load error: %v", err)
			}

			field, _ := v.Get(tt.key)
			if got := jsonOf(t, field); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	v, err := loadVars(ctx, "", nil)
	if err != nil || v.Kind() != lang.KindObject || v.Len() != 0 {
		t.Errorf("expected empty object, got %v, %v", v, err)
	}
}

func jsonOf(t *testing.T, v lang.Value) string {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	return string(data)
}
