package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	Log struct {
		Level  string `default:"warn"`
		Format string `default:"pretty"`
		Caller bool   `negatable:""`
	} `embed:"" prefix:"log-"`

	Init Init `cmd:""`
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create"},
		{name: "overwrite with force", force: true, exists: true},
		{name: "exists without force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", "config.yaml")

			if tt.exists {
				writeFile(t, filepath.Dir(path), filepath.Base(path), "existing: true\n")
			}

			var cli initCLI

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse([]string{"--log-level=debug", "init"})
			if err != nil {
				t.Fatal(err)
			}

			err = (&Init{Force: tt.force}).Run(WithContext(t.Context(), ktx))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("init error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(data, &got); err != nil {
				t.Fatalf("invalid yaml %q: %v", data, err)
			}

			want := map[string]any{
				"log-level":  "debug",
				"log-format": "pretty",
				"log-caller": false,
			}

			for k, v := range want {
				if got[k] != v {
					t.Errorf("%s: expected %v, got %v", k, v, got[k])
				}
			}

			if _, ok := got["help"]; ok {
				t.Errorf("help flag should not be written")
			}

			if strings.Index(string(data), "log-caller") > strings.Index(string(data), "log-level") {
				t.Errorf("expected keys sorted, got\n%s", data)
			}
		})
	}
}
