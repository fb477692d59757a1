package cli

import (
	"path/filepath"

	"github.com/ardnew/polly/cli/cmd"
	"github.com/ardnew/polly/pkg"
)

// configFile returns the path of the configuration file with extension ext
// in the per-user configuration directory.
func configFile(ext string) string {
	return filepath.Join(pkg.ConfigDir(), cmd.ConfigIdentifier+ext)
}
