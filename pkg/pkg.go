// Package pkg holds the identity of the polly program and the directories
// it keeps its files in.
//
//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of polly, embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It also names the configuration and cache
	// directories.
	Name = "polly"
	// Description is the one-line summary shown in help output.
	Description = "Markup template compiler"
)

// AuthorInfo is the name and email address of an author.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the authors of polly.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
