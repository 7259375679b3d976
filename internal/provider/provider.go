// Package provider drives the external tools that fetch and manage charts.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/vesshelm/vesshelm/internal/runner"
)

// Fetcher downloads charts from package repositories and registries.
type Fetcher interface {
	// AddRepository registers a package repository. Adding one that is
	// already registered succeeds.
	AddRepository(ctx context.Context, name, url string) error

	// RefreshIndex refreshes the local index of every registered repository.
	RefreshIndex(ctx context.Context) error

	// Pull fetches chart at version from ref (a repository name or an
	// oci:// reference) and unpacks it into destDir/<chart>.
	Pull(ctx context.Context, ref, chart, version, destDir string) error
}

// Searcher looks up published chart versions.
type Searcher interface {
	RefreshIndex(ctx context.Context) error

	// LatestVersion returns the newest version of "<repo>/<chart>".
	LatestVersion(ctx context.Context, chartRef string) (string, error)
}

// Releaser removes installed releases from the cluster.
type Releaser interface {
	// Uninstall removes a release. A release that does not exist is not an error.
	Uninstall(ctx context.Context, release, namespace string) error
}

// Installer runs release commands against the cluster.
type Installer interface {
	// Diff runs a diff command and returns what it printed on stdout.
	Diff(ctx context.Context, args []string) (string, error)

	// Exec runs a command, handing each line of output to onLine as it
	// is produced.
	Exec(ctx context.Context, args []string, onLine func(runner.Line)) error
}

// Cloner reads charts out of version-control repositories.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
	Checkout(ctx context.Context, dir, rev string) error
}

// CommandError is a failed invocation of an external tool.
type CommandError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
	Hint   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %s", e.Tool, strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
