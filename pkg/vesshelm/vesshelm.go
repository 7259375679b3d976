// Package vesshelm provides the public Go library API for vesshelm.
//
// vesshelm keeps a project's Helm charts vendored at pinned versions and
// deploys them in dependency order. This package wires configuration,
// lockfile, dependency graph and engines together for embedding in other
// Go programs.
//
// # Basic Usage
//
//	client, err := vesshelm.New(vesshelm.Options{
//	    ConfigPath: "vesshelm.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Vendor every chart whose locked version differs from the config
//	result, err := client.Sync(ctx, vesshelm.SyncOptions{})
//
//	// Install them in dependency order
//	deployed, err := client.Deploy(ctx, vesshelm.DeployOptions{Yes: true})
package vesshelm

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vesshelm/vesshelm/internal/artifacthub"
	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/internal/configedit"
	"github.com/vesshelm/vesshelm/internal/dag"
	"github.com/vesshelm/vesshelm/internal/deploy"
	"github.com/vesshelm/vesshelm/internal/engine"
	"github.com/vesshelm/vesshelm/internal/lock"
	"github.com/vesshelm/vesshelm/internal/provider"
	"github.com/vesshelm/vesshelm/internal/runner"
)

// Helm is everything vesshelm asks of the helm tool.
type Helm interface {
	provider.Fetcher
	provider.Searcher
	provider.Releaser
	provider.Installer
}

// Options configures a vesshelm client.
type Options struct {
	// ProjectRoot anchors relative destinations, chart paths and values
	// files. If empty, defaults to the directory containing ConfigPath.
	ProjectRoot string

	// ConfigPath is the path to the config file. Default: "vesshelm.yaml".
	ConfigPath string

	// LockfilePath is the path to the lockfile. Default: "vesshelm.lock"
	// in ProjectRoot.
	LockfilePath string

	// Helm and Git default to the helm and git binaries found in PATH.
	Helm Helm
	Git  provider.Cloner

	// ArtifactHub defaults to the public Artifact Hub API.
	ArtifactHub *artifacthub.Client

	Logger *log.Logger
}

// Client is the main entry point for the vesshelm library.
type Client struct {
	projectRoot  string
	configPath   string
	lockfilePath string
	helm         Helm
	git          provider.Cloner
	hub          *artifacthub.Client
	logger       *log.Logger
}

// New creates a new vesshelm Client.
func New(opts Options) (*Client, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultFilename
	}

	root := opts.ProjectRoot
	if root == "" {
		abs, err := filepath.Abs(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		root = filepath.Dir(abs)
	}
	if opts.LockfilePath == "" {
		opts.LockfilePath = filepath.Join(root, lock.DefaultFilename)
	}

	c := &Client{
		projectRoot:  root,
		configPath:   opts.ConfigPath,
		lockfilePath: opts.LockfilePath,
		helm:         opts.Helm,
		git:          opts.Git,
		hub:          opts.ArtifactHub,
		logger:       opts.Logger,
	}
	if c.helm == nil {
		c.helm = &provider.HelmCLI{}
	}
	if c.git == nil {
		c.git = &provider.GitCLI{}
	}
	if c.hub == nil {
		c.hub = &artifacthub.Client{}
	}
	return c, nil
}

// ProjectRoot returns the directory relative paths are resolved against.
func (c *Client) ProjectRoot() string { return c.projectRoot }

// ConfigPath returns the configuration file path.
func (c *Client) ConfigPath() string { return c.configPath }

// LockfilePath returns the lockfile path.
func (c *Client) LockfilePath() string { return c.lockfilePath }

// Validate loads the configuration and checks it, including the
// dependency graph.
func (c *Client) Validate() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if _, err := dag.Sort(cfg.Charts); err != nil {
		return nil, &config.ValidationError{Errors: []string{err.Error()}}
	}
	return cfg, nil
}

// loadSorted returns the validated configuration with its charts in
// dependency order.
func (c *Client) loadSorted() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	sorted, err := dag.Sort(cfg.Charts)
	if err != nil {
		return nil, fmt.Errorf("resolving chart dependencies: %w", err)
	}
	cfg.Charts = sorted
	return cfg, nil
}

func (c *Client) loadLockfile() (*lock.Lockfile, error) {
	return lock.Load(c.lockfilePath)
}

// SyncOptions configures a sync operation.
type SyncOptions struct {
	// Charts restricts the run to the named charts. Empty means all.
	Charts []string

	// IgnoreSkip refetches charts the lockfile says are up to date.
	IgnoreSkip bool

	// Events, when set, receives progress events as they happen.
	Events chan<- Event
}

// Sync vendors remote charts into their destinations in dependency order
// and records the fetched versions in the lockfile.
func (c *Client) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	cfg, err := c.loadSorted()
	if err != nil {
		return nil, err
	}
	if err := config.CheckSelection(cfg.Charts, opts.Charts); err != nil {
		return nil, err
	}
	lf, err := c.loadLockfile()
	if err != nil {
		return nil, err
	}

	eng := &engine.SyncEngine{
		Helm:         c.helm,
		Git:          c.git,
		ProjectRoot:  c.projectRoot,
		LockfilePath: c.lockfilePath,
		Logger:       c.logger,
	}
	return eng.Sync(ctx, *cfg, lf, engine.SyncOptions{
		IgnoreSkip: opts.IgnoreSkip,
		Charts:     opts.Charts,
		Events:     opts.Events,
	})
}

// DeployOptions configures a deploy operation.
type DeployOptions struct {
	// Charts restricts the run to the named charts. Empty means all.
	Charts []string

	DryRun        bool
	Yes           bool
	Force         bool
	TakeOwnership bool

	// Confirm is asked before each chart unless Yes or Force is set.
	Confirm func(chart string) (bool, error)

	// ShowDiff receives each non-empty diff.
	ShowDiff func(chart, diff string)

	// Output receives helm's output while a chart deploys.
	Output func(chart string, line runner.Line)
}

// Deploy installs charts with helm in dependency order, stopping at the
// first failure.
func (c *Client) Deploy(ctx context.Context, opts DeployOptions) (*DeployResult, error) {
	cfg, err := c.loadSorted()
	if err != nil {
		return nil, err
	}
	if err := config.CheckSelection(cfg.Charts, opts.Charts); err != nil {
		return nil, err
	}

	d := &deploy.Deployer{
		Helm:     c.helm,
		BaseDir:  c.projectRoot,
		Confirm:  opts.Confirm,
		ShowDiff: opts.ShowDiff,
		Output:   opts.Output,
		Logger:   c.logger,
	}
	return d.Deploy(ctx, cfg, config.Select(cfg.Charts, opts.Charts), deploy.Options{
		DryRun:        opts.DryRun,
		Yes:           opts.Yes,
		Force:         opts.Force,
		TakeOwnership: opts.TakeOwnership,
	})
}

// Graph returns the dependency forest of the configured charts.
func (c *Client) Graph() ([]*TreeNode, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	return dag.BuildTree(cfg.Charts)
}

// Status reports the sync state of each chart, restricted to names when
// non-empty.
func (c *Client) Status(names []string) ([]ChartStatus, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.CheckSelection(cfg.Charts, names); err != nil {
		return nil, err
	}
	lf, err := c.loadLockfile()
	if err != nil {
		return nil, err
	}
	eng := &engine.StatusEngine{ProjectRoot: c.projectRoot}
	return eng.Status(*lf, *cfg, names), nil
}

// CheckUpdates looks up newer published versions of package-repository
// charts.
func (c *Client) CheckUpdates(ctx context.Context, names []string) (*UpdateReport, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.CheckSelection(cfg.Charts, names); err != nil {
		return nil, err
	}

	for _, r := range cfg.Repositories {
		if r.Kind() != config.RepoHelm {
			continue
		}
		if err := c.helm.AddRepository(ctx, r.Name, r.URL); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.warn("could not register repository", "repo", r.Name, "err", err)
		}
	}

	checker := &engine.UpdateChecker{Helm: c.helm, Logger: c.logger}
	return checker.Check(ctx, *cfg, names)
}

// ApplyUpdates rewrites chart versions in the configuration file in place.
// Updates that could not be applied are returned with the reason; the
// rest are still written.
func (c *Client) ApplyUpdates(updates []VersionUpdate) (map[VersionUpdate]error, error) {
	ed := &configedit.Editor{Path: c.configPath}
	return ed.SetChartVersions(updates)
}

func (c *Client) warn(msg string, kv ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, kv...)
	}
}
