package vesshelm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vesshelm/vesshelm/internal/artifacthub"
	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/internal/configedit"
	"github.com/vesshelm/vesshelm/internal/dag"
	"github.com/vesshelm/vesshelm/internal/lock"
	"github.com/vesshelm/vesshelm/internal/sandbox"
)

// AmbiguousChartError reports a chart name used in several namespaces
// when no namespace was given.
type AmbiguousChartError struct {
	Name       string
	Namespaces []string
}

func (e *AmbiguousChartError) Error() string {
	return fmt.Sprintf("chart '%s' exists in several namespaces (%s); choose one with --namespace",
		e.Name, strings.Join(e.Namespaces, ", "))
}

// DependentsError reports that other charts still depend on a chart.
type DependentsError struct {
	Chart      string
	Dependents []string
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("cannot remove chart '%s': required by %s", e.Chart, strings.Join(e.Dependents, ", "))
}

// FindChart returns the chart called name. namespace may be empty when
// the name is unique.
func (c *Client) FindChart(name, namespace string) (*config.Config, config.Chart, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, config.Chart{}, err
	}

	var matches []config.Chart
	for _, ch := range cfg.ChartsNamed(name) {
		if namespace == "" || ch.Namespace == namespace {
			matches = append(matches, ch)
		}
	}
	switch len(matches) {
	case 0:
		if namespace != "" {
			return nil, config.Chart{}, fmt.Errorf("chart '%s' not found in namespace '%s'", name, namespace)
		}
		return nil, config.Chart{}, &dag.ChartNotFoundError{Chart: name}
	case 1:
		return cfg, matches[0], nil
	default:
		nss := make([]string, len(matches))
		for i, m := range matches {
			nss[i] = m.Namespace
		}
		sort.Strings(nss)
		return nil, config.Chart{}, &AmbiguousChartError{Name: name, Namespaces: nss}
	}
}

// Dependents returns the charts that list name in depends, sorted by name.
func (c *Client) Dependents(name string) ([]config.Chart, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	return dag.DependentsOf(cfg.Charts, name)
}

// DeletePlan describes what Delete will do. It is computed without side
// effects so it can be shown before confirmation.
type DeletePlan struct {
	Chart config.Chart

	// Dir is the chart's directory; DirExists tells whether it is present.
	Dir       string
	DirExists bool

	// UnusedRepository is the chart's repository when no other chart uses
	// it. It is removed along with the chart.
	UnusedRepository string

	// Dependents are charts depending on this one. Delete refuses to run
	// while there are any.
	Dependents []string
}

// PlanDelete computes the effects of deleting a chart.
func (c *Client) PlanDelete(name, namespace string) (*DeletePlan, error) {
	cfg, chart, err := c.FindChart(name, namespace)
	if err != nil {
		return nil, err
	}

	deps, err := dag.DependentsOf(cfg.Charts, chart.Name)
	if err != nil {
		return nil, err
	}

	plan := &DeletePlan{Chart: chart}
	for _, d := range deps {
		plan.Dependents = append(plan.Dependents, d.Name)
	}

	dir, err := c.chartDir(cfg, chart)
	if err != nil {
		return nil, err
	}
	plan.Dir = dir
	plan.DirExists = dirExists(dir)

	if !chart.IsLocal() && !cfg.RepositoryInUse(chart.RepoName, chart) {
		plan.UnusedRepository = chart.RepoName
	}
	return plan, nil
}

// chartDir resolves where a chart's files live. When a path override
// points straight at the chart directory rather than at its parent, the
// override itself is used.
func (c *Client) chartDir(cfg *config.Config, chart config.Chart) (string, error) {
	if chart.IsLocal() {
		return config.ResolvePath(c.projectRoot, chart.ChartPath), nil
	}

	base, err := cfg.ResolveDestination(chart)
	if err != nil {
		return "", err
	}
	base = config.ResolvePath(c.projectRoot, base)
	standard := filepath.Join(base, chart.Name)

	if chart.Dest != "" {
		if _, alias := cfg.Destination(chart.Dest); !alias && !dirExists(standard) && dirExists(base) {
			return base, nil
		}
	}
	return standard, nil
}

// Delete carries out plan: optionally uninstalls the release, removes the
// chart directory, drops the lockfile entry and removes the chart (and an
// unused repository) from the configuration file. If the uninstall fails
// nothing else is changed.
func (c *Client) Delete(ctx context.Context, plan *DeletePlan, uninstall bool) error {
	chart := plan.Chart
	if len(plan.Dependents) > 0 {
		return &DependentsError{Chart: chart.Name, Dependents: plan.Dependents}
	}

	if uninstall {
		if err := c.helm.Uninstall(ctx, chart.Name, chart.Namespace); err != nil {
			return fmt.Errorf("uninstalling release '%s': %w", chart.Name, err)
		}
	}

	if plan.DirExists {
		if err := sandbox.SafeRemoveAll(c.projectRoot, plan.Dir); err != nil {
			return fmt.Errorf("removing %s: %w", plan.Dir, err)
		}
	}

	if !chart.IsLocal() {
		lf, err := c.loadLockfile()
		if err != nil {
			return err
		}
		if lf.Remove(chart.Name, chart.RepoName) {
			if err := lock.Save(c.lockfilePath, lf); err != nil {
				return fmt.Errorf("saving lockfile: %w", err)
			}
		}
	}

	ed := &configedit.Editor{Path: c.configPath}
	removed, err := ed.RemoveChart(chart.Name, chart.Namespace)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("chart '%s' could not be located in %s; remove it by hand", chart.Name, c.configPath)
	}
	if plan.UnusedRepository != "" {
		if _, err := ed.RemoveRepository(plan.UnusedRepository); err != nil {
			return err
		}
	}
	return nil
}

// Uninstall removes the chart's release from the cluster. The chart stays
// in the configuration.
func (c *Client) Uninstall(ctx context.Context, name, namespace string) error {
	_, chart, err := c.FindChart(name, namespace)
	if err != nil {
		return err
	}
	return c.helm.Uninstall(ctx, chart.Name, chart.Namespace)
}

// AddRequest is a chart to append to the configuration, with the
// repository to register alongside it when it is new.
type AddRequest struct {
	Chart      config.Chart
	Repository *config.Repository
}

// Add appends a chart, and a new repository if given, to the
// configuration file. The resulting configuration is validated before
// anything is written.
func (c *Client) Add(req AddRequest) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	if req.Repository != nil {
		if existing, ok := cfg.Repository(req.Repository.Name); ok {
			if !sameURL(existing.URL, req.Repository.URL) {
				return fmt.Errorf("repository '%s' already exists with url %s", existing.Name, existing.URL)
			}
			req.Repository = nil
		} else {
			cfg.Repositories = append(cfg.Repositories, *req.Repository)
		}
	}
	cfg.Charts = append(cfg.Charts, req.Chart)

	if errs := config.Validate(cfg); len(errs) > 0 {
		return &config.ValidationError{Errors: errs}
	}
	if _, err := dag.Sort(cfg.Charts); err != nil {
		return err
	}

	ed := &configedit.Editor{Path: c.configPath}
	return ed.AddChart(req.Chart, req.Repository)
}

// FromArtifactHub builds an AddRequest for the package ref points at.
// A repository already configured with the package's URL is reused;
// otherwise one named after the Artifact Hub repository is proposed.
func (c *Client) FromArtifactHub(ctx context.Context, ref, namespace string) (*AddRequest, error) {
	repoName, pkgName, err := artifacthub.ParseRef(ref)
	if err != nil {
		return nil, err
	}
	pkg, err := c.hub.Package(ctx, repoName, pkgName)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	req := &AddRequest{Chart: config.Chart{
		Name:      pkg.Name,
		Namespace: namespace,
		Version:   pkg.Version,
		Comment:   "https://artifacthub.io/packages/helm/" + repoName + "/" + pkgName,
	}}
	for _, r := range cfg.Repositories {
		if sameURL(r.URL, pkg.Repository.URL) {
			req.Chart.RepoName = r.Name
			return req, nil
		}
	}
	req.Chart.RepoName = pkg.Repository.Name
	req.Repository = &config.Repository{Name: pkg.Repository.Name, URL: pkg.Repository.URL}
	return req, nil
}

func sameURL(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
