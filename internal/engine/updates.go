package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-version"

	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/internal/configedit"
	"github.com/vesshelm/vesshelm/internal/provider"
)

// UpdateChecker compares configured chart versions with the newest
// versions published in their package repositories.
type UpdateChecker struct {
	Helm   provider.Searcher
	Logger *log.Logger
}

// VersionDelta is a chart with a newer published version.
type VersionDelta struct {
	Chart     string
	Namespace string
	Current   string
	Latest    string

	// Lexical is set when either version is not semver and the versions
	// were only compared as strings.
	Lexical bool
}

// SkippedChart is a chart that cannot be checked, with the reason.
type SkippedChart struct {
	Chart  string
	Reason string
}

// UpdateReport holds the outcome of an update check.
type UpdateReport struct {
	Outdated []VersionDelta
	UpToDate []string
	Skipped  []SkippedChart
	Errors   []ChartError

	// RefreshErr is set when the repository index could not be refreshed.
	// Versions were then looked up in the existing index.
	RefreshErr error
}

// Updates returns the new versions as edits for the configuration file.
func (r *UpdateReport) Updates() []configedit.VersionUpdate {
	out := make([]configedit.VersionUpdate, len(r.Outdated))
	for i, d := range r.Outdated {
		out[i] = configedit.VersionUpdate{Name: d.Chart, Namespace: d.Namespace, Version: d.Latest}
	}
	return out
}

// Check looks up the latest version of every package-repository chart in
// cfg, restricted to names when non-empty. Charts from version-control
// repositories or registries and local charts are skipped.
func (c *UpdateChecker) Check(ctx context.Context, cfg config.Config, names []string) (*UpdateReport, error) {
	report := &UpdateReport{}

	if err := c.Helm.RefreshIndex(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		report.RefreshErr = err
		if c.Logger != nil {
			c.Logger.Warn("repository refresh failed, using cached index", "err", err)
		}
	}

	for _, chart := range config.Select(cfg.Charts, names) {
		if chart.IsLocal() {
			report.Skipped = append(report.Skipped, SkippedChart{Chart: chart.Name, Reason: "local chart"})
			continue
		}
		repo, ok := cfg.Repository(chart.RepoName)
		if !ok {
			report.Errors = append(report.Errors, ChartError{Chart: chart.Name, Err: fmt.Errorf("repository '%s' not found", chart.RepoName)})
			continue
		}
		if repo.Kind() != config.RepoHelm {
			report.Skipped = append(report.Skipped, SkippedChart{Chart: chart.Name, Reason: string(repo.Kind()) + " repository"})
			continue
		}

		latest, err := c.Helm.LatestVersion(ctx, repo.Name+"/"+chart.Name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			report.Errors = append(report.Errors, ChartError{Chart: chart.Name, Err: err})
			continue
		}

		newer, lexical := isNewer(chart.Version, latest)
		if newer {
			report.Outdated = append(report.Outdated, VersionDelta{
				Chart:     chart.Name,
				Namespace: chart.Namespace,
				Current:   chart.Version,
				Latest:    latest,
				Lexical:   lexical,
			})
		} else {
			report.UpToDate = append(report.UpToDate, chart.Name)
		}
	}

	return report, nil
}

// isNewer reports whether latest is newer than current. When either side
// is not a semantic version any difference counts as newer.
func isNewer(current, latest string) (newer, lexical bool) {
	cv, err1 := version.NewSemver(strings.TrimPrefix(current, "v"))
	lv, err2 := version.NewSemver(strings.TrimPrefix(latest, "v"))
	if err1 != nil || err2 != nil {
		return current != latest, true
	}
	return lv.GreaterThan(cv), false
}
