package engine

import (
	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/internal/lock"
)

// Chart states reported by StatusEngine.
const (
	StateLocal    = "local"
	StateDisabled = "disabled"
	StatePending  = "pending"
	StateOutdated = "outdated"
	StateMissing  = "missing"
	StateSynced   = "synced"
	StateInvalid  = "invalid"
)

// StatusEngine reports, without side effects, what sync would do for each chart.
type StatusEngine struct {
	ProjectRoot string
}

// ChartStatus describes the current state of a chart.
type ChartStatus struct {
	Name      string
	Namespace string
	Repo      string
	Type      string
	Wanted    string
	Locked    string
	Path      string
	State     string
	Detail    string
}

// Status returns the state of all (or the named) charts, in configuration order.
func (e *StatusEngine) Status(lf lock.Lockfile, cfg config.Config, names []string) []ChartStatus {
	var statuses []ChartStatus
	for _, chart := range config.Select(cfg.Charts, names) {
		s := ChartStatus{
			Name:      chart.Name,
			Namespace: chart.Namespace,
			Repo:      chart.RepoName,
			Wanted:    chart.Version,
		}

		if chart.IsLocal() {
			s.Type = "local"
			s.Path = chart.ChartPath
			s.State = StateLocal
			statuses = append(statuses, s)
			continue
		}

		if repo, ok := cfg.Repository(chart.RepoName); ok {
			s.Type = string(repo.Kind())
		}
		if entry, ok := lf.Get(chart.Name, chart.RepoName); ok {
			s.Locked = entry.Version
		}

		dir, err := cfg.ChartDir(chart)
		if err != nil {
			s.State = StateInvalid
			s.Detail = err.Error()
			statuses = append(statuses, s)
			continue
		}
		s.Path = dir

		s.State = computeState(chart, s.Locked, dirExists(config.ResolvePath(e.ProjectRoot, dir)))
		statuses = append(statuses, s)
	}
	return statuses
}

func computeState(chart config.Chart, locked string, present bool) string {
	switch {
	case chart.NoSync:
		return StateDisabled
	case locked == "":
		return StatePending
	case locked != chart.Version:
		return StateOutdated
	case !present:
		return StateMissing
	default:
		return StateSynced
	}
}
