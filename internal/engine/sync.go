package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/internal/lock"
	"github.com/vesshelm/vesshelm/internal/provider"
	"github.com/vesshelm/vesshelm/internal/sandbox"
)

// SyncEngine materializes remote charts into their destination directories
// and records what it fetched in the lockfile.
type SyncEngine struct {
	Helm provider.Fetcher
	Git  provider.Cloner

	// ProjectRoot anchors relative destination paths. Empty means the
	// working directory.
	ProjectRoot string

	// LockfilePath is where the lockfile is saved after a run that synced
	// at least one chart.
	LockfilePath string

	Logger *log.Logger
}

// SyncOptions configures a sync operation.
type SyncOptions struct {
	// IgnoreSkip fetches every eligible chart even when the lockfile says
	// it is up to date.
	IgnoreSkip bool

	// Charts restricts the run to the named charts. Empty means all.
	Charts []string

	// Events, when set, receives every event as it happens. The engine
	// never closes it.
	Events chan<- Event
}

type syncRun struct {
	e         *SyncEngine
	cfg       config.Config
	lf        *lock.Lockfile
	opts      SyncOptions
	selected  map[string]bool
	refreshed bool
	result    *SyncResult
}

// Sync processes cfg.Charts in order. Per-chart failures are reported as
// ChartFailed events and do not stop the run; the returned error is only
// set when the lockfile could not be saved or ctx was cancelled.
func (e *SyncEngine) Sync(ctx context.Context, cfg config.Config, lf *lock.Lockfile, opts SyncOptions) (*SyncResult, error) {
	run := &syncRun{
		e:      e,
		cfg:    cfg,
		lf:     lf,
		opts:   opts,
		result: &SyncResult{},
	}
	if len(opts.Charts) > 0 {
		run.selected = make(map[string]bool, len(opts.Charts))
		for _, n := range opts.Charts {
			run.selected[n] = true
		}
	}

	var runErr error
	for _, chart := range cfg.Charts {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		run.chart(ctx, chart)
	}

	if run.result.Synced > 0 {
		if err := lock.Save(e.LockfilePath, lf); err != nil {
			return run.result, errors.Join(runErr, fmt.Errorf("saving lockfile: %w", err))
		}
		run.result.LockfileSaved = true
	}
	return run.result, runErr
}

func (r *syncRun) emit(ev Event) {
	r.result.Events = append(r.result.Events, ev)
	if r.opts.Events != nil {
		r.opts.Events <- ev
	}
}

func (r *syncRun) skip(chart, reason string) {
	r.result.Skipped++
	r.emit(Event{Kind: ChartSkipped, Chart: chart, Reason: reason})
}

func (r *syncRun) fail(chart string, err error) {
	r.result.Failed++
	r.e.debug("chart failed", "chart", chart, "err", err)
	r.emit(Event{Kind: ChartFailed, Chart: chart, Err: err})
}

func (r *syncRun) chart(ctx context.Context, chart config.Chart) {
	switch {
	case chart.NoSync:
		r.skip(chart.Name, ReasonNoSync)
		return
	case r.selected != nil && !r.selected[chart.Name]:
		r.skip(chart.Name, ReasonNotSelected)
		return
	case chart.IsLocal():
		r.skip(chart.Name, ReasonLocal)
		return
	}

	repo, ok := r.cfg.Repository(chart.RepoName)
	if !ok {
		r.fail(chart.Name, fmt.Errorf("repository '%s' not found", chart.RepoName))
		return
	}
	if chart.Version == "" {
		r.fail(chart.Name, fmt.Errorf("chart has no version"))
		return
	}

	base, err := r.cfg.ResolveDestination(chart)
	if err != nil {
		r.fail(chart.Name, err)
		return
	}
	base = config.ResolvePath(r.e.ProjectRoot, base)
	if err := os.MkdirAll(base, 0755); err != nil {
		r.fail(chart.Name, fmt.Errorf("creating destination %s: %w", base, err))
		return
	}
	dest := filepath.Join(base, chart.Name)

	if !r.opts.IgnoreSkip {
		if entry, found := r.lf.Get(chart.Name, repo.Name); found && entry.Version == chart.Version && dirExists(dest) {
			r.skip(chart.Name, ReasonUpToDate)
			return
		}
	}

	r.refreshOnce(ctx)

	r.emit(Event{Kind: ChartStart, Chart: chart.Name})
	r.e.debug("syncing chart", "chart", chart.Name, "repo", repo.Name, "type", repo.Kind(), "version", chart.Version)

	if err := r.e.materialize(ctx, repo, chart, base, dest); err != nil {
		r.fail(chart.Name, err)
		return
	}

	r.lf.Update(chart.Name, repo.Name, chart.Version)
	r.result.Synced++
	r.emit(Event{Kind: ChartSuccess, Chart: chart.Name, Source: repo.Kind().Label()})
}

// refreshOnce refreshes the repository index before the first fetch of the
// run. A failure is reported and the run continues.
func (r *syncRun) refreshOnce(ctx context.Context) {
	if r.refreshed {
		return
	}
	r.refreshed = true

	r.emit(Event{Kind: RepoRefreshStart})
	if err := r.e.Helm.RefreshIndex(ctx); err != nil {
		r.e.debug("repository refresh failed", "err", err)
		r.emit(Event{Kind: RepoRefreshFailed, Err: err})
		return
	}
	r.emit(Event{Kind: RepoRefreshOK})
}

// materialize stages the chart in a temporary directory next to dest and
// swaps it into place.
func (e *SyncEngine) materialize(ctx context.Context, repo config.Repository, chart config.Chart, base, dest string) error {
	stage, err := os.MkdirTemp(base, ".vesshelm-stage-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(stage) }()

	switch repo.Kind() {
	case config.RepoHelm:
		if err := e.Helm.AddRepository(ctx, repo.Name, repo.URL); err != nil {
			return err
		}
		if err := e.Helm.Pull(ctx, repo.Name, chart.Name, chart.Version, stage); err != nil {
			return err
		}
	case config.RepoOCI:
		if err := e.Helm.Pull(ctx, ociRef(repo.URL), chart.Name, chart.Version, stage); err != nil {
			return err
		}
	case config.RepoGit:
		if err := e.fetchGit(ctx, repo, chart, stage); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported repository type '%s'", repo.Type)
	}

	staged := filepath.Join(stage, chart.Name)
	if !dirExists(staged) {
		return fmt.Errorf("chart directory %s not found after fetch", staged)
	}
	if err := sandbox.ReplaceDir(staged, dest); err != nil {
		return fmt.Errorf("installing chart into %s: %w", dest, err)
	}
	return nil
}

func (e *SyncEngine) fetchGit(ctx context.Context, repo config.Repository, chart config.Chart, stage string) error {
	tmp, err := os.MkdirTemp("", "vesshelm-git-*")
	if err != nil {
		return fmt.Errorf("creating clone directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	clone := filepath.Join(tmp, "repo")
	if err := e.Git.Clone(ctx, repo.URL, clone); err != nil {
		return err
	}
	if err := e.Git.Checkout(ctx, clone, chart.Version); err != nil {
		return err
	}

	src, err := sandbox.ValidatePath(clone, chart.ChartPath)
	if err != nil {
		return fmt.Errorf("chart_path: %w", err)
	}
	if !dirExists(src) {
		return fmt.Errorf("chart_path '%s' not found in %s at %s", chart.ChartPath, repo.URL, chart.Version)
	}
	return sandbox.CopyTree(src, filepath.Join(stage, chart.Name))
}

func ociRef(url string) string {
	if strings.HasPrefix(url, "oci://") {
		return url
	}
	return "oci://" + url
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (e *SyncEngine) debug(msg string, kv ...any) {
	if e.Logger != nil {
		e.Logger.Debug(msg, kv...)
	}
}
