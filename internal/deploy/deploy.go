// Package deploy installs charts into the cluster with helm, in the order
// it is given, optionally gated by a helm-diff preview and a confirmation.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"

	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/internal/provider"
	"github.com/vesshelm/vesshelm/internal/runner"
)

// DefaultDiffArgs is the diff command used when helm.diff_args is unset.
const DefaultDiffArgs = "diff upgrade --suppress-secrets --allow-unreleased {{ name }} {{ destination }} -n {{ namespace }}"

// ErrNoHelmConfig is returned when the configuration has no helm section.
var ErrNoHelmConfig = errors.New("no helm configuration found")

// Status is the outcome of deploying one chart.
type Status string

const (
	StatusDeployed Status = "deployed"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusIgnored  Status = "ignored"
)

// Outcome records what happened to one chart.
type Outcome struct {
	Chart     string
	Namespace string
	Status    Status
	Reason    string
	Err       error
}

// Result summarizes a deploy run.
type Result struct {
	Outcomes []Outcome

	Deployed int
	Failed   int
	Skipped  int
	Ignored  int
}

// OK reports whether no chart failed.
func (r *Result) OK() bool {
	return r.Failed == 0
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusDeployed:
		r.Deployed++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	case StatusIgnored:
		r.Ignored++
	}
}

// Options configures a deploy run.
type Options struct {
	// DryRun shows the diff and stops.
	DryRun bool

	// Yes answers the confirmation prompt.
	Yes bool

	// Force deploys even when the diff is empty and skips the prompt.
	Force bool

	// TakeOwnership appends --take-ownership to the helm arguments.
	TakeOwnership bool
}

// Deployer runs helm for each chart.
type Deployer struct {
	Helm provider.Installer

	// BaseDir anchors relative chart and values file paths.
	BaseDir string

	// Confirm asks whether chart should be deployed. Without it, a run
	// that needs confirmation fails unless Options.Yes or Options.Force
	// is set.
	Confirm func(chart string) (bool, error)

	// ShowDiff receives the non-empty diff of each chart.
	ShowDiff func(chart, diff string)

	// Output receives helm's output while a chart is being deployed.
	Output func(chart string, line runner.Line)

	Logger *log.Logger
}

// Deploy installs charts in the given order and stops at the first
// failure. Charts marked no_deploy are skipped.
func (d *Deployer) Deploy(ctx context.Context, cfg *config.Config, charts []config.Chart, opts Options) (*Result, error) {
	if cfg.Helm == nil {
		return nil, ErrNoHelmConfig
	}

	result := &Result{}
	for _, chart := range charts {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if chart.NoDeploy {
			result.add(Outcome{Chart: chart.Name, Namespace: chart.Namespace, Status: StatusSkipped, Reason: "no_deploy=true"})
			continue
		}

		status, reason, err := d.chart(ctx, cfg, chart, opts)
		if err != nil {
			result.add(Outcome{Chart: chart.Name, Namespace: chart.Namespace, Status: StatusFailed, Err: err})
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			break
		}
		result.add(Outcome{Chart: chart.Name, Namespace: chart.Namespace, Status: status, Reason: reason})
	}
	return result, nil
}

func (d *Deployer) chart(ctx context.Context, cfg *config.Config, chart config.Chart, opts Options) (Status, string, error) {
	vars, err := d.vars(cfg, chart)
	if err != nil {
		return StatusFailed, "", err
	}

	tmpl := chart.HelmArgsOverride
	if tmpl == "" {
		tmpl = strings.TrimSpace(cfg.Helm.Args + " " + chart.HelmArgsAppend)
	}
	args, err := Args(tmpl, vars)
	if err != nil {
		return StatusFailed, "", fmt.Errorf("helm args: %w", err)
	}

	valuesArgs, cleanup, err := d.valuesArgs(chart)
	if err != nil {
		return StatusFailed, "", err
	}
	defer cleanup()

	args = append(args, valuesArgs...)
	if opts.TakeOwnership {
		args = append(args, "--take-ownership")
	}

	if opts.DryRun || cfg.Helm.DiffOn() {
		diffTmpl := cfg.Helm.DiffArgs
		if diffTmpl == "" {
			diffTmpl = DefaultDiffArgs
		}
		diffArgs, err := Args(diffTmpl, vars)
		if err != nil {
			return StatusFailed, "", fmt.Errorf("diff args: %w", err)
		}
		diffArgs = append(diffArgs, valuesArgs...)

		d.debug("running diff", "chart", chart.Name, "args", strings.Join(diffArgs, " "))
		diff, err := d.Helm.Diff(ctx, diffArgs)
		if err != nil {
			return StatusFailed, "", err
		}

		if strings.TrimSpace(ansi.Strip(diff)) == "" {
			if !opts.Force {
				return StatusSkipped, "no changes", nil
			}
			d.warn("no changes detected, deploying anyway", "chart", chart.Name)
		} else if d.ShowDiff != nil {
			d.ShowDiff(chart.Name, diff)
		}

		if opts.DryRun {
			return StatusIgnored, "dry run", nil
		}

		if !opts.Yes && !opts.Force {
			if d.Confirm == nil {
				return StatusFailed, "", fmt.Errorf("confirmation required (use --yes)")
			}
			ok, err := d.Confirm(chart.Name)
			if err != nil {
				return StatusFailed, "", fmt.Errorf("reading confirmation: %w", err)
			}
			if !ok {
				return StatusIgnored, "declined", nil
			}
		}
	}

	d.debug("running helm", "chart", chart.Name, "args", strings.Join(args, " "))
	err = d.Helm.Exec(ctx, args, func(l runner.Line) {
		if d.Output != nil {
			d.Output(chart.Name, l)
		}
	})
	if err != nil {
		return StatusFailed, "", err
	}
	return StatusDeployed, "", nil
}

// vars resolves the template placeholders. A local chart without an
// override uses its chart_path as both destination and chart path.
func (d *Deployer) vars(cfg *config.Config, chart config.Chart) (Vars, error) {
	v := Vars{Name: chart.Name, Namespace: chart.Namespace, Version: chart.Version}

	if chart.IsLocal() && chart.Dest == "" {
		v.Destination = config.ResolvePath(d.BaseDir, chart.ChartPath)
		v.ChartPath = v.Destination
		return v, nil
	}

	dest, err := cfg.ResolveDestination(chart)
	if err != nil {
		return Vars{}, err
	}
	v.Destination = config.ResolvePath(d.BaseDir, dest)
	if chart.IsLocal() {
		v.ChartPath = config.ResolvePath(d.BaseDir, chart.ChartPath)
	} else {
		v.ChartPath = filepath.Join(v.Destination, chart.Name)
	}
	return v, nil
}

// valuesArgs returns a -f flag per values file, then one for the merged
// inline values.
func (d *Deployer) valuesArgs(chart config.Chart) ([]string, func(), error) {
	var args []string
	for _, f := range chart.ValuesFiles {
		args = append(args, "-f", config.ResolvePath(d.BaseDir, f))
	}
	if len(chart.Values) == 0 {
		return args, func() {}, nil
	}

	path, err := writeValuesFile(chart.Values)
	if err != nil {
		return nil, func() {}, err
	}
	args = append(args, "-f", path)
	return args, func() { _ = os.Remove(path) }, nil
}

func (d *Deployer) debug(msg string, kv ...any) {
	if d.Logger != nil {
		d.Logger.Debug(msg, kv...)
	}
}

func (d *Deployer) warn(msg string, kv ...any) {
	if d.Logger != nil {
		d.Logger.Warn(msg, kv...)
	}
}
