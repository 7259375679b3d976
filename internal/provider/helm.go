package provider

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vesshelm/vesshelm/internal/runner"
)

// Coordinates of the helm-diff plugin used to preview deployments.
const (
	HelmDiffPlugin    = "diff"
	HelmDiffPluginURL = "https://github.com/databus23/helm-diff"
)

// HelmCLI implements Fetcher, Searcher, Releaser and Installer by running
// the helm binary.
type HelmCLI struct {
	// Binary is the helm executable. Empty means "helm" from PATH.
	Binary string
}

func (h *HelmCLI) binary() string {
	if h.Binary == "" {
		return "helm"
	}
	return h.Binary
}

func (h *HelmCLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := runner.Command(ctx, h.binary(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return string(out), ctx.Err()
		}
		return string(out), &CommandError{Tool: "helm", Args: args, Output: string(out), Err: err}
	}
	return string(out), nil
}

// Available reports whether the helm binary can be found.
func (h *HelmCLI) Available() bool {
	_, err := exec.LookPath(h.binary())
	return err == nil
}

func (h *HelmCLI) AddRepository(ctx context.Context, name, url string) error {
	out, err := h.run(ctx, "repo", "add", name, url)
	if err != nil && strings.Contains(out, "already exists") {
		return nil
	}
	return err
}

func (h *HelmCLI) RefreshIndex(ctx context.Context) error {
	_, err := h.run(ctx, "repo", "update")
	return err
}

func (h *HelmCLI) Pull(ctx context.Context, ref, chart, version, destDir string) error {
	target := ref + "/" + chart
	if strings.HasPrefix(ref, "oci://") {
		target = strings.TrimSuffix(ref, "/") + "/" + chart
	}
	_, err := h.run(ctx, "pull", target, "--version", version, "--untar", "--untardir", destDir)
	return err
}

type searchResult struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func (h *HelmCLI) LatestVersion(ctx context.Context, chartRef string) (string, error) {
	cmd := runner.Command(ctx, h.binary(), "search", "repo", chartRef, "--output", "yaml")
	out, err := cmd.Output()
	if err != nil {
		args := []string{"search", "repo", chartRef}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandError{Tool: "helm", Args: args, Output: string(exitErr.Stderr), Err: err}
		}
		return "", &CommandError{Tool: "helm", Args: args, Err: err}
	}
	return parseSearch(out, chartRef)
}

// parseSearch prefers the exact name match; helm search matches substrings.
func parseSearch(out []byte, chartRef string) (string, error) {
	var results []searchResult
	if err := yaml.Unmarshal(out, &results); err != nil {
		return "", fmt.Errorf("parsing helm search output: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("chart %s not found", chartRef)
	}
	for _, r := range results {
		if r.Name == chartRef {
			return r.Version, nil
		}
	}
	if results[0].Version == "" {
		return "", fmt.Errorf("no version reported for %s", chartRef)
	}
	return results[0].Version, nil
}

func (h *HelmCLI) Uninstall(ctx context.Context, release, namespace string) error {
	out, err := h.run(ctx, "uninstall", release, "-n", namespace)
	if err != nil && strings.Contains(out, "release: not found") {
		return nil
	}
	return err
}

// PluginInstalled reports whether a helm plugin with the given name is installed.
func (h *HelmCLI) PluginInstalled(ctx context.Context, name string) (bool, error) {
	out, err := h.run(ctx, "plugin", "list")
	if err != nil {
		return false, err
	}
	return pluginListed(out, name), nil
}

func pluginListed(out, name string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == name {
			return true
		}
	}
	return false
}

// InstallPlugin installs a helm plugin from url.
func (h *HelmCLI) InstallPlugin(ctx context.Context, url string, verify bool) error {
	args := []string{"plugin", "install"}
	if !verify {
		args = append(args, "--verify=false")
	}
	args = append(args, url)
	_, err := h.run(ctx, args...)
	return err
}

// Diff runs a helm-diff command with colored output enabled.
func (h *HelmCLI) Diff(ctx context.Context, args []string) (string, error) {
	cmd := runner.Command(ctx, h.binary(), args...)
	cmd.Env = append(cmd.Env, "HELM_DIFF_COLOR=true")
	stdout, stderr, err := runner.Output(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", &CommandError{Tool: "helm", Args: args, Output: strings.Join(stderr, "\n"), Err: err}
	}
	return strings.Join(stdout, "\n"), nil
}

// Exec streams a helm command's output to onLine.
func (h *HelmCLI) Exec(ctx context.Context, args []string, onLine func(runner.Line)) error {
	cmd := runner.Command(ctx, h.binary(), args...)
	if err := runner.Stream(ctx, cmd, onLine); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return &CommandError{Tool: "helm", Args: args, Err: err}
	}
	return nil
}
