package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vesshelm/vesshelm/internal/provider"
)

var (
	initForce         bool
	initSkipHelmCheck bool
)

// initTemplate is the default vesshelm.yaml scaffold.
const initTemplate = `# vesshelm configuration
repositories:
  - name: stable
    url: https://charts.helm.sh/stable

# Add charts with 'vesshelm add', or by hand:
#   - name: ingress-nginx
#     repo_name: ingress-nginx
#     version: 4.10.0
#     namespace: ingress
#     depends: [cert-manager]
charts: []

destinations:
  - name: default
    path: ./charts

helm:
  args: "upgrade --install {{ name }} {{ destination }}/{{ name }} -n {{ namespace }} --wait --rollback-on-failure --create-namespace"
  diff_enabled: true
  diff_args: "diff upgrade --allow-unreleased {{ name }} {{ destination }} -n {{ namespace }}"
`

// helmSetup is the part of helm that init checks.
type helmSetup interface {
	Available() bool
	PluginInstalled(ctx context.Context, name string) (bool, error)
	InstallPlugin(ctx context.Context, url string, verify bool) error
}

var newHelmSetup = func() helmSetup { return &provider.HelmCLI{} }

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter vesshelm.yaml and check the helm setup",
	Long: `Checks that helm is installed and installs the helm-diff plugin when it is
missing, then creates a vesshelm.yaml with a default destination and helm
arguments. An existing configuration file is left alone unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !initSkipHelmCheck {
			if err := checkHelm(cmd.Context(), newHelmSetup()); err != nil {
				return err
			}
		}

		outPath, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				info("Configuration file %s already exists.", outPath)
				return nil
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Add your charts with 'vesshelm add'")
		info("  2. Run 'vesshelm sync' to vendor them")
		info("  3. Run 'vesshelm deploy' to install them")
		return nil
	},
}

// checkHelm verifies helm is on PATH and installs the helm-diff plugin
// when it is missing.
func checkHelm(ctx context.Context, h helmSetup) error {
	if !h.Available() {
		return errors.New("helm executable not found in PATH; install Helm to use vesshelm")
	}

	ok, err := h.PluginInstalled(ctx, provider.HelmDiffPlugin)
	if err != nil {
		return fmt.Errorf("listing helm plugins: %w", err)
	}
	if ok {
		detail("helm-diff plugin is already installed")
		return nil
	}

	info("Installing helm-diff plugin...")
	if err := h.InstallPlugin(ctx, provider.HelmDiffPluginURL, false); err != nil {
		return fmt.Errorf("installing helm-diff plugin: %w", err)
	}
	info("Installed helm-diff plugin.")
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().BoolVar(&initSkipHelmCheck, "skip-helm-check", false, "do not check for helm and the helm-diff plugin")
	rootCmd.AddCommand(initCmd)
}
