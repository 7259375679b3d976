package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vesshelm/vesshelm/internal/deploy"
	"github.com/vesshelm/vesshelm/internal/runner"
	"github.com/vesshelm/vesshelm/pkg/vesshelm"
)

var (
	deployDryRun        bool
	deployYes           bool
	deployForce         bool
	deployTakeOwnership bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy [chart...]",
	Short: "Install charts with helm in dependency order",
	Long: `Runs helm for each chart, dependencies first. When diffs are enabled (or
with --dry-run) a helm-diff preview is shown first: charts without changes
are skipped unless --force is given, and every other chart needs
confirmation unless --yes is given. The run stops at the first failure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		opts := vesshelm.DeployOptions{
			Charts:        args,
			DryRun:        deployDryRun,
			Yes:           deployYes,
			Force:         deployForce,
			TakeOwnership: deployTakeOwnership,
			ShowDiff: func(chart, diff string) {
				info("%s", headerStyle.Render("Diff for "+chart))
				fmt.Println(diff)
			},
			Output: func(chart string, line runner.Line) {
				if quiet {
					return
				}
				if line.Stream == runner.Stderr {
					fmt.Fprintln(os.Stderr, line.Text)
					return
				}
				fmt.Println(line.Text)
			},
		}
		if interactive() {
			opts.Confirm = func(chart string) (bool, error) {
				return confirm(fmt.Sprintf("Deploy %s?", chart))
			}
		}

		result, err := client.Deploy(cmd.Context(), opts)
		if result != nil {
			printDeployResult(result)
		}
		if err != nil {
			return err
		}
		if !result.OK() {
			return fmt.Errorf("deployment failed")
		}
		return nil
	},
}

func printDeployResult(result *vesshelm.DeployResult) {
	for _, o := range result.Outcomes {
		switch o.Status {
		case deploy.StatusDeployed:
			info("%s %s", mark(okStyle, "OK"), nameStyle.Render(o.Chart))
		case deploy.StatusSkipped, deploy.StatusIgnored:
			info("%s %s (%s)", mark(skipStyle, "SKIP"), nameStyle.Render(o.Chart), o.Reason)
		case deploy.StatusFailed:
			errorf("%s %s: %v", mark(failStyle, "FAIL"), o.Chart, o.Err)
		}
	}
	info("")
	info("Deploy complete: %d deployed, %d skipped, %d ignored, %d failed.",
		result.Deployed, result.Skipped, result.Ignored, result.Failed)
}

func init() {
	deployCmd.Flags().BoolVar(&deployDryRun, "dry-run", false, "show the diff of each chart without deploying")
	deployCmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "deploy without asking for confirmation")
	deployCmd.Flags().BoolVar(&deployForce, "force", false, "deploy even when the diff is empty")
	deployCmd.Flags().BoolVar(&deployTakeOwnership, "take-ownership", false, "pass --take-ownership to helm")
	rootCmd.AddCommand(deployCmd)
}
