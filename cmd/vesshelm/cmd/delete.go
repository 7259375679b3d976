package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vesshelm/vesshelm/pkg/vesshelm"
)

var (
	deleteNamespace string
	deleteYes       bool
	deleteUninstall bool

	uninstallNamespace string
	uninstallYes       bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <chart>",
	Short: "Remove a chart from the project",
	Long: `Removes a chart's vendored directory, its lockfile entry and its entry in
the configuration file, along with its repository when no other chart uses
it. Charts that others depend on cannot be deleted. With --uninstall the
helm release is removed first; if that fails nothing else is changed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		plan, err := client.PlanDelete(args[0], deleteNamespace)
		if err != nil {
			return err
		}
		if len(plan.Dependents) > 0 {
			return &vesshelm.DependentsError{Chart: plan.Chart.Name, Dependents: plan.Dependents}
		}

		printDeletePlan(plan)
		if !deleteYes {
			ok, err := confirm("Proceed?")
			if err != nil {
				return err
			}
			if !ok {
				info("Aborted.")
				return nil
			}
		}

		if err := client.Delete(cmd.Context(), plan, deleteUninstall); err != nil {
			return err
		}
		info("%s Deleted %s.", mark(okStyle, "OK"), nameStyle.Render(plan.Chart.Name))
		return nil
	},
}

func printDeletePlan(plan *vesshelm.DeletePlan) {
	info("Deleting %s from namespace %s:", nameStyle.Render(plan.Chart.Name), plan.Chart.Namespace)
	if deleteUninstall {
		info("  - uninstall the helm release")
	}
	if plan.DirExists {
		info("  - remove directory %s", plan.Dir)
	} else {
		detail("directory %s does not exist", plan.Dir)
	}
	if !plan.Chart.IsLocal() {
		info("  - remove the lockfile entry")
	}
	info("  - remove the chart from the configuration")
	if plan.UnusedRepository != "" {
		info("  - remove repository %s, no other chart uses it", plan.UnusedRepository)
	}
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <chart>",
	Short: "Uninstall a chart's helm release",
	Long: `Runs helm uninstall for a chart's release. The chart stays in the
configuration. Charts depending on it are listed before confirmation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		_, chart, err := client.FindChart(args[0], uninstallNamespace)
		if err != nil {
			return err
		}

		dependents, err := client.Dependents(chart.Name)
		if err != nil {
			return err
		}
		if len(dependents) > 0 {
			names := make([]string, len(dependents))
			for i, d := range dependents {
				names[i] = d.Name
			}
			warnf("these charts depend on %s: %s", chart.Name, strings.Join(names, ", "))
		}

		info("About to uninstall %s from namespace %s.", nameStyle.Render(chart.Name), chart.Namespace)
		if !uninstallYes {
			ok, err := confirm("Do you want to continue?")
			if err != nil {
				return err
			}
			if !ok {
				info("Aborted.")
				return nil
			}
		}

		if err := client.Uninstall(cmd.Context(), chart.Name, chart.Namespace); err != nil {
			return fmt.Errorf("uninstalling %s: %w", chart.Name, err)
		}
		info("%s Uninstalled %s.", mark(okStyle, "OK"), nameStyle.Render(chart.Name))
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringVarP(&deleteNamespace, "namespace", "n", "", "namespace of the chart, when the name is not unique")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip interactive confirmation")
	deleteCmd.Flags().BoolVar(&deleteUninstall, "uninstall", false, "uninstall the helm release first")
	rootCmd.AddCommand(deleteCmd)

	uninstallCmd.Flags().StringVarP(&uninstallNamespace, "namespace", "n", "", "namespace of the chart, when the name is not unique")
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "skip interactive confirmation")
	rootCmd.AddCommand(uninstallCmd)
}
