package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	updatesApply     bool
	updatesApplySync bool
)

var checkUpdatesCmd = &cobra.Command{
	Use:   "check-updates [chart...]",
	Short: "Look for newer chart versions",
	Long: `Looks up the newest published version of every chart from a Helm
repository and lists the charts that are behind. With --apply the new
versions are written into the configuration file in place, keeping its
comments and layout; --apply-sync also vendors the updated charts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		report, err := client.CheckUpdates(cmd.Context(), args)
		if err != nil {
			return err
		}

		if report.RefreshErr != nil {
			warnf("could not refresh repository index, versions may be stale: %v", report.RefreshErr)
		}
		for _, name := range report.UpToDate {
			detail("%s %s is up to date", mark(okStyle, "OK"), name)
		}
		for _, s := range report.Skipped {
			detail("%s %s (%s)", mark(skipStyle, "SKIP"), s.Chart, s.Reason)
		}
		for _, d := range report.Outdated {
			note := ""
			if d.Lexical {
				note = skipStyle.Render(" (not semver, compared as text)")
			}
			info("%s %s %s -> %s%s", mark(warnStyle, "UPDATE"), nameStyle.Render(d.Chart), d.Current, okStyle.Render(d.Latest), note)
		}
		for _, e := range report.Errors {
			errorf("%s: %v", e.Chart, e.Err)
		}

		updates := report.Updates()
		if len(updates) == 0 {
			info("All checked charts are up to date.")
			return checkErrors(len(report.Errors))
		}
		if !updatesApply && !updatesApplySync {
			info("")
			info("Run with --apply to update %s.", client.ConfigPath())
			return checkErrors(len(report.Errors))
		}

		failed, err := client.ApplyUpdates(updates)
		if err != nil {
			return err
		}

		var applied []string
		for _, u := range updates {
			if ferr, ok := failed[u]; ok {
				errorf("could not update %s: %v", u.Name, ferr)
				continue
			}
			applied = append(applied, u.Name)
			info("Updated %s (%s) to %s", nameStyle.Render(u.Name), u.Namespace, u.Version)
		}

		if updatesApplySync && len(applied) > 0 {
			info("")
			result, err := runSync(cmd, client, applied, false)
			if err != nil {
				return err
			}
			if !result.OK() {
				return fmt.Errorf("%d chart(s) failed to sync", result.Failed)
			}
		}
		return checkErrors(len(report.Errors) + len(failed))
	},
}

func checkErrors(n int) error {
	if n > 0 {
		return fmt.Errorf("%d chart(s) could not be checked or updated", n)
	}
	return nil
}

func init() {
	checkUpdatesCmd.Flags().BoolVar(&updatesApply, "apply", false, "write new versions into the configuration file")
	checkUpdatesCmd.Flags().BoolVar(&updatesApplySync, "apply-sync", false, "write new versions and sync the updated charts")
	rootCmd.AddCommand(checkUpdatesCmd)
}
