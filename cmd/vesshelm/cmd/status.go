package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [chart...]",
	Short: "Show the sync state of charts",
	Long: `Shows chart name, namespace, repository, configured and locked versions,
and sync state (synced, pending, outdated, missing, local, disabled) for all
or named charts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		statuses, err := client.Status(args)
		if err != nil {
			return err
		}

		if len(statuses) == 0 {
			info("No charts configured.")
			return nil
		}

		fmt.Printf("%-24s %-16s %-16s %-12s %-12s %s\n", "CHART", "NAMESPACE", "REPOSITORY", "WANTED", "LOCKED", "STATE")
		for _, s := range statuses {
			repo := s.Repo
			if repo == "" {
				repo = "-"
			}
			locked := s.Locked
			if locked == "" {
				locked = "-"
			}
			fmt.Printf("%-24s %-16s %-16s %-12s %-12s %s\n", s.Name, s.Namespace, repo, s.Wanted, locked, s.State)
			if s.Detail != "" {
				detail("%s", s.Detail)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
