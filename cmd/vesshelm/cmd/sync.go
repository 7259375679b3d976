package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vesshelm/vesshelm/internal/engine"
	"github.com/vesshelm/vesshelm/pkg/vesshelm"
)

var syncIgnoreSkip bool

var syncCmd = &cobra.Command{
	Use:   "sync [chart...]",
	Short: "Vendor charts into their destinations",
	Long: `Fetches every remote chart whose locked version differs from the
configured one (or whose directory is missing) into its destination, in
dependency order, and records the fetched versions in the lockfile. Named
charts restrict the run; the others are reported as skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		result, err := runSync(cmd, client, args, syncIgnoreSkip)
		if err != nil {
			return err
		}
		if !result.OK() {
			return fmt.Errorf("%d chart(s) failed to sync", result.Failed)
		}
		return nil
	},
}

// runSync syncs charts while printing progress as it happens.
func runSync(cmd *cobra.Command, client *vesshelm.Client, charts []string, ignoreSkip bool) (*vesshelm.SyncResult, error) {
	events := make(chan vesshelm.Event)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			printSyncEvent(ev)
		}
	}()

	result, err := client.Sync(cmd.Context(), vesshelm.SyncOptions{
		Charts:     charts,
		IgnoreSkip: ignoreSkip,
		Events:     events,
	})
	close(events)
	<-done
	if err != nil {
		return result, err
	}

	info("")
	info("Sync complete: %d synced, %d skipped, %d failed.", result.Synced, result.Skipped, result.Failed)
	if result.LockfileSaved {
		detail("lockfile written to %s", client.LockfilePath())
	}
	return result, nil
}

func printSyncEvent(ev vesshelm.Event) {
	switch ev.Kind {
	case engine.RepoRefreshStart:
		info("Refreshing repository index...")
	case engine.RepoRefreshOK:
		detail("repository index refreshed")
	case engine.RepoRefreshFailed:
		warnf("could not refresh repository index: %v", ev.Err)
	case engine.ChartStart:
		detail("syncing %s", ev.Chart)
	case engine.ChartSkipped:
		if ev.Reason == engine.ReasonNotSelected {
			detail("%s %s (%s)", mark(skipStyle, "SKIP"), ev.Chart, ev.Reason)
			return
		}
		info("%s %s (%s)", mark(skipStyle, "SKIP"), nameStyle.Render(ev.Chart), ev.Reason)
	case engine.ChartSuccess:
		info("%s %s from %s", mark(okStyle, "OK"), nameStyle.Render(ev.Chart), ev.Source)
	case engine.ChartFailed:
		errorf("%s %s: %v", mark(failStyle, "FAIL"), ev.Chart, ev.Err)
	}
}

func init() {
	syncCmd.Flags().BoolVar(&syncIgnoreSkip, "ignore-skip", false, "fetch charts even when the lockfile says they are up to date")
	rootCmd.AddCommand(syncCmd)
}
