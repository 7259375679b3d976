package cmd

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file",
	Long: `Loads the configuration and checks it: unique names, references to
repositories and destinations, required fields, values files and the chart
dependency graph. Exits non-zero when anything is wrong.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		cfg, err := client.Validate()
		if err != nil {
			return err
		}

		info("%s %s is valid: %d chart(s), %d repositories, %d destination(s).",
			mark(okStyle, "OK"), client.ConfigPath(), len(cfg.Charts), len(cfg.Repositories), len(cfg.Destinations))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
