package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vesshelm/vesshelm/internal/config"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags, resolved through settings so they can also come from
// VESSHELM_* environment variables.
var (
	configPath   string
	lockfilePath string
	verbose      bool
	quiet        bool
	noColor      bool
)

var (
	settings = viper.New()
	logger   = log.NewWithOptions(os.Stderr, log.Options{Prefix: "vesshelm"})
)

var rootCmd = &cobra.Command{
	Use:   "vesshelm",
	Short: "Vendor and deploy Helm charts in dependency order",
	Long: `vesshelm keeps the Helm charts of a project vendored at pinned versions.
It fetches charts from Helm, OCI and Git repositories into local directories,
records what it fetched in a lockfile, and deploys the charts with helm in
the order their dependencies require.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		applySettings()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vesshelm %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultFilename, "path to config file")
	flags.StringVar(&lockfilePath, "lockfile", "", "path to lockfile (default: vesshelm.lock next to the config)")
	flags.BoolVar(&verbose, "verbose", false, "detailed output")
	flags.BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	settings.SetEnvPrefix("VESSHELM")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	for _, name := range []string{"config", "lockfile", "verbose", "quiet", "no-color"} {
		_ = settings.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(versionCmd)
}

// applySettings copies the resolved flag and environment values into the
// globals and configures output accordingly.
func applySettings() {
	configPath = settings.GetString("config")
	lockfilePath = settings.GetString("lockfile")
	verbose = settings.GetBool("verbose")
	quiet = settings.GetBool("quiet")
	noColor = settings.GetBool("no-color")

	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if noColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		logger.SetColorProfile(termenv.Ascii)
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorf("%v", err)
		return err
	}
	return nil
}
