package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kitforge-dev/kitforge/internal/branding"
	"github.com/kitforge-dev/kitforge/internal/config"
	"github.com/kitforge-dev/kitforge/internal/registry"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagVerbose bool
	flagQuiet   bool
)

// logger is shared by all commands; its level follows --verbose/--quiet.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: branding.CLIName(),
})

// scanCache memoizes discovery for the lifetime of one CLI invocation.
var scanCache = registry.NewCache()

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` discovers reusable assistant components (commands, hooks,
agents), resolves their dependencies, and installs them into the user-level
or project-level component directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case flagQuiet:
			logger.SetLevel(log.ErrorLevel)
		case flagVerbose:
			logger.SetLevel(log.DebugLevel)
		default:
			logger.SetLevel(log.InfoLevel)
		}

		for _, w := range config.Load() {
			logger.Warn(w)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print errors")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
