package cli

import (
	"github.com/spf13/cobra"

	"github.com/soyeahso/duckshell/internal/config"
	"github.com/soyeahso/duckshell/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	oneShot  string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duckshell",
		Short: "DuckShell, a friendly command shell with plugins",
		Long: "DuckShell is an interactive shell with quack-flavoured built-ins, " +
			"plugins installed from .pfds archives, and fallthrough to ordinary programs.",
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "warn"
			}
			log = logging.New(cmd.ErrOrStderr(), level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.duckshell/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	cmd.Flags().StringVarP(&oneShot, "command", "c", "", "run a single command line and exit")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
