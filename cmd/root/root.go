// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/Jeremy009/BMC/internal/config"
	"github.com/Jeremy009/BMC/internal/container"
	"github.com/Jeremy009/BMC/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags shared by every command
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	ReportsDir string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapterFromLogger(config.Logger)

	// AppContainer is built from the configuration before any subcommand runs
	AppContainer *container.Container

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "bmc-register",
		Short: "Cash register for the climbing gym front desk.",
		Long: `bmc-register runs the climbing gym cash register: it records the sales of
a supervised session, keeps a crash-recovery backup after every sale and writes
the dated end-of-day report the next session reads its opening cash from.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to bmc-register!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLogging())

			cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			applyFlagOverrides(cfg)

			c, err := container.NewContainer(cfg)
			if err != nil {
				return fmt.Errorf("error initializing application: %w", err)
			}
			AppContainer = c
			Log = c.GetLogger()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if AppContainer == nil {
				return nil
			}
			return AppContainer.Close()
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Configuration file (default: search config.yaml)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ReportsDir, "reports-dir", "", "Reports root directory override")
}

func applyFlagOverrides(cfg *config.Config) {
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.ReportsDir != "" {
		cfg.Register.ReportsDir = SharedFlags.ReportsDir
	}
}

// Container returns the application container or an error when the root
// command has not initialized it.
func Container() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application container not initialized")
	}
	return AppContainer, nil
}
