package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jeremy009/BMC/cmd/analyze"
	"github.com/Jeremy009/BMC/cmd/backup"
	"github.com/Jeremy009/BMC/cmd/catalog"
	"github.com/Jeremy009/BMC/cmd/expected"
	"github.com/Jeremy009/BMC/cmd/open"
	"github.com/Jeremy009/BMC/cmd/root"
	"github.com/Jeremy009/BMC/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Configure the log level before anything logs
	configureLogLevelDirectly()

	// 3. Initialize root command flags
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(open.Cmd)
	root.Cmd.AddCommand(expected.Cmd)
	root.Cmd.AddCommand(backup.Cmd)
	root.Cmd.AddCommand(catalog.Cmd)
	root.Cmd.AddCommand(analyze.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the level of the standard and bootstrap
// loggers from LOG_LEVEL
func configureLogLevelDirectly() {
	logLevelStr := config.GetEnv("LOG_LEVEL", "info")
	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}

	logrus.SetLevel(logLevel)
	config.Logger.SetLevel(logLevel)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
