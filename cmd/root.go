package cmd

import (
	"building-planner/config"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "building-planner",
	Short: "Floor plan sketching server and tools",
	Long: `building-planner stores floor plan drawings, serves them over a REST API
and renders them to PNG.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if cmd.Flags().Changed("loglevel") {
			cfg.LogLevel = logLevel
		}
		return setupLogging(cfg.LogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "Set the logging level: debug, info, warn, error, fatal, panic")
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
