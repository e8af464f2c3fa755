package main

import (
	"fmt"
	"os"

	"omnijournal/internal/appversion"
	"omnijournal/pkg/config"
	"omnijournal/pkg/logging"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root omnijournal command with all subcommands attached.
func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "omnijournal",
		Short:         "Desktop activity journal",
		Long:          "omnijournal samples the focused window, idle time and network, keeps an\nappend-only daily journal, and compiles a narrative summary on shutdown.",
		Version:       fmt.Sprintf("omnijournal %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $OMNIJOURNAL_CONFIG or ~/.omnijournal/config.yaml)")

	load := func() (config.Config, error) { return loadConfig(configPath) }

	cmd.AddCommand(
		newRunCmd(load),
		newStopCmd(),
		newStatusCmd(load),
		newSummaryCmd(load),
		newLogsCmd(load),
		newReindexCmd(load),
		newClassifyCmd(load),
		newConfigCmd(load),
	)

	return cmd
}

// configLoader returns the effective configuration for a command.
type configLoader func() (config.Config, error)

// loadConfig resolves the config path, loads it and configures slog.
func loadConfig(flagPath string) (config.Config, error) {
	path, err := resolveConfigPath(flagPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	logging.Init(os.Stderr, logging.IsJSON(cfg.LogFormat), logging.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// resolveConfigPath applies --config > OMNIJOURNAL_CONFIG > <home>/config.yaml.
func resolveConfigPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if v := os.Getenv("OMNIJOURNAL_CONFIG"); v != "" {
		return v, nil
	}
	paths, err := ResolvePaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigPath, nil
}
