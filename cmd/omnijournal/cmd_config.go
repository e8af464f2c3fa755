package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"omnijournal/pkg/config"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the "omnijournal config" command group.
func newConfigCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd(load))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		format string
		force  bool
		path   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				paths, err := ResolvePaths()
				if err != nil {
					return err
				}
				path = strings.TrimSuffix(paths.ConfigPath, filepath.Ext(paths.ConfigPath)) + "." + format
			}
			return writeDefaultConfig(cmd, path, format, force)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "file format: yaml, toml or json")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&path, "path", "", "destination (default ~/.omnijournal/config.<format>)")
	return cmd
}

func writeDefaultConfig(cmd *cobra.Command, path, format string, force bool) error {
	data, err := config.Default().Marshal(format)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func newConfigShowCmd(load configLoader) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			data, err := cfg.Marshal(format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml, toml or json")
	return cmd
}
