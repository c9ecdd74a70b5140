package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vmdb/internal/config"
)

// loadConfig reads --config, or searches upwards from startDir.
func loadConfig(cmd *cobra.Command, startDir string) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(startDir)
}
