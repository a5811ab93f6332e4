package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/clipmark/clipmark/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// resolveConfigPath returns the --config value, or the XDG config location
// when no flag was given and a file exists there.
func resolveConfigPath() string {
	if configFile != "" {
		return configFile
	}
	path := xdg.DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// NewRootCmd creates the root command for the Clipmark CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clipmark",
		Short: "Clipmark - a single-user article clipping service",
		Long: `Clipmark clips web pages into a personal archive with scraped
metadata, tags, and a read/unread state, behind a single-account login.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
