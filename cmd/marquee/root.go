// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/marquee/marquee/internal/config"
	"github.com/marquee/marquee/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the marquee CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marquee",
		Short: "Marquee - a movie catalog API",
		Long: `Marquee serves a movie catalog over REST, with username/password
sessions for people and signed bearer tokens for catalog writes.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $XDG_CONFIG_HOME/marquee/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// loadConfig reads the configuration for cmd. An explicit --config must
// exist; the XDG default may be absent.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, required := configFile, true
	if path == "" {
		path, required = xdg.ConfigFile(), false
	}
	return config.Load(path, required, cmd.Flags())
}

// databaseURL loads the configuration and returns only the database URL,
// for commands that need nothing else.
func databaseURL(cmd *cobra.Command) (string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.Database.URL == "" {
		return "", oops.Code("CONFIG_INVALID").
			With("key", "database.url").
			Errorf("database url is required (set DATABASE_URL or --database.url)")
	}
	return cfg.Database.URL, nil
}
