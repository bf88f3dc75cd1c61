// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/marquee/marquee/internal/store"
)

// migrator is the part of *store.Migrator the migrate commands drive.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Status() (applied, pending []store.Migration, err error)
	Close() error
}

// openMigrator is replaced in tests.
var openMigrator = func(databaseURL string) (migrator, error) {
	return store.NewMigrator(databaseURL)
}

// NewMigrateCmd creates the migrate command group.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Apply, roll back and inspect the embedded PostgreSQL schema migrations.
Running "migrate" with no subcommand applies every pending migration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m migrator) error { return runUp(cmd, m, 0) })
		},
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateStatusCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	cmd.AddCommand(newMigrateForceCmd())

	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m migrator) error { return runUp(cmd, m, steps) })
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "apply at most this many migrations (0 applies all)")
	return cmd
}

func newMigrateDownCmd() *cobra.Command {
	var (
		steps int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long: `Roll back the most recent migration, or --steps of them.
--all rolls back everything and drops every table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m migrator) error { return runDown(cmd, m, steps, all) })
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.Flags().BoolVar(&all, "all", false, "roll back every migration")
	return cmd
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m migrator) error { return runStatus(cmd, m) })
		},
	}
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m migrator) error { return runVersion(cmd, m) })
		},
	}
}

func newMigrateForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force VERSION",
		Short: "Mark a version as applied without running it",
		Long: `Record VERSION as the applied schema version and clear the dirty flag.
Only for recovering from a migration that failed halfway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, func(m migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				cmd.Printf("Forced schema version to %d\n", v)
				return nil
			})
		},
	}
}

// withMigrator opens a migrator for the configured database, runs fn, and
// closes it. A close failure is reported only if fn succeeded.
func withMigrator(cmd *cobra.Command, fn func(migrator) error) (err error) {
	url, err := databaseURL(cmd)
	if err != nil {
		return err
	}
	m, err := openMigrator(url)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(m)
}

func runUp(cmd *cobra.Command, m migrator, steps int) error {
	if steps < 0 {
		return oops.Code("INVALID_STEPS").Errorf("steps must be non-negative, got %d", steps)
	}
	cmd.Println("Running migrations...")
	var err error
	if steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(steps)
	}
	if err != nil {
		return err
	}
	return runVersion(cmd, m)
}

func runDown(cmd *cobra.Command, m migrator, steps int, all bool) error {
	if all {
		cmd.Println("Rolling back all migrations...")
		if err := m.Down(); err != nil {
			return err
		}
		return runVersion(cmd, m)
	}
	if steps <= 0 {
		return oops.Code("INVALID_STEPS").Errorf("steps must be positive, got %d", steps)
	}
	cmd.Printf("Rolling back %d migration(s)...\n", steps)
	if err := m.Steps(-steps); err != nil {
		return err
	}
	return runVersion(cmd, m)
}

func runStatus(cmd *cobra.Command, m migrator) error {
	applied, pending, err := m.Status()
	if err != nil {
		return err
	}
	for _, mig := range applied {
		cmd.Printf("  [x] %s\n", mig.Name)
	}
	for _, mig := range pending {
		cmd.Printf("  [ ] %s\n", mig.Name)
	}
	cmd.Printf("%d applied, %d pending\n", len(applied), len(pending))
	return nil
}

func runVersion(cmd *cobra.Command, m migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("Schema version: %d (dirty)\n", v)
		return nil
	}
	cmd.Printf("Schema version: %d\n", v)
	return nil
}

// parseForceVersion parses the argument of "migrate force".
func parseForceVersion(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be an integer")
	}
	if v < 0 {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be non-negative")
	}
	return v, nil
}

// migrateUp applies every pending migration; used by serve's auto-migrate
// and by seed.
func migrateUp(databaseURL string) (err error) {
	m, err := openMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return m.Up()
}
