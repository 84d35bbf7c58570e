// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/arxsub/internal/platform/migration"
)

var errNoDatabase = errors.New("no database configured (set --database-url or DATABASE_URL)")

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the intake schema",
	}

	flags := cmd.PersistentFlags()
	flags.String(keyDatabaseURL, "", "PostgreSQL URL")
	flags.String(keyMigrationPath, "", "Migrations directory")
	_ = ctx.settings.BindPFlag(keyDatabaseURL, flags.Lookup(keyDatabaseURL))
	_ = ctx.settings.BindPFlag(keyMigrationPath, flags.Lookup(keyMigrationPath))

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, path, err := ctx.migrationTarget()
			if err != nil {
				return err
			}
			return migration.RunUp(dsn, path, ctx.logger(cmd))
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, path, err := ctx.migrationTarget()
			if err != nil {
				return err
			}
			return migration.Down(dsn, path, steps, ctx.logger(cmd))
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, path, err := ctx.migrationTarget()
			if err != nil {
				return err
			}

			version, dirty, err := migration.Status(dsn, path, ctx.logger(cmd))
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"version": version, "dirty": dirty})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %s)\n", version, yesNo(dirty))
			return err
		},
	})

	return cmd
}

func (ctx *commandContext) migrationTarget() (string, string, error) {
	dsn := ctx.settings.GetString(keyDatabaseURL)
	if dsn == "" {
		return "", "", errNoDatabase
	}
	return dsn, ctx.settings.GetString(keyMigrationPath), nil
}
