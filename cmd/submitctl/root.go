// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Setting keys. With the "-" to "_" replacer they resolve to the API's
// environment variable names.
const (
	keyJSON           = "json"
	keyVerbose        = "verbose"
	keyDatabaseURL    = "database-url"
	keyMigrationPath  = "migration-path"
	keyPrivateKeyPath = "jwt-private-key-path"
	keyPublicKeyPath  = "jwt-public-key-path"
)

// commandContext carries the settings shared by every subcommand.
type commandContext struct {
	settings *viper.Viper
}

func (ctx *commandContext) jsonOutput() bool {
	return ctx.settings.GetBool(keyJSON)
}

// logger writes to stderr so stdout stays parseable.
func (ctx *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if ctx.settings.GetBool(keyVerbose) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func newRootCommand() *cobra.Command {
	settings := viper.New()
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	settings.SetDefault(keyMigrationPath, "./data/migrations")

	ctx := &commandContext{settings: settings}

	rootCmd := &cobra.Command{
		Use:           "submitctl",
		Short:         "Operator tooling for the submission API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool(keyJSON, false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolP(keyVerbose, "v", false, "Verbose logging on stderr")
	_ = settings.BindPFlag(keyJSON, rootCmd.PersistentFlags().Lookup(keyJSON))
	_ = settings.BindPFlag(keyVerbose, rootCmd.PersistentFlags().Lookup(keyVerbose))

	rootCmd.AddCommand(newTokenCommand(ctx))
	rootCmd.AddCommand(newKeygenCommand(ctx))
	rootCmd.AddCommand(newWorkflowCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))

	return rootCmd
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
