// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/core/workflow"
)

func newWorkflowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Inspect the submission workflows",
	}
	cmd.AddCommand(newWorkflowStagesCommand(ctx))
	return cmd
}

func newWorkflowStagesCommand(ctx *commandContext) *cobra.Command {
	var submissionType string

	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the stages a submission type walks through",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := submission.Type(submissionType)
			if !kind.IsValid() {
				return fmt.Errorf("unknown submission type %q", submissionType)
			}

			catalog, err := workflow.NewCatalog()
			if err != nil {
				return err
			}
			definition := catalog.For(kind)

			if ctx.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"workflow":     definition.Name(),
					"confirmation": definition.Confirmation().Label,
					"stages":       definition.Order(),
				})
			}

			rows := make([][]string, 0, len(definition.Order()))
			for index, stage := range definition.Order() {
				rows = append(rows, []string{
					strconv.Itoa(index + 1),
					stage.Label,
					string(stage.Kind),
					stage.Title,
					yesNo(stage.MustSee),
					yesNo(stage.Required),
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Workflow %q\n", definition.Name())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Label", "Kind", "Title", "Must see", "Required"},
				rows,
				[]columnAlignment{alignRight},
			))
			return err
		},
	}

	cmd.Flags().StringVar(&submissionType, "type", string(submission.TypeNew), "new, replacement, withdrawal, cross or jref")
	return cmd
}

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var (
		archive string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the classification taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			taxonomy, err := category.DefaultTaxonomy()
			if err != nil {
				return err
			}

			entries := make([]category.Category, 0)
			for _, entry := range taxonomy.All() {
				if archive != "" && entry.Archive != archive {
					continue
				}
				if !all && !entry.Active {
					continue
				}
				entries = append(entries, entry)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.Code, entry.Name, entry.Archive, yesNo(entry.Active)})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Code", "Name", "Archive", "Active"},
				rows,
				nil,
			))
			return err
		},
	}

	cmd.Flags().StringVar(&archive, "archive", "", "Only codes in this archive")
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive codes")
	return cmd
}
