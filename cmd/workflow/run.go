//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-workflow-go/internal/cli"
	"trpc.group/trpc-go/trpc-workflow-go/persona"
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run the spec, implement, review pipeline on a task",
	Long: `Runs the built-in pipeline: a spec writer node expands the task, an
implementer produces code, and a reviewer scores it, looping back to
the implementer until the score passes the threshold or the iteration
limit is reached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runsDir, _ := cmd.Flags().GetString("runs-dir")
		specBackend, _ := cmd.Flags().GetString("spec-backend")
		specModel, _ := cmd.Flags().GetString("spec-model")
		implBackend, _ := cmd.Flags().GetString("impl-backend")
		implModel, _ := cmd.Flags().GetString("impl-model")
		reviewBackend, _ := cmd.Flags().GetString("review-backend")
		reviewModel, _ := cmd.Flags().GetString("review-model")
		threshold, _ := cmd.Flags().GetInt("threshold")
		maxIter, _ := cmd.Flags().GetInt("max-iter")
		persist, _ := cmd.Flags().GetBool("persist")
		visualize, _ := cmd.Flags().GetBool("visualize")

		opts := cli.RunOptions{
			Task:          strings.Join(args, " "),
			SpecBackend:   specBackend,
			SpecModel:     specModel,
			ImplBackend:   implBackend,
			ImplModel:     implModel,
			ReviewBackend: reviewBackend,
			ReviewModel:   reviewModel,
			Threshold:     threshold,
			MaxIterations: maxIter,
			Persist:       persist,
			RunsDir:       runsDir,
			Visualize:     visualize,
		}
		return cli.RunWorkflow(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("spec-backend", persona.DefaultBackend, "Backend for the spec writer")
	runCmd.Flags().String("spec-model", persona.DefaultModel, "Model for the spec writer")
	runCmd.Flags().String("impl-backend", persona.DefaultBackend, "Backend for the implementer")
	runCmd.Flags().String("impl-model", persona.DefaultModel, "Model for the implementer")
	runCmd.Flags().String("review-backend", persona.DefaultBackend, "Backend for the reviewer")
	runCmd.Flags().String("review-model", persona.DefaultModel, "Model for the reviewer")
	runCmd.Flags().Int("threshold", 85, "Pass threshold for review (0-100)")
	runCmd.Flags().Int("max-iter", 5, "Max review iterations")
	runCmd.Flags().Bool("persist", false, "Save workflow handoffs to disk")
	runCmd.Flags().Bool("visualize", false, "Show workflow structure and exit")
}
