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
	"strconv"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-workflow-go/internal/cli"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted workflow runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		runsDir, _ := cmd.Flags().GetString("runs-dir")
		return cli.ListRuns(cmd.OutOrStdout(), runsDir)
	},
}

var runsInspectCmd = &cobra.Command{
	Use:   "inspect <run-id>",
	Short: "Print the step-by-step summary of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runsDir, _ := cmd.Flags().GetString("runs-dir")
		return cli.InspectRun(cmd.OutOrStdout(), args[0], runsDir)
	},
}

var runsStepCmd = &cobra.Command{
	Use:   "step <run-id> <n>",
	Short: "Print the raw handoff record for one step",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runsDir, _ := cmd.Flags().GetString("runs-dir")
		step, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return cli.ShowStep(cmd.OutOrStdout(), args[0], runsDir, step)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsInspectCmd)
	runsCmd.AddCommand(runsStepCmd)
}
