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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-workflow-go/handoff"
)

var rootCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run and inspect graph workflows over language models",
	Long: `workflow wires language model nodes into a directed graph with
conditional loop-back edges, executes it sequentially against a shared
state, and optionally persists every step so runs can be inspected and
replayed.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("runs-dir", handoff.DefaultRunsDir, "Directory for persisted workflow runs")
}
