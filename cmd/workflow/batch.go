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
	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-workflow-go/internal/cli"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a persona collaboration over a task file, non-interactively",
	Long: `Batch reads a task from the input file, lets two personas take
alternating turns on it, and writes the result to the output file.
By default only the final fenced code block is written; use --full to
keep the whole conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile, _ := cmd.Flags().GetString("input")
		outputFile, _ := cmd.Flags().GetString("output")
		persona1, _ := cmd.Flags().GetString("persona1")
		persona2, _ := cmd.Flags().GetString("persona2")
		rounds, _ := cmd.Flags().GetInt("rounds")
		full, _ := cmd.Flags().GetBool("full")
		language, _ := cmd.Flags().GetString("language")
		configPath, _ := cmd.Flags().GetString("config")

		return cli.Batch(cmd.Context(), cmd.OutOrStdout(), cli.BatchOptions{
			InputFile:  inputFile,
			OutputFile: outputFile,
			Persona1:   persona1,
			Persona2:   persona2,
			Rounds:     rounds,
			Full:       full,
			Language:   language,
			ConfigPath: configPath,
		})
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("input", "i", "INPUT.md", "Input file holding the task")
	batchCmd.Flags().StringP("output", "o", "output.py", "Output file")
	batchCmd.Flags().String("persona1", "helper", "First persona")
	batchCmd.Flags().String("persona2", "critic", "Second persona")
	batchCmd.Flags().IntP("rounds", "r", 2, "Rounds of collaboration")
	batchCmd.Flags().Bool("full", false, "Write the full conversation instead of code only")
	batchCmd.Flags().String("language", "python", "Language of the code blocks to extract")
	batchCmd.Flags().String("config", "", "Persona config file (YAML)")
}
