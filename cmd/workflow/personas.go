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

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List configured personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		return cli.ListPersonas(cmd.OutOrStdout(), configPath)
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)

	personasCmd.Flags().String("config", "", "Persona config file (YAML)")
}
