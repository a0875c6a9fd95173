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
	"trpc.group/trpc-go/trpc-workflow-go/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a persona in a persistent session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionName, _ := cmd.Flags().GetString("session")
		sessionsDir, _ := cmd.Flags().GetString("sessions-dir")
		backend, _ := cmd.Flags().GetString("backend")
		modelName, _ := cmd.Flags().GetString("model")
		personaName, _ := cmd.Flags().GetString("persona")
		configPath, _ := cmd.Flags().GetString("config")

		return cli.Chat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cli.ChatOptions{
			SessionName: sessionName,
			SessionsDir: sessionsDir,
			Backend:     backend,
			Model:       modelName,
			Persona:     personaName,
			ConfigPath:  configPath,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "default", "Session name")
	chatCmd.Flags().String("sessions-dir", session.DefaultSessionsDir, "Sessions directory")
	chatCmd.Flags().StringP("backend", "b", "", "Backend override (ollama, openai, gemini)")
	chatCmd.Flags().StringP("model", "m", "", "Model override")
	chatCmd.Flags().StringP("persona", "p", "helper", "Persona to chat with")
	chatCmd.Flags().String("config", "", "Persona config file (YAML)")
}
