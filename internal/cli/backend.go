//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package cli implements the command surface behind the workflow binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"trpc.group/trpc-go/trpc-workflow-go/model"
	"trpc.group/trpc-go/trpc-workflow-go/model/gemini"
	"trpc.group/trpc-go/trpc-workflow-go/model/openai"
	"trpc.group/trpc-go/trpc-workflow-go/persona"
)

// Backend identifiers accepted by NewModel.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Environment variables consulted when building model clients.
const (
	envOpenAIAPIKey  = "OPENAI_API_KEY"
	envOpenAIBaseURL = "OPENAI_BASE_URL"
	envOllamaBaseURL = "OLLAMA_BASE_URL"
)

// NewModel builds a model client for the given backend and model name.
// Ollama is reached through its OpenAI-compatible endpoint; Gemini
// through the Google GenAI SDK, keyed by GOOGLE_API_KEY.
func NewModel(ctx context.Context, backend, modelName string) (model.Model, error) {
	if backend == "" {
		backend = persona.DefaultBackend
	}
	if modelName == "" {
		modelName = persona.DefaultModel
	}
	switch backend {
	case BackendOllama:
		baseURL := os.Getenv(envOllamaBaseURL)
		if baseURL == "" {
			baseURL = persona.DefaultBaseURL
		}
		return openai.New(modelName,
			openai.WithBaseURL(baseURL),
			openai.WithAPIKey("ollama"),
		), nil
	case BackendOpenAI:
		var opts []openai.Option
		if key := os.Getenv(envOpenAIAPIKey); key != "" {
			opts = append(opts, openai.WithAPIKey(key))
		}
		if baseURL := os.Getenv(envOpenAIBaseURL); baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.New(modelName, opts...), nil
	case BackendGemini:
		return gemini.New(ctx, modelName)
	default:
		return nil, fmt.Errorf("unknown backend: %s", backend)
	}
}
