//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package persona defines named model personalities for chat and
// collaboration. A persona pairs a backend and model with a system
// prompt; a set of built-in personas is available out of the box and
// can be replaced or extended through a YAML config file.
package persona

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"trpc.group/trpc-go/trpc-workflow-go/model"
)

// Default backend settings for personas that do not override them.
const (
	DefaultBackend = "ollama"
	DefaultModel   = "qwen3:8b"
	DefaultBaseURL = "http://localhost:11434/v1"
)

// Persona is a named model personality.
type Persona struct {
	Name         string `yaml:"name" json:"name"`
	Backend      string `yaml:"backend" json:"backend"`
	Model        string `yaml:"model" json:"model"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
}

// configFile is the YAML layout accepted by Load.
type configFile struct {
	Personas []Persona `yaml:"personas"`
}

// Defaults returns the built-in personas, keyed by name.
func Defaults() map[string]Persona {
	personas := []Persona{
		{
			Name:         "helper",
			SystemPrompt: "You are a helpful, concise assistant. Answer directly.",
		},
		{
			Name:         "architect",
			SystemPrompt: "You are a pragmatic software architect. Focus on simple designs, clear interfaces, and trade-offs. Be concise.",
		},
		{
			Name:         "critic",
			SystemPrompt: "You are a thoughtful critic. Point out flaws, risks, and missing considerations in proposals. Be constructive and concise.",
		},
		{
			Name:         "optimist",
			SystemPrompt: "You look for the upside. Highlight strengths and opportunities in ideas while staying realistic. Be concise.",
		},
	}
	result := make(map[string]Persona, len(personas))
	for _, p := range personas {
		result[p.Name] = normalize(p)
	}
	return result
}

// Load reads personas from a YAML config file and merges them over the
// defaults. Personas in the file replace same-named defaults. An empty
// path returns just the defaults.
func Load(path string) (map[string]Persona, error) {
	personas := Defaults()
	if path == "" {
		return personas, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona config: %w", err)
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse persona config: %w", err)
	}
	for _, p := range cfg.Personas {
		if p.Name == "" {
			return nil, fmt.Errorf("persona config: persona without a name")
		}
		if p.SystemPrompt == "" {
			return nil, fmt.Errorf("persona config: persona %q has no system prompt", p.Name)
		}
		personas[p.Name] = normalize(p)
	}
	return personas, nil
}

// Names returns the persona names in sorted order.
func Names(personas map[string]Persona) []string {
	names := make([]string, 0, len(personas))
	for name := range personas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalize fills in backend defaults.
func normalize(p Persona) Persona {
	if p.Backend == "" {
		p.Backend = DefaultBackend
	}
	if p.Model == "" {
		p.Model = DefaultModel
	}
	return p
}

// Respond sends the conversation to the persona's model, prefixed with
// its system prompt, and returns the full response text. Streaming
// chunks are forwarded to onChunk when it is non-nil.
func (p Persona) Respond(ctx context.Context, m model.Model, history []model.Message, onChunk func(string)) (string, error) {
	messages := make([]model.Message, 0, len(history)+1)
	messages = append(messages, model.NewSystemMessage(p.SystemPrompt))
	messages = append(messages, history...)

	request := &model.Request{Messages: messages}
	request.Stream = onChunk != nil

	responses, err := m.GenerateContent(ctx, request)
	if err != nil {
		return "", fmt.Errorf("persona %s: %w", p.Name, err)
	}

	var builder strings.Builder
	var full string
	for rsp := range responses {
		if rsp.Error != nil {
			return "", fmt.Errorf("persona %s: %s", p.Name, rsp.Error.Message)
		}
		if len(rsp.Choices) == 0 {
			continue
		}
		choice := rsp.Choices[0]
		if choice.Delta.Content != "" {
			builder.WriteString(choice.Delta.Content)
			if onChunk != nil {
				onChunk(choice.Delta.Content)
			}
		}
		if choice.Message.Content != "" {
			full = choice.Message.Content
		}
	}
	if full == "" {
		full = builder.String()
	}
	return full, nil
}

// Header returns the display header used when printing a persona's turn.
func (p Persona) Header() string {
	return fmt.Sprintf("%s (%s:%s)", p.Name, p.Backend, p.Model)
}
