//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"trpc.group/trpc-go/trpc-workflow-go/model"
	"trpc.group/trpc-go/trpc-workflow-go/persona"
)

// BatchOptions controls a non-interactive collaboration run.
type BatchOptions struct {
	InputFile  string
	OutputFile string
	Persona1   string
	Persona2   string
	Rounds     int
	// Full writes the whole conversation instead of only the final code.
	Full       bool
	Language   string
	ConfigPath string
}

const batchCodeInstruction = "Write working code. Output ONLY the final code in a single ```%s block. No explanations."

// Batch reads a task from the input file, runs two personas against it
// for the configured number of rounds, and writes the result to the
// output file. In the default code-only mode the last fenced code block
// produced by either persona wins.
func Batch(ctx context.Context, w io.Writer, opts BatchOptions) error {
	if opts.Rounds <= 0 {
		opts.Rounds = 2
	}
	if opts.Language == "" {
		opts.Language = "python"
	}

	taskBytes, err := os.ReadFile(opts.InputFile)
	if err != nil {
		return fmt.Errorf("read %s (create it with your task and run again): %w", opts.InputFile, err)
	}
	task := strings.TrimSpace(string(taskBytes))

	personas, err := persona.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	p1, ok := personas[opts.Persona1]
	if !ok {
		return fmt.Errorf("unknown persona: %s", opts.Persona1)
	}
	p2, ok := personas[opts.Persona2]
	if !ok {
		return fmt.Errorf("unknown persona: %s", opts.Persona2)
	}

	fmt.Fprintf(w, "Read task from %s (%d chars)\n", opts.InputFile, len(task))
	fmt.Fprintf(w, "Running: %s + %s, %d rounds\n", p1.Name, p2.Name, opts.Rounds)

	instruction := "Produce concrete output."
	if !opts.Full {
		instruction = fmt.Sprintf(batchCodeInstruction, opts.Language)
	}

	var transcript []string
	var responses []string
	current, other := p1, p2
	for turn := 0; turn < opts.Rounds*2; turn++ {
		backend, err := NewModel(ctx, current.Backend, current.Model)
		if err != nil {
			return err
		}

		soFar := "(No messages yet, you start!)"
		if len(transcript) > 0 {
			soFar = strings.Join(transcript, "\n")
		}
		prompt := fmt.Sprintf(
			"Task:\n%s\n\nYou are collaborating with %s. Conversation so far:\n\n%s\n\nYour turn. %s",
			task, other.Name, soFar, instruction)

		fmt.Fprintf(w, "\n%s\n%s\n", current.Header(), strings.Repeat("-", 40))
		reply, err := current.Respond(ctx, backend,
			[]model.Message{model.NewUserMessage(prompt)}, nil)
		if err != nil {
			return fmt.Errorf("persona %s: %w", current.Name, err)
		}

		transcript = append(transcript, fmt.Sprintf("[%s]: %s", current.Name, reply))
		responses = append(responses, reply)
		current, other = other, current
	}

	output := renderBatchOutput(opts, p1, p2, responses, w)
	if err := os.WriteFile(opts.OutputFile, []byte(output), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.OutputFile, err)
	}
	fmt.Fprintf(w, "\nWrote results to %s\n", opts.OutputFile)
	return nil
}

// renderBatchOutput picks the file content: extracted code in code-only
// mode, a markdown report otherwise.
func renderBatchOutput(opts BatchOptions, p1, p2 persona.Persona, responses []string, w io.Writer) string {
	if opts.Full {
		sections := make([]string, 0, len(responses))
		for i, r := range responses {
			name := p1.Name
			if i%2 == 1 {
				name = p2.Name
			}
			sections = append(sections, fmt.Sprintf("## %s\n\n%s", name, r))
		}
		return fmt.Sprintf("# Output\n\n**Task:** %s\n**Personas:** %s + %s\n**Rounds:** %d\n\n---\n\n%s\n",
			opts.InputFile, p1.Name, p2.Name, opts.Rounds, strings.Join(sections, "\n\n---\n\n"))
	}

	// Prefer the last response; fall back to earlier ones when it has
	// no code block.
	for i := len(responses) - 1; i >= 0; i-- {
		if code := extractCodeBlocks(responses[i], opts.Language); code != "" {
			return code + "\n"
		}
	}
	fmt.Fprintln(w, "No code blocks found in responses, writing full output")
	return strings.Join(responses, "\n---\n")
}

// extractCodeBlocks joins all fenced code blocks of the given language.
func extractCodeBlocks(text, language string) string {
	pattern := regexp.MustCompile("(?s)```" + regexp.QuoteMeta(language) + "\n(.*?)```")
	matches := pattern.FindAllStringSubmatch(text, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return strings.Join(blocks, "\n\n")
}
