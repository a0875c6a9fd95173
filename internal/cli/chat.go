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
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"trpc.group/trpc-go/trpc-workflow-go/persona"
	"trpc.group/trpc-go/trpc-workflow-go/session"
)

// ChatOptions carries the flags of the chat command.
type ChatOptions struct {
	SessionName string
	SessionsDir string
	Backend     string
	Model       string
	Persona     string
	ConfigPath  string
}

// Chat runs a line-based REPL backed by a persistent session. Input is
// read from r; the loop ends on EOF or one of the quit commands.
func Chat(ctx context.Context, r io.Reader, w io.Writer, opts ChatOptions) error {
	personas, err := persona.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	personaName := opts.Persona
	if personaName == "" {
		personaName = "helper"
	}
	p, ok := personas[personaName]
	if !ok {
		return fmt.Errorf("unknown persona: %s", personaName)
	}
	if opts.Backend != "" {
		p.Backend = opts.Backend
	}
	if opts.Model != "" {
		p.Model = opts.Model
	}

	backend, err := NewModel(ctx, p.Backend, p.Model)
	if err != nil {
		return err
	}

	sessionName := opts.SessionName
	if sessionName == "" {
		sessionName = "default"
	}
	var sessionOpts []session.Option
	if opts.SessionsDir != "" {
		sessionOpts = append(sessionOpts, session.WithSessionsDir(opts.SessionsDir))
	}
	sessionOpts = append(sessionOpts, session.WithModel(p.Backend, p.Model))
	sess, err := session.Get(sessionName, sessionOpts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Chatting as %s, session %q (quit to exit)\n", p.Header(), sess.Name())
	if history := sess.HistoryText(6); history != "" {
		fmt.Fprintf(w, "\n%s\n", history)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(w, "\nYou: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isQuit(line) {
			break
		}

		if _, err := sess.AddUserMessage(line); err != nil {
			return err
		}

		fmt.Fprintf(w, "\n%s: ", p.Name)
		reply, err := p.Respond(ctx, backend, sess.ModelMessages(), func(chunk string) {
			fmt.Fprint(w, chunk)
		})
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(w)

		if _, err := sess.AddAssistantMessage(reply); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "\nGoodbye!")
	return scanner.Err()
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return true
	}
	return false
}
