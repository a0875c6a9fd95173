//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package shell provides a tool set for running shell commands in a
// working directory with a bounded execution time.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-workflow-go/tool"
	"trpc.group/trpc-go/trpc-workflow-go/tool/function"
)

const (
	toolSetName    = "shell"
	defaultTimeout = 30 * time.Second
)

// shellToolSet provides the run command tool.
type shellToolSet struct {
	workDir string
	timeout time.Duration
	shell   string
}

// Option is a functional option for configuring the shell tool set.
type Option func(*shellToolSet)

// WithWorkDir sets the working directory for command execution.
// Defaults to the current working directory.
func WithWorkDir(workDir string) Option {
	return func(s *shellToolSet) {
		s.workDir = workDir
	}
}

// WithTimeout sets the timeout for a single command. Defaults to 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(s *shellToolSet) {
		s.timeout = timeout
	}
}

// WithShell sets the shell binary used to interpret commands.
// Defaults to "/bin/sh".
func WithShell(shell string) Option {
	return func(s *shellToolSet) {
		s.shell = shell
	}
}

// NewToolSet creates a shell tool set with the given options.
func NewToolSet(opts ...Option) (tool.ToolSet, error) {
	s := &shellToolSet{
		timeout: defaultTimeout,
		shell:   "/bin/sh",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		s.workDir = wd
	}
	stat, err := os.Stat(s.workDir)
	if err != nil {
		return nil, fmt.Errorf("invalid work directory '%s': %w", s.workDir, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("work directory '%s' is not a directory", s.workDir)
	}
	return s, nil
}

// Tools returns the callable tools in this set.
func (s *shellToolSet) Tools(ctx context.Context) []tool.CallableTool {
	return []tool.CallableTool{s.runCommandTool()}
}

// Close cleans up resources held by the tool set.
func (s *shellToolSet) Close() error {
	return nil
}

// Name returns the tool set name.
func (s *shellToolSet) Name() string {
	return toolSetName
}

// runCommandRequest represents the input for the run command operation.
type runCommandRequest struct {
	Command string `json:"command"`
}

// runCommandResponse represents the output from the run command operation.
type runCommandResponse struct {
	Command  string `json:"command"`
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
	Message  string `json:"message"`
}

// runCommand executes a shell command and captures combined stdout and stderr.
func (s *shellToolSet) runCommand(ctx context.Context, req *runCommandRequest) (*runCommandResponse, error) {
	rsp := &runCommandResponse{Command: req.Command}
	if strings.TrimSpace(req.Command) == "" {
		rsp.Message = "Error: command cannot be empty"
		return rsp, errors.New("command cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, s.shell, "-c", req.Command) //nolint:gosec
	cmd.Dir = s.workDir
	out, err := cmd.CombinedOutput()
	rsp.Output = strings.TrimSpace(string(out))
	if rsp.Output == "" {
		rsp.Output = "(no output)"
	}

	if timeoutCtx.Err() == context.DeadlineExceeded {
		rsp.ExitCode = -1
		rsp.Message = fmt.Sprintf("Error: command timed out after %v", s.timeout)
		return rsp, fmt.Errorf("command timed out after %v", s.timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// A nonzero exit is an outcome worth reporting, not a call failure.
			rsp.ExitCode = exitErr.ExitCode()
			rsp.Message = fmt.Sprintf("Command exited with code %d", rsp.ExitCode)
			return rsp, nil
		}
		rsp.ExitCode = -1
		rsp.Message = fmt.Sprintf("Error running command: %v", err)
		return rsp, fmt.Errorf("running command: %w", err)
	}
	rsp.Message = "Command completed successfully"
	return rsp, nil
}

// runCommandTool returns a callable tool for running a shell command.
func (s *shellToolSet) runCommandTool() tool.CallableTool {
	return function.NewFunctionTool(
		s.runCommand,
		function.WithName("run_command"),
		function.WithDescription("Runs the shell command 'command' in the working directory and returns "+
			"the combined stdout and stderr output along with the exit code. Long-running commands are "+
			"terminated when the configured timeout elapses."),
	)
}
