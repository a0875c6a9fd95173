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
	"strings"

	"trpc.group/trpc-go/trpc-workflow-go/handoff"
	"trpc.group/trpc-go/trpc-workflow-go/workflow"
)

// RunOptions carries the flags of the run command.
type RunOptions struct {
	Task          string
	SpecBackend   string
	SpecModel     string
	ImplBackend   string
	ImplModel     string
	ReviewBackend string
	ReviewModel   string
	Threshold     int
	MaxIterations int
	Persist       bool
	RunsDir       string
	Visualize     bool
}

// RunWorkflow builds the spec, implement, review pipeline from the
// given options and executes it, printing progress and the final
// output to w.
func RunWorkflow(ctx context.Context, w io.Writer, opts RunOptions) error {
	specModel, err := NewModel(ctx, opts.SpecBackend, opts.SpecModel)
	if err != nil {
		return err
	}
	implModel, err := NewModel(ctx, opts.ImplBackend, opts.ImplModel)
	if err != nil {
		return err
	}
	reviewModel, err := NewModel(ctx, opts.ReviewBackend, opts.ReviewModel)
	if err != nil {
		return err
	}

	wf := workflow.NewCodeReviewWorkflow(workflow.CodeReviewConfig{
		SpecModel:     specModel,
		ImplModel:     implModel,
		ReviewModel:   reviewModel,
		PassThreshold: opts.Threshold,
	})

	if opts.Visualize {
		fmt.Fprintln(w, wf.Visualize())
		return nil
	}
	if opts.Task == "" {
		return fmt.Errorf("no task given")
	}

	graph, err := wf.Compile()
	if err != nil {
		return err
	}

	var execOpts []workflow.ExecutorOption
	if opts.Persist {
		runsDir := opts.RunsDir
		if runsDir == "" {
			runsDir = handoff.DefaultRunsDir
		}
		run := handoff.NewRun(wf.Name(), handoff.WithRunsDir(runsDir))
		execOpts = append(execOpts, workflow.WithRecorder(run))
		fmt.Fprintf(w, "Persisting run to %s\n", run.Dir())
	}

	executor, err := workflow.NewExecutor(graph, execOpts...)
	if err != nil {
		return err
	}

	initial := workflow.State{
		workflow.StateKeyTask:          opts.Task,
		workflow.StateKeyMaxIterations: opts.MaxIterations,
	}
	result, err := executor.Execute(ctx, initial)
	if err != nil {
		return err
	}

	writeRunResult(w, result)
	return nil
}

// writeRunResult prints the final state of a finished run.
func writeRunResult(w io.Writer, result *workflow.Result) {
	divider := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nFINAL OUTPUT\n%s\n", divider, divider)
	fmt.Fprintf(w, "Status:     %s\n", result.Status)
	fmt.Fprintf(w, "Steps:      %d\n", result.Steps)
	fmt.Fprintf(w, "Iterations: %d\n", result.State.Int(workflow.StateKeyIteration, 0))
	if score := result.State.Int(workflow.StateKeyScore, -1); score >= 0 {
		fmt.Fprintf(w, "Score:      %d\n", score)
	}
	if result.Err != nil {
		fmt.Fprintf(w, "Error:      %v\n", result.Err)
	}
	for _, persistErr := range result.PersistErrs {
		fmt.Fprintf(w, "Persistence warning: %v\n", persistErr)
	}
	code := result.State.String(workflow.StateKeyCode)
	if code == "" {
		code = "No code generated"
	}
	fmt.Fprintf(w, "\nCode:\n%s\n", code)
}
