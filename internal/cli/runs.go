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
	"encoding/json"
	"fmt"
	"io"

	"trpc.group/trpc-go/trpc-workflow-go/handoff"
)

// ListRuns prints all runs under the given root, most recent first.
func ListRuns(w io.Writer, runsDir string) error {
	runs, err := handoff.ListRuns(runsDir)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No workflow runs found")
		return nil
	}

	fmt.Fprintf(w, "\n%-10s %-25s %-45s\n", "Status", "Workflow", "Run ID")
	for i := 0; i < 80; i++ {
		fmt.Fprint(w, "-")
	}
	fmt.Fprintln(w)
	for _, m := range runs {
		fmt.Fprintf(w, "%s %-8s %-25s %-45s\n",
			handoff.StatusGlyph(m.Status), m.Status, m.WorkflowName, m.RunID)
	}
	return nil
}

// InspectRun prints the step-by-step summary of one run.
func InspectRun(w io.Writer, runID, runsDir string) error {
	run, err := handoff.GetRun(runID, runsDir)
	if err != nil {
		return err
	}
	return handoff.WriteSummary(w, run)
}

// ShowStep prints the raw handoff record for one step of a run.
func ShowStep(w io.Writer, runID, runsDir string, step int) error {
	run, err := handoff.GetRun(runID, runsDir)
	if err != nil {
		return err
	}
	handoffs, err := run.Handoffs()
	if err != nil {
		return err
	}
	for _, h := range handoffs {
		if h.Step != step {
			continue
		}
		data, err := json.MarshalIndent(h, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	return fmt.Errorf("step %d not found in run %s", step, runID)
}
