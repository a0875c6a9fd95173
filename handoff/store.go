//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package handoff

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"trpc.group/trpc-go/trpc-workflow-go/log"
)

// ListRuns returns the manifests of all runs under runsDir, most recent
// first. Run ids start with a timestamp, so lexical order is time order.
func ListRuns(runsDir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading runs directory %s: %w", runsDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	manifests := make([]*Manifest, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(runsDir, name, manifestFile))
		if err != nil {
			continue
		}
		manifest := &Manifest{}
		if err := json.Unmarshal(data, manifest); err != nil {
			log.Warnf("Skipping run %s with malformed manifest: %v", name, err)
			continue
		}
		manifests = append(manifests, manifest)
	}
	return manifests, nil
}

// GetRun loads the run with the given id from runsDir.
func GetRun(runID, runsDir string) (*Run, error) {
	return Load(filepath.Join(runsDir, runID))
}

// WriteSummary writes a human-readable summary of a run, with one line
// per recorded step.
func WriteSummary(w io.Writer, run *Run) error {
	m := run.Manifest()
	if m == nil {
		_, err := fmt.Fprintln(w, "No manifest found")
		return err
	}

	divider := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintf(w, "Workflow: %s\n", m.WorkflowName)
	fmt.Fprintf(w, "Run ID:   %s\n", m.RunID)
	fmt.Fprintf(w, "Status:   %s\n", m.Status)
	fmt.Fprintf(w, "Started:  %s\n", m.StartedAt.Format("2006-01-02 15:04:05"))
	if m.CompletedAt != nil {
		fmt.Fprintf(w, "Completed: %s\n", m.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	task := m.InitialTask
	if runes := []rune(task); len(runes) > 50 {
		task = string(runes[:50]) + "..."
	}
	fmt.Fprintf(w, "Task:     %s\n", task)
	fmt.Fprintf(w, "%s\n", divider)

	handoffs, err := run.Handoffs()
	if err != nil {
		return err
	}
	for _, h := range handoffs {
		status := "✅"
		if h.Error != "" {
			status = "❌"
		}
		fmt.Fprintf(w, "  %02d. [%s] %s (%dms)\n", h.Step, h.Node, status, h.DurationMS)
	}

	if m.Error != "" {
		fmt.Fprintf(w, "\nError: %s\n", m.Error)
	}
	return nil
}

// StatusGlyph returns the icon used when listing runs by status.
func StatusGlyph(status string) string {
	switch status {
	case StatusCompleted:
		return "✅"
	case StatusFailed:
		return "❌"
	case StatusRunning:
		return "🔄"
	default:
		return "❓"
	}
}
