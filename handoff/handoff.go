//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package handoff provides durable JSON persistence for workflow runs.
// Each node execution writes a handoff file that can be inspected,
// debugged, or replayed, and a manifest tracks the overall run status.
//
// Directory layout for a run:
//
//	workflow_runs/
//	└── 2024-01-15_143022_my_workflow/
//	    ├── manifest.json      workflow metadata and status
//	    ├── 00_input.json      initial state
//	    ├── 01_spec.json       first node output
//	    └── ...
package handoff

import (
	"encoding/json"
	"time"
)

// Run status values recorded in the manifest.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Handoff is a single state transfer between workflow nodes. Step 0 is
// always the "input" pseudo-node holding the initial state.
type Handoff struct {
	Node        string         `json:"node"`
	Step        int            `json:"step"`
	Timestamp   time.Time      `json:"timestamp"`
	InputState  map[string]any `json:"input_state"`
	OutputState map[string]any `json:"output_state"`
	DurationMS  int64          `json:"duration_ms"`
	Error       string         `json:"error,omitempty"`
}

// Manifest holds metadata about a workflow run. It is rewritten in full
// on every update so the file on disk always reflects the latest state.
type Manifest struct {
	WorkflowName string         `json:"workflow_name"`
	RunID        string         `json:"run_id"`
	Status       string         `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	InitialTask  string         `json:"initial_task"`
	CurrentStep  int            `json:"current_step"`
	CurrentNode  string         `json:"current_node"`
	TotalSteps   int            `json:"total_steps"`
	FinalResult  map[string]any `json:"final_result,omitempty"`
	Error        string         `json:"error,omitempty"`
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
