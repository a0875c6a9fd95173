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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-workflow-go/log"
)

const (
	// DefaultRunsDir is the directory runs are written to when no
	// runs directory is configured.
	DefaultRunsDir = "workflow_runs"

	manifestFile = "manifest.json"
	inputNode    = "input"

	runIDTimeLayout = "2006-01-02_150405"
)

// Run manages persistence for a single workflow run.
type Run struct {
	workflowName string
	runsDir      string
	runID        string
	runDir       string
	manifest     *Manifest
	stepCounter  int
}

// Option is a functional option for configuring a run.
type Option func(*Run)

// WithRunsDir sets the parent directory run directories are created under.
func WithRunsDir(dir string) Option {
	return func(r *Run) {
		r.runsDir = dir
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(r *Run) {
		r.runID = id
	}
}

// NewRun creates a recorder for a new workflow run. The run directory is
// not created until Initialize is called.
func NewRun(workflowName string, opts ...Option) *Run {
	r := &Run{
		workflowName: workflowName,
		runsDir:      DefaultRunsDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = fmt.Sprintf("%s_%s", time.Now().Format(runIDTimeLayout), workflowName)
	}
	r.runDir = filepath.Join(r.runsDir, r.runID)
	return r
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.runID }

// Dir returns the directory this run persists to.
func (r *Run) Dir() string { return r.runDir }

// Manifest returns the current manifest, or nil before Initialize or Load.
func (r *Run) Manifest() *Manifest { return r.manifest }

// Initialize creates the run directory, writes the manifest and records
// the initial state as step 0 under the "input" pseudo-node.
func (r *Run) Initialize(initial map[string]any) error {
	if err := os.MkdirAll(r.runDir, 0755); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}

	task, _ := initial["task"].(string)
	r.manifest = &Manifest{
		WorkflowName: r.workflowName,
		RunID:        r.runID,
		Status:       StatusRunning,
		StartedAt:    time.Now(),
		InitialTask:  task,
	}
	if err := r.saveManifest(); err != nil {
		return err
	}

	if err := r.writeHandoff(&Handoff{
		Node:        inputNode,
		Step:        0,
		Timestamp:   time.Now(),
		InputState:  map[string]any{},
		OutputState: initial,
	}); err != nil {
		return err
	}
	r.stepCounter = 1

	log.Infof("Workflow run: %s", r.runDir)
	return nil
}

// RecordStep writes a handoff for a node execution and updates the
// manifest. A non-empty errMsg marks the run as failed.
func (r *Run) RecordStep(node string, input, output map[string]any, duration time.Duration, errMsg string) (*Handoff, error) {
	h := &Handoff{
		Node:        node,
		Step:        r.stepCounter,
		Timestamp:   time.Now(),
		InputState:  input,
		OutputState: output,
		DurationMS:  duration.Milliseconds(),
		Error:       errMsg,
	}
	if err := r.writeHandoff(h); err != nil {
		return nil, err
	}
	r.stepCounter++

	if r.manifest != nil {
		r.manifest.CurrentStep = h.Step
		r.manifest.CurrentNode = node
		r.manifest.TotalSteps = r.stepCounter
		if errMsg != "" {
			r.manifest.Status = StatusFailed
			r.manifest.Error = errMsg
		}
		if err := r.saveManifest(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Complete marks the run as completed and stores the final state.
func (r *Run) Complete(final map[string]any) error {
	if r.manifest == nil {
		return nil
	}
	now := time.Now()
	r.manifest.Status = StatusCompleted
	r.manifest.CompletedAt = &now
	r.manifest.FinalResult = final
	return r.saveManifest()
}

// Fail marks the run as failed with the given error message.
func (r *Run) Fail(errMsg string) error {
	if r.manifest == nil {
		return nil
	}
	now := time.Now()
	r.manifest.Status = StatusFailed
	r.manifest.CompletedAt = &now
	r.manifest.Error = errMsg
	return r.saveManifest()
}

func (r *Run) writeHandoff(h *Handoff) error {
	data, err := marshalIndent(h)
	if err != nil {
		return fmt.Errorf("marshalling handoff for node %s: %w", h.Node, err)
	}
	filename := fmt.Sprintf("%02d_%s.json", h.Step, h.Node)
	if err := os.WriteFile(filepath.Join(r.runDir, filename), data, 0644); err != nil {
		return fmt.Errorf("writing handoff %s: %w", filename, err)
	}
	return nil
}

func (r *Run) saveManifest() error {
	data, err := marshalIndent(r.manifest)
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.runDir, manifestFile), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Load opens an existing run directory for inspection or resumption.
func Load(runDir string) (*Run, error) {
	data, err := os.ReadFile(filepath.Join(runDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest in %s: %w", runDir, err)
	}
	manifest := &Manifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest in %s: %w", runDir, err)
	}

	r := NewRun(manifest.WorkflowName,
		WithRunsDir(filepath.Dir(runDir)),
		WithRunID(filepath.Base(runDir)),
	)
	r.manifest = manifest
	r.stepCounter = manifest.TotalSteps
	return r, nil
}

// Handoffs returns all recorded handoffs in step order. Files that fail
// to parse are skipped.
func (r *Run) Handoffs() ([]*Handoff, error) {
	entries, err := os.ReadDir(r.runDir)
	if err != nil {
		return nil, fmt.Errorf("reading run directory %s: %w", r.runDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == manifestFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	handoffs := make([]*Handoff, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(r.runDir, name))
		if err != nil {
			log.Warnf("Skipping unreadable handoff %s: %v", name, err)
			continue
		}
		h := &Handoff{}
		if err := json.Unmarshal(data, h); err != nil {
			log.Warnf("Skipping malformed handoff %s: %v", name, err)
			continue
		}
		handoffs = append(handoffs, h)
	}
	// Order by the recorded step index. The zero-padded filename prefix
	// only sorts lexically while steps stay below 100.
	sort.Slice(handoffs, func(i, j int) bool { return handoffs[i].Step < handoffs[j].Step })
	return handoffs, nil
}

// LatestState folds the output states of all handoffs, in order, over an
// empty map. Later steps win on key conflicts, so the result matches the
// in-memory state at the point of the last recorded step.
func (r *Run) LatestState() (map[string]any, error) {
	handoffs, err := r.Handoffs()
	if err != nil {
		return nil, err
	}
	state := map[string]any{}
	for _, h := range handoffs {
		for k, v := range h.OutputState {
			state[k] = v
		}
	}
	return state, nil
}

// LastNode returns the name of the last executed node, or "" when the
// run has no handoffs.
func (r *Run) LastNode() (string, error) {
	handoffs, err := r.Handoffs()
	if err != nil {
		return "", err
	}
	if len(handoffs) == 0 {
		return "", nil
	}
	return handoffs[len(handoffs)-1].Node, nil
}
