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
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-workflow-go/handoff"
)

func TestNewModelBackends(t *testing.T) {
	ctx := context.Background()

	m, err := NewModel(ctx, BackendOllama, "qwen3:8b")
	require.NoError(t, err)
	assert.Equal(t, "qwen3:8b", m.Info().Name)

	m, err = NewModel(ctx, BackendOpenAI, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", m.Info().Name)

	t.Setenv("GOOGLE_API_KEY", "test-key")
	m, err = NewModel(ctx, BackendGemini, "gemini-2.0-flash")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", m.Info().Name)

	// Empty values fall back to the defaults.
	m, err = NewModel(ctx, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, m.Info().Name)

	_, err = NewModel(ctx, "claude-code", "opus")
	require.Error(t, err)
}

func TestRunWorkflowVisualize(t *testing.T) {
	var out bytes.Buffer
	err := RunWorkflow(context.Background(), &out, RunOptions{Visualize: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "spec_implement_review")
	assert.Contains(t, out.String(), "spec -> implement")
}

func TestRunWorkflowRequiresTask(t *testing.T) {
	var out bytes.Buffer
	err := RunWorkflow(context.Background(), &out, RunOptions{})
	require.Error(t, err)
}

func TestListRunsEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ListRuns(&out, filepath.Join(t.TempDir(), "none")))
	assert.Contains(t, out.String(), "No workflow runs found")
}

func seedRun(t *testing.T, runsDir string) *handoff.Run {
	t.Helper()
	run := handoff.NewRun("spec_implement_review",
		handoff.WithRunsDir(runsDir),
		handoff.WithRunID("2026-01-02_030405_spec_implement_review"),
	)
	require.NoError(t, run.Initialize(map[string]any{"task": "build a thing"}))
	_, err := run.RecordStep("spec", map[string]any{"task": "build a thing"},
		map[string]any{"spec": "the spec"}, 10*time.Millisecond, "")
	require.NoError(t, err)
	require.NoError(t, run.Complete(map[string]any{"spec": "the spec"}))
	return run
}

func TestListRunsTable(t *testing.T) {
	runsDir := t.TempDir()
	seedRun(t, runsDir)

	var out bytes.Buffer
	require.NoError(t, ListRuns(&out, runsDir))
	assert.Contains(t, out.String(), "completed")
	assert.Contains(t, out.String(), "spec_implement_review")
	assert.Contains(t, out.String(), "2026-01-02_030405_spec_implement_review")
}

func TestInspectRun(t *testing.T) {
	runsDir := t.TempDir()
	run := seedRun(t, runsDir)

	var out bytes.Buffer
	require.NoError(t, InspectRun(&out, run.ID(), runsDir))
	assert.Contains(t, out.String(), "build a thing")
	assert.Contains(t, out.String(), "spec")

	require.Error(t, InspectRun(&out, "no-such-run", runsDir))
}

func TestShowStep(t *testing.T) {
	runsDir := t.TempDir()
	run := seedRun(t, runsDir)

	var out bytes.Buffer
	require.NoError(t, ShowStep(&out, run.ID(), runsDir, 1))
	assert.Contains(t, out.String(), `"node": "spec"`)
	assert.Contains(t, out.String(), "the spec")

	require.Error(t, ShowStep(&out, run.ID(), runsDir, 42))
}

func TestListPersonas(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ListPersonas(&out, ""))
	assert.Contains(t, out.String(), "helper")
	assert.Contains(t, out.String(), "critic")
}

func TestIsQuit(t *testing.T) {
	assert.True(t, isQuit("quit"))
	assert.True(t, isQuit("EXIT"))
	assert.True(t, isQuit("q"))
	assert.False(t, isQuit("quite interesting"))
}
