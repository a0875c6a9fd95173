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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRunsMostRecentFirst(t *testing.T) {
	runsDir := t.TempDir()
	for _, id := range []string{
		"2024-01-15_100000_alpha",
		"2024-01-16_100000_beta",
		"2024-01-14_100000_gamma",
	} {
		r := NewRun("wf", WithRunsDir(runsDir), WithRunID(id))
		require.NoError(t, r.Initialize(map[string]any{}))
	}

	manifests, err := ListRuns(runsDir)
	require.NoError(t, err)
	require.Len(t, manifests, 3)
	assert.Equal(t, "2024-01-16_100000_beta", manifests[0].RunID)
	assert.Equal(t, "2024-01-15_100000_alpha", manifests[1].RunID)
	assert.Equal(t, "2024-01-14_100000_gamma", manifests[2].RunID)
}

func TestListRunsIgnoresDirsWithoutManifest(t *testing.T) {
	runsDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(runsDir, "stray"), 0755))

	manifests, err := ListRuns(runsDir)
	require.NoError(t, err)
	assert.Empty(t, manifests)
}

func TestListRunsMissingDir(t *testing.T) {
	manifests, err := ListRuns(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Nil(t, manifests)
}

func TestGetRun(t *testing.T) {
	runsDir := t.TempDir()
	r := NewRun("wf", WithRunsDir(runsDir), WithRunID("the_run"))
	require.NoError(t, r.Initialize(map[string]any{"task": "t"}))

	loaded, err := GetRun("the_run", runsDir)
	require.NoError(t, err)
	assert.Equal(t, "the_run", loaded.ID())

	_, err = GetRun("missing_run", runsDir)
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	r := NewRun("review_loop", WithRunsDir(t.TempDir()))
	require.NoError(t, r.Initialize(map[string]any{"task": "write a prime sieve"}))
	_, err := r.RecordStep("implement", nil, map[string]any{"code": "c"}, 42, "")
	require.NoError(t, err)
	_, err = r.RecordStep("review", nil, map[string]any{}, 7, "model unavailable")
	require.NoError(t, err)
	require.NoError(t, r.Fail("model unavailable"))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "Workflow: review_loop")
	assert.Contains(t, out, "Status:   failed")
	assert.Contains(t, out, "00. [input] ✅")
	assert.Contains(t, out, "01. [implement] ✅")
	assert.Contains(t, out, "02. [review] ❌")
	assert.Contains(t, out, "Error: model unavailable")
}

func TestWriteSummaryTruncatesLongTask(t *testing.T) {
	r := NewRun("wf", WithRunsDir(t.TempDir()))
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}
	require.NoError(t, r.Initialize(map[string]any{"task": string(long)}))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, r))
	assert.Contains(t, buf.String(), string(long[:50])+"...")
}

func TestWriteSummaryTruncatesOnRunes(t *testing.T) {
	r := NewRun("wf", WithRunsDir(t.TempDir()))
	long := strings.Repeat("日", 60)
	require.NoError(t, r.Initialize(map[string]any{"task": long}))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, r))
	assert.Contains(t, buf.String(), strings.Repeat("日", 50)+"...")
	assert.True(t, utf8.ValidString(buf.String()))
}

func TestStatusGlyph(t *testing.T) {
	assert.Equal(t, "✅", StatusGlyph(StatusCompleted))
	assert.Equal(t, "❌", StatusGlyph(StatusFailed))
	assert.Equal(t, "🔄", StatusGlyph(StatusRunning))
	assert.Equal(t, "❓", StatusGlyph("paused"))
}
