//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-workflow-go/model"
)

func newTestSession(t *testing.T, name string, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithSessionsDir(t.TempDir())}, opts...)
	s, err := New(name, opts...)
	require.NoError(t, err)
	return s
}

func TestNewValidation(t *testing.T) {
	_, err := New("")
	require.Error(t, err)

	_, err = New("../escape")
	require.Error(t, err)

	_, err = New("nested/name")
	require.Error(t, err)
}

func TestCreateAndLoad(t *testing.T) {
	dir := t.TempDir()
	s, err := New("my-project",
		WithSessionsDir(dir),
		WithModel("ollama", "qwen3:8b"),
		WithDescription("test project"),
	)
	require.NoError(t, err)
	require.NoError(t, s.Create())

	// Create fails on an existing session.
	require.Error(t, s.Create())

	assert.FileExists(t, filepath.Join(dir, "my-project", "meta.json"))
	assert.FileExists(t, filepath.Join(dir, "my-project", "history.json"))

	_, err = s.AddUserMessage("hello")
	require.NoError(t, err)
	_, err = s.AddAssistantMessage("hi there")
	require.NoError(t, err)

	loaded, err := New("my-project", WithSessionsDir(dir))
	require.NoError(t, err)
	require.NoError(t, loaded.Load())

	meta := loaded.Meta()
	assert.Equal(t, "my-project", meta.Name)
	assert.Equal(t, "ollama", meta.Backend)
	assert.Equal(t, "qwen3:8b", meta.Model)
	assert.Equal(t, "test project", meta.Description)
	assert.Equal(t, 2, meta.MessageCount)
	assert.False(t, meta.HasSpec)

	msgs := loaded.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestLoadMissingSession(t *testing.T) {
	s := newTestSession(t, "nope")
	require.Error(t, s.Load())
}

func TestLoadOrCreate(t *testing.T) {
	dir := t.TempDir()
	s, err := New("proj", WithSessionsDir(dir))
	require.NoError(t, err)

	created, err := s.LoadOrCreate()
	require.NoError(t, err)
	assert.True(t, created)

	again, err := New("proj", WithSessionsDir(dir))
	require.NoError(t, err)
	created, err = again.LoadOrCreate()
	require.NoError(t, err)
	assert.False(t, created)
}

func TestModelMessages(t *testing.T) {
	s := newTestSession(t, "conv")
	require.NoError(t, s.Create())
	_, err := s.AddUserMessage("question")
	require.NoError(t, err)
	_, err = s.AddAssistantMessage("answer")
	require.NoError(t, err)

	msgs := s.ModelMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "question", msgs[0].Content)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "answer", msgs[1].Content)
}

func TestHistoryText(t *testing.T) {
	s := newTestSession(t, "conv")
	require.NoError(t, s.Create())
	for _, pair := range [][2]string{
		{"user", "first"},
		{"assistant", "second"},
		{"user", "third"},
	} {
		_, err := s.AddMessage(pair[0], pair[1])
		require.NoError(t, err)
	}

	full := s.HistoryText(0)
	assert.Equal(t, "You: first\n\nAI: second\n\nYou: third", full)

	tail := s.HistoryText(1)
	assert.Equal(t, "You: third", tail)
}

func TestSpecRoundTrip(t *testing.T) {
	s := newTestSession(t, "specproj")
	require.NoError(t, s.Create())

	spec, err := s.Spec()
	require.NoError(t, err)
	assert.Empty(t, spec)

	path, err := s.SaveSpec("# Build a CLI\n")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.True(t, s.Meta().HasSpec)

	spec, err = s.Spec()
	require.NoError(t, err)
	assert.Equal(t, "# Build a CLI\n", spec)
}

func TestLinkWorkflow(t *testing.T) {
	s := newTestSession(t, "linked")
	require.NoError(t, s.Create())

	require.NoError(t, s.LinkWorkflow("2026-01-02_030405_spec_implement_review"))
	require.NoError(t, s.LinkWorkflow("2026-01-02_030405_spec_implement_review")) // no duplicates
	require.NoError(t, s.LinkWorkflow("2026-01-03_030405_spec_implement_review"))

	assert.Len(t, s.Meta().WorkflowRuns, 2)
}

func TestSummary(t *testing.T) {
	s := newTestSession(t, "summ", WithModel("ollama", "llama3"), WithDescription("demo"))
	require.NoError(t, s.Create())
	_, err := s.AddUserMessage("hi")
	require.NoError(t, err)

	summary := s.Summary()
	assert.Contains(t, summary, "Session: summ")
	assert.Contains(t, summary, "Description: demo")
	assert.Contains(t, summary, "Model: ollama:llama3")
	assert.Contains(t, summary, "Messages: 1")
}

func TestListSortedByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		s, err := New(name, WithSessionsDir(dir))
		require.NoError(t, err)
		require.NoError(t, s.Create())
	}
	// Directories without metadata are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0o755))

	metas, err := List(dir)
	require.NoError(t, err)
	require.Len(t, metas, 3)
	assert.Equal(t, "alpha", metas[0].Name)
	assert.Equal(t, "bravo", metas[1].Name)
	assert.Equal(t, "charlie", metas[2].Name)
}

func TestListMissingDir(t *testing.T) {
	metas, err := List(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Nil(t, metas)
}

func TestGetCreatesOnFirstUse(t *testing.T) {
	dir := t.TempDir()
	s, err := Get("fresh", WithSessionsDir(dir))
	require.NoError(t, err)
	assert.DirExists(t, s.Dir())

	_, err = s.AddUserMessage("hello")
	require.NoError(t, err)

	reloaded, err := Get("fresh", WithSessionsDir(dir))
	require.NoError(t, err)
	assert.Len(t, reloaded.Messages(), 1)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := New("gone", WithSessionsDir(dir))
	require.NoError(t, err)
	require.NoError(t, s.Create())

	removed, err := Delete("gone", dir)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoDirExists(t, s.Dir())

	removed, err = Delete("gone", dir)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = Delete("../evil", dir)
	require.Error(t, err)
}
