//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package session provides persistent conversation sessions.
//
// Each session is a directory under the sessions root:
//
//	sessions/
//	└── my-project/
//	    ├── meta.json       session metadata
//	    ├── history.json    full message history
//	    └── spec.md         extracted spec, when generated
//
// Sessions can be resumed across runs, summarized into specs, and
// linked to workflow runs they triggered.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"trpc.group/trpc-go/trpc-workflow-go/model"
)

const (
	// DefaultSessionsDir is the default root directory for sessions.
	DefaultSessionsDir = "sessions"

	metaFile    = "meta.json"
	historyFile = "history.json"
	specFile    = "spec.md"
)

// Message is a single message in a conversation, with the time it was
// recorded.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Meta is the metadata stored alongside a session's history.
type Meta struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Model        string    `json:"model"`
	Backend      string    `json:"backend"`
	MessageCount int       `json:"message_count"`
	HasSpec      bool      `json:"has_spec"`
	WorkflowRuns []string  `json:"workflow_runs"`
	Description  string    `json:"description"`
}

// Session is a persistent conversation backed by a directory on disk.
type Session struct {
	name        string
	sessionsDir string
	sessionDir  string

	meta     Meta
	messages []Message
}

// Option configures a session.
type Option func(*Session)

// WithSessionsDir overrides the sessions root directory.
func WithSessionsDir(dir string) Option {
	return func(s *Session) {
		s.sessionsDir = dir
	}
}

// WithModel records the backend and model the session uses.
func WithModel(backend, modelName string) Option {
	return func(s *Session) {
		s.meta.Backend = backend
		s.meta.Model = modelName
	}
}

// WithDescription sets a description on newly created sessions.
func WithDescription(description string) Option {
	return func(s *Session) {
		s.meta.Description = description
	}
}

// New builds a session handle for the given name. Nothing is touched
// on disk until Create, Load, or LoadOrCreate is called.
func New(name string, opts ...Option) (*Session, error) {
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid session name: %s", name)
	}
	s := &Session{
		name:        name,
		sessionsDir: DefaultSessionsDir,
	}
	s.meta.Name = name
	for _, opt := range opts {
		opt(s)
	}
	s.sessionDir = filepath.Join(s.sessionsDir, name)
	return s, nil
}

// Name returns the session name.
func (s *Session) Name() string { return s.name }

// Dir returns the session directory.
func (s *Session) Dir() string { return s.sessionDir }

// Meta returns a copy of the session metadata.
func (s *Session) Meta() Meta { return s.meta }

// Messages returns the message history.
func (s *Session) Messages() []Message { return s.messages }

// Create creates the session directory and writes the initial state.
// It fails if the session already exists.
func (s *Session) Create() error {
	if _, err := os.Stat(s.sessionDir); err == nil {
		return fmt.Errorf("session %q already exists", s.name)
	}
	if err := os.MkdirAll(s.sessionDir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	now := time.Now()
	s.meta.CreatedAt = now
	s.meta.UpdatedAt = now
	s.messages = nil
	return s.save()
}

// Load reads an existing session from disk.
func (s *Session) Load() error {
	if _, err := os.Stat(s.sessionDir); err != nil {
		return fmt.Errorf("session %q not found", s.name)
	}
	metaBytes, err := os.ReadFile(filepath.Join(s.sessionDir, metaFile))
	if err != nil {
		return fmt.Errorf("read session metadata: %w", err)
	}
	if err := json.Unmarshal(metaBytes, &s.meta); err != nil {
		return fmt.Errorf("parse session metadata: %w", err)
	}

	historyBytes, err := os.ReadFile(filepath.Join(s.sessionDir, historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			s.messages = nil
			return nil
		}
		return fmt.Errorf("read session history: %w", err)
	}
	if err := json.Unmarshal(historyBytes, &s.messages); err != nil {
		return fmt.Errorf("parse session history: %w", err)
	}
	return nil
}

// LoadOrCreate loads the session if it exists, creating it otherwise.
// It reports whether a new session was created.
func (s *Session) LoadOrCreate() (bool, error) {
	if _, err := os.Stat(s.sessionDir); err == nil {
		return false, s.Load()
	}
	return true, s.Create()
}

// AddMessage appends a message and persists the session.
func (s *Session) AddMessage(role, content string) (Message, error) {
	msg := Message{Role: role, Content: content, Timestamp: time.Now()}
	s.messages = append(s.messages, msg)
	if err := s.save(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// AddUserMessage appends a user message.
func (s *Session) AddUserMessage(content string) (Message, error) {
	return s.AddMessage(model.RoleUser.String(), content)
}

// AddAssistantMessage appends an assistant message.
func (s *Session) AddAssistantMessage(content string) (Message, error) {
	return s.AddMessage(model.RoleAssistant.String(), content)
}

// ModelMessages returns the history in the format the model API expects.
func (s *Session) ModelMessages() []model.Message {
	result := make([]model.Message, len(s.messages))
	for i, m := range s.messages {
		result[i] = model.Message{
			Role:    model.Role(m.Role),
			Content: m.Content,
		}
	}
	return result
}

// HistoryText renders the history as readable text. lastN limits the
// output to the most recent messages; zero means everything.
func (s *Session) HistoryText(lastN int) string {
	msgs := s.messages
	if lastN > 0 && lastN < len(msgs) {
		msgs = msgs[len(msgs)-lastN:]
	}
	var out string
	for i, m := range msgs {
		prefix := "AI"
		if m.Role == model.RoleUser.String() {
			prefix = "You"
		}
		if i > 0 {
			out += "\n\n"
		}
		out += fmt.Sprintf("%s: %s", prefix, m.Content)
	}
	return out
}

// SaveSpec writes an extracted spec document into the session directory
// and returns its path.
func (s *Session) SaveSpec(content string) (string, error) {
	specPath := filepath.Join(s.sessionDir, specFile)
	if err := os.WriteFile(specPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write spec: %w", err)
	}
	if err := s.save(); err != nil {
		return "", err
	}
	return specPath, nil
}

// Spec returns the saved spec document, or an empty string when none
// has been saved.
func (s *Session) Spec() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.sessionDir, specFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// LinkWorkflow associates a workflow run with this session.
func (s *Session) LinkWorkflow(runID string) error {
	if !slices.Contains(s.meta.WorkflowRuns, runID) {
		s.meta.WorkflowRuns = append(s.meta.WorkflowRuns, runID)
	}
	return s.save()
}

// Summary renders a short human readable description of the session.
func (s *Session) Summary() string {
	out := fmt.Sprintf("Session: %s\n", s.name)
	if s.meta.Description != "" {
		out += fmt.Sprintf("Description: %s\n", s.meta.Description)
	}
	out += fmt.Sprintf("Model: %s:%s\n", s.meta.Backend, s.meta.Model)
	out += fmt.Sprintf("Messages: %d\n", s.meta.MessageCount)
	out += fmt.Sprintf("Created: %s\n", s.meta.CreatedAt.Format(time.RFC3339))
	out += fmt.Sprintf("Updated: %s", s.meta.UpdatedAt.Format(time.RFC3339))
	if s.meta.HasSpec {
		out += "\nSpec: saved"
	}
	if len(s.meta.WorkflowRuns) > 0 {
		out += fmt.Sprintf("\nWorkflows: %d", len(s.meta.WorkflowRuns))
	}
	return out
}

// save writes metadata and history, refreshing derived fields first.
func (s *Session) save() error {
	s.meta.UpdatedAt = time.Now()
	s.meta.MessageCount = len(s.messages)
	_, specErr := os.Stat(filepath.Join(s.sessionDir, specFile))
	s.meta.HasSpec = specErr == nil

	metaBytes, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.sessionDir, metaFile), metaBytes, 0o644); err != nil {
		return fmt.Errorf("write session metadata: %w", err)
	}

	history := s.messages
	if history == nil {
		history = []Message{}
	}
	historyBytes, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session history: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.sessionDir, historyFile), historyBytes, 0o644); err != nil {
		return fmt.Errorf("write session history: %w", err)
	}
	return nil
}

// List returns metadata for every session under the given root, sorted
// by name. Directories without a readable meta.json are skipped.
func List(sessionsDir string) ([]Meta, error) {
	if sessionsDir == "" {
		sessionsDir = DefaultSessionsDir
	}
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	var sessions []Meta
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		metaBytes, err := os.ReadFile(filepath.Join(sessionsDir, entry.Name(), metaFile))
		if err != nil {
			continue
		}
		var meta Meta
		if err := json.Unmarshal(metaBytes, &meta); err != nil {
			continue
		}
		sessions = append(sessions, meta)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Name < sessions[j].Name })
	return sessions, nil
}

// Get loads the named session, creating it if it does not exist.
func Get(name string, opts ...Option) (*Session, error) {
	s, err := New(name, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := s.LoadOrCreate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes the named session. It reports whether a session was
// actually removed.
func Delete(name, sessionsDir string) (bool, error) {
	if sessionsDir == "" {
		sessionsDir = DefaultSessionsDir
	}
	if name == "" || name != filepath.Base(name) {
		return false, fmt.Errorf("invalid session name: %s", name)
	}
	sessionDir := filepath.Join(sessionsDir, name)
	if _, err := os.Stat(sessionDir); err != nil {
		return false, nil
	}
	if err := os.RemoveAll(sessionDir); err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return true, nil
}
