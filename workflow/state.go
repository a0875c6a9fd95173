//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package workflow provides a graph execution engine for multi-step
// pipelines. Nodes are wired into a directed graph with conditional
// loop-back edges and executed sequentially against a shared, growing
// state, with optional durable persistence of every step.
package workflow

import "maps"

// State is the mapping of named fields threaded through a run. Fields
// accumulate as nodes execute; a later write may overwrite a key but
// no step removes keys.
type State map[string]any

// Common state keys used by the engine and the built-in nodes.
const (
	// StateKeyTask is the original task or request text.
	StateKeyTask = "task"
	// StateKeyMessages is the conversation history.
	StateKeyMessages = "messages"
	// StateKeyIteration is the current loop iteration, maintained by
	// nodes such as the implementer.
	StateKeyIteration = "iteration"
	// StateKeyMaxIterations is the safety bound for loop-back routing.
	StateKeyMaxIterations = "max_iterations"
	// StateKeySpec is the generated specification text.
	StateKeySpec = "spec"
	// StateKeyCode is the generated code.
	StateKeyCode = "code"
	// StateKeyFeedback is the review feedback text.
	StateKeyFeedback = "feedback"
	// StateKeyScore is the review score in [0, 100].
	StateKeyScore = "score"
	// StateKeyPassed reports whether the review met its threshold.
	StateKeyPassed = "passed"
)

// DefaultMaxIterations bounds loop-back routing when the caller does
// not seed max_iterations in the initial state.
const DefaultMaxIterations = 10

// Clone returns a shallow copy of the state. Values are shared; only
// the top-level map is copied.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return maps.Clone(s)
}

// Int reads an integer field, tolerating the numeric types produced by
// JSON decoding. Returns def when the key is absent or not numeric.
func (s State) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// String reads a string field, returning "" when absent or not a string.
func (s State) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Bool reads a boolean field, returning false when absent or not a bool.
func (s State) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}
