//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopNode() NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		return nil, nil
	}
}

func alwaysRoute(label string) Condition {
	return func(ctx context.Context, state State) (string, error) {
		return label, nil
	}
}

func TestCompileValid(t *testing.T) {
	g, err := New("ok").
		AddNodeFunc("a", noopNode()).
		AddNodeFunc("b", noopNode()).
		AddEdge("a", "b").
		SetEntry("a").
		Compile()
	require.NoError(t, err)
	assert.Equal(t, "ok", g.Name())
	assert.Equal(t, "a", g.Entry())
	assert.Equal(t, []string{"a", "b"}, g.NodeNames())
}

func TestCompileDuplicateNode(t *testing.T) {
	_, err := New("dup").
		AddNodeFunc("a", noopNode()).
		AddNodeFunc("a", noopNode()).
		SetEntry("a").
		Compile()
	require.Error(t, err)
	assert.ErrorContains(t, err, "duplicate node name")
}

func TestCompileMissingEntry(t *testing.T) {
	_, err := New("noentry").
		AddNodeFunc("a", noopNode()).
		Compile()
	assert.ErrorContains(t, err, "no entry point")
}

func TestCompileUnknownEntry(t *testing.T) {
	_, err := New("badentry").
		AddNodeFunc("a", noopNode()).
		SetEntry("ghost").
		Compile()
	assert.ErrorContains(t, err, "not a declared node")
}

func TestCompileDanglingEdgeTarget(t *testing.T) {
	_, err := New("dangling").
		AddNodeFunc("a", noopNode()).
		AddEdge("a", "ghost").
		SetEntry("a").
		Compile()
	assert.ErrorContains(t, err, "neither a declared node nor a terminal label")
}

func TestCompileEdgeToTerminalLabel(t *testing.T) {
	_, err := New("finish").
		AddNodeFunc("a", noopNode()).
		AddEdge("a", LabelDone).
		SetEntry("a").
		Compile()
	assert.NoError(t, err)
}

func TestCompileBothFixedAndConditional(t *testing.T) {
	_, err := New("ambiguous").
		AddNodeFunc("a", noopNode()).
		AddNodeFunc("b", noopNode()).
		AddEdge("a", "b").
		AddConditionalEdge("a", alwaysRoute("b"), nil).
		SetEntry("a").
		Compile()
	assert.ErrorContains(t, err, "both a fixed edge")
}

func TestCompileTwoFixedEdges(t *testing.T) {
	_, err := New("twofixed").
		AddNodeFunc("a", noopNode()).
		AddNodeFunc("b", noopNode()).
		AddNodeFunc("c", noopNode()).
		AddEdge("a", "b").
		AddEdge("a", "c").
		SetEntry("a").
		Compile()
	assert.ErrorContains(t, err, "two fixed edges")
}

func TestCompileFixedEdgeCycle(t *testing.T) {
	_, err := New("fixedcycle").
		AddNodeFunc("a", noopNode()).
		AddNodeFunc("b", noopNode()).
		AddEdge("a", "b").
		AddEdge("b", "a").
		SetEntry("a").
		Compile()
	assert.ErrorContains(t, err, "cycle")
}

func TestCompileConditionalLoopAllowed(t *testing.T) {
	_, err := New("condloop").
		AddNodeFunc("a", noopNode()).
		AddNodeFunc("b", noopNode()).
		AddEdge("a", "b").
		AddConditionalEdge("b", alwaysRoute("a"), nil).
		SetEntry("a").
		Compile()
	assert.NoError(t, err)
}

func TestCompileBadConditionalTargetMap(t *testing.T) {
	_, err := New("badmap").
		AddNodeFunc("a", noopNode()).
		AddConditionalEdge("a", alwaysRoute("x"), map[string]string{"x": "ghost"}).
		SetEntry("a").
		Compile()
	assert.ErrorContains(t, err, "unknown target")
}

func TestCompileSetFinishReplacesDefaults(t *testing.T) {
	// "done" is no longer terminal once SetFinish names other labels.
	_, err := New("custom").
		AddNodeFunc("a", noopNode()).
		AddEdge("a", LabelDone).
		SetEntry("a").
		SetFinish("complete").
		Compile()
	assert.ErrorContains(t, err, "neither a declared node nor a terminal label")
}

func TestCompileErrorsAreConfigErrors(t *testing.T) {
	_, err := New("kind").Compile()
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() {
		New("broken").MustCompile()
	})
}

func TestVisualize(t *testing.T) {
	w := New("viz").
		AddNodeFunc("a", noopNode()).
		AddNodeFunc("b", noopNode()).
		AddEdge("a", "b").
		AddConditionalEdge("b", alwaysRoute(LabelDone), map[string]string{"retry": "a"}).
		SetEntry("a")

	out := w.Visualize()
	assert.Contains(t, out, "Workflow: viz")
	assert.Contains(t, out, "[a] (entry)")
	assert.Contains(t, out, "a -> b")
	assert.Contains(t, out, "b -> [retry->a] (conditional)")
}

func TestStateHelpers(t *testing.T) {
	s := State{
		"i":       3,
		"f":       float64(4),
		"i64":     int64(5),
		"s":       "text",
		"b":       true,
		"garbage": struct{}{},
	}
	assert.Equal(t, 3, s.Int("i", -1))
	assert.Equal(t, 4, s.Int("f", -1))
	assert.Equal(t, 5, s.Int("i64", -1))
	assert.Equal(t, -1, s.Int("missing", -1))
	assert.Equal(t, -1, s.Int("garbage", -1))
	assert.Equal(t, "text", s.String("s"))
	assert.Equal(t, "", s.String("missing"))
	assert.True(t, s.Bool("b"))
	assert.False(t, s.Bool("missing"))

	clone := s.Clone()
	clone["new"] = 1
	assert.NotContains(t, s, "new")

	var nilState State
	assert.NotNil(t, nilState.Clone())
}
