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

	"trpc.group/trpc-go/trpc-workflow-go/model"
	"trpc.group/trpc-go/trpc-workflow-go/tool"
	"trpc.group/trpc-go/trpc-workflow-go/tool/function"
)

type echoRequest struct {
	Text string `json:"text"`
}

type echoResponse struct {
	Echoed string `json:"echoed"`
}

// echoToolSet exposes a single echo tool and counts its invocations.
type echoToolSet struct {
	calls int
}

func (s *echoToolSet) Tools(ctx context.Context) []tool.CallableTool {
	return []tool.CallableTool{function.NewFunctionTool(
		func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
			s.calls++
			return &echoResponse{Echoed: req.Text}, nil
		},
		function.WithName("echo"),
		function.WithDescription("Echoes the given text."),
	)}
}

func (s *echoToolSet) Close() error { return nil }

func (s *echoToolSet) Name() string { return "echo" }

func toolCallReply(name string, args string) model.Message {
	return model.Message{
		Role: model.RoleAssistant,
		ToolCalls: []model.ToolCall{{
			Type: "function",
			ID:   "call_1",
			Function: model.FunctionDefinitionParam{
				Name:      name,
				Arguments: []byte(args),
			},
		}},
	}
}

func TestToolNodeExecutesCalls(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{
		toolCallReply("echo", `{"text":"hi"}`),
		textReply("final answer"),
	}}
	toolSet := &echoToolSet{}
	node := NewToolNode(backend, []tool.ToolSet{toolSet}, WithToolOutputKey("out"))

	update, err := node.Execute(context.Background(), State{StateKeyTask: "say hi"})
	require.NoError(t, err)
	assert.Equal(t, "final answer", update["out"])
	assert.Equal(t, 1, toolSet.calls)

	// Second request carries the assistant tool call and the tool result.
	require.Len(t, backend.requests, 2)
	msgs := backend.requests[1].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, model.RoleAssistant, msgs[2].Role)
	require.Len(t, msgs[2].ToolCalls, 1)
	assert.Equal(t, model.RoleTool, msgs[3].Role)
	assert.Equal(t, "call_1", msgs[3].ToolID)
	assert.Contains(t, msgs[3].Content, `"echoed":"hi"`)

	// Tools are offered to the model on every request.
	assert.Contains(t, backend.requests[0].Tools, "echo")
}

func TestToolNodeUnknownToolReportedToModel(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{
		toolCallReply("missing", `{}`),
		textReply("recovered"),
	}}
	node := NewToolNode(backend, []tool.ToolSet{&echoToolSet{}})

	update, err := node.Execute(context.Background(), State{StateKeyTask: "t"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", update["result"])

	msgs := backend.requests[1].Messages
	assert.Contains(t, msgs[3].Content, "unknown tool")
}

func TestToolNodeIterationBound(t *testing.T) {
	// The model keeps asking for tools and never answers.
	backend := &scriptedModel{replies: []model.Message{
		toolCallReply("echo", `{"text":"again"}`),
	}}
	toolSet := &echoToolSet{}
	node := NewToolNode(backend, []tool.ToolSet{toolSet}, WithMaxToolIterations(3))

	update, err := node.Execute(context.Background(), State{StateKeyTask: "t"})
	require.NoError(t, err)
	assert.Equal(t, "Max tool iterations reached", update["result"])
	assert.Equal(t, 3, toolSet.calls)
}

func TestToolNodeNoToolCalls(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{textReply("direct answer")}}
	node := NewToolNode(backend, nil)

	update, err := node.Execute(context.Background(), State{StateKeyTask: "t"})
	require.NoError(t, err)
	assert.Equal(t, "direct answer", update["result"])
}
