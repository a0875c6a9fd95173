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
)

// scriptedModel returns canned assistant messages, one per call, and
// records the requests it receives.
type scriptedModel struct {
	replies  []model.Message
	requests []*model.Request
	calls    int
}

func (m *scriptedModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	m.requests = append(m.requests, req)
	reply := m.replies[m.calls%len(m.replies)]
	m.calls++

	ch := make(chan *model.Response, 1)
	ch <- &model.Response{
		Object:  model.ObjectTypeChatCompletion,
		Choices: []model.Choice{{Message: reply}},
		Done:    true,
	}
	close(ch)
	return ch, nil
}

func (m *scriptedModel) Info() model.Info {
	return model.Info{Name: "scripted"}
}

func textReply(content string) model.Message {
	return model.NewAssistantMessage(content)
}

func TestLLMNodeExecute(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{textReply("the answer")}}
	node := NewLLMNode(backend,
		WithSystemPrompt("be brief"),
		WithPromptTemplate("Task: {task}"),
		WithOutputKey("answer"),
	)

	update, err := node.Execute(context.Background(), State{StateKeyTask: "add numbers"})
	require.NoError(t, err)
	assert.Equal(t, "the answer", update["answer"])

	require.Len(t, backend.requests, 1)
	msgs := backend.requests[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleSystem, msgs[0].Role)
	assert.Equal(t, "be brief", msgs[0].Content)
	assert.Equal(t, model.RoleUser, msgs[1].Role)
	assert.Equal(t, "Task: add numbers", msgs[1].Content)
}

func TestLLMNodeStreaming(t *testing.T) {
	chunks := []string{"hel", "lo ", "world"}
	backend := &chunkedModel{chunks: chunks}
	node := NewLLMNode(backend, WithOutputKey("text"))

	update, err := node.Execute(context.Background(), State{StateKeyTask: "greet"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", update["text"])
}

// chunkedModel streams delta chunks.
type chunkedModel struct {
	chunks []string
}

func (m *chunkedModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	ch := make(chan *model.Response, len(m.chunks))
	for _, chunk := range m.chunks {
		ch <- &model.Response{
			Object:    model.ObjectTypeChatCompletionChunk,
			Choices:   []model.Choice{{Delta: model.Message{Role: model.RoleAssistant, Content: chunk}}},
			IsPartial: true,
		}
	}
	close(ch)
	return ch, nil
}

func (m *chunkedModel) Info() model.Info { return model.Info{Name: "chunked"} }

func TestLLMNodeModelError(t *testing.T) {
	backend := &erroringModel{}
	node := NewLLMNode(backend)

	_, err := node.Execute(context.Background(), State{StateKeyTask: "t"})
	assert.ErrorContains(t, err, "model unavailable")
}

type erroringModel struct{}

func (m *erroringModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	ch := make(chan *model.Response, 1)
	ch <- &model.Response{Error: &model.ResponseError{
		Message: "model unavailable",
		Type:    model.ErrorTypeAPIError,
	}}
	close(ch)
	return ch, nil
}

func (m *erroringModel) Info() model.Info { return model.Info{Name: "erroring"} }

func TestExpandTemplate(t *testing.T) {
	state := State{StateKeyTask: "build", "count": 3}
	assert.Equal(t, "do build x3", expandTemplate("do {task} x{count}", state))
	assert.Equal(t, "no {unknown} here", expandTemplate("no {unknown} here", state))
}

func TestSpecWriterNodeDefaults(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{textReply("SPEC TEXT")}}
	node := NewSpecWriterNode(backend)

	update, err := node.Execute(context.Background(), State{StateKeyTask: "a calculator"})
	require.NoError(t, err)
	assert.Equal(t, "SPEC TEXT", update[StateKeySpec])

	prompt := backend.requests[0].Messages[1].Content
	assert.Contains(t, prompt, "a calculator")
}

func TestImplementerNodeExtractsCodeFence(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{
		textReply("Here you go:\n```go\nfunc main() {}\n```\nEnjoy."),
	}}
	node := NewImplementerNode(backend)

	update, err := node.Execute(context.Background(), State{
		StateKeySpec:      "the spec",
		StateKeyIteration: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "func main() {}", update[StateKeyCode])
	assert.Equal(t, 2, update[StateKeyIteration])
}

func TestImplementerNodeWithoutFenceKeepsText(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{textReply("plain text, no fence")}}
	node := NewImplementerNode(backend)

	update, err := node.Execute(context.Background(), State{StateKeySpec: "s"})
	require.NoError(t, err)
	assert.Equal(t, "plain text, no fence", update[StateKeyCode])
	assert.Equal(t, 1, update[StateKeyIteration])
}

func TestImplementerNodeIncludesFeedback(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{textReply("```\ncode\n```")}}
	node := NewImplementerNode(backend)

	_, err := node.Execute(context.Background(), State{
		StateKeySpec:     "s",
		StateKeyFeedback: "handle negative inputs",
	})
	require.NoError(t, err)
	prompt := backend.requests[0].Messages[1].Content
	assert.Contains(t, prompt, "Previous review feedback to address:")
	assert.Contains(t, prompt, "handle negative inputs")
}

func TestReviewerNodeParsesScore(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{
		textReply("SCORE: 95\nFEEDBACK:\n- looks good"),
	}}
	node := NewReviewerNode(backend)

	update, err := node.Execute(context.Background(), State{
		StateKeySpec: "s",
		StateKeyCode: "c",
	})
	require.NoError(t, err)
	assert.Equal(t, 95, update[StateKeyScore])
	assert.Equal(t, true, update[StateKeyPassed])
	assert.Contains(t, update[StateKeyFeedback], "looks good")
}

func TestReviewerNodeBelowThreshold(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{
		textReply("SCORE: 70\nFEEDBACK:\n- missing edge cases"),
	}}
	node := NewReviewerNode(backend, WithPassThreshold(85))

	update, err := node.Execute(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, 70, update[StateKeyScore])
	assert.Equal(t, false, update[StateKeyPassed])
}

func TestReviewerNodeMissingScore(t *testing.T) {
	backend := &scriptedModel{replies: []model.Message{textReply("no score here")}}
	node := NewReviewerNode(backend)

	update, err := node.Execute(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, 0, update[StateKeyScore])
	assert.Equal(t, false, update[StateKeyPassed])
}

func TestCodeReviewWorkflowEndToEnd(t *testing.T) {
	specBackend := &scriptedModel{replies: []model.Message{textReply("THE SPEC")}}
	implBackend := &scriptedModel{replies: []model.Message{textReply("```\nthe code\n```")}}
	reviewBackend := &scriptedModel{replies: []model.Message{
		textReply("SCORE: 60\nFEEDBACK:\n- rough"),
		textReply("SCORE: 95\nFEEDBACK:\n- ship it"),
	}}

	g, err := NewCodeReviewWorkflow(CodeReviewConfig{
		SpecModel:   specBackend,
		ImplModel:   implBackend,
		ReviewModel: reviewBackend,
	}).Compile()
	require.NoError(t, err)

	exec, err := NewExecutor(g)
	require.NoError(t, err)
	result, err := exec.Execute(context.Background(), State{
		StateKeyTask:          "build a queue",
		StateKeyMaxIterations: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, "THE SPEC", result.State[StateKeySpec])
	assert.Equal(t, "the code", result.State[StateKeyCode])
	assert.Equal(t, 95, result.State[StateKeyScore])
	assert.Equal(t, 2, result.State.Int(StateKeyIteration, 0))
}
