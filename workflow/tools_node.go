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
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-workflow-go/log"
	"trpc.group/trpc-go/trpc-workflow-go/model"
	"trpc.group/trpc-go/trpc-workflow-go/tool"
)

// ToolNode invokes a model that may call tools. Tool calls are executed
// and fed back to the model until it produces a plain text answer or
// the tool iteration bound is hit. Tool sets are dependency-injected at
// construction; there is no global registry.
type ToolNode struct {
	name              string
	model             model.Model
	toolSets          []tool.ToolSet
	systemPrompt      string
	promptTemplate    string
	outputKey         string
	maxToolIterations int
}

// ToolNodeOption configures a ToolNode.
type ToolNodeOption func(*ToolNode)

// WithToolNodeName sets the name used in log lines.
func WithToolNodeName(name string) ToolNodeOption {
	return func(n *ToolNode) {
		n.name = name
	}
}

// WithToolSystemPrompt sets the system prompt.
func WithToolSystemPrompt(prompt string) ToolNodeOption {
	return func(n *ToolNode) {
		n.systemPrompt = prompt
	}
}

// WithToolPromptTemplate sets the user prompt template.
func WithToolPromptTemplate(template string) ToolNodeOption {
	return func(n *ToolNode) {
		n.promptTemplate = template
	}
}

// WithToolOutputKey sets the state key the final answer is stored under.
func WithToolOutputKey(key string) ToolNodeOption {
	return func(n *ToolNode) {
		n.outputKey = key
	}
}

// WithMaxToolIterations bounds the tool call loop (default 10).
func WithMaxToolIterations(maxIterations int) ToolNodeOption {
	return func(n *ToolNode) {
		n.maxToolIterations = maxIterations
	}
}

// NewToolNode creates a tool-enabled node using the given tool sets.
func NewToolNode(m model.Model, toolSets []tool.ToolSet, opts ...ToolNodeOption) *ToolNode {
	n := &ToolNode{
		name:              "tools",
		model:             m,
		toolSets:          toolSets,
		systemPrompt:      "You are a helpful assistant with access to tools.",
		promptTemplate:    "{" + StateKeyTask + "}",
		outputKey:         "result",
		maxToolIterations: 10,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Execute implements the Node interface.
func (n *ToolNode) Execute(ctx context.Context, state State) (State, error) {
	if n.model == nil {
		return nil, fmt.Errorf("no model configured")
	}
	tools := tool.Merge(ctx, n.toolSets...)
	log.Infof("[%s] Invoking tool-enabled %s with %d tools", n.name, n.model.Info().Name, len(tools))

	messages := []model.Message{
		model.NewSystemMessage(n.systemPrompt),
		model.NewUserMessage(expandTemplate(n.promptTemplate, state)),
	}

	for i := 0; i < n.maxToolIterations; i++ {
		msg, err := n.complete(ctx, messages, tools)
		if err != nil {
			return nil, err
		}
		if len(msg.ToolCalls) == 0 {
			return State{n.outputKey: msg.Content}, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			output, err := n.callTool(ctx, tools, call)
			if err != nil {
				// Tool failures go back to the model as text so it can
				// recover or report them.
				output = fmt.Sprintf("Error: %v", err)
			}
			messages = append(messages, model.NewToolMessage(call.ID, output))
		}
	}
	return State{n.outputKey: "Max tool iterations reached"}, nil
}

// complete sends one non-streaming request and returns the assistant
// message from the last choice-bearing response.
func (n *ToolNode) complete(ctx context.Context, messages []model.Message, tools map[string]tool.Tool) (model.Message, error) {
	req := &model.Request{
		Messages: messages,
		Tools:    tools,
	}
	ch, err := n.model.GenerateContent(ctx, req)
	if err != nil {
		return model.Message{}, fmt.Errorf("generating content: %w", err)
	}

	var msg model.Message
	for rsp := range ch {
		if rsp.Error != nil {
			return model.Message{}, fmt.Errorf("model error: %s", rsp.Error.Message)
		}
		if len(rsp.Choices) > 0 {
			msg = rsp.Choices[0].Message
		}
	}
	return msg, nil
}

func (n *ToolNode) callTool(ctx context.Context, tools map[string]tool.Tool, call model.ToolCall) (string, error) {
	name := call.Function.Name
	t, ok := tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	callable, ok := t.(tool.CallableTool)
	if !ok {
		return "", fmt.Errorf("tool %q is not callable", name)
	}

	log.Infof("[%s] Tool call: %s", n.name, name)
	result, err := callable.Call(ctx, call.Function.Arguments)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", name, err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshalling result of %s: %w", name, err)
	}
	return string(data), nil
}
