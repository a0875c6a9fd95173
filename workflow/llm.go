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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-workflow-go/log"
	"trpc.group/trpc-go/trpc-workflow-go/model"
)

// LLMNode invokes a model with a prompt template and stores the
// completed text under its output key. Streaming is drained inside the
// node; the engine always receives the full text.
type LLMNode struct {
	name           string
	model          model.Model
	systemPrompt   string
	promptTemplate string
	outputKey      string
	stream         bool
}

// LLMOption configures an LLM-backed node.
type LLMOption func(*LLMNode)

// WithNodeName sets the name used in log lines.
func WithNodeName(name string) LLMOption {
	return func(n *LLMNode) {
		n.name = name
	}
}

// WithSystemPrompt sets the system prompt.
func WithSystemPrompt(prompt string) LLMOption {
	return func(n *LLMNode) {
		n.systemPrompt = prompt
	}
}

// WithPromptTemplate sets the user prompt template. Placeholders of the
// form {key} are expanded from the state.
func WithPromptTemplate(template string) LLMOption {
	return func(n *LLMNode) {
		n.promptTemplate = template
	}
}

// WithOutputKey sets the state key the completed text is stored under.
func WithOutputKey(key string) LLMOption {
	return func(n *LLMNode) {
		n.outputKey = key
	}
}

// WithStreaming toggles streaming requests to the backend.
func WithStreaming(stream bool) LLMOption {
	return func(n *LLMNode) {
		n.stream = stream
	}
}

// NewLLMNode creates a generic LLM node.
func NewLLMNode(m model.Model, opts ...LLMOption) *LLMNode {
	n := &LLMNode{
		model:          m,
		systemPrompt:   "You are a helpful assistant.",
		promptTemplate: "{" + StateKeyTask + "}",
		outputKey:      "response",
		stream:         true,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Execute implements the Node interface.
func (n *LLMNode) Execute(ctx context.Context, state State) (State, error) {
	text, err := n.generate(ctx, state)
	if err != nil {
		return nil, err
	}
	return State{n.outputKey: text}, nil
}

// generate expands the prompt template, invokes the model and drains
// the response channel into completed text.
func (n *LLMNode) generate(ctx context.Context, state State) (string, error) {
	if n.model == nil {
		return "", fmt.Errorf("no model configured")
	}
	log.Infof("[%s] Invoking %s", n.logName(), n.model.Info().Name)

	req := &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage(n.systemPrompt),
			model.NewUserMessage(expandTemplate(n.promptTemplate, state)),
		},
	}
	req.Stream = n.stream

	ch, err := n.model.GenerateContent(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	var partial strings.Builder
	var full string
	for rsp := range ch {
		if rsp.Error != nil {
			return "", fmt.Errorf("model error: %s", rsp.Error.Message)
		}
		for _, choice := range rsp.Choices {
			if choice.Delta.Content != "" {
				partial.WriteString(choice.Delta.Content)
			}
			if choice.Message.Content != "" {
				full = choice.Message.Content
			}
		}
	}
	if full != "" {
		return full, nil
	}
	return partial.String(), nil
}

func (n *LLMNode) logName() string {
	if n.name != "" {
		return n.name
	}
	return "llm"
}

// expandTemplate replaces {key} placeholders with the state's values.
// Placeholders without a matching key are left untouched.
func expandTemplate(template string, state State) string {
	out := template
	for k, v := range state {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return out
}

// Prompts for the built-in spec, implement and review nodes.
const (
	specWriterSystemPrompt = `You are a senior technical architect. Given a task, write a detailed specification.

Include:
1. Overview - What this should do
2. Requirements - Specific features and behaviors
3. Interface - Function signatures, inputs, outputs
4. Edge cases - Error handling, boundary conditions
5. Success criteria - How to know it's working

Be precise and comprehensive. The spec will be given to another AI to implement.`

	specWriterPromptTemplate = `Write a detailed specification for this task:

{task}`

	implementerSystemPrompt = `You are an expert programmer. Implement code exactly according to the specification.

Rules:
- Follow the spec precisely
- Write clean, well-documented code
- Handle all edge cases mentioned
- Include example usage if appropriate
- Output ONLY the code in a single code block

If there's feedback from a previous review, address ALL points.`

	implementerPromptTemplate = `Specification:
{spec}

{feedback_section}

Implement this specification. Output only the code in a single fenced code block.`

	reviewerSystemPrompt = `You are a senior code reviewer. Review the code against the specification.

Evaluate:
1. Correctness - Does it meet the spec?
2. Completeness - All requirements addressed?
3. Code quality - Clean, readable, well-documented?
4. Edge cases - Properly handled?
5. Best practices - Following conventions?

Output format (MUST follow exactly):
SCORE: [0-100]
FEEDBACK:
- [Point 1]
- [Point 2]
...

Be strict but fair. Only give 90+ if the code is production-ready.`

	reviewerPromptTemplate = `Specification:
{spec}

Code to review:
` + "```" + `
{code}
` + "```" + `

Review this code against the specification. Output SCORE and FEEDBACK.`
)

// NewSpecWriterNode creates a node that turns a task description into a
// detailed specification stored under the "spec" key.
func NewSpecWriterNode(m model.Model, opts ...LLMOption) *LLMNode {
	base := []LLMOption{
		WithNodeName("spec"),
		WithSystemPrompt(specWriterSystemPrompt),
		WithPromptTemplate(specWriterPromptTemplate),
		WithOutputKey(StateKeySpec),
	}
	return NewLLMNode(m, append(base, opts...)...)
}

var codeFenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\n(.*?)```")

// ImplementerNode generates code from the specification, folding in
// review feedback on retry loops. It increments the iteration counter
// on every invocation.
type ImplementerNode struct {
	llm *LLMNode
}

// NewImplementerNode creates an implementer node.
func NewImplementerNode(m model.Model, opts ...LLMOption) *ImplementerNode {
	base := []LLMOption{
		WithNodeName("implement"),
		WithSystemPrompt(implementerSystemPrompt),
		WithPromptTemplate(implementerPromptTemplate),
		WithOutputKey(StateKeyCode),
	}
	return &ImplementerNode{llm: NewLLMNode(m, append(base, opts...)...)}
}

// Execute implements the Node interface.
func (n *ImplementerNode) Execute(ctx context.Context, state State) (State, error) {
	prompted := state.Clone()
	if feedback := state.String(StateKeyFeedback); feedback != "" {
		prompted["feedback_section"] = "Previous review feedback to address:\n" + feedback
	} else {
		prompted["feedback_section"] = ""
	}

	text, err := n.llm.generate(ctx, prompted)
	if err != nil {
		return nil, err
	}

	code := text
	if match := codeFenceRe.FindStringSubmatch(text); match != nil {
		code = strings.TrimSpace(match[1])
	}

	return State{
		n.llm.outputKey:   code,
		StateKeyIteration: state.Int(StateKeyIteration, 0) + 1,
	}, nil
}

var scoreRe = regexp.MustCompile(`SCORE:\s*(\d+)`)

// ReviewerNode reviews the generated code against the specification,
// parsing a numeric score from the response and comparing it to the
// pass threshold.
type ReviewerNode struct {
	llm           *LLMNode
	passThreshold int
}

// ReviewerOption configures a reviewer node.
type ReviewerOption func(*ReviewerNode)

// WithPassThreshold sets the score required to pass (default 90).
func WithPassThreshold(threshold int) ReviewerOption {
	return func(n *ReviewerNode) {
		n.passThreshold = threshold
	}
}

// WithReviewerLLMOptions forwards options to the underlying LLM node.
func WithReviewerLLMOptions(opts ...LLMOption) ReviewerOption {
	return func(n *ReviewerNode) {
		for _, opt := range opts {
			opt(n.llm)
		}
	}
}

// NewReviewerNode creates a reviewer node.
func NewReviewerNode(m model.Model, opts ...ReviewerOption) *ReviewerNode {
	n := &ReviewerNode{
		llm: NewLLMNode(m,
			WithNodeName("review"),
			WithSystemPrompt(reviewerSystemPrompt),
			WithPromptTemplate(reviewerPromptTemplate),
			WithOutputKey(StateKeyFeedback),
		),
		passThreshold: 90,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Execute implements the Node interface.
func (n *ReviewerNode) Execute(ctx context.Context, state State) (State, error) {
	feedback, err := n.llm.generate(ctx, state)
	if err != nil {
		return nil, err
	}

	score := 0
	if match := scoreRe.FindStringSubmatch(feedback); match != nil {
		score, _ = strconv.Atoi(match[1])
	}
	passed := score >= n.passThreshold

	verdict := "NEEDS WORK"
	if passed {
		verdict = "PASSED"
	}
	log.Infof("[%s] Score: %d/100 (threshold: %d) - %s", n.llm.logName(), score, n.passThreshold, verdict)

	return State{
		n.llm.outputKey: feedback,
		StateKeyScore:   score,
		StateKeyPassed:  passed,
	}, nil
}
