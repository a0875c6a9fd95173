//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package gemini provides a model implementation backed by the Google
// Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-workflow-go/log"
	"trpc.group/trpc-go/trpc-workflow-go/model"
	"trpc.group/trpc-go/trpc-workflow-go/tool"
)

const (
	// GoogleAPIKeyEnv is the environment variable name for the Google API key.
	GoogleAPIKeyEnv = "GOOGLE_API_KEY"

	// defaultChannelBufferSize is the default response channel buffer size.
	defaultChannelBufferSize = 256
)

// Model implements the model.Model interface against the Gemini API.
type Model struct {
	client            *genai.Client
	name              string
	channelBufferSize int
}

// options contains configuration for creating a Model.
type options struct {
	APIKey            string
	ChannelBufferSize int
	ClientConfig      *genai.ClientConfig
}

// Option configures a Gemini model.
type Option func(*options)

// WithAPIKey sets the API key. It takes precedence over the
// GOOGLE_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.APIKey = key
	}
}

// WithChannelBufferSize sets the response channel buffer size.
func WithChannelBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.ChannelBufferSize = size
		}
	}
}

// WithClientConfig replaces the client configuration wholesale. Fields
// set here take precedence over the other options.
func WithClientConfig(config *genai.ClientConfig) Option {
	return func(o *options) {
		o.ClientConfig = config
	}
}

// New creates a model client for the named Gemini model.
func New(ctx context.Context, name string, opts ...Option) (*Model, error) {
	o := &options{
		APIKey:            os.Getenv(GoogleAPIKeyEnv),
		ChannelBufferSize: defaultChannelBufferSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	config := o.ClientConfig
	if config == nil {
		config = &genai.ClientConfig{}
	}
	if config.APIKey == "" {
		config.APIKey = o.APIKey
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s is not provided", GoogleAPIKeyEnv)
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, err
	}
	return &Model{
		client:            client,
		name:              name,
		channelBufferSize: o.ChannelBufferSize,
	}, nil
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name}
}

// GenerateContent implements the model.Model interface.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (<-chan *model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}

	contents, config := convertRequest(request)
	responseChan := make(chan *model.Response, m.channelBufferSize)

	go func() {
		defer close(responseChan)
		if request.Stream {
			m.handleStreamingResponse(ctx, contents, config, responseChan)
			return
		}
		m.handleNonStreamingResponse(ctx, contents, config, responseChan)
	}()

	return responseChan, nil
}

// convertRequest maps the request messages and generation parameters to
// the Gemini content and config shapes.
func convertRequest(request *model.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}

	var systemParts []string
	contents := make([]*genai.Content, 0, len(request.Messages))
	for _, msg := range request.Messages {
		switch msg.Role {
		case model.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case model.RoleAssistant:
			contents = append(contents, convertAssistantMessage(msg))
		case model.RoleTool:
			contents = append(contents, convertToolMessage(msg))
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	if len(systemParts) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(systemParts, "\n\n")}},
		}
	}

	if request.Temperature != nil {
		temp := float32(*request.Temperature)
		config.Temperature = &temp
	}
	if request.TopP != nil {
		topP := float32(*request.TopP)
		config.TopP = &topP
	}
	if request.MaxTokens != nil {
		config.MaxOutputTokens = int32(*request.MaxTokens)
	}
	if len(request.Stop) > 0 {
		config.StopSequences = request.Stop
	}
	if len(request.Tools) > 0 {
		config.Tools = convertTools(request.Tools)
	}

	return contents, config
}

// convertAssistantMessage attaches the assistant's recorded function
// calls so Gemini can match later tool responses to them.
func convertAssistantMessage(msg model.Message) *genai.Content {
	var parts []*genai.Part
	if msg.Content != "" {
		parts = append(parts, &genai.Part{Text: msg.Content})
	}
	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if len(tc.Function.Arguments) > 0 {
			if err := json.Unmarshal(tc.Function.Arguments, &args); err != nil {
				args["input"] = string(tc.Function.Arguments)
			}
		}
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: args,
			},
		})
	}
	return &genai.Content{Role: genai.RoleModel, Parts: parts}
}

// convertToolMessage turns a tool result into a function response part.
// Gemini expects these on the user turn.
func convertToolMessage(msg model.Message) *genai.Content {
	response := map[string]any{}
	if strings.TrimSpace(msg.Content) != "" {
		var raw any
		if err := json.Unmarshal([]byte(msg.Content), &raw); err == nil {
			if obj, ok := raw.(map[string]any); ok {
				response = obj
			} else {
				response["output"] = raw
			}
		} else {
			response["output"] = msg.Content
		}
	}
	return &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{{
			FunctionResponse: &genai.FunctionResponse{
				ID:       msg.ToolID,
				Name:     msg.ToolID,
				Response: response,
			},
		}},
	}
}

// convertTools converts tool declarations to Gemini function declarations.
func convertTools(tools map[string]tool.Tool) []*genai.Tool {
	var declarations []*genai.FunctionDeclaration
	for _, t := range tools {
		decl := t.Declaration()
		funcDecl := &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
		}
		if decl.InputSchema != nil {
			schemaJSON, err := json.Marshal(decl.InputSchema)
			if err != nil {
				log.Errorf("failed to marshal tool schema for %s: %v", decl.Name, err)
				continue
			}
			var schema any
			if err := json.Unmarshal(schemaJSON, &schema); err != nil {
				log.Errorf("failed to convert tool schema for %s: %v", decl.Name, err)
				continue
			}
			funcDecl.ParametersJsonSchema = schema
		}
		declarations = append(declarations, funcDecl)
	}
	if len(declarations) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// handleStreamingResponse emits partial responses per chunk and a final
// response carrying the accumulated message.
func (m *Model) handleStreamingResponse(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	responseChan chan<- *model.Response,
) {
	var (
		content      strings.Builder
		toolCalls    []model.ToolCall
		finishReason *string
		usage        *model.Usage
	)

	for chunk, err := range m.client.Models.GenerateContentStream(ctx, m.name, contents, config) {
		if err != nil {
			m.sendResponse(ctx, responseChan, &model.Response{
				Object:    model.ObjectTypeChatCompletionChunk,
				Model:     m.name,
				Timestamp: time.Now(),
				Done:      true,
				Error: &model.ResponseError{
					Message: err.Error(),
					Type:    model.ErrorTypeStreamError,
				},
			})
			return
		}
		if len(chunk.Candidates) == 0 {
			continue
		}
		candidate := chunk.Candidates[0]

		var delta strings.Builder
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					delta.WriteString(part.Text)
				}
				if part.FunctionCall != nil {
					toolCalls = append(toolCalls, convertFunctionCall(part.FunctionCall, len(toolCalls)))
				}
			}
		}
		content.WriteString(delta.String())
		if candidate.FinishReason != "" {
			reason := string(candidate.FinishReason)
			finishReason = &reason
		}
		if chunk.UsageMetadata != nil {
			usage = convertUsage(chunk.UsageMetadata)
		}

		if delta.Len() == 0 {
			continue
		}
		ok := m.sendResponse(ctx, responseChan, &model.Response{
			Object: model.ObjectTypeChatCompletionChunk,
			Model:  m.name,
			Choices: []model.Choice{{
				Delta: model.Message{
					Role:    model.RoleAssistant,
					Content: delta.String(),
				},
			}},
			Timestamp: time.Now(),
			IsPartial: true,
		})
		if !ok {
			return
		}
	}

	m.sendResponse(ctx, responseChan, &model.Response{
		Object: model.ObjectTypeChatCompletion,
		Model:  m.name,
		Choices: []model.Choice{{
			Message: model.Message{
				Role:      model.RoleAssistant,
				Content:   content.String(),
				ToolCalls: toolCalls,
			},
			FinishReason: finishReason,
		}},
		Usage:     usage,
		Timestamp: time.Now(),
		Done:      true,
	})
}

// handleNonStreamingResponse performs a single generation call.
func (m *Model) handleNonStreamingResponse(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	responseChan chan<- *model.Response,
) {
	resp, err := m.client.Models.GenerateContent(ctx, m.name, contents, config)
	if err != nil {
		m.sendResponse(ctx, responseChan, &model.Response{
			Object:    model.ObjectTypeChatCompletion,
			Model:     m.name,
			Timestamp: time.Now(),
			Done:      true,
			Error: &model.ResponseError{
				Message: err.Error(),
				Type:    model.ErrorTypeAPIError,
			},
		})
		return
	}
	m.sendResponse(ctx, responseChan, convertResponse(m.name, resp))
}

// convertResponse maps a Gemini response to the shared response type.
func convertResponse(name string, resp *genai.GenerateContentResponse) *model.Response {
	response := &model.Response{
		Object:    model.ObjectTypeChatCompletion,
		Model:     name,
		Timestamp: time.Now(),
		Done:      true,
	}
	for i, candidate := range resp.Candidates {
		choice := model.Choice{Index: i}
		if candidate.Content != nil {
			var text strings.Builder
			var toolCalls []model.ToolCall
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
				if part.FunctionCall != nil {
					toolCalls = append(toolCalls, convertFunctionCall(part.FunctionCall, len(toolCalls)))
				}
			}
			choice.Message = model.Message{
				Role:      model.RoleAssistant,
				Content:   text.String(),
				ToolCalls: toolCalls,
			}
		}
		if candidate.FinishReason != "" {
			reason := string(candidate.FinishReason)
			choice.FinishReason = &reason
		}
		response.Choices = append(response.Choices, choice)
	}
	if resp.UsageMetadata != nil {
		response.Usage = convertUsage(resp.UsageMetadata)
	}
	return response
}

// convertFunctionCall maps a Gemini function call to a tool call.
// Gemini does not always assign call IDs, so one is synthesized from
// the index when missing.
func convertFunctionCall(call *genai.FunctionCall, index int) model.ToolCall {
	id := call.ID
	if id == "" {
		id = fmt.Sprintf("auto_call_%d", index)
	}
	args, err := json.Marshal(call.Args)
	if err != nil {
		args = []byte("{}")
	}
	return model.ToolCall{
		Type: "function",
		ID:   id,
		Function: model.FunctionDefinitionParam{
			Name:      call.Name,
			Arguments: args,
		},
	}
}

func convertUsage(metadata *genai.GenerateContentResponseUsageMetadata) *model.Usage {
	return &model.Usage{
		PromptTokens:     int(metadata.PromptTokenCount),
		CompletionTokens: int(metadata.CandidatesTokenCount),
		TotalTokens:      int(metadata.TotalTokenCount),
	}
}

// sendResponse delivers a response unless the context is cancelled.
func (m *Model) sendResponse(ctx context.Context, responseChan chan<- *model.Response, response *model.Response) bool {
	select {
	case responseChan <- response:
		return true
	case <-ctx.Done():
		return false
	}
}
