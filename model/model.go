//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package model provides interfaces for working with LLMs.
package model

import "context"

// Model is the interface for all language models.
//
// Error handling uses two layers:
//
//  1. Function-level errors (returned as `error`): system-level failures that
//     prevent communication, such as a nil request or network setup issues.
//  2. Response-level errors (Response.Error field): API-level errors returned
//     by the model service after communication succeeded, such as rate limits
//     or content filtering. These are delivered through the response channel.
type Model interface {
	// GenerateContent generates content from the given request.
	// It returns a channel of Response objects for streaming results, or an
	// error for system-level failures. The Response objects may carry their
	// own Error field for API-level errors.
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about a Model.
type Info struct {
	Name string
}
