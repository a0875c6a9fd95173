//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package tool

import "context"

// ToolSet defines an interface for managing a set of tools.
// Tool sets are handed to tool-enabled workflow nodes at construction time;
// there is no process-wide registry.
type ToolSet interface {
	// Tools returns the callable tools available in the set.
	Tools(context.Context) []CallableTool

	// Close releases any resources held by the ToolSet.
	Close() error

	// Name returns the name of the ToolSet for identification.
	Name() string
}

// Merge flattens the given tool sets into a name-keyed tool map.
// Later sets win on name collision.
func Merge(ctx context.Context, sets ...ToolSet) map[string]Tool {
	tools := make(map[string]Tool)
	for _, set := range sets {
		for _, t := range set.Tools(ctx) {
			tools[t.Declaration().Name] = t
		}
	}
	return tools
}
