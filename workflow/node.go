//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import "context"

// Node is a named unit of work. Execute receives a snapshot of the
// current state and returns only the keys it sets; the executor merges
// the returned partial state into the run state. Nodes must tolerate
// re-invocation when a graph cycle routes back to them.
type Node interface {
	Execute(ctx context.Context, state State) (State, error)
}

// NodeFunc adapts a plain function to the Node interface.
type NodeFunc func(ctx context.Context, state State) (State, error)

// Execute calls f.
func (f NodeFunc) Execute(ctx context.Context, state State) (State, error) {
	return f(ctx, state)
}

// Condition routes after a node executes. It receives the merged state
// and returns either a terminal label or the next routing label, which
// is remapped through the edge's target map when one is configured.
type Condition func(ctx context.Context, state State) (string, error)
