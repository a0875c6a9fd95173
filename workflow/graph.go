//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

// Graph is the compiled, immutable form of a workflow. Create one with
// Workflow.Compile and run it with an Executor.
type Graph struct {
	name   string
	nodes  map[string]Node
	order  []string
	fixed  map[string]string
	conds  map[string]conditionalEdge
	entry  string
	finish map[string]struct{}
}

// Name returns the workflow name.
func (g *Graph) Name() string { return g.name }

// Entry returns the entry node name.
func (g *Graph) Entry() string { return g.entry }

// NodeNames returns the node names in declaration order.
func (g *Graph) NodeNames() []string {
	return append([]string{}, g.order...)
}

func (g *Graph) node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

func (g *Graph) fixedEdge(from string) (string, bool) {
	to, ok := g.fixed[from]
	return to, ok
}

func (g *Graph) conditionalEdge(from string) (conditionalEdge, bool) {
	c, ok := g.conds[from]
	return c, ok
}

func (g *Graph) isTerminal(label string) bool {
	_, ok := g.finish[label]
	return ok
}
