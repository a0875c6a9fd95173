//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import "errors"

// Default terminal labels. A condition or fixed edge resolving to one
// of these ends the run successfully.
const (
	LabelDone   = "done"
	LabelEnd    = "end"
	LabelFinish = "finish"
)

// Workflow is a fluent builder for executable graphs. Add nodes and
// edges, set the entry point, then Compile. Configuration mistakes are
// collected while building and reported together by Compile, so the
// chained calls never need individual error checks.
//
// Example:
//
//	g, err := workflow.New("code_review_loop").
//		AddNode("spec", specNode).
//		AddNode("implement", implNode).
//		AddNode("review", reviewNode).
//		AddEdge("spec", "implement").
//		AddEdge("implement", "review").
//		AddConditionalEdge("review", routeOnPassed, nil).
//		SetEntry("spec").
//		Compile()
type Workflow struct {
	name         string
	nodes        map[string]Node
	order        []string
	edges        []fixedEdge
	conditionals []conditionalEdge
	entry        string
	finish       map[string]struct{}
	buildErrs    []error
}

type fixedEdge struct {
	from string
	to   string
}

type conditionalEdge struct {
	from      string
	condition Condition
	targets   map[string]string
}

// New creates a workflow builder with the given name. The default
// terminal labels are "done", "end" and "finish".
func New(name string) *Workflow {
	return &Workflow{
		name:  name,
		nodes: make(map[string]Node),
		finish: map[string]struct{}{
			LabelDone:   {},
			LabelEnd:    {},
			LabelFinish: {},
		},
	}
}

// Name returns the workflow name.
func (w *Workflow) Name() string { return w.name }

// AddNode registers a node under a unique name.
func (w *Workflow) AddNode(name string, node Node) *Workflow {
	if name == "" {
		w.buildErrs = append(w.buildErrs, NewConfigError("node name cannot be empty"))
		return w
	}
	if node == nil {
		w.buildErrs = append(w.buildErrs, NewConfigError("node %s is nil", name))
		return w
	}
	if _, exists := w.nodes[name]; exists {
		w.buildErrs = append(w.buildErrs, NewConfigError("duplicate node name: %s", name))
		return w
	}
	w.nodes[name] = node
	w.order = append(w.order, name)
	return w
}

// AddNodeFunc registers a plain function as a node.
func (w *Workflow) AddNodeFunc(name string, fn NodeFunc) *Workflow {
	return w.AddNode(name, fn)
}

// AddEdge adds a fixed edge. The target may be a node name or a
// terminal label.
func (w *Workflow) AddEdge(from, to string) *Workflow {
	w.edges = append(w.edges, fixedEdge{from: from, to: to})
	return w
}

// AddConditionalEdge adds dynamic routing from a node. After the node
// executes, condition is called with the merged state; its result is
// remapped through targets when provided, then treated as a terminal
// label or the next node name.
func (w *Workflow) AddConditionalEdge(from string, condition Condition, targets map[string]string) *Workflow {
	if condition == nil {
		w.buildErrs = append(w.buildErrs, NewConfigError("conditional edge from %s has a nil condition", from))
		return w
	}
	w.conditionals = append(w.conditionals, conditionalEdge{
		from:      from,
		condition: condition,
		targets:   targets,
	})
	return w
}

// SetEntry sets the entry point node.
func (w *Workflow) SetEntry(name string) *Workflow {
	if w.entry != "" && w.entry != name {
		w.buildErrs = append(w.buildErrs, NewConfigError(
			"entry point already set to %s, cannot set to %s", w.entry, name))
		return w
	}
	w.entry = name
	return w
}

// SetFinish replaces the set of terminal labels.
func (w *Workflow) SetFinish(labels ...string) *Workflow {
	if len(labels) == 0 {
		w.buildErrs = append(w.buildErrs, NewConfigError("at least one terminal label is required"))
		return w
	}
	w.finish = make(map[string]struct{}, len(labels))
	for _, label := range labels {
		w.finish[label] = struct{}{}
	}
	return w
}

// Compile validates the configuration and returns an immutable Graph.
// All validation happens here, before any node executes.
func (w *Workflow) Compile() (*Graph, error) {
	errs := append([]error{}, w.buildErrs...)

	if len(w.nodes) == 0 {
		errs = append(errs, NewConfigError("workflow %s has no nodes", w.name))
	}
	if w.entry == "" {
		errs = append(errs, NewConfigError("workflow %s has no entry point", w.name))
	} else if _, ok := w.nodes[w.entry]; !ok {
		errs = append(errs, NewConfigError("entry point %s is not a declared node", w.entry))
	}

	fixed := make(map[string]string, len(w.edges))
	for _, e := range w.edges {
		if _, ok := w.nodes[e.from]; !ok {
			errs = append(errs, NewConfigError("edge source %s is not a declared node", e.from))
			continue
		}
		if !w.isTarget(e.to) {
			errs = append(errs, NewConfigError(
				"edge target %s is neither a declared node nor a terminal label", e.to))
			continue
		}
		if prev, dup := fixed[e.from]; dup {
			errs = append(errs, NewConfigError(
				"node %s has two fixed edges (to %s and %s)", e.from, prev, e.to))
			continue
		}
		fixed[e.from] = e.to
	}

	conds := make(map[string]conditionalEdge, len(w.conditionals))
	for _, c := range w.conditionals {
		if _, ok := w.nodes[c.from]; !ok {
			errs = append(errs, NewConfigError("conditional edge source %s is not a declared node", c.from))
			continue
		}
		if _, dup := conds[c.from]; dup {
			errs = append(errs, NewConfigError("node %s has two conditional edges", c.from))
			continue
		}
		for label, target := range c.targets {
			if !w.isTarget(target) {
				errs = append(errs, NewConfigError(
					"conditional edge from %s maps label %s to unknown target %s", c.from, label, target))
			}
		}
		conds[c.from] = c
	}

	for from := range conds {
		if to, both := fixed[from]; both {
			errs = append(errs, NewConfigError(
				"node %s has both a fixed edge (to %s) and a conditional edge", from, to))
		}
	}

	if err := checkFixedCycles(fixed, w.nodes); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	finish := make(map[string]struct{}, len(w.finish))
	for label := range w.finish {
		finish[label] = struct{}{}
	}
	return &Graph{
		name:   w.name,
		nodes:  w.nodes,
		order:  append([]string{}, w.order...),
		fixed:  fixed,
		conds:  conds,
		entry:  w.entry,
		finish: finish,
	}, nil
}

// MustCompile is like Compile but panics on configuration errors.
// Intended for statically known graphs such as the built-in presets.
func (w *Workflow) MustCompile() *Graph {
	g, err := w.Compile()
	if err != nil {
		panic(err)
	}
	return g
}

func (w *Workflow) isTarget(name string) bool {
	if _, ok := w.nodes[name]; ok {
		return true
	}
	_, ok := w.finish[name]
	return ok
}

// checkFixedCycles rejects cycles made of fixed edges alone. Loops must
// route through a conditional edge so the executor's iteration bound
// can stop them.
func checkFixedCycles(fixed map[string]string, nodes map[string]Node) error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	colors := make(map[string]int, len(nodes))
	var visit func(name string) bool
	visit = func(name string) bool {
		if _, ok := nodes[name]; !ok {
			return false // terminal label, cannot continue a cycle
		}
		switch colors[name] {
		case visiting:
			return true
		case visited:
			return false
		}
		colors[name] = visiting
		if to, ok := fixed[name]; ok && visit(to) {
			return true
		}
		colors[name] = visited
		return false
	}
	for name := range nodes {
		if visit(name) {
			return NewConfigError(
				"fixed edges form a cycle through %s; loops must use a conditional edge", name)
		}
	}
	return nil
}
