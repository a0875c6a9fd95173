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
	"fmt"
	"sort"
	"strings"
)

// Visualize returns a text summary of the workflow's nodes and edges.
func (w *Workflow) Visualize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow: %s\n\n", w.name)

	b.WriteString("Nodes:\n")
	for _, name := range w.order {
		marker := ""
		if name == w.entry {
			marker = " (entry)"
		}
		fmt.Fprintf(&b, "  [%s]%s - %T\n", name, marker, w.nodes[name])
	}

	b.WriteString("\nEdges:\n")
	for _, e := range w.edges {
		fmt.Fprintf(&b, "  %s -> %s\n", e.from, e.to)
	}
	for _, c := range w.conditionals {
		fmt.Fprintf(&b, "  %s -> [%s] (conditional)\n", c.from, formatTargets(c.targets))
	}
	return b.String()
}

func formatTargets(targets map[string]string) string {
	if len(targets) == 0 {
		return "dynamic"
	}
	labels := make([]string, 0, len(targets))
	for label := range targets {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s->%s", label, targets[label]))
	}
	return strings.Join(parts, ", ")
}
