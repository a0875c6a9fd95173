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

	"trpc.group/trpc-go/trpc-workflow-go/model"
)

// CodeReviewConfig configures the built-in spec, implement, review
// pipeline. Each stage may use a different model.
type CodeReviewConfig struct {
	SpecModel     model.Model
	ImplModel     model.Model
	ReviewModel   model.Model
	PassThreshold int
}

// NewCodeReviewWorkflow builds the preset pipeline: write a spec,
// implement it, review the result, and loop back to the implementer
// until the review passes its threshold.
func NewCodeReviewWorkflow(cfg CodeReviewConfig) *Workflow {
	threshold := cfg.PassThreshold
	if threshold <= 0 {
		threshold = 90
	}
	return New("spec_implement_review").
		AddNode("spec", NewSpecWriterNode(cfg.SpecModel)).
		AddNode("implement", NewImplementerNode(cfg.ImplModel)).
		AddNode("review", NewReviewerNode(cfg.ReviewModel, WithPassThreshold(threshold))).
		AddEdge("spec", "implement").
		AddEdge("implement", "review").
		AddConditionalEdge("review", RouteOnPassed, nil).
		SetEntry("spec").
		SetFinish(LabelDone)
}

// RouteOnPassed routes to the terminal "done" label when the review
// passed, otherwise back to the implementer.
func RouteOnPassed(_ context.Context, state State) (string, error) {
	if state.Bool(StateKeyPassed) {
		return LabelDone, nil
	}
	return "implement", nil
}
