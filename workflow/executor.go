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
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-workflow-go/handoff"
	"trpc.group/trpc-go/trpc-workflow-go/log"
	"trpc.group/trpc-go/trpc-workflow-go/telemetry/trace"
)

// Status is the terminal state of a run.
type Status string

// Run outcomes.
const (
	// StatusCompleted means traversal reached a terminal label.
	StatusCompleted Status = "completed"
	// StatusFailed means a node or condition returned an error.
	StatusFailed Status = "failed"
	// StatusHalted means the iteration bound stopped a loop. This is a
	// designed stop, not an error; the merged state is still returned.
	StatusHalted Status = "halted"
)

// defaultMaxSteps caps total node invocations as a backstop against
// conditions that never terminate without advancing the iteration field.
const defaultMaxSteps = 100

// RunRecorder persists workflow steps. *handoff.Run implements it; any
// other sink can be plugged in for tests or alternative storage.
type RunRecorder interface {
	Initialize(initial map[string]any) error
	RecordStep(node string, input, output map[string]any, duration time.Duration, errMsg string) (*handoff.Handoff, error)
	Complete(final map[string]any) error
	Fail(errMsg string) error
}

// Result is the outcome of a run.
type Result struct {
	// Status reports how the run ended.
	Status Status
	// State is the final merged state.
	State State
	// Err is the node or routing error when Status is StatusFailed.
	Err error
	// Steps is the number of node invocations performed.
	Steps int
	// InvocationID uniquely identifies this execution.
	InvocationID string
	// PersistErrs collects persistence failures that were tolerated
	// because strict persistence was not enabled.
	PersistErrs []error
}

// Executor drives a compiled graph. Execution is strictly sequential
// and single-flight: an Executor runs one traversal at a time.
type Executor struct {
	graph         *Graph
	recorder      RunRecorder
	strictPersist bool
	maxSteps      int
	maxIterations int

	mu sync.Mutex
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRecorder enables durable persistence of every step.
func WithRecorder(recorder RunRecorder) ExecutorOption {
	return func(e *Executor) {
		e.recorder = recorder
	}
}

// WithStrictPersistence makes persistence failures abort the run
// instead of being logged and collected on the Result.
func WithStrictPersistence(strict bool) ExecutorOption {
	return func(e *Executor) {
		e.strictPersist = strict
	}
}

// WithMaxSteps overrides the backstop cap on total node invocations.
func WithMaxSteps(maxSteps int) ExecutorOption {
	return func(e *Executor) {
		e.maxSteps = maxSteps
	}
}

// WithMaxIterations sets the iteration bound seeded into runs whose
// initial state does not carry one.
func WithMaxIterations(maxIterations int) ExecutorOption {
	return func(e *Executor) {
		e.maxIterations = maxIterations
	}
}

// NewExecutor creates an executor for a compiled graph.
func NewExecutor(graph *Graph, opts ...ExecutorOption) (*Executor, error) {
	if graph == nil {
		return nil, NewConfigError("graph cannot be nil")
	}
	e := &Executor{
		graph:         graph,
		maxSteps:      defaultMaxSteps,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxSteps <= 0 {
		e.maxSteps = defaultMaxSteps
	}
	if e.maxIterations <= 0 {
		e.maxIterations = DefaultMaxIterations
	}
	return e, nil
}

// Execute runs the graph from its entry node against the initial state.
// Node failures are reported on the Result, not the error return; the
// error return is reserved for persistence failures under strict
// persistence and for context cancellation.
func (e *Executor) Execute(ctx context.Context, initial State) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.seedState(initial)
	result := &Result{
		InvocationID: uuid.New().String(),
		State:        state,
	}

	ctx, span := trace.Tracer.Start(ctx, "workflow.execute",
		oteltrace.WithAttributes(
			attribute.String("workflow.name", e.graph.Name()),
			attribute.String("workflow.invocation_id", result.InvocationID),
		))
	defer span.End()

	log.Infof("Workflow %s starting (invocation %s)", e.graph.Name(), result.InvocationID)

	if err := e.persist(result, "initialize run", func() error {
		return e.recorder.Initialize(state)
	}); err != nil {
		return nil, err
	}

	current := e.graph.Entry()
	for {
		if err := ctx.Err(); err != nil {
			e.finalizeFail(result, err)
			return nil, err
		}
		if result.Steps >= e.maxSteps {
			log.Warnf("Workflow %s stopped after %d steps", e.graph.Name(), result.Steps)
			return e.finalizeHalt(result)
		}

		node, ok := e.graph.node(current)
		if !ok {
			return e.finalizeNodeErr(result, &NodeError{
				Node: current,
				Err:  fmt.Errorf("routing reached unknown node %q", current),
			})
		}

		input := snapshotInput(state)
		update, duration, err := e.invoke(ctx, current, node, state)
		result.Steps++
		if err != nil {
			nodeErr := &NodeError{Node: current, Err: err}
			if perr := e.persist(result, "record failing step", func() error {
				_, rerr := e.recorder.RecordStep(current, input, map[string]any{}, duration, err.Error())
				return rerr
			}); perr != nil {
				return nil, perr
			}
			return e.finalizeNodeErr(result, nodeErr)
		}

		for k, v := range update {
			state[k] = v
		}
		if err := e.persist(result, "record step", func() error {
			_, rerr := e.recorder.RecordStep(current, input, update, duration, "")
			return rerr
		}); err != nil {
			return nil, err
		}

		next, terminal, err := e.route(ctx, current, state)
		if err != nil {
			return e.finalizeNodeErr(result, &NodeError{Node: current, Err: err})
		}
		if terminal {
			return e.finalizeComplete(result)
		}
		// The iteration bound gates loop-back routing. Loops can only be
		// formed through conditional edges (Compile rejects fixed-edge
		// cycles), so fixed hops proceed unchecked.
		if _, viaCond := e.graph.conditionalEdge(current); viaCond {
			if state.Int(StateKeyIteration, 0) >= state.Int(StateKeyMaxIterations, DefaultMaxIterations) {
				log.Warnf("Workflow %s reached max iterations (%d)",
					e.graph.Name(), state.Int(StateKeyMaxIterations, DefaultMaxIterations))
				return e.finalizeHalt(result)
			}
		}
		current = next
	}
}

// invoke runs one node inside its own span and times it.
func (e *Executor) invoke(ctx context.Context, name string, node Node, state State) (State, time.Duration, error) {
	ctx, span := trace.Tracer.Start(ctx, "workflow.node",
		oteltrace.WithAttributes(attribute.String("workflow.node", name)))
	defer span.End()

	start := time.Now()
	update, err := node.Execute(ctx, state.Clone())
	return update, time.Since(start), err
}

// route resolves the next node after current. terminal reports that the
// run is done.
func (e *Executor) route(ctx context.Context, current string, state State) (next string, terminal bool, err error) {
	if cond, ok := e.graph.conditionalEdge(current); ok {
		label, cerr := cond.condition(ctx, state)
		if cerr != nil {
			return "", false, fmt.Errorf("condition failed: %w", cerr)
		}
		if mapped, ok := cond.targets[label]; ok {
			label = mapped
		}
		if e.graph.isTerminal(label) {
			return "", true, nil
		}
		if _, ok := e.graph.node(label); !ok {
			return "", false, fmt.Errorf("condition routed to unknown target %q", label)
		}
		return label, false, nil
	}
	if to, ok := e.graph.fixedEdge(current); ok {
		if e.graph.isTerminal(to) {
			return "", true, nil
		}
		return to, false, nil
	}
	// No outgoing edge means the node is a natural finish point.
	return "", true, nil
}

func (e *Executor) finalizeComplete(result *Result) (*Result, error) {
	result.Status = StatusCompleted
	if err := e.persist(result, "complete run", func() error {
		return e.recorder.Complete(result.State)
	}); err != nil {
		return nil, err
	}
	log.Infof("Workflow %s completed after %d steps", e.graph.Name(), result.Steps)
	return result, nil
}

// finalizeHalt ends a run stopped by the iteration bound or the step
// cap. The manifest is finalized with the merged state; the in-memory
// status still distinguishes halted from completed.
func (e *Executor) finalizeHalt(result *Result) (*Result, error) {
	result.Status = StatusHalted
	if err := e.persist(result, "complete run", func() error {
		return e.recorder.Complete(result.State)
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Executor) finalizeNodeErr(result *Result, nodeErr *NodeError) (*Result, error) {
	result.Status = StatusFailed
	result.Err = nodeErr
	if err := e.persist(result, "fail run", func() error {
		return e.recorder.Fail(nodeErr.Error())
	}); err != nil {
		return nil, err
	}
	log.Errorf("Workflow %s failed: %v", e.graph.Name(), nodeErr)
	return result, nil
}

func (e *Executor) finalizeFail(result *Result, cause error) {
	result.Status = StatusFailed
	result.Err = cause
	if e.recorder != nil {
		if err := e.recorder.Fail(cause.Error()); err != nil {
			log.Warnf("Could not fail run: %v", err)
		}
	}
}

// persist runs a recorder operation, honoring the strict persistence
// setting. With a nil recorder it is a no-op.
func (e *Executor) persist(result *Result, op string, fn func() error) error {
	if e.recorder == nil {
		return nil
	}
	if err := fn(); err != nil {
		if e.strictPersist {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Warnf("Persistence failure (%s): %v", op, err)
		result.PersistErrs = append(result.PersistErrs, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// seedState overlays the caller's initial state on the engine defaults.
func (e *Executor) seedState(initial State) State {
	state := State{
		StateKeyIteration:     0,
		StateKeyMaxIterations: e.maxIterations,
		StateKeyMessages:      []any{},
		StateKeyFeedback:      "",
	}
	for k, v := range initial {
		state[k] = v
	}
	return state
}

// snapshotInput copies the state recorded as a step's input, leaving
// out the conversation history to keep handoff files small.
func snapshotInput(state State) map[string]any {
	input := make(map[string]any, len(state))
	for k, v := range state {
		if k == StateKeyMessages {
			continue
		}
		input[k] = v
	}
	return input
}
