//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package trace provides tracing hooks for workflow execution.
// It integrates with OpenTelemetry; by default a no-op tracer is installed
// so tracing adds no overhead unless a provider is configured.
package trace

import (
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// instrumentationName identifies spans produced by this module.
const instrumentationName = "trpc.group/trpc-go/trpc-workflow-go"

// TracerProvider is the provider used to create the package Tracer.
var TracerProvider trace.TracerProvider = noop.NewTracerProvider()

// Tracer is the tracer used by the workflow executor.
var Tracer trace.Tracer = TracerProvider.Tracer(instrumentationName)

// SetTracerProvider installs a tracer provider. Call before building
// executors; spans started afterwards use the new provider.
func SetTracerProvider(tp trace.TracerProvider) {
	TracerProvider = tp
	Tracer = tp.Tracer(instrumentationName)
}
