//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		SetLevel(tt.level)
		assert.Equal(t, tt.want, zapLevel.Level(), "level %q", tt.level)
	}
	SetLevel(LevelInfo)
}

type captureLogger struct {
	Logger
	messages []string
}

func (c *captureLogger) Infof(format string, args ...any) {
	c.messages = append(c.messages, format)
}

func TestDefaultIsSwappable(t *testing.T) {
	orig := Default
	defer func() { Default = orig }()

	capture := &captureLogger{}
	Default = capture

	Infof("hello %s", "world")
	assert.Equal(t, []string{"hello %s"}, capture.messages)
}
