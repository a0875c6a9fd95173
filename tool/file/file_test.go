//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-workflow-go/tool"
)

func newTestToolSet(t *testing.T) (tool.ToolSet, string) {
	t.Helper()
	baseDir := t.TempDir()
	ts, err := NewToolSet(WithBaseDir(baseDir))
	require.NoError(t, err)
	return ts, baseDir
}

func callTool(t *testing.T, ts tool.ToolSet, name string, args any) (any, error) {
	t.Helper()
	jsonArgs, err := json.Marshal(args)
	require.NoError(t, err)
	for _, ct := range ts.Tools(context.Background()) {
		if ct.Declaration().Name == name {
			return ct.Call(context.Background(), jsonArgs)
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil, nil
}

func TestNewToolSetValidatesBaseDir(t *testing.T) {
	_, err := NewToolSet(WithBaseDir(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)

	filePath := filepath.Join(t.TempDir(), "afile")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))
	_, err = NewToolSet(WithBaseDir(filePath))
	assert.Error(t, err)
}

func TestToolSetTools(t *testing.T) {
	ts, _ := newTestToolSet(t)
	var names []string
	for _, ct := range ts.Tools(context.Background()) {
		names = append(names, ct.Declaration().Name)
	}
	assert.ElementsMatch(t,
		[]string{"save_file", "read_file", "list_file", "search_file", "search_content"}, names)
	assert.Equal(t, "file", ts.Name())
	assert.NoError(t, ts.Close())
}

func TestSaveAndReadFile(t *testing.T) {
	ts, baseDir := newTestToolSet(t)

	result, err := callTool(t, ts, "save_file", map[string]any{
		"file_name": "sub/hello.txt",
		"contents":  "hello world",
	})
	require.NoError(t, err)
	saveRsp := result.(*saveFileResponse)
	assert.Contains(t, saveRsp.Message, "11 bytes")

	data, err := os.ReadFile(filepath.Join(baseDir, "sub", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	// Overwrite requires the flag.
	_, err = callTool(t, ts, "save_file", map[string]any{
		"file_name": "sub/hello.txt",
		"contents":  "changed",
	})
	assert.Error(t, err)
	_, err = callTool(t, ts, "save_file", map[string]any{
		"file_name": "sub/hello.txt",
		"contents":  "changed",
		"overwrite": true,
	})
	require.NoError(t, err)

	result, err = callTool(t, ts, "read_file", map[string]any{"file_name": "sub/hello.txt"})
	require.NoError(t, err)
	readRsp := result.(*readFileResponse)
	assert.Equal(t, "changed", readRsp.Contents)
}

func TestReadFileRejectsTraversal(t *testing.T) {
	ts, _ := newTestToolSet(t)
	_, err := callTool(t, ts, "read_file", map[string]any{"file_name": "../escape.txt"})
	assert.Error(t, err)
	_, err = callTool(t, ts, "read_file", map[string]any{"file_name": "/etc/passwd"})
	assert.Error(t, err)
}

func TestListFile(t *testing.T) {
	ts, baseDir := newTestToolSet(t)
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "dir1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "a.txt"), []byte("a"), 0644))

	result, err := callTool(t, ts, "list_file", map[string]any{})
	require.NoError(t, err)
	rsp := result.(*listFileResponse)
	assert.Equal(t, []string{"dir1"}, rsp.Folders)
	assert.Equal(t, []string{"a.txt", "b.txt"}, rsp.Files)
}

func TestSearchFile(t *testing.T) {
	ts, baseDir := newTestToolSet(t)
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "pkg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "main.go"), []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "pkg", "util.go"), []byte("package pkg"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "README.md"), []byte("# readme"), 0644))

	result, err := callTool(t, ts, "search_file", map[string]any{"pattern": "**/*.go"})
	require.NoError(t, err)
	rsp := result.(*searchFileResponse)
	assert.ElementsMatch(t, []string{"main.go", filepath.Join("pkg", "util.go")}, rsp.Files)

	result, err = callTool(t, ts, "search_file", map[string]any{"pattern": "*.rs"})
	require.NoError(t, err)
	rsp = result.(*searchFileResponse)
	assert.Empty(t, rsp.Files)
}

func TestSearchContent(t *testing.T) {
	ts, baseDir := newTestToolSet(t)
	content := "line one\nTODO: fix me\nline three"
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "notes.txt"), []byte(content), 0644))

	result, err := callTool(t, ts, "search_content", map[string]any{"text": "todo"})
	require.NoError(t, err)
	rsp := result.(*searchContentResponse)
	require.Len(t, rsp.Matches, 1)
	assert.Equal(t, "notes.txt", rsp.Matches[0].FileName)
	assert.Equal(t, 2, rsp.Matches[0].Line)

	result, err = callTool(t, ts, "search_content", map[string]any{
		"text":           "todo",
		"case_sensitive": true,
	})
	require.NoError(t, err)
	rsp = result.(*searchContentResponse)
	assert.Empty(t, rsp.Matches)
}

func TestMatchFilesEmptyPattern(t *testing.T) {
	baseDir := t.TempDir()
	ts, err := NewToolSet(WithBaseDir(baseDir))
	require.NoError(t, err)
	fts := ts.(*fileToolSet)
	_, err = fts.matchFiles(baseDir, "", false)
	assert.Error(t, err)
}
