//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package file provides file operation tools for workflow nodes.
// The tool set supports saving, reading, listing and searching files under a
// configured base directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"trpc.group/trpc-go/trpc-workflow-go/tool"
)

const (
	// defaultBaseDir is the default base directory for file operations.
	defaultBaseDir = "."
	// defaultCreateDirMode is the default permission mode for directories (0755: rwxr-xr-x).
	defaultCreateDirMode = os.FileMode(0755)
	// defaultCreateFileMode is the default permission mode for files (0644: rw-r--r--).
	defaultCreateFileMode = os.FileMode(0644)
	// defaultMaxFileSize is the default maximum file size to read (1MB).
	defaultMaxFileSize = 1024 * 1024
)

// Option is a functional option for configuring the file tool set.
type Option func(*fileToolSet)

// WithBaseDir sets the base directory for file operations, default is the current directory.
func WithBaseDir(baseDir string) Option {
	return func(f *fileToolSet) {
		f.baseDir = baseDir
	}
}

// WithSaveFileEnabled enables or disables the save file tool, default is true.
func WithSaveFileEnabled(e bool) Option {
	return func(f *fileToolSet) {
		f.saveFileEnabled = e
	}
}

// WithReadFileEnabled enables or disables the read file tool, default is true.
func WithReadFileEnabled(e bool) Option {
	return func(f *fileToolSet) {
		f.readFileEnabled = e
	}
}

// WithListFileEnabled enables or disables the list file tool, default is true.
func WithListFileEnabled(e bool) Option {
	return func(f *fileToolSet) {
		f.listFileEnabled = e
	}
}

// WithSearchFileEnabled enables or disables the search file tool, default is true.
func WithSearchFileEnabled(e bool) Option {
	return func(f *fileToolSet) {
		f.searchFileEnabled = e
	}
}

// WithSearchContentEnabled enables or disables the search content tool, default is true.
func WithSearchContentEnabled(e bool) Option {
	return func(f *fileToolSet) {
		f.searchContentEnabled = e
	}
}

// WithCreateDirMode sets the permission mode for creating directories, default is 0755.
func WithCreateDirMode(m os.FileMode) Option {
	return func(f *fileToolSet) {
		f.createDirMode = m
	}
}

// WithCreateFileMode sets the permission mode for creating files, default is 0644.
func WithCreateFileMode(m os.FileMode) Option {
	return func(f *fileToolSet) {
		f.createFileMode = m
	}
}

// WithMaxFileSize sets the maximum file size to read, default is 1MB.
func WithMaxFileSize(s int64) Option {
	return func(f *fileToolSet) {
		f.maxFileSize = s
	}
}

// fileToolSet implements the ToolSet interface for file operations.
type fileToolSet struct {
	baseDir              string
	saveFileEnabled      bool
	readFileEnabled      bool
	listFileEnabled      bool
	searchFileEnabled    bool
	searchContentEnabled bool
	createDirMode        os.FileMode
	createFileMode       os.FileMode
	maxFileSize          int64
	tools                []tool.CallableTool
}

// Tools implements the ToolSet interface.
func (f *fileToolSet) Tools(ctx context.Context) []tool.CallableTool {
	return f.tools
}

// Close implements the ToolSet interface.
func (f *fileToolSet) Close() error {
	// No resources to clean up for file tools.
	return nil
}

// Name implements the ToolSet interface.
func (f *fileToolSet) Name() string {
	return "file"
}

// NewToolSet creates a new file operation tool set with the provided options.
func NewToolSet(opts ...Option) (tool.ToolSet, error) {
	f := &fileToolSet{
		baseDir:              defaultBaseDir,
		saveFileEnabled:      true,
		readFileEnabled:      true,
		listFileEnabled:      true,
		searchFileEnabled:    true,
		searchContentEnabled: true,
		createDirMode:        defaultCreateDirMode,
		createFileMode:       defaultCreateFileMode,
		maxFileSize:          defaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.baseDir = filepath.Clean(f.baseDir)
	stat, err := os.Stat(f.baseDir)
	if err != nil {
		return nil, fmt.Errorf("base directory '%s' does not exist: %w", f.baseDir, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("base directory '%s' is not a directory", f.baseDir)
	}
	var tools []tool.CallableTool
	if f.saveFileEnabled {
		tools = append(tools, f.saveFileTool())
	}
	if f.readFileEnabled {
		tools = append(tools, f.readFileTool())
	}
	if f.listFileEnabled {
		tools = append(tools, f.listFileTool())
	}
	if f.searchFileEnabled {
		tools = append(tools, f.searchFileTool())
	}
	if f.searchContentEnabled {
		tools = append(tools, f.searchContentTool())
	}
	f.tools = tools
	return f, nil
}

// resolvePath validates a path to prevent directory traversal,
// and resolves a relative path within the base directory.
func (f *fileToolSet) resolvePath(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) || strings.Contains(relativePath, "..") {
		return "", fmt.Errorf("invalid path - absolute paths and '..' are not allowed: %s", relativePath)
	}
	return filepath.Join(f.baseDir, relativePath), nil
}

// matchFiles matches files with the given pattern in the target path.
// It returns a list of relative paths, with "", "." and ".." filtered out.
func (f *fileToolSet) matchFiles(targetPath, pattern string, caseSensitive bool) ([]string, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}
	opts := []doublestar.GlobOption{}
	if !caseSensitive {
		opts = append(opts, doublestar.WithCaseInsensitive())
	}
	matches, err := doublestar.Glob(os.DirFS(targetPath), pattern, opts...)
	if err != nil {
		return nil, fmt.Errorf("searching files with pattern '%s': %w", pattern, err)
	}
	files := matches[:0]
	for _, match := range matches {
		if match == "" || match == "." || match == ".." {
			continue
		}
		files = append(files, match)
	}
	return files, nil
}
