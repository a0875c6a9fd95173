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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-workflow-go/tool"
	"trpc.group/trpc-go/trpc-workflow-go/tool/function"
)

// searchContentRequest represents the input for the search content operation.
type searchContentRequest struct {
	Text string `json:"text"`
	// Pattern limits the search to files matching the glob, default "**/*".
	Pattern string `json:"pattern,omitempty"`
	Path    string `json:"path,omitempty"`
	// CaseSensitive controls text matching case sensitivity, default false.
	CaseSensitive bool `json:"case_sensitive,omitempty"`
}

// contentMatch is a single matching line.
type contentMatch struct {
	FileName string `json:"file_name"`
	Line     int    `json:"line"`
	Text     string `json:"text"`
}

// searchContentResponse represents the output from the search content operation.
type searchContentResponse struct {
	BaseDirectory string         `json:"base_directory"`
	Text          string         `json:"text"`
	Matches       []contentMatch `json:"matches"`
	Message       string         `json:"message"`
}

// searchContent scans matching files line by line for the given text.
func (f *fileToolSet) searchContent(_ context.Context, req *searchContentRequest) (*searchContentResponse, error) {
	rsp := &searchContentResponse{
		BaseDirectory: f.baseDir,
		Text:          req.Text,
	}
	if req.Text == "" {
		rsp.Message = "Error: text cannot be empty"
		return rsp, fmt.Errorf("text cannot be empty")
	}
	targetPath, err := f.resolvePath(req.Path)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: %v", err)
		return rsp, err
	}
	pattern := req.Pattern
	if pattern == "" {
		pattern = "**/*"
	}
	files, err := f.matchFiles(targetPath, pattern, req.CaseSensitive)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: %v", err)
		return rsp, err
	}
	needle := req.Text
	if !req.CaseSensitive {
		needle = strings.ToLower(needle)
	}
	for _, name := range files {
		path := filepath.Join(targetPath, name)
		stat, err := os.Stat(path)
		if err != nil || stat.IsDir() || stat.Size() > f.maxFileSize {
			continue
		}
		contents, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(string(contents), "\n") {
			haystack := line
			if !req.CaseSensitive {
				haystack = strings.ToLower(line)
			}
			if strings.Contains(haystack, needle) {
				rsp.Matches = append(rsp.Matches, contentMatch{
					FileName: name,
					Line:     i + 1,
					Text:     line,
				})
			}
		}
	}
	if len(rsp.Matches) == 0 {
		rsp.Message = fmt.Sprintf("No matches for '%s'", req.Text)
	} else {
		rsp.Message = fmt.Sprintf("Found %d matching lines", len(rsp.Matches))
	}
	return rsp, nil
}

// searchContentTool returns a callable tool for searching file contents.
func (f *fileToolSet) searchContentTool() tool.CallableTool {
	return function.NewFunctionTool(
		f.searchContent,
		function.WithName("search_content"),
		function.WithDescription("Searches for lines containing 'text' in files matching the glob "+
			"'pattern' under 'path'. Returns the file name, line number and line text of each match. "+
			"Matching is case-insensitive unless 'case_sensitive' is true."),
	)
}
