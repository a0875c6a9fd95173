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

	"trpc.group/trpc-go/trpc-workflow-go/tool"
	"trpc.group/trpc-go/trpc-workflow-go/tool/function"
)

// searchFileRequest represents the input for the search file operation.
type searchFileRequest struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
	// CaseSensitive controls pattern matching case sensitivity, default false.
	CaseSensitive bool `json:"case_sensitive,omitempty"`
}

// searchFileResponse represents the output from the search file operation.
type searchFileResponse struct {
	BaseDirectory string   `json:"base_directory"`
	Pattern       string   `json:"pattern"`
	Files         []string `json:"files"`
	Message       string   `json:"message"`
}

// searchFile performs the search file operation using doublestar glob
// patterns (e.g. "**/*.go").
func (f *fileToolSet) searchFile(_ context.Context, req *searchFileRequest) (*searchFileResponse, error) {
	rsp := &searchFileResponse{
		BaseDirectory: f.baseDir,
		Pattern:       req.Pattern,
	}
	targetPath, err := f.resolvePath(req.Path)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: %v", err)
		return rsp, err
	}
	files, err := f.matchFiles(targetPath, req.Pattern, req.CaseSensitive)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: %v", err)
		return rsp, err
	}
	rsp.Files = files
	if len(files) == 0 {
		rsp.Message = fmt.Sprintf("No files matching '%s'", req.Pattern)
	} else {
		rsp.Message = fmt.Sprintf("Found %d files matching '%s'", len(files), req.Pattern)
	}
	return rsp, nil
}

// searchFileTool returns a callable tool for finding files by glob pattern.
func (f *fileToolSet) searchFileTool() tool.CallableTool {
	return function.NewFunctionTool(
		f.searchFile,
		function.WithName("search_file"),
		function.WithDescription("Searches for files matching the glob 'pattern' (e.g., '*.go', "+
			"'**/*.json') under 'path'. The 'path' parameter is a relative path from the base "+
			"directory; when omitted the base directory is searched. Matching is case-insensitive "+
			"unless 'case_sensitive' is true."),
	)
}
