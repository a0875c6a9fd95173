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
	"sort"

	"trpc.group/trpc-go/trpc-workflow-go/tool"
	"trpc.group/trpc-go/trpc-workflow-go/tool/function"
)

// listFileRequest represents the input for the list file operation.
type listFileRequest struct {
	Path string `json:"path,omitempty"`
}

// listFileResponse represents the output from the list file operation.
type listFileResponse struct {
	BaseDirectory string   `json:"base_directory"`
	Path          string   `json:"path"`
	Folders       []string `json:"folders"`
	Files         []string `json:"files"`
	Message       string   `json:"message"`
}

// listFile performs the list file operation.
func (f *fileToolSet) listFile(_ context.Context, req *listFileRequest) (*listFileResponse, error) {
	rsp := &listFileResponse{
		BaseDirectory: f.baseDir,
		Path:          req.Path,
	}
	targetPath, err := f.resolvePath(req.Path)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: %v", err)
		return rsp, err
	}
	entries, err := os.ReadDir(targetPath)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: cannot list directory '%s': %v", req.Path, err)
		return rsp, fmt.Errorf("listing directory '%s': %w", req.Path, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			rsp.Folders = append(rsp.Folders, entry.Name())
		} else {
			rsp.Files = append(rsp.Files, entry.Name())
		}
	}
	sort.Strings(rsp.Folders)
	sort.Strings(rsp.Files)
	rsp.Message = fmt.Sprintf("Found %d folders and %d files", len(rsp.Folders), len(rsp.Files))
	return rsp, nil
}

// listFileTool returns a callable tool for listing directory contents.
func (f *fileToolSet) listFileTool() tool.CallableTool {
	return function.NewFunctionTool(
		f.listFile,
		function.WithName("list_file"),
		function.WithDescription("Lists the folders and files under 'path'. The 'path' parameter is a "+
			"relative path from the base directory; when omitted the base directory itself is listed."),
	)
}
