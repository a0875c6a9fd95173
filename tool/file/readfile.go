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

	"trpc.group/trpc-go/trpc-workflow-go/tool"
	"trpc.group/trpc-go/trpc-workflow-go/tool/function"
)

// readFileRequest represents the input for the read file operation.
type readFileRequest struct {
	FileName string `json:"file_name"`
}

// readFileResponse represents the output from the read file operation.
type readFileResponse struct {
	BaseDirectory string `json:"base_directory"`
	FileName      string `json:"file_name"`
	Contents      string `json:"contents"`
	Message       string `json:"message"`
}

// readFile performs the read file operation.
func (f *fileToolSet) readFile(_ context.Context, req *readFileRequest) (*readFileResponse, error) {
	rsp := &readFileResponse{
		BaseDirectory: f.baseDir,
		FileName:      req.FileName,
	}
	filePath, err := f.resolvePath(req.FileName)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: %v", err)
		return rsp, err
	}
	stat, err := os.Stat(filePath)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: cannot access file '%s': %v", req.FileName, err)
		return rsp, fmt.Errorf("accessing file '%s': %w", req.FileName, err)
	}
	if stat.IsDir() {
		rsp.Message = fmt.Sprintf("Error: target path '%s' is a directory, not a file", req.FileName)
		return rsp, fmt.Errorf("target path '%s' is a directory, not a file", req.FileName)
	}
	if stat.Size() > f.maxFileSize {
		rsp.Message = fmt.Sprintf("Error: file size %d exceeds max file size %d", stat.Size(), f.maxFileSize)
		return rsp, fmt.Errorf("file size %d exceeds max file size %d", stat.Size(), f.maxFileSize)
	}
	contents, err := os.ReadFile(filePath)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: cannot read file: %v", err)
		return rsp, fmt.Errorf("reading file: %w", err)
	}
	rsp.Contents = string(contents)
	rsp.Message = fmt.Sprintf("Successfully read %s (%d bytes)", req.FileName, len(contents))
	return rsp, nil
}

// readFileTool returns a callable tool for reading a file.
func (f *fileToolSet) readFileTool() tool.CallableTool {
	return function.NewFunctionTool(
		f.readFile,
		function.WithName("read_file"),
		function.WithDescription("Reads the contents of the file 'file_name' and returns the contents "+
			"if successful. The 'file_name' parameter is a relative path from the base directory "+
			"(e.g., 'subdir/file.txt'). If 'file_name' points to a directory or does not exist, "+
			"returns an error."),
	)
}
