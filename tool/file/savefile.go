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

	"trpc.group/trpc-go/trpc-workflow-go/tool"
	"trpc.group/trpc-go/trpc-workflow-go/tool/function"
)

// saveFileRequest represents the input for the save file operation.
type saveFileRequest struct {
	FileName string `json:"file_name"`
	Contents string `json:"contents"`
	// Overwrite controls whether an existing file may be replaced.
	Overwrite bool `json:"overwrite,omitempty"`
}

// saveFileResponse represents the output from the save file operation.
type saveFileResponse struct {
	BaseDirectory string `json:"base_directory"`
	FileName      string `json:"file_name"`
	Message       string `json:"message"`
}

// saveFile performs the save file operation. Parent directories are created
// as needed.
func (f *fileToolSet) saveFile(_ context.Context, req *saveFileRequest) (*saveFileResponse, error) {
	rsp := &saveFileResponse{
		BaseDirectory: f.baseDir,
		FileName:      req.FileName,
	}
	if req.FileName == "" {
		rsp.Message = "Error: file name cannot be empty"
		return rsp, fmt.Errorf("file name cannot be empty")
	}
	filePath, err := f.resolvePath(req.FileName)
	if err != nil {
		rsp.Message = fmt.Sprintf("Error: %v", err)
		return rsp, err
	}
	if !req.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			rsp.Message = fmt.Sprintf("Error: file '%s' already exists and overwrite is false", req.FileName)
			return rsp, fmt.Errorf("file '%s' already exists and overwrite is false", req.FileName)
		}
	}
	if err := os.MkdirAll(filepath.Dir(filePath), f.createDirMode); err != nil {
		rsp.Message = fmt.Sprintf("Error: cannot create directory: %v", err)
		return rsp, fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(req.Contents), f.createFileMode); err != nil {
		rsp.Message = fmt.Sprintf("Error: cannot write file: %v", err)
		return rsp, fmt.Errorf("writing file: %w", err)
	}
	rsp.Message = fmt.Sprintf("Successfully wrote %d bytes to %s", len(req.Contents), req.FileName)
	return rsp, nil
}

// saveFileTool returns a callable tool for saving a file.
func (f *fileToolSet) saveFileTool() tool.CallableTool {
	return function.NewFunctionTool(
		f.saveFile,
		function.WithName("save_file"),
		function.WithDescription("Writes 'contents' to the file 'file_name' and returns a status "+
			"message. The 'file_name' parameter is a relative path from the base directory. Parent "+
			"directories are created if needed. Set 'overwrite' to true to replace an existing file."),
	)
}
