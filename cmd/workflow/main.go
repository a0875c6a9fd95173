//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// The workflow command runs graph workflows against language model
// backends and inspects their persisted runs.
package main

func main() {
	Execute()
}
