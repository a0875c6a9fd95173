//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

package cli

import (
	"fmt"
	"io"

	"trpc.group/trpc-go/trpc-workflow-go/persona"
)

// ListPersonas prints the configured personas in a table.
func ListPersonas(w io.Writer, configPath string) error {
	personas, err := persona.Load(configPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%-12s %-20s %s\n", "Name", "Model", "System Prompt")
	for i := 0; i < 70; i++ {
		fmt.Fprint(w, "-")
	}
	fmt.Fprintln(w)
	for _, name := range persona.Names(personas) {
		p := personas[name]
		prompt := p.SystemPrompt
		if len(prompt) > 40 {
			prompt = prompt[:37] + "..."
		}
		fmt.Fprintf(w, "%-12s %-20s %s\n", p.Name, p.Backend+":"+p.Model, prompt)
	}
	return nil
}
