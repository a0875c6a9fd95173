//
// Tencent is pleased to support the open source community by making trpc-workflow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-workflow-go is licensed under the Apache License Version 2.0.
//
//

// Package tool contains internal helpers shared by tool implementations.
package tool

import (
	"reflect"
	"strings"

	"trpc.group/trpc-go/trpc-workflow-go/tool"
)

// GenerateJSONSchema generates a basic JSON schema from a reflect.Type.
// Struct fields are mapped through their json tags; pointer fields and
// fields tagged omitempty are treated as optional.
func GenerateJSONSchema(t reflect.Type) *tool.Schema {
	if t == nil {
		return &tool.Schema{Type: "object"}
	}
	switch t.Kind() {
	case reflect.Ptr:
		return GenerateJSONSchema(t.Elem())
	case reflect.Struct:
		schema := &tool.Schema{Type: "object"}
		properties := map[string]*tool.Schema{}
		required := make([]string, 0)
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, omitEmpty, skip := parseJSONTag(field)
			if skip {
				continue
			}
			properties[name] = generateFieldSchema(field.Type)
			if field.Type.Kind() != reflect.Ptr && !omitEmpty {
				required = append(required, name)
			}
		}
		schema.Properties = properties
		if len(required) > 0 {
			schema.Required = required
		}
		return schema
	default:
		return generateFieldSchema(t)
	}
}

// parseJSONTag resolves the effective field name from the json tag.
func parseJSONTag(field reflect.StructField) (name string, omitEmpty, skip bool) {
	name = field.Name
	jsonTag := field.Tag.Get("json")
	if jsonTag == "-" {
		return "", false, true
	}
	if jsonTag == "" {
		return name, false, false
	}
	if commaIdx := strings.Index(jsonTag, ","); commaIdx != -1 {
		if jsonTag[:commaIdx] != "" {
			name = jsonTag[:commaIdx]
		}
		omitEmpty = strings.Contains(jsonTag[commaIdx:], "omitempty")
	} else {
		name = jsonTag
	}
	return name, omitEmpty, false
}

// generateFieldSchema generates a schema for a specific field type.
func generateFieldSchema(t reflect.Type) *tool.Schema {
	switch t.Kind() {
	case reflect.String:
		return &tool.Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &tool.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &tool.Schema{Type: "number"}
	case reflect.Bool:
		return &tool.Schema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &tool.Schema{
			Type:  "array",
			Items: generateFieldSchema(t.Elem()),
		}
	case reflect.Map:
		return &tool.Schema{
			Type:                 "object",
			AdditionalProperties: generateFieldSchema(t.Elem()),
		}
	case reflect.Ptr:
		return generateFieldSchema(t.Elem())
	case reflect.Struct:
		return GenerateJSONSchema(t)
	default:
		return &tool.Schema{Type: "object"}
	}
}
