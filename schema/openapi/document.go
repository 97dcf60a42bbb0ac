package openapi

import (
	"fmt"
	"sort"
	"strings"
)

type documentBuilder struct {
	config    generatorConfig
	selection map[string]any
}

func newDocumentBuilder(config generatorConfig, selection map[string]any) *documentBuilder {
	return &documentBuilder{
		config:    config,
		selection: selection,
	}
}

func (b *documentBuilder) build() (map[string]any, error) {
	if b.selection == nil {
		return nil, fmt.Errorf("openapi: selection schema cannot be nil")
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   b.buildPaths(),
	}

	if name := strings.TrimSpace(b.config.rootComponent); name != "" {
		document["components"] = map[string]any{
			"schemas": map[string]any{
				name: b.selection,
			},
		}
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}

	return document, nil
}

func (b *documentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func (b *documentBuilder) requestSchema() map[string]any {
	if name := strings.TrimSpace(b.config.rootComponent); name != "" {
		return map[string]any{"$ref": "#/components/schemas/" + name}
	}
	return b.selection
}

func (b *documentBuilder) buildPaths() map[string]any {
	method := strings.ToLower(b.config.operation.Method)
	if method == "" {
		method = "post"
	}

	content := map[string]any{
		b.config.contentType: map[string]any{
			"schema": b.requestSchema(),
		},
	}

	responses := make(map[string]any, len(b.config.responses))
	statuses := make([]string, 0, len(b.config.responses))
	for status := range b.config.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		resp := b.config.responses[status]
		responses[status] = map[string]any{
			"description": resp.Description,
			"content": map[string]any{
				"text/plain": map[string]any{
					"schema": map[string]any{"type": "string"},
				},
			},
		}
	}

	operation := map[string]any{
		"operationId": b.config.operation.OperationID,
		"requestBody": map[string]any{
			"required": true,
			"content":  content,
		},
		"responses": responses,
	}
	if summary := strings.TrimSpace(b.config.operation.Summary); summary != "" {
		operation["summary"] = summary
	}

	return map[string]any{
		b.config.operation.Path: map[string]any{
			method: operation,
		},
	}
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if id, _ := operation["operationId"].(string); id == "" {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if _, ok := operation["requestBody"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing requestBody", method, pathKey)
			}
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
