// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// maxStructuredSize caps the size of a structured reply.
const maxStructuredSize = 1024 * 1024

// DecodeStructured parses a model reply as JSON, validates it against
// shape.Schema and decodes it into out. Markdown code fences around the
// document are tolerated.
func DecodeStructured(text string, shape Shape, out any) error {
	if len(text) > maxStructuredSize {
		return fmt.Errorf("response too large: %d bytes (max: %d)", len(text), maxStructuredSize)
	}

	text = StripCodeFence(text)
	if text == "" {
		return ErrEmptyResponse
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrSchemaMismatch, err)
	}

	if shape.Schema != nil {
		if err := shape.Schema.VisitJSON(doc, openapi3.MultiErrors()); err != nil {
			return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
		}
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return nil
}

// StripCodeFence removes a surrounding ``` or ```json fence and whitespace.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// schemaJSON renders a schema for a provider request body.
func schemaJSON(s *openapi3.Schema) (json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return data, nil
}
