// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"encoding/json"
	"time"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message in the conversation.
type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // The message content
}

// ChatRequest is the request body for /api/chat endpoint.
type ChatRequest struct {
	Model    string          `json:"model"`             // Model name (e.g., "qwen2.5:7b")
	Messages []Message       `json:"messages"`          // Conversation history
	Stream   bool            `json:"stream"`            // Always false for this client
	Format   json.RawMessage `json:"format,omitempty"`  // "json" or a JSON schema object
	Options  *Options        `json:"options,omitempty"` // Model parameters
}

// Options contains model parameters for inference.
type Options struct {
	Temperature float64 `json:"temperature"`       // 0.0-2.0; sent even when zero
	NumCtx      int     `json:"num_ctx,omitempty"` // Context window size
	Seed        int     `json:"seed,omitempty"`    // Random seed
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the response from /api/chat endpoint.
type ChatResponse struct {
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
	Message         Message   `json:"message"`
	Done            bool      `json:"done"`
	DoneReason      string    `json:"done_reason,omitempty"`
	TotalDuration   int64     `json:"total_duration,omitempty"`    // nanoseconds
	PromptEvalCount int       `json:"prompt_eval_count,omitempty"` // number of tokens in prompt
	EvalCount       int       `json:"eval_count,omitempty"`        // number of tokens generated
}

// OllamaError is the error body returned by the Ollama API.
type OllamaError struct {
	Error string `json:"error"`
}

// =============================================================================
// HELPERS
// =============================================================================

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// SchemaFormat builds a Format value from a JSON schema document.
func SchemaFormat(schema any) (json.RawMessage, error) {
	return json.Marshal(schema)
}
