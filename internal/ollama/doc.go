// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// Only the non-streaming /api/chat endpoint is used. The Format field of
// ChatRequest carries either the literal "json" or a JSON schema object, which
// constrains the model to emit a matching document.
//
// # Usage
//
//	client := ollama.NewClientWithConfig(ollama.DefaultConfig())
//	resp, err := client.Chat(ctx, ollama.ChatRequest{
//	    Model:    "qwen2.5:7b",
//	    Messages: []ollama.Message{ollama.NewUserMessage("Hello")},
//	    Options:  &ollama.Options{Temperature: 0.1},
//	})
package ollama
