// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// =============================================================================
// OPENROUTER TESTS
// =============================================================================

func TestOpenRouterChat_NotConfigured(t *testing.T) {
	client := NewOpenRouterClient("   ")

	_, err := client.Chat(context.Background(), ChatRequest{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOpenRouterChat_SendsSchemaAndHeaders(t *testing.T) {
	var got ChatRequest
	var auth, title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		title = r.Header.Get("X-Title")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "gen-1",
			"model": "openai/gpt-4o-mini",
			"choices": [{
				"message": {"role": "assistant", "content": "REASONABLE"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 1, "total_tokens": 11}
		}`))
	}))
	defer server.Close()

	temp := 0.1
	client := NewOpenRouterClient("sk-or-test").
		WithBaseURL(server.URL + "/").
		WithSiteName("WhitePrint AI")
	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages:    []ChatMessage{NewUserMessage("classify")},
		Temperature: &temp,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   "floor_plan",
				Strict: true,
				Schema: json.RawMessage(`{"type":"object"}`),
			},
		},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if resp.GetContent() != "REASONABLE" {
		t.Errorf("GetContent() = %q", resp.GetContent())
	}
	if auth != "Bearer sk-or-test" {
		t.Errorf("Authorization = %q", auth)
	}
	if title != "WhitePrint AI" {
		t.Errorf("X-Title = %q", title)
	}
	if got.Model != DefaultOpenRouterModel {
		t.Errorf("model = %q, want default", got.Model)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.JSONSchema.Name != "floor_plan" {
		t.Errorf("response_format = %+v", got.ResponseFormat)
	}
	if got.Temperature == nil || *got.Temperature != 0.1 {
		t.Errorf("temperature = %v", got.Temperature)
	}
}

func TestOpenRouterChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"No auth credentials found"}}`, ErrAuthFailed},
		{"credits", http.StatusPaymentRequired, `{"error":{"code":402,"message":"Insufficient credits"}}`, ErrInsufficientCredits},
		{"not found", http.StatusNotFound, `{"error":{"code":404,"message":"No endpoints found"}}`, ErrModelNotFound},
		{"rate limited", http.StatusTooManyRequests, `not json`, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewOpenRouterClient("sk-or-test").WithBaseURL(server.URL)
			_, err := client.Chat(context.Background(), ChatRequest{})

			if !errors.Is(err, tt.want) {
				t.Errorf("Chat() error = %v, want %v", err, tt.want)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Status != tt.status {
				t.Errorf("expected *APIError with status %d, got %v", tt.status, err)
			}
		})
	}
}

func TestOpenRouterChat_NoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenRouterClient("sk-or-test").WithBaseURL(server.URL)
	_, _ = client.Chat(context.Background(), ChatRequest{})

	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

func TestOpenRouterChat_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenRouterClient("sk-or-test").WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), ChatRequest{})

	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

// =============================================================================
// GEMINI TESTS
// =============================================================================

func TestGeminiGenerateContent(t *testing.T) {
	var got GenerateRequest
	var key, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "{\"doors\":"}, {"text": "[]}"}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 5, "candidatesTokenCount": 3, "totalTokenCount": 8}
		}`))
	}))
	defer server.Close()

	temp := 0.1
	client := NewGeminiClient("AIza-test").WithBaseURL(server.URL).WithModel("models/gemini-2.5-flash")
	resp, err := client.GenerateContent(context.Background(), GenerateRequest{
		Contents: []GeminiContent{NewTextContent("place doors")},
		GenerationConfig: &GenerationConfig{
			Temperature:        &temp,
			ResponseMimeType:   "application/json",
			ResponseJSONSchema: json.RawMessage(`{"type":"object"}`),
		},
	})
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	if resp.Text() != `{"doors":[]}` {
		t.Errorf("Text() = %q", resp.Text())
	}
	if path != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", path)
	}
	if key != "AIza-test" {
		t.Errorf("api key header = %q", key)
	}
	if got.GenerationConfig == nil || got.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("generationConfig = %+v", got.GenerationConfig)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "place doors" {
		t.Errorf("contents = %+v", got.Contents)
	}
}

func TestGeminiGenerateContent_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"bad key", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`, ErrAuthFailed},
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"Resource exhausted","status":"RESOURCE_EXHAUSTED"}}`, ErrRateLimited},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, ErrBlocked},
		{"empty", http.StatusOK, `{"candidates":[]}`, ErrNoCandidates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewGeminiClient("AIza-test").WithBaseURL(server.URL)
			_, err := client.GenerateContent(context.Background(), GenerateRequest{})

			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGeminiGenerateContent_NotConfigured(t *testing.T) {
	_, err := NewGeminiClient("").GenerateContent(context.Background(), GenerateRequest{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAPIError_Message(t *testing.T) {
	err := handleErrorResponse("Gemini", http.StatusBadRequest,
		[]byte(`{"error":{"code":400,"message":"Invalid JSON payload","status":"INVALID_ARGUMENT"}}`))

	msg := err.Error()
	if !strings.Contains(msg, "INVALID_ARGUMENT") || !strings.Contains(msg, "Invalid JSON payload") {
		t.Errorf("Error() = %q", msg)
	}
	if errors.Unwrap(err) != nil {
		t.Errorf("400 should not map to a sentinel, got %v", errors.Unwrap(err))
	}
}
