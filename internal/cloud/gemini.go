// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultGeminiURL is the base URL for the Generative Language API.
	DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-2.5-flash"
)

// =============================================================================
// GEMINI TYPES
// =============================================================================

// GeminiPart is one piece of content. Only text parts are used.
type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

// GeminiContent is a turn in the conversation.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GenerationConfig controls sampling and output format.
type GenerationConfig struct {
	Temperature        *float64        `json:"temperature,omitempty"`
	MaxOutputTokens    int             `json:"maxOutputTokens,omitempty"`
	ResponseMimeType   string          `json:"responseMimeType,omitempty"`
	ResponseJSONSchema json.RawMessage `json:"responseJsonSchema,omitempty"`
}

// GenerateRequest is the body of a generateContent call.
type GenerateRequest struct {
	Contents          []GeminiContent   `json:"contents"`
	SystemInstruction *GeminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// GenerateResponse is the body returned by generateContent.
type GenerateResponse struct {
	Candidates []struct {
		Content      GeminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// Text concatenates the text parts of the first candidate.
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// NewTextContent builds a single-part user turn.
func NewTextContent(text string) GeminiContent {
	return GeminiContent{Role: "user", Parts: []GeminiPart{{Text: text}}}
}

// =============================================================================
// GEMINI CLIENT
// =============================================================================

// GeminiClient talks to the Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	model      string
}

// NewGeminiClient creates a client authenticated with a Google AI API key.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultGeminiURL,
		httpClient: newHTTPClient(DefaultTimeout),
		model:      DefaultGeminiModel,
	}
}

// WithBaseURL sets a custom base URL.
func (c *GeminiClient) WithBaseURL(url string) *GeminiClient {
	if url != "" {
		c.baseURL = strings.TrimRight(url, "/")
	}
	return c
}

// WithTimeout sets the HTTP timeout.
func (c *GeminiClient) WithTimeout(timeout time.Duration) *GeminiClient {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithModel sets the model name, with or without the "models/" prefix.
func (c *GeminiClient) WithModel(model string) *GeminiClient {
	if model != "" {
		c.model = strings.TrimPrefix(model, "models/")
	}
	return c
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// IsConfigured returns true if an API key is set.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// GenerateContent sends one generateContent request. It is never retried.
func (c *GeminiClient) GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	httpReq.Header.Del("x-goog-api-key")
	if err != nil {
		return nil, requestError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse("Gemini", resp.StatusCode, body)
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini: %w: %s", ErrBlocked, genResp.PromptFeedback.BlockReason)
	}
	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: %w", ErrNoCandidates)
	}

	return &genResp, nil
}
