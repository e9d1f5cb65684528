// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"fmt"

	"github.com/jeranaias/whiteprint/internal/cloud"
	"github.com/jeranaias/whiteprint/internal/config"
	"github.com/jeranaias/whiteprint/internal/ollama"
)

// OpenRouter attribution headers.
const (
	siteURL  = "https://github.com/jeranaias/whiteprint"
	siteName = "WhitePrint AI"
)

// newBackend picks the provider transport named by cfg.
func newBackend(cfg config.LLMConfig) (backend, error) {
	switch cfg.NormalizedProvider() {
	case config.ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, &Error{Provider: config.ProviderGoogle, Op: "configure",
				Err: fmt.Errorf("%w: set GOOGLE_API_KEY", cloud.ErrNotConfigured)}
		}
		c := cloud.NewGeminiClient(cfg.APIKey).
			WithBaseURL(cfg.BaseURL).
			WithModel(cfg.Model).
			WithTimeout(cfg.Timeout())
		return &geminiBackend{client: c, temperature: cfg.Temperature}, nil

	case config.ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, &Error{Provider: config.ProviderOpenRouter, Op: "configure",
				Err: fmt.Errorf("%w: set OPENROUTER_API_KEY", cloud.ErrNotConfigured)}
		}
		c := cloud.NewOpenRouterClient(cfg.APIKey).
			WithBaseURL(cfg.BaseURL).
			WithModel(cfg.Model).
			WithTimeout(cfg.Timeout()).
			WithSiteURL(siteURL).
			WithSiteName(siteName)
		return &openRouterBackend{client: c, temperature: cfg.Temperature}, nil

	case config.ProviderOllama:
		c := ollama.NewClientWithConfig(&ollama.ClientConfig{
			BaseURL:      cfg.BaseURL,
			Timeout:      cfg.Timeout(),
			DefaultModel: cfg.Model,
		})
		return &ollamaBackend{client: c, temperature: cfg.Temperature}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}

// =============================================================================
// GEMINI
// =============================================================================

type geminiBackend struct {
	client      *cloud.GeminiClient
	temperature float64
}

func (b *geminiBackend) name() string  { return config.ProviderGoogle }
func (b *geminiBackend) model() string { return b.client.Model() }

func (b *geminiBackend) preflight(context.Context) error { return nil }

func (b *geminiBackend) send(ctx context.Context, prompt string, shape *Shape) (string, error) {
	temp := b.temperature
	req := cloud.GenerateRequest{
		Contents:         []cloud.GeminiContent{cloud.NewTextContent(prompt)},
		GenerationConfig: &cloud.GenerationConfig{Temperature: &temp},
	}
	if shape != nil {
		schema, err := schemaJSON(shape.Schema)
		if err != nil {
			return "", err
		}
		req.GenerationConfig.ResponseMimeType = "application/json"
		req.GenerationConfig.ResponseJSONSchema = schema
	}

	resp, err := b.client.GenerateContent(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// =============================================================================
// OPENROUTER
// =============================================================================

type openRouterBackend struct {
	client      *cloud.OpenRouterClient
	temperature float64
}

func (b *openRouterBackend) name() string  { return config.ProviderOpenRouter }
func (b *openRouterBackend) model() string { return b.client.Model() }

func (b *openRouterBackend) preflight(context.Context) error { return nil }

func (b *openRouterBackend) send(ctx context.Context, prompt string, shape *Shape) (string, error) {
	temp := b.temperature
	req := cloud.ChatRequest{
		Messages:    []cloud.ChatMessage{cloud.NewUserMessage(prompt)},
		Temperature: &temp,
	}
	if shape != nil {
		schema, err := schemaJSON(shape.Schema)
		if err != nil {
			return "", err
		}
		req.ResponseFormat = &cloud.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: &cloud.JSONSchema{Name: shape.Name, Schema: schema},
		}
	}

	resp, err := b.client.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.GetContent(), nil
}

// =============================================================================
// OLLAMA
// =============================================================================

type ollamaBackend struct {
	client      *ollama.Client
	temperature float64
}

func (b *ollamaBackend) name() string  { return config.ProviderOllama }
func (b *ollamaBackend) model() string { return b.client.Config().DefaultModel }

func (b *ollamaBackend) preflight(ctx context.Context) error {
	return b.client.CheckRunning(ctx)
}

func (b *ollamaBackend) send(ctx context.Context, prompt string, shape *Shape) (string, error) {
	req := ollama.ChatRequest{
		Messages: []ollama.Message{ollama.NewUserMessage(prompt)},
		Options:  &ollama.Options{Temperature: b.temperature},
	}
	if shape != nil {
		format, err := ollama.SchemaFormat(shape.Schema)
		if err != nil {
			return "", err
		}
		req.Format = format
	}

	resp, err := b.client.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}
