// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway is the single seam between whiteprint and a language model.
//
// A Gateway sends one prompt and returns either free text or a document
// decoded into a caller-supplied struct. Every call is attempted exactly once
// and bounded by the configured timeout. Callers receive a Gateway by
// injection; there is no package-level client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/jeranaias/whiteprint/internal/config"
	"github.com/jeranaias/whiteprint/internal/logging"
)

// Gateway completes prompts against a language model.
type Gateway interface {
	// Complete returns the model's free-text reply.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteStructured asks for a document matching shape and decodes the
	// reply into out, which must be a pointer.
	CompleteStructured(ctx context.Context, prompt string, shape Shape, out any) error

	// Preflight checks the provider can be reached before any prompt is sent.
	Preflight(ctx context.Context) error

	Provider() string
	Model() string
}

// Shape names and describes a structured reply.
type Shape struct {
	Name   string
	Schema *openapi3.Schema
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown LLM provider")

	// ErrEmptyResponse means the model returned no text.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrSchemaMismatch means a structured reply did not match its shape.
	ErrSchemaMismatch = errors.New("response does not match schema")
)

// Error wraps every failure surfaced by a Gateway with the provider and
// operation that produced it.
type Error struct {
	Provider string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// =============================================================================
// CLIENT
// =============================================================================

// backend is a provider transport. schema is nil for free-text completion.
type backend interface {
	name() string
	model() string
	preflight(ctx context.Context) error
	send(ctx context.Context, prompt string, shape *Shape) (string, error)
}

// Client is the Gateway implementation over a provider backend.
type Client struct {
	backend backend
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a Client for the provider named in cfg.
func New(cfg config.LLMConfig, logger *zap.Logger) (*Client, error) {
	b, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	return newClient(b, cfg.Timeout(), logger), nil
}

func newClient(b backend, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		backend: b,
		timeout: timeout,
		logger:  logging.OrNop(logger).With(zap.String("provider", b.name()), zap.String("model", b.model())),
	}
}

// Provider returns the canonical provider name.
func (c *Client) Provider() string {
	return c.backend.name()
}

// Model returns the model the client sends requests to.
func (c *Client) Model() string {
	return c.backend.model()
}

// Preflight implements Gateway. Hosted providers are checked lazily by the
// first call; a local Ollama server is probed here.
func (c *Client) Preflight(ctx context.Context) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.backend.preflight(ctx); err != nil {
		c.logger.Debug("preflight failed", zap.Error(err))
		return &Error{Provider: c.backend.name(), Op: "preflight", Err: err}
	}
	return nil
}

// Complete implements Gateway.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := c.call(ctx, "complete", prompt, nil)
	if err != nil {
		return "", err
	}
	return text, nil
}

// CompleteStructured implements Gateway.
func (c *Client) CompleteStructured(ctx context.Context, prompt string, shape Shape, out any) error {
	text, err := c.call(ctx, "complete "+shape.Name, prompt, &shape)
	if err != nil {
		return err
	}
	if err := DecodeStructured(text, shape, out); err != nil {
		return &Error{Provider: c.backend.name(), Op: "decode " + shape.Name, Err: err}
	}
	return nil
}

func (c *Client) call(ctx context.Context, op, prompt string, shape *Shape) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.backend.send(ctx, prompt, shape)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Debug("model call failed",
			zap.String("op", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", &Error{Provider: c.backend.name(), Op: op, Err: err}
	}

	c.logger.Debug("model call",
		zap.String("op", op),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("reply_bytes", len(text)),
		zap.Duration("elapsed", elapsed))

	if text == "" {
		return "", &Error{Provider: c.backend.name(), Op: op, Err: ErrEmptyResponse}
	}
	return text, nil
}
