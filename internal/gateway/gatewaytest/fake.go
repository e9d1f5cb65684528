// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gatewaytest provides a scripted in-memory Gateway for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jeranaias/whiteprint/internal/gateway"
)

// Reply is one scripted answer. Text is returned verbatim; when Value is set
// it is marshalled to JSON instead. Err fails the call.
type Reply struct {
	Text  string
	Value any
	Err   error
}

// Text scripts a free-text reply.
func Text(s string) Reply { return Reply{Text: s} }

// JSON scripts a structured reply from any JSON-marshalable value.
func JSON(v any) Reply { return Reply{Value: v} }

// Fail scripts a failed call.
func Fail(err error) Reply { return Reply{Err: err} }

// Call records one request the fake received.
type Call struct {
	Prompt string
	Shape  string // empty for Complete
}

// Fake answers calls from a queue of replies in order. A call with no
// scripted reply left returns an error.
type Fake struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call

	// PreflightErr is returned by Preflight.
	PreflightErr error
}

var _ gateway.Gateway = (*Fake)(nil)

// New returns a Fake that will answer with replies in order.
func New(replies ...Reply) *Fake {
	return &Fake{replies: replies}
}

// Calls returns a copy of the calls received so far.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Remaining returns how many scripted replies were not consumed.
func (f *Fake) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replies)
}

func (f *Fake) next(c Call) (Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if len(f.replies) == 0 {
		return Reply{}, fmt.Errorf("gatewaytest: unexpected call #%d (shape %q)", len(f.calls), c.Shape)
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func (r Reply) text() (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	if r.Value != nil {
		data, err := json.Marshal(r.Value)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return r.Text, nil
}

// Provider implements gateway.Gateway.
func (f *Fake) Provider() string { return "fake" }

// Model implements gateway.Gateway.
func (f *Fake) Model() string { return "fake-1" }

// Preflight implements gateway.Gateway. It records no call.
func (f *Fake) Preflight(context.Context) error {
	return f.PreflightErr
}

// Complete implements gateway.Gateway.
func (f *Fake) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := f.next(Call{Prompt: prompt})
	if err != nil {
		return "", err
	}
	text, err := r.text()
	if err != nil {
		return "", &gateway.Error{Provider: "fake", Op: "complete", Err: err}
	}
	return text, nil
}

// CompleteStructured implements gateway.Gateway. Replies pass through
// gateway.DecodeStructured, so scripted documents are schema-checked exactly
// like real ones.
func (f *Fake) CompleteStructured(ctx context.Context, prompt string, shape gateway.Shape, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := f.next(Call{Prompt: prompt, Shape: shape.Name})
	if err != nil {
		return err
	}
	text, err := r.text()
	if err != nil {
		return &gateway.Error{Provider: "fake", Op: "complete " + shape.Name, Err: err}
	}
	if err := gateway.DecodeStructured(text, shape, out); err != nil {
		return &gateway.Error{Provider: "fake", Op: "decode " + shape.Name, Err: err}
	}
	return nil
}
