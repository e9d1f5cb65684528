// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/whiteprint/internal/gateway"
	"github.com/jeranaias/whiteprint/internal/logging"
	"github.com/jeranaias/whiteprint/internal/prompts"
)

// InputGate asks the model whether a request is a plausible residential
// brief before any planning work is spent on it.
type InputGate struct {
	gw      gateway.Gateway
	prompts *prompts.Formatter
	policy  AmbiguousPolicy
	logger  *zap.Logger
}

// NewInputGate creates an InputGate.
func NewInputGate(gw gateway.Gateway, f *prompts.Formatter, policy AmbiguousPolicy, logger *zap.Logger) *InputGate {
	return &InputGate{gw: gw, prompts: f, policy: policy, logger: logging.OrNop(logger).Named("gate.input")}
}

// Check classifies input with exactly one model call. Gateway errors are
// returned unchanged; the Result is only meaningful when err is nil.
func (g *InputGate) Check(ctx context.Context, input string) (Result, error) {
	prompt, err := g.prompts.InputValidation(input)
	if err != nil {
		return Result{}, err
	}

	reply, err := g.gw.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("input validation: %w", err)
	}

	res := Result{Verdict: ReasonableClassifier.Classify(reply), Reply: reply}
	res.Passed = g.policy.Passes(res.Verdict)

	switch res.Verdict {
	case Reject:
		res.Reason = "request was judged unreasonable"
		g.logger.Info("request rejected", zap.String("reply", reply))
	case Ambiguous:
		g.logger.Warn("ambiguous validation reply",
			zap.String("reply", reply),
			zap.Stringer("policy", g.policy),
			zap.Bool("passed", res.Passed))
		if !res.Passed {
			res.Reason = "request could not be confirmed as reasonable"
		}
	default:
		g.logger.Debug("request accepted")
	}

	return res, nil
}
