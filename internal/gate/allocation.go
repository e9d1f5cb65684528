// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/whiteprint/internal/gateway"
	"github.com/jeranaias/whiteprint/internal/logging"
	"github.com/jeranaias/whiteprint/internal/model"
	"github.com/jeranaias/whiteprint/internal/prompts"
)

// ErrStructural matches every *StructuralError.
var ErrStructural = errors.New("allocation is structurally incomplete")

// StructuralError names the first missing piece of an allocation.
type StructuralError struct {
	// Field is "rooms", "dimensions", "total_area", "name" or "area".
	Field string

	// Room is the 1-based index of the offending room, or 0 for plan-level fields.
	Room int
}

func (e *StructuralError) Error() string {
	if e.Room > 0 {
		return fmt.Sprintf("room %d missing %s", e.Room, e.Field)
	}
	return fmt.Sprintf("missing %s in allocation output", e.Field)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// CheckStructure verifies an allocation has everything later stages need,
// without calling the model. It reports the first problem found.
func CheckStructure(plan *model.FloorPlan) error {
	if plan == nil || len(plan.Rooms) == 0 {
		return &StructuralError{Field: "rooms"}
	}
	if plan.Width <= 0 || plan.Height <= 0 {
		return &StructuralError{Field: "dimensions"}
	}
	if plan.TotalArea <= 0 {
		return &StructuralError{Field: "total_area"}
	}
	for i, r := range plan.Rooms {
		if strings.TrimSpace(r.Name) == "" {
			return &StructuralError{Field: "name", Room: i + 1}
		}
		if r.Area <= 0 {
			return &StructuralError{Field: "area", Room: i + 1}
		}
	}
	return nil
}

// Summarize builds the allocation summary shown to the model: one line per
// room with its area and its allocated proportion as a percentage, plus the
// summed room area. A proportion that disagrees with the area is shown as
// allocated so the model can spot the mismatch.
func Summarize(plan *model.FloorPlan) prompts.AllocationSummary {
	lines := make([]string, len(plan.Rooms))
	for i, r := range plan.Rooms {
		lines[i] = fmt.Sprintf("- %s: %sm² (%.1f%%)", r.Name, prompts.FormatNumber(r.Area), r.Proportion*100)
	}
	return prompts.AllocationSummary{
		TotalArea:     prompts.FormatNumber(plan.TotalArea),
		Width:         plan.Width,
		Height:        plan.Height,
		RoomsText:     strings.Join(lines, "\n"),
		TotalRoomArea: prompts.FormatNumber(plan.RoomArea()),
	}
}

// AllocationGate checks a room allocation locally and then with the model.
type AllocationGate struct {
	gw      gateway.Gateway
	prompts *prompts.Formatter
	policy  AmbiguousPolicy
	logger  *zap.Logger
}

// NewAllocationGate creates an AllocationGate.
func NewAllocationGate(gw gateway.Gateway, f *prompts.Formatter, policy AmbiguousPolicy, logger *zap.Logger) *AllocationGate {
	return &AllocationGate{gw: gw, prompts: f, policy: policy, logger: logging.OrNop(logger).Named("gate.allocation")}
}

// Check runs the structural checks and, if they pass, exactly one model
// call. A structural failure is a failed Result, not an error; errors are
// reserved for gateway and prompt failures.
func (g *AllocationGate) Check(ctx context.Context, plan *model.FloorPlan) (Result, error) {
	if err := CheckStructure(plan); err != nil {
		g.logger.Info("allocation failed structural check", zap.Error(err))
		return Result{Verdict: Reject, Reason: err.Error(), Structural: true}, nil
	}

	prompt, err := g.prompts.AllocationValidation(Summarize(plan))
	if err != nil {
		return Result{}, err
	}

	reply, err := g.gw.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("allocation validation: %w", err)
	}

	res := Result{Verdict: ValidClassifier.Classify(reply), Reply: reply}
	res.Passed = g.policy.Passes(res.Verdict)

	switch res.Verdict {
	case Reject:
		res.Reason = "allocation was judged invalid"
		g.logger.Info("allocation rejected", zap.String("reply", reply))
	case Ambiguous:
		g.logger.Warn("ambiguous validation reply",
			zap.String("reply", reply),
			zap.Stringer("policy", g.policy),
			zap.Bool("passed", res.Passed))
		if !res.Passed {
			res.Reason = "allocation could not be confirmed as valid"
		}
	default:
		g.logger.Debug("allocation accepted", zap.Int("rooms", len(plan.Rooms)))
	}

	return res, nil
}
