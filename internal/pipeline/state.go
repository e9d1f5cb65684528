// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"github.com/google/uuid"

	"github.com/jeranaias/whiteprint/internal/gate"
	"github.com/jeranaias/whiteprint/internal/model"
	"github.com/jeranaias/whiteprint/internal/render"
)

// Status is the lifecycle state of one generation run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed" // image written
	StatusRejected  Status = "rejected"  // a gate stopped the run
	StatusFailed    Status = "failed"    // a step returned an error
)

// Terminal reports whether no further steps will run.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// State is threaded through every step of a run. Each run owns its State;
// steps fill it in order and it is never shared between runs.
type State struct {
	RunID string
	Input string

	FloorPlan *model.FloorPlan
	Layout    *model.LayoutPlan
	Doors     *model.DoorPlan
	Rendered  render.Image

	OutputPath string

	// ValidationPassed is set by validate_allocation when Gate B passes.
	ValidationPassed bool

	// DoorsRemoved counts duplicate connections dropped by validate_plan.
	DoorsRemoved int

	InputVerdict      gate.Verdict
	AllocationVerdict gate.Verdict

	// History lists visited nodes in order.
	History []Node

	Status     Status
	RejectedAt Node
	Reason     string
	Err        error
}

// NewState creates the initial state for a request.
func NewState(input string) *State {
	return &State{
		RunID:  uuid.NewString(),
		Input:  input,
		Status: StatusRunning,
	}
}

func (s *State) reject(at Node, reason string) {
	s.Status = StatusRejected
	s.RejectedAt = at
	s.Reason = reason
}

func (s *State) fail(err error) {
	s.Status = StatusFailed
	s.Err = err
}
