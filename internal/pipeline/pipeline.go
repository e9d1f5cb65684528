// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline runs one floor plan request through the generation graph:
//
//	verify_request -> room_allocator -> validate_allocation -> room_planner
//	  -> door_planner -> validate_plan -> plan_renderer -> plan_output
//
// verify_request and validate_allocation are gates; when either fails the
// run ends as Rejected without touching later steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/whiteprint/internal/config"
	"github.com/jeranaias/whiteprint/internal/gate"
	"github.com/jeranaias/whiteprint/internal/gateway"
	"github.com/jeranaias/whiteprint/internal/logging"
	"github.com/jeranaias/whiteprint/internal/model"
	"github.com/jeranaias/whiteprint/internal/prompts"
	"github.com/jeranaias/whiteprint/internal/render"
)

// Graph nodes.
const (
	NodeVerifyRequest      Node = "verify_request"
	NodeRoomAllocator      Node = "room_allocator"
	NodeValidateAllocation Node = "validate_allocation"
	NodeRoomPlanner        Node = "room_planner"
	NodeDoorPlanner        Node = "door_planner"
	NodeValidatePlan       Node = "validate_plan"
	NodePlanRenderer       Node = "plan_renderer"
	NodePlanOutput         Node = "plan_output"
)

// Renderer turns a layout and its doors into an image.
type Renderer interface {
	Render(layout *model.LayoutPlan, doors []model.DoorLayout) (render.Image, error)
}

// Options configures a Pipeline. Only Gateway is required.
type Options struct {
	Gateway         gateway.Gateway
	Prompts         *prompts.Formatter
	Renderer        Renderer
	Reporter        Reporter
	OutputPath      string
	AmbiguousPolicy gate.AmbiguousPolicy
	Logger          *zap.Logger
}

// Pipeline holds the compiled graph and its collaborators. It keeps no
// per-request data, so one Pipeline serves any number of sequential runs.
type Pipeline struct {
	gw         gateway.Gateway
	prompts    *prompts.Formatter
	renderer   Renderer
	reporter   Reporter
	outputPath string
	logger     *zap.Logger

	inputGate *gate.InputGate
	allocGate *gate.AllocationGate

	floorPlanShape gateway.Shape
	layoutShape    gateway.Shape
	doorShape      gateway.Shape

	graph *Graph
}

// New builds and compiles the pipeline graph.
func New(opts Options) (*Pipeline, error) {
	if opts.Gateway == nil {
		return nil, errors.New("pipeline: gateway is required")
	}

	p := &Pipeline{
		gw:         opts.Gateway,
		prompts:    opts.Prompts,
		renderer:   opts.Renderer,
		reporter:   opts.Reporter,
		outputPath: opts.OutputPath,
		logger:     logging.OrNop(opts.Logger).Named("pipeline"),

		floorPlanShape: gateway.Shape{Name: "floor_plan", Schema: model.FloorPlanSchema()},
		layoutShape:    gateway.Shape{Name: "layout_plan", Schema: model.LayoutPlanSchema()},
		doorShape:      gateway.Shape{Name: "door_plan", Schema: model.DoorPlanSchema()},
	}

	if p.prompts == nil {
		f, err := prompts.New()
		if err != nil {
			return nil, err
		}
		p.prompts = f
	}
	if p.renderer == nil {
		r, err := render.New()
		if err != nil {
			return nil, err
		}
		p.renderer = r
	}
	if p.reporter == nil {
		p.reporter = NopReporter{}
	}
	if p.outputPath == "" {
		p.outputPath = config.DefaultOutputPath
	}

	p.logger.Debug("prompt catalog loaded", zap.Strings("prompts", p.prompts.Names()))

	p.inputGate = gate.NewInputGate(p.gw, p.prompts, opts.AmbiguousPolicy, opts.Logger)
	p.allocGate = gate.NewAllocationGate(p.gw, p.prompts, opts.AmbiguousPolicy, opts.Logger)

	g := NewGraph().
		AddNode(NodeVerifyRequest, p.verifyRequest).
		AddNode(NodeRoomAllocator, p.roomAllocator).
		AddNode(NodeValidateAllocation, p.validateAllocation).
		AddNode(NodeRoomPlanner, p.roomPlanner).
		AddNode(NodeDoorPlanner, p.doorPlanner).
		AddNode(NodeValidatePlan, p.validatePlan).
		AddNode(NodePlanRenderer, p.planRenderer).
		AddNode(NodePlanOutput, p.planOutput).
		SetEntry(NodeVerifyRequest).
		AddConditionalEdges(NodeVerifyRequest, continueUnlessRejected, map[Branch]Node{
			Continue: NodeRoomAllocator,
			Stop:     End,
		}).
		AddEdge(NodeRoomAllocator, NodeValidateAllocation).
		AddConditionalEdges(NodeValidateAllocation, continueIfValidated, map[Branch]Node{
			Continue: NodeRoomPlanner,
			Stop:     End,
		}).
		AddEdge(NodeRoomPlanner, NodeDoorPlanner).
		AddEdge(NodeDoorPlanner, NodeValidatePlan).
		AddEdge(NodeValidatePlan, NodePlanRenderer).
		AddEdge(NodePlanRenderer, NodePlanOutput).
		AddEdge(NodePlanOutput, End)

	if err := g.Compile(); err != nil {
		return nil, err
	}
	p.graph = g
	return p, nil
}

// Graph returns the compiled graph.
func (p *Pipeline) Graph() *Graph {
	return p.graph
}

// OutputPath returns where the image is written.
func (p *Pipeline) OutputPath() string {
	return p.outputPath
}

// Run processes one request. A gate rejection is not an error: the returned
// state has StatusRejected and a Reason. Any step error marks the state
// StatusFailed and is also returned.
func (p *Pipeline) Run(ctx context.Context, input string) (*State, error) {
	s := NewState(input)
	s.OutputPath = p.outputPath

	log := p.logger.With(zap.String("run_id", s.RunID))
	log.Info("run started", zap.Int("input_len", len(input)))

	if err := p.graph.Run(ctx, s); err != nil {
		s.fail(err)
		log.Error("run failed", zap.Error(err), zap.Any("history", s.History))
		return s, err
	}

	if !s.Status.Terminal() {
		s.Status = StatusCompleted
	}
	log.Info("run finished",
		zap.String("status", string(s.Status)),
		zap.String("rejected_at", string(s.RejectedAt)),
		zap.Any("history", s.History))
	return s, nil
}

// =============================================================================
// ROUTERS
// =============================================================================

func continueUnlessRejected(s *State) Branch {
	if s.Status == StatusRejected {
		return Stop
	}
	return Continue
}

func continueIfValidated(s *State) Branch {
	if s.ValidationPassed {
		return Continue
	}
	return Stop
}

// =============================================================================
// STEPS
// =============================================================================

func (p *Pipeline) progress(n Node) {
	nodes := p.graph.Nodes()
	for i, name := range nodes {
		if name == n {
			p.reporter.Progress(string(n), float64(i)/float64(len(nodes)))
			return
		}
	}
}

func (p *Pipeline) verifyRequest(ctx context.Context, s *State) error {
	p.reporter.Step("Input Validation")
	p.reporter.Info(fmt.Sprintf("Analyzing request: %q", s.Input))
	p.progress(NodeVerifyRequest)

	res, err := p.inputGate.Check(ctx, s.Input)
	if err != nil {
		p.reporter.Error(fmt.Sprintf("Input validation failed: %v", err))
		return err
	}
	s.InputVerdict = res.Verdict

	switch {
	case !res.Passed:
		s.reject(NodeVerifyRequest, res.Reason)
		if res.Verdict == gate.Reject {
			p.reporter.Error("Request deemed unreasonable: it contains clearly impossible requirements")
		} else {
			p.reporter.Error("Request could not be confirmed as reasonable")
		}
	case res.Verdict == gate.Ambiguous:
		p.reporter.Warning("Unclear validation response, assuming reasonable")
	default:
		p.reporter.Success("Input validation passed")
	}
	return nil
}

func (p *Pipeline) roomAllocator(ctx context.Context, s *State) error {
	p.reporter.Step("Room Allocation")
	p.progress(NodeRoomAllocator)

	prompt, err := p.prompts.RoomAllocation(s.Input)
	if err != nil {
		return err
	}

	var plan model.FloorPlan
	if err := p.gw.CompleteStructured(ctx, prompt, p.floorPlanShape, &plan); err != nil {
		p.reporter.Error(fmt.Sprintf("Room allocation failed: %v", err))
		return err
	}
	s.FloorPlan = &plan

	if len(plan.Rooms) > 0 && !plan.ProportionsBalanced() {
		p.reporter.Warning(fmt.Sprintf("Room proportions sum to %.2f instead of 1.0", plan.ProportionSum()))
	}
	p.reporter.Success(fmt.Sprintf("Room allocation complete: %d rooms in %sm²",
		len(plan.Rooms), prompts.FormatNumber(plan.TotalArea)))
	return nil
}

func (p *Pipeline) validateAllocation(ctx context.Context, s *State) error {
	p.reporter.Step("Allocation Validation")
	p.reporter.Info("Checking room allocation integrity and feasibility...")
	p.progress(NodeValidateAllocation)

	s.ValidationPassed = false

	res, err := p.allocGate.Check(ctx, s.FloorPlan)
	if err != nil {
		p.reporter.Error(fmt.Sprintf("Allocation validation failed: %v", err))
		return err
	}
	s.AllocationVerdict = res.Verdict

	switch {
	case res.Structural:
		s.reject(NodeValidateAllocation, res.Reason)
		p.reporter.Error(capitalize(res.Reason))
	case !res.Passed:
		s.reject(NodeValidateAllocation, res.Reason)
		p.reporter.Error("Room allocation has critical structural issues")
	case res.Verdict == gate.Ambiguous:
		s.ValidationPassed = true
		p.reporter.Warning("Unclear validation response, assuming valid")
	default:
		s.ValidationPassed = true
		p.reporter.Success("Allocation validation passed")
	}
	return nil
}

func (p *Pipeline) roomPlanner(ctx context.Context, s *State) error {
	p.reporter.Step("Room Layout Planning")
	p.progress(NodeRoomPlanner)

	prompt, err := p.prompts.RoomPlanner(s.FloorPlan)
	if err != nil {
		return err
	}

	var layout model.LayoutPlan
	if err := p.gw.CompleteStructured(ctx, prompt, p.layoutShape, &layout); err != nil {
		p.reporter.Error(fmt.Sprintf("Room layout failed: %v", err))
		return err
	}
	s.Layout = &layout

	p.reporter.Success(fmt.Sprintf("Room layout complete: %d rooms positioned", len(layout.Rooms)))
	return nil
}

func (p *Pipeline) doorPlanner(ctx context.Context, s *State) error {
	p.reporter.Step("Door Planning")
	p.progress(NodeDoorPlanner)

	prompt, err := p.prompts.DoorPlanner(s.Layout)
	if err != nil {
		return err
	}

	var doors model.DoorPlan
	if err := p.gw.CompleteStructured(ctx, prompt, p.doorShape, &doors); err != nil {
		p.reporter.Error(fmt.Sprintf("Door planning failed: %v", err))
		return err
	}
	s.Doors = &doors

	p.reporter.Success(fmt.Sprintf("Door planning complete: %d doors designed", len(doors.Doors)))
	return nil
}

func (p *Pipeline) validatePlan(ctx context.Context, s *State) error {
	p.reporter.Step("Plan Validation")
	p.reporter.Info("Removing duplicate doors and validating connections...")
	p.progress(NodeValidatePlan)

	if s.Doors == nil {
		s.Doors = &model.DoorPlan{}
	}
	s.DoorsRemoved = s.Doors.Dedup()
	if s.DoorsRemoved > 0 {
		p.reporter.Warning(fmt.Sprintf("Removed %d duplicate door connections", s.DoorsRemoved))
	}
	p.reporter.Success("Plan validation complete")
	return nil
}

func (p *Pipeline) planRenderer(ctx context.Context, s *State) error {
	p.reporter.Step("Plan Rendering")
	p.progress(NodePlanRenderer)

	img, err := p.renderer.Render(s.Layout, s.Doors.Doors)
	if err != nil {
		p.reporter.Error(fmt.Sprintf("Rendering failed: %v", err))
		return err
	}
	s.Rendered = img

	p.reporter.Success("Floor plan rendered successfully")
	return nil
}

func (p *Pipeline) planOutput(ctx context.Context, s *State) error {
	p.reporter.Step("Final Output")
	p.reporter.Info("Saving floor plan to file...")
	p.progress(NodePlanOutput)

	if err := s.Rendered.SavePNG(s.OutputPath); err != nil {
		p.reporter.Error(fmt.Sprintf("Saving failed: %v", err))
		return err
	}

	p.reporter.Success(fmt.Sprintf("Floor plan saved as '%s'", s.OutputPath))
	p.reporter.Progress("done", 1)
	p.reporter.Result("FLOOR PLAN COMPLETE", Summary(s))
	return nil
}

// Summary formats the final result box for a completed run.
func Summary(s *State) string {
	var sb strings.Builder
	sb.WriteString("Floor Plan Generated Successfully!\n\n")

	sb.WriteString("House Specifications:\n")
	if fp := s.FloorPlan; fp != nil {
		fmt.Fprintf(&sb, "• Total Area: %sm²\n", prompts.FormatNumber(fp.TotalArea))
		fmt.Fprintf(&sb, "• Dimensions: %dm × %dm\n", fp.Width, fp.Height)
		fmt.Fprintf(&sb, "• Number of Rooms: %d\n", len(fp.Rooms))
	}
	doors := 0
	if s.Doors != nil {
		doors = len(s.Doors.Doors)
	}
	fmt.Fprintf(&sb, "• Number of Doors: %d\n", doors)

	if fp := s.FloorPlan; fp != nil && len(fp.Rooms) > 0 {
		sb.WriteString("\nRoom Breakdown:\n")
		for _, r := range fp.Rooms {
			fmt.Fprintf(&sb, "• %s: %.1fm²\n", r.Name, r.Area)
		}
	}

	fmt.Fprintf(&sb, "\nOutput File: %s", s.OutputPath)
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
