// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompts renders the model prompts for each generation stage.
//
// Templates live in an embedded YAML catalog (templates.yaml) keyed by stage
// name and are compiled once with text/template.
package prompts

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/whiteprint/internal/model"
)

//go:embed templates.yaml
var catalogYAML []byte

// Template names in the catalog.
const (
	InputValidation      = "input_validation"
	AllocationValidation = "allocation_validation"
	RoomAllocation       = "room_allocation"
	RoomPlanner          = "room_planner"
	DoorPlanner          = "door_planner"
)

var required = []string{InputValidation, AllocationValidation, RoomAllocation, RoomPlanner, DoorPlanner}

// =============================================================================
// TEMPLATE DATA
// =============================================================================

// AllocationSummary is the data for the allocation validation prompt.
type AllocationSummary struct {
	TotalArea     string
	Width         int
	Height        int
	RoomsText     string
	TotalRoomArea string
}

type inputData struct {
	Input string
}

type plannerData struct {
	Width     int
	Height    int
	TotalArea string
	Rooms     string
}

// =============================================================================
// FORMATTER
// =============================================================================

// Formatter renders prompts from a parsed catalog. It is safe for concurrent use.
type Formatter struct {
	templates map[string]*template.Template
}

// New parses the embedded catalog.
func New() (*Formatter, error) {
	return Parse(catalogYAML)
}

// MustNew is New for package-level initialization and tests.
func MustNew() *Formatter {
	f, err := New()
	if err != nil {
		panic(err)
	}
	return f
}

// Parse builds a Formatter from a YAML catalog mapping names to template text.
// Every stage template must be present.
func Parse(catalog []byte) (*Formatter, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(catalog, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	f := &Formatter{templates: make(map[string]*template.Template, len(raw))}
	for name, text := range raw {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		f.templates[name] = tmpl
	}

	var missing []string
	for _, name := range required {
		if _, ok := f.templates[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("prompt catalog missing: %s", strings.Join(missing, ", "))
	}

	return f, nil
}

// Names returns the template names in sorted order.
func (f *Formatter) Names() []string {
	names := make([]string, 0, len(f.templates))
	for name := range f.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *Formatter) render(name string, data any) (string, error) {
	tmpl, ok := f.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}

// InputValidation renders the request reasonableness prompt.
func (f *Formatter) InputValidation(input string) (string, error) {
	return f.render(InputValidation, inputData{Input: input})
}

// AllocationValidation renders the allocation sanity prompt.
func (f *Formatter) AllocationValidation(s AllocationSummary) (string, error) {
	return f.render(AllocationValidation, s)
}

// RoomAllocation renders the prompt that turns a request into a FloorPlan.
func (f *Formatter) RoomAllocation(input string) (string, error) {
	return f.render(RoomAllocation, inputData{Input: input})
}

// RoomPlanner renders the prompt that places an allocation on the grid.
func (f *Formatter) RoomPlanner(plan *model.FloorPlan) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("render %s: nil floor plan", RoomPlanner)
	}
	lines := make([]string, len(plan.Rooms))
	for i, r := range plan.Rooms {
		lines[i] = fmt.Sprintf("- %s: %s m² (proportion %.2f)", r.Name, FormatNumber(r.Area), r.Proportion)
	}
	return f.render(RoomPlanner, plannerData{
		Width:     plan.Width,
		Height:    plan.Height,
		TotalArea: FormatNumber(plan.TotalArea),
		Rooms:     strings.Join(lines, "\n"),
	})
}

// DoorPlanner renders the prompt that places doors on a layout.
func (f *Formatter) DoorPlanner(layout *model.LayoutPlan) (string, error) {
	if layout == nil {
		return "", fmt.Errorf("render %s: nil layout", DoorPlanner)
	}
	lines := make([]string, len(layout.Rooms))
	for i, r := range layout.Rooms {
		lines[i] = fmt.Sprintf("- %s: x=%s, y=%s, width=%s, height=%s",
			r.Name, FormatNumber(r.X), FormatNumber(r.Y), FormatNumber(r.Width), FormatNumber(r.Height))
	}
	return f.render(DoorPlanner, plannerData{
		Width:  layout.Width,
		Height: layout.Height,
		Rooms:  strings.Join(lines, "\n"),
	})
}

// FormatNumber prints a measurement with at most one decimal place and no
// trailing ".0".
func FormatNumber(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
