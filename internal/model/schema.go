// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/getkin/kin-openapi/openapi3"

// The layout and door schemas require every key but leave value ranges open.
// The floor plan schema requires nothing: a missing or null key decodes to
// its zero value and the allocation gate reports it as structurally
// incomplete.

// FloorPlanSchema describes a FloorPlan document.
func FloorPlanSchema() *openapi3.Schema {
	room := optional(
		prop{"name", openapi3.NewStringSchema().WithNullable()},
		prop{"proportion", openapi3.NewFloat64Schema().WithNullable()},
		prop{"area", openapi3.NewFloat64Schema().WithNullable()},
	)
	return optional(
		prop{"total_area", openapi3.NewFloat64Schema().WithNullable()},
		prop{"width", openapi3.NewIntegerSchema().WithNullable()},
		prop{"height", openapi3.NewIntegerSchema().WithNullable()},
		prop{"rooms", openapi3.NewArraySchema().WithItems(room).WithNullable()},
	)
}

// LayoutPlanSchema describes a LayoutPlan document.
func LayoutPlanSchema() *openapi3.Schema {
	room := object(
		prop{"name", openapi3.NewStringSchema()},
		prop{"area", openapi3.NewFloat64Schema()},
		prop{"x", openapi3.NewFloat64Schema()},
		prop{"y", openapi3.NewFloat64Schema()},
		prop{"width", openapi3.NewFloat64Schema()},
		prop{"height", openapi3.NewFloat64Schema()},
	)
	return object(
		prop{"width", openapi3.NewIntegerSchema()},
		prop{"height", openapi3.NewIntegerSchema()},
		prop{"rooms", openapi3.NewArraySchema().WithItems(room)},
	)
}

// DoorPlanSchema describes a DoorPlan document.
func DoorPlanSchema() *openapi3.Schema {
	door := object(
		prop{"from_room", openapi3.NewStringSchema()},
		prop{"to_room", openapi3.NewStringSchema()},
		prop{"x", openapi3.NewFloat64Schema()},
		prop{"y", openapi3.NewFloat64Schema()},
		prop{"width", openapi3.NewFloat64Schema()},
		prop{"height", openapi3.NewFloat64Schema()},
		prop{"orientation", openapi3.NewStringSchema().WithEnum(string(Vertical), string(Horizontal))},
	)
	return object(
		prop{"doors", openapi3.NewArraySchema().WithItems(door)},
	)
}

type prop struct {
	name   string
	schema *openapi3.Schema
}

// object builds an object schema whose properties are all required, in the
// order given.
func object(props ...prop) *openapi3.Schema {
	s := optional(props...)
	required := make([]string, 0, len(props))
	for _, p := range props {
		required = append(required, p.name)
	}
	s.Required = required
	return s
}

// optional builds an object schema with no required properties.
func optional(props ...prop) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for _, p := range props {
		s = s.WithProperty(p.name, p.schema)
	}
	return s
}
