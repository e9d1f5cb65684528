// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "math"

// proportionTolerance is how far the sum of room proportions may drift from
// 1.0 before an allocation is reported as unbalanced.
const proportionTolerance = 0.01

// =============================================================================
// ALLOCATION
// =============================================================================

// Room is one entry of a room allocation.
type Room struct {
	Name       string  `json:"name"`
	Proportion float64 `json:"proportion"` // share of total area, 0..1
	Area       float64 `json:"area"`       // m²
}

// FloorPlan is the room allocation for the whole house.
type FloorPlan struct {
	TotalArea float64 `json:"total_area"` // m²
	Width     int     `json:"width"`      // m
	Height    int     `json:"height"`     // m
	Rooms     []Room  `json:"rooms"`
}

// ProportionSum returns the sum of all room proportions.
func (p *FloorPlan) ProportionSum() float64 {
	var sum float64
	for _, r := range p.Rooms {
		sum += r.Proportion
	}
	return sum
}

// ProportionsBalanced reports whether proportions sum to 1.0 within
// proportionTolerance.
func (p *FloorPlan) ProportionsBalanced() bool {
	return math.Abs(p.ProportionSum()-1.0) <= proportionTolerance
}

// RoomArea returns the sum of all room areas.
func (p *FloorPlan) RoomArea() float64 {
	var sum float64
	for _, r := range p.Rooms {
		sum += r.Area
	}
	return sum
}

// =============================================================================
// LAYOUT
// =============================================================================

// RoomLayout places a room on the grid. (X, Y) is the bottom-left corner.
type RoomLayout struct {
	Name   string  `json:"name"`
	Area   float64 `json:"area"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutPlan is the placed allocation inside a Width x Height envelope.
type LayoutPlan struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Rooms  []RoomLayout `json:"rooms"`
}

// Area returns the envelope area.
func (l *LayoutPlan) Area() int {
	return l.Width * l.Height
}

// =============================================================================
// DOORS
// =============================================================================

// Orientation is the direction a door opening runs along a wall.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// DoorLayout is a door rectangle between two rooms.
type DoorLayout struct {
	FromRoom    string      `json:"from_room"`
	ToRoom      string      `json:"to_room"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Orientation Orientation `json:"orientation"`
}

// DoorPlan is the full set of doors for a layout.
type DoorPlan struct {
	Doors []DoorLayout `json:"doors"`
}

// Dedup removes duplicate connections in place and returns how many doors
// were dropped.
func (d *DoorPlan) Dedup() int {
	kept, removed := DedupDoors(d.Doors)
	d.Doors = kept
	return removed
}
