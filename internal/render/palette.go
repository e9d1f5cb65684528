// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"unicode"
)

// FallbackColor fills rooms whose type has no palette entry.
const FallbackColor = "#FFFFFF"

// DoorColor fills door rectangles.
const DoorColor = "#A52A2A"

var roomColors = map[string]string{
	"Living Room": "#F5F0E8",
	"Kitchen":     "#FFD580",
	"Bedroom":     "#AEC6CF",
	"Bathroom":    "#FFB6C1",
	"Hallway":     "#E6E6FA",
	"Storage":     "#D3D3D3",
	"Dining Room": "#D3A760",
	"Utility":     "#C2EABD",
	"Garage":      "#D4C5B0",
	"Backyard":    "#90C695",
}

// BaseType strips digits from a room name, so "Bathroom 2" and "Bathroom 10"
// both become "Bathroom".
func BaseType(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(stripped)
}

// ColorFor returns the hex fill color for a room name.
func ColorFor(name string) string {
	if c, ok := roomColors[BaseType(name)]; ok {
		return c
	}
	return FallbackColor
}
