// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/whiteprint/internal/model"
)

func sampleLayout() *model.LayoutPlan {
	return &model.LayoutPlan{
		Width: 10, Height: 8,
		Rooms: []model.RoomLayout{
			{Name: "Kitchen", Area: 20, X: 0, Y: 0, Width: 5, Height: 4},
			{Name: "Living Room", Area: 20, X: 5, Y: 0, Width: 5, Height: 4},
			{Name: "Bedroom 1", Area: 24, X: 0, Y: 4, Width: 6, Height: 4},
			{Name: "Bathroom 1", Area: 16, X: 6, Y: 4, Width: 4, Height: 4},
		},
	}
}

// =============================================================================
// PALETTE TESTS
// =============================================================================

func TestBaseType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bathroom 2", "Bathroom"},
		{"Bedroom 10", "Bedroom"},
		{"Living Room", "Living Room"},
		{"  Kitchen  ", "Kitchen"},
		{"3D Room", "D Room"},
	}

	for _, tt := range tests {
		if got := BaseType(tt.in); got != tt.want {
			t.Errorf("BaseType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#FFB6C1", ColorFor("Bathroom 3"))
	assert.Equal(t, "#F5F0E8", ColorFor("Living Room"))
	assert.Equal(t, "#90C695", ColorFor("Backyard"))
	assert.Equal(t, FallbackColor, ColorFor("Wine Cellar"))
	assert.Equal(t, FallbackColor, ColorFor("Guest Bathroom"))
}

// =============================================================================
// RENDER TESTS
// =============================================================================

func TestRender_EmptyLayout(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, layout := range []*model.LayoutPlan{nil, {Width: 0, Height: 5}, {Width: 5, Height: -1}} {
		_, err := r.Render(layout, nil)
		assert.ErrorIs(t, err, ErrEmptyLayout)
	}
}

func TestRender_Canvas(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	layout := sampleLayout()
	img, err := r.Render(layout, []model.DoorLayout{
		{FromRoom: "Kitchen", ToRoom: "Living Room", X: 4.85, Y: 1.5, Width: 0.3, Height: 0.9, Orientation: model.Vertical},
	})
	require.NoError(t, err)

	canvas, ok := img.(*Canvas)
	require.True(t, ok)
	bounds := canvas.Image().Bounds()
	assert.Equal(t, DefaultWidth, bounds.Dx())
	assert.Equal(t, DefaultHeight, bounds.Dy())

	p := r.Projection(layout)

	// Kitchen sits at the origin; (0.5, 0.5) is clear of grid lines and labels.
	x, y := p.ToCanvas(0.5, 0.5)
	cr, cg, cb, _ := canvas.Image().At(int(x), int(y)).RGBA()
	assert.Equal(t, [3]uint32{0xFF, 0xD5, 0x80}, [3]uint32{cr >> 8, cg >> 8, cb >> 8}, "kitchen fill")

	// Bedroom is above the kitchen because y points up.
	x, y = p.ToCanvas(0.5, 7.5)
	cr, cg, cb, _ = canvas.Image().At(int(x), int(y)).RGBA()
	assert.Equal(t, [3]uint32{0xAE, 0xC6, 0xCF}, [3]uint32{cr >> 8, cg >> 8, cb >> 8}, "bedroom fill")

	// Door center.
	x, y = p.ToCanvas(5.0, 1.95)
	cr, cg, cb, _ = canvas.Image().At(int(x), int(y)).RGBA()
	assert.Equal(t, [3]uint32{0xA5, 0x2A, 0x2A}, [3]uint32{cr >> 8, cg >> 8, cb >> 8}, "door fill")
}

func TestProjection_FlipsY(t *testing.T) {
	r, err := NewWithSize(600, 500)
	require.NoError(t, err)

	p := r.Projection(&model.LayoutPlan{Width: 10, Height: 8})
	_, yLow := p.ToCanvas(0, 0)
	_, yHigh := p.ToCanvas(0, 8)
	assert.Greater(t, yLow, yHigh)

	xLeft, _ := p.ToCanvas(-1, 0)
	xRight, _ := p.ToCanvas(11, 0)
	assert.GreaterOrEqual(t, xLeft, 0.0)
	assert.LessOrEqual(t, xRight, 600.0)
}

func TestCanvas_SavePNG(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	img, err := r.Render(sampleLayout(), nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "floor_plan.png")
	require.NoError(t, img.SavePNG(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, decoded.Bounds().Dx())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Floor Plan 10x8 (80 m²)", Title(sampleLayout()))
}

func TestNewWithSize_Invalid(t *testing.T) {
	_, err := NewWithSize(0, 100)
	require.Error(t, err)
}
