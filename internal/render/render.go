// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render draws a placed floor plan and its doors to a PNG.
//
// Plan coordinates are metres with the origin at the bottom-left corner of
// the house and y pointing up. The visible range is one metre wider than the
// house on every side, drawn at a uniform scale.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jeranaias/whiteprint/internal/model"
	"github.com/jeranaias/whiteprint/internal/util"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1200
	DefaultHeight = 1000
)

const (
	marginSide   = 40.0
	marginTop    = 70.0
	marginBottom = 40.0
	labelSize    = 11.0
	titleSize    = 20.0
)

// ErrEmptyLayout is returned when there is nothing to draw.
var ErrEmptyLayout = errors.New("layout has no drawable area")

// Image is a rendered floor plan.
type Image interface {
	// SavePNG encodes the image and writes it atomically to path.
	SavePNG(path string) error
}

// Canvas is the Image produced by Renderer.
type Canvas struct {
	dc *gg.Context
}

// Image returns the underlying raster.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the PNG encoding of the canvas to w.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// SavePNG implements Image.
func (c *Canvas) SavePNG(path string) error {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Renderer draws layouts. It holds parsed fonts and is safe for concurrent use.
type Renderer struct {
	width, height int
	labelFont     *truetype.Font
	titleFont     *truetype.Font
}

// New creates a Renderer with the default canvas size.
func New() (*Renderer, error) {
	return NewWithSize(DefaultWidth, DefaultHeight)
}

// NewWithSize creates a Renderer for a width x height pixel canvas.
func NewWithSize(width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	label, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}
	title, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load title font: %w", err)
	}
	return &Renderer{width: width, height: height, labelFont: label, titleFont: title}, nil
}

// Render draws layout and doors. Doors may be empty.
func (r *Renderer) Render(layout *model.LayoutPlan, doors []model.DoorLayout) (Image, error) {
	if layout == nil || layout.Width <= 0 || layout.Height <= 0 {
		return nil, ErrEmptyLayout
	}

	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	p := r.Projection(layout)

	r.drawGrid(dc, p, layout)

	// House outline.
	x0, y0 := p.ToCanvas(0, float64(layout.Height))
	dc.DrawRectangle(x0, y0, float64(layout.Width)*p.Scale, float64(layout.Height)*p.Scale)
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2)
	dc.Stroke()

	for _, room := range layout.Rooms {
		rx, ry := p.ToCanvas(room.X, room.Y+room.Height)
		dc.DrawRectangle(rx, ry, room.Width*p.Scale, room.Height*p.Scale)
		dc.SetHexColor(ColorFor(room.Name))
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	dc.SetFontFace(r.face(r.labelFont, labelSize))
	for _, room := range layout.Rooms {
		cx, cy := p.ToCanvas(room.X+room.Width/2, room.Y+room.Height/2)
		drawCentered(dc, []string{
			room.Name,
			fmt.Sprintf("%.1f x %.1f m", room.Width, room.Height),
			fmt.Sprintf("%.1f m²", room.Area),
		}, cx, cy)
	}

	for _, door := range doors {
		dx, dy := p.ToCanvas(door.X, door.Y+door.Height)
		dc.DrawRectangle(dx, dy, door.Width*p.Scale, door.Height*p.Scale)
		dc.SetHexColor(DoorColor)
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1.5)
		dc.Stroke()
	}

	dc.SetFontFace(r.face(r.titleFont, titleSize))
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(Title(layout), float64(r.width)/2, marginTop/2, 0.5, 0.5)

	return &Canvas{dc: dc}, nil
}

// Title is the heading drawn above the plan.
func Title(layout *model.LayoutPlan) string {
	return fmt.Sprintf("Floor Plan %dx%d (%d m²)", layout.Width, layout.Height, layout.Area())
}

func (r *Renderer) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

func (r *Renderer) drawGrid(dc *gg.Context, p Projection, layout *model.LayoutPlan) {
	minX, maxX := -1.0, float64(layout.Width)+1
	minY, maxY := -1.0, float64(layout.Height)+1

	dc.SetRGBA(0.6, 0.6, 0.6, 0.7)
	dc.SetLineWidth(0.5)
	dc.SetDash(4, 4)
	for x := minX; x <= maxX; x++ {
		ax, ay := p.ToCanvas(x, minY)
		bx, by := p.ToCanvas(x, maxY)
		dc.DrawLine(ax, ay, bx, by)
		dc.Stroke()
	}
	for y := minY; y <= maxY; y++ {
		ax, ay := p.ToCanvas(minX, y)
		bx, by := p.ToCanvas(maxX, y)
		dc.DrawLine(ax, ay, bx, by)
		dc.Stroke()
	}
	dc.SetDash()
}

func drawCentered(dc *gg.Context, lines []string, cx, cy float64) {
	lh := dc.FontHeight() * 1.3
	top := cy - lh*float64(len(lines)-1)/2
	dc.SetRGB(0, 0, 0)
	for i, line := range lines {
		dc.DrawStringAnchored(line, cx, top+float64(i)*lh, 0.5, 0.5)
	}
}

// =============================================================================
// PROJECTION
// =============================================================================

// Projection maps plan metres to canvas pixels.
type Projection struct {
	Scale   float64 // pixels per metre
	OriginX float64 // canvas x of plan x = 0
	OriginY float64 // canvas y of plan y = 0
}

// Projection returns the mapping Render uses for layout.
func (r *Renderer) Projection(layout *model.LayoutPlan) Projection {
	spanX := float64(layout.Width) + 2
	spanY := float64(layout.Height) + 2
	plotW := float64(r.width) - 2*marginSide
	plotH := float64(r.height) - marginTop - marginBottom

	scale := math.Min(plotW/spanX, plotH/spanY)
	left := marginSide + (plotW-spanX*scale)/2
	top := marginTop + (plotH-spanY*scale)/2

	return Projection{
		Scale:   scale,
		OriginX: left + scale,
		OriginY: top + (spanY-1)*scale,
	}
}

// ToCanvas converts plan coordinates to canvas pixels, flipping y.
func (p Projection) ToCanvas(x, y float64) (float64, float64) {
	return p.OriginX + x*p.Scale, p.OriginY - y*p.Scale
}
