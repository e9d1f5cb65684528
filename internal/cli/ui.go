// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/whiteprint/internal/pipeline"
)

// ExampleRequests are shown under the banner.
var ExampleRequests = []string{
	"House 500m² with 3 bedrooms, 2 bathrooms, living room and kitchen",
	"600m² home with 2 bedrooms with ensuite bathrooms and guest bathroom",
	"Large family house 800m² with 4 bedrooms, 3 bathrooms, and storage",
	"Apartment 400m² with 2 bedrooms, living room, kitchen, and balcony",
}

// UI writes styled progress to a terminal. It implements pipeline.Reporter.
type UI struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	width       int
	bar         progress.Model
}

var _ pipeline.Reporter = (*UI)(nil)

// NewUI creates a UI writing to out. Progress bars are only drawn when
// interactive is true.
func NewUI(out io.Writer, interactive bool) *UI {
	width := DefaultTerminalWidth
	if interactive {
		width = GetTerminalWidth()
	}
	return &UI{
		out:         out,
		interactive: interactive,
		width:       width,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (u *UI) println(s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintln(u.out, s)
}

// Banner prints the application title box.
func (u *UI) Banner(title, subtitle string) {
	content := lipgloss.JoinVertical(lipgloss.Center,
		TitleStyle.Render(title),
		SubtitleStyle.Render(subtitle),
	)
	u.println(BoxStyle.Render(content))
}

// Examples prints the example requests.
func (u *UI) Examples() {
	var sb strings.Builder
	sb.WriteString(InfoStyle.Render("Describe your ideal floor plan in plain language. For example:"))
	for _, ex := range ExampleRequests {
		sb.WriteString("\n  ")
		sb.WriteString(DimStyle.Render("• " + ex))
	}
	u.println(sb.String())
}

// Step prints a step header.
func (u *UI) Step(title string) {
	u.println("\n" + TitleStyle.Render("▸ "+title) + "\n" + RenderSeparator(min(u.width, 70)))
}

func (u *UI) Info(msg string)    { u.status("info", msg) }
func (u *UI) Success(msg string) { u.status("ok", msg) }
func (u *UI) Warning(msg string) { u.status("warn", msg) }
func (u *UI) Error(msg string)   { u.status("fail", msg) }

func (u *UI) status(kind, msg string) {
	u.println(RenderStatus(kind) + " " + msg)
}

// Progress draws a progress bar for interactive sessions.
func (u *UI) Progress(label string, pct float64) {
	if !u.interactive {
		return
	}
	pct = max(0, min(pct, 1))
	u.println(u.bar.ViewAs(pct) + " " + DimStyle.Render(label))
}

// Result prints body in a titled box, wrapped to the terminal width.
func (u *UI) Result(title, body string) {
	inner := max(u.width-6, MinTerminalWidth)
	content := TitleStyle.Render(title) + "\n\n" + WrapText(body, inner)
	u.println("\n" + BoxStyle.Render(content))
}

// Completion prints the closing message of a successful run.
func (u *UI) Completion(title, subtitle string) {
	u.println("\n" + SuccessStyle.Render("✓ "+title) + "\n" + DimStyle.Render(subtitle))
}
