// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/whiteprint/internal/cloud"
	"github.com/jeranaias/whiteprint/internal/config"
	"github.com/jeranaias/whiteprint/internal/gateway"
	"github.com/jeranaias/whiteprint/internal/gateway/gatewaytest"
	"github.com/jeranaias/whiteprint/internal/model"
	"github.com/jeranaias/whiteprint/internal/ollama"
)

// scriptedReader replays lines, then returns end.
type scriptedReader struct {
	lines   []string
	end     error
	prompts int
}

func (r *scriptedReader) Prompt(string) (string, error) {
	r.prompts++
	if len(r.lines) == 0 {
		return "", r.end
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) Close() error { return nil }

// =============================================================================
// INPUT TESTS
// =============================================================================

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrEmptyRequest},
		{"short", "house", ErrShortRequest},
		{"nine runes", "123456789", ErrShortRequest},
		{"ten runes", "1234567890", nil},
		{"multibyte counted as runes", "80m² house", nil},
		{"short multibyte", "m²m²m²m²", ErrShortRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateRequest(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("ValidateRequest(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeRequest(t *testing.T) {
	// "e" + combining acute accent composes to a single "é".
	got := NormalizeRequest("  Maison de 80m² cafe\u0301  \n")
	assert.Equal(t, "Maison de 80m² caf\u00e9", got)
}

func TestReadRequest_Reprompts(t *testing.T) {
	var out bytes.Buffer
	ui := NewUI(&out, false)
	r := &scriptedReader{lines: []string{"   ", "tiny", "  House 120m² with 3 bedrooms  "}}

	got, err := ReadRequest(r, ui)
	require.NoError(t, err)

	assert.Equal(t, "House 120m² with 3 bedrooms", got)
	assert.Equal(t, 3, r.prompts)
	assert.Contains(t, out.String(), "Please provide a floor plan description")
	assert.Contains(t, out.String(), "Please provide more detail about your floor plan requirements")
}

func TestReadRequest_Cancelled(t *testing.T) {
	tests := []struct {
		name          string
		end           error
		wantCancelled bool
	}{
		{"ctrl-c", liner.ErrPromptAborted, true},
		{"eof", io.EOF, true},
		{"terminal error", errors.New("bad tty"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRequest(&scriptedReader{end: tt.end}, NewUI(&bytes.Buffer{}, false))
			require.Error(t, err)
			assert.Equal(t, tt.wantCancelled, errors.Is(err, ErrCancelled))
		})
	}
}

// =============================================================================
// UI TESTS
// =============================================================================

func TestWrapText(t *testing.T) {
	got := WrapText("• Living Room: 40.0m² and a very long trailing description", 20)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 20, "line %q", line)
	}
	assert.Equal(t, "short\nlines", WrapText("short\nlines", 20))
}

func TestUI_Markers(t *testing.T) {
	var out bytes.Buffer
	ui := NewUI(&out, false)

	ui.Info("info line")
	ui.Success("ok line")
	ui.Warning("warn line")
	ui.Error("fail line")
	ui.Progress("room_planner", 0.5)

	s := out.String()
	assert.Contains(t, s, "[INFO] info line")
	assert.Contains(t, s, "[OK] ok line")
	assert.Contains(t, s, "[WARN] warn line")
	assert.Contains(t, s, "[FAIL] fail line")
	assert.NotContains(t, s, "room_planner", "no progress bar when not interactive")
}

func TestUI_Examples(t *testing.T) {
	var out bytes.Buffer
	NewUI(&out, false).Examples()

	s := out.String()
	assert.Contains(t, s, "House 500m² with 3 bedrooms, 2 bathrooms, living room and kitchen")
	assert.Contains(t, s, "Apartment 400m² with 2 bedrooms, living room, kitchen, and balcony")
	assert.Equal(t, len(ExampleRequests), strings.Count(s, "• "))
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{ErrCancelled, ExitSuccess},
		{fmt.Errorf("wrap: %w", gateway.ErrUnknownProvider), ExitConfigError},
		{&gateway.Error{Provider: "openrouter", Op: "configure", Err: cloud.ErrNotConfigured}, ExitConfigError},
		{fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "llm.provider", Message: "bad"}}), ExitConfigError},
		{errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		if got := ExitCodeFor(tt.err); got != tt.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestProviderHint(t *testing.T) {
	wrap := func(err error) error {
		return &gateway.Error{Provider: "ollama", Op: "complete", Err: err}
	}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not running", wrap(ollama.ErrNotRunning), "ollama serve"},
		{"model missing", wrap(&ollama.ClientError{Type: ollama.ErrTypeModelNotFound, Message: "model not found: qwen2.5:7b"}), "ollama pull qwen2.5:7b"},
		{"timeout", wrap(context.DeadlineExceeded), "llm.timeout_secs"},
		{"bad key", &cloud.APIError{Provider: "openrouter", Status: 401}, "API key"},
		{"nothing to say", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := providerHint(tt.err, "qwen2.5:7b")
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

// =============================================================================
// APP TESTS
// =============================================================================

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Path = filepath.Join(t.TempDir(), "floor_plan.png")
	cfg.SetDefaults()
	return cfg
}

func newApp(t *testing.T, cfg *config.Config, fake *gatewaytest.Fake, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &App{
		Out:        &out,
		Reader:     &scriptedReader{lines: lines, end: liner.ErrPromptAborted},
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		NewGateway: func(config.LLMConfig, *zap.Logger) (gateway.Gateway, error) { return fake, nil },
	}, &out
}

func TestApp_Run_Completes(t *testing.T) {
	cfg := testConfig(t)
	fake := gatewaytest.New(
		gatewaytest.Text("REASONABLE"),
		gatewaytest.JSON(model.FloorPlan{TotalArea: 80, Width: 10, Height: 8, Rooms: []model.Room{
			{Name: "Living Room", Proportion: 0.5, Area: 40},
			{Name: "Bedroom", Proportion: 0.5, Area: 40},
		}}),
		gatewaytest.Text("VALID"),
		gatewaytest.JSON(model.LayoutPlan{Width: 10, Height: 8, Rooms: []model.RoomLayout{
			{Name: "Living Room", Area: 40, X: 0, Y: 0, Width: 5, Height: 8},
			{Name: "Bedroom", Area: 40, X: 5, Y: 0, Width: 5, Height: 8},
		}}),
		gatewaytest.JSON(model.DoorPlan{Doors: []model.DoorLayout{
			{FromRoom: "Living Room", ToRoom: "Bedroom", X: 4.85, Y: 3, Width: 0.3, Height: 0.9, Orientation: model.Vertical},
		}}),
	)
	app, out := newApp(t, cfg, fake, "Small 80m² house with one bedroom")

	code := app.Run(context.Background())
	require.Equal(t, ExitSuccess, code, out.String())

	_, err := os.Stat(cfg.Output.Path)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "WhitePrint AI")
	assert.Contains(t, s, "FLOOR PLAN COMPLETE")
	assert.Contains(t, s, "AI Floor Plan Generator")
}

func TestApp_Run_Rejected(t *testing.T) {
	cfg := testConfig(t)
	app, out := newApp(t, cfg, gatewaytest.New(gatewaytest.Text("UNREASONABLE")), "100m² with 90 kitchens")

	code := app.Run(context.Background())
	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, out.String(), "Please check your input and try again")

	_, err := os.Stat(cfg.Output.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestApp_Run_GatewayFailure(t *testing.T) {
	cfg := testConfig(t)
	app, out := newApp(t, cfg, gatewaytest.New(gatewaytest.Fail(errors.New("connection refused"))), "Small 80m² house with one bedroom")

	code := app.Run(context.Background())
	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, out.String(), "Floor plan generation failed")
	assert.Contains(t, out.String(), "connection refused")
}

func TestApp_Run_PreflightFailure(t *testing.T) {
	fake := gatewaytest.New()
	fake.PreflightErr = &gateway.Error{Provider: "ollama", Op: "preflight", Err: ollama.ErrNotRunning}
	app, out := newApp(t, testConfig(t), fake, "Small 80m² house with one bedroom")

	code := app.Run(context.Background())
	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, out.String(), "Model provider unavailable")
	assert.Contains(t, out.String(), "ollama serve")
	assert.Empty(t, fake.Calls(), "no prompt is sent when preflight fails")
}

func TestApp_Run_CancelledAtPrompt(t *testing.T) {
	app, out := newApp(t, testConfig(t), gatewaytest.New())

	code := app.Run(context.Background())
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out.String(), "Generation cancelled by user")
}

func TestApp_Run_CancelledDuringRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app, out := newApp(t, testConfig(t), gatewaytest.New(), "Small 80m² house with one bedroom")

	code := app.Run(ctx)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out.String(), "Generation cancelled by user")
}

func TestApp_Run_ConfigError(t *testing.T) {
	var out bytes.Buffer
	app := &App{
		Out:        &out,
		Reader:     &scriptedReader{},
		LoadConfig: func() (*config.Config, error) { return nil, errors.New("invalid config: llm.provider") },
	}

	assert.Equal(t, ExitConfigError, app.Run(context.Background()))
	assert.Contains(t, out.String(), "Configuration error")
}

func TestApp_Run_ProviderSetupError(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	app := &App{
		Out:        &out,
		Reader:     &scriptedReader{},
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		NewGateway: func(config.LLMConfig, *zap.Logger) (gateway.Gateway, error) {
			return nil, &gateway.Error{Provider: "google_genai", Op: "configure", Err: cloud.ErrNotConfigured}
		},
	}

	assert.Equal(t, ExitConfigError, app.Run(context.Background()))
	assert.Contains(t, out.String(), "Model provider setup failed")
}
