// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jeranaias/whiteprint/internal/config"
	"github.com/jeranaias/whiteprint/internal/gate"
	"github.com/jeranaias/whiteprint/internal/gateway"
	"github.com/jeranaias/whiteprint/internal/logging"
	"github.com/jeranaias/whiteprint/internal/pipeline"
)

const (
	bannerTitle        = "WhitePrint AI"
	bannerSubtitle     = "Intelligent Architectural Design Assistant"
	completionTitle    = "AI Floor Plan Generator"
	completionSubtitle = "Beautiful Architecture Made Simple"
	retryHint          = "Please check your input and try again"
)

// App is one CLI session. The function fields default to the real
// implementations and are replaced in tests.
type App struct {
	Out         io.Writer
	Reader      LineReader
	Interactive bool

	LoadConfig func() (*config.Config, error)
	NewGateway func(cfg config.LLMConfig, logger *zap.Logger) (gateway.Gateway, error)
}

// Main is the process entry point. It returns the exit code.
func Main() int {
	// .env is optional; a missing file is not an error.
	dotenvErr := godotenv.Load()
	if errors.Is(dotenvErr, fs.ErrNotExist) {
		dotenvErr = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := NewLineReader()
	defer reader.Close()

	app := &App{Out: os.Stdout, Reader: reader, Interactive: Interactive()}
	if dotenvErr != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Could not read .env: "+dotenvErr.Error()))
	}
	return app.Run(ctx)
}

func defaultGateway(cfg config.LLMConfig, logger *zap.Logger) (gateway.Gateway, error) {
	return gateway.New(cfg, logger)
}

// Run executes one request from prompt to image and returns the exit code.
func (a *App) Run(ctx context.Context) int {
	ui := NewUI(a.Out, a.Interactive)

	load := a.LoadConfig
	if load == nil {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		ui.Error(fmt.Sprintf("Configuration error: %v", err))
		return ExitConfigError
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		ui.Error(fmt.Sprintf("Logging setup failed: %v", err))
		return ExitConfigError
	}
	defer logger.Sync()
	logger.Debug("effective config", zap.Stringer("config", cfg))

	ui.Banner(bannerTitle, bannerSubtitle)

	newGateway := a.NewGateway
	if newGateway == nil {
		newGateway = defaultGateway
	}
	gw, err := newGateway(cfg.LLM, logger)
	if err != nil {
		ui.Error(fmt.Sprintf("Model provider setup failed: %v", err))
		return ExitCodeFor(err)
	}
	logger.Info("gateway ready",
		zap.String("provider", gw.Provider()),
		zap.String("model", gw.Model()))

	if err := gw.Preflight(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			ui.Warning("Generation cancelled by user")
			return ExitSuccess
		}
		ui.Error(fmt.Sprintf("Model provider unavailable: %v", err))
		if hint := providerHint(err, gw.Model()); hint != "" {
			ui.Info(hint)
		}
		return ExitGeneralError
	}

	policy, err := gate.ParsePolicy(cfg.Gates.AmbiguousPolicy)
	if err != nil {
		ui.Error(fmt.Sprintf("Configuration error: %v", err))
		return ExitConfigError
	}

	p, err := pipeline.New(pipeline.Options{
		Gateway:         gw,
		Reporter:        ui,
		OutputPath:      cfg.Output.Path,
		AmbiguousPolicy: policy,
		Logger:          logger,
	})
	if err != nil {
		ui.Error(fmt.Sprintf("Pipeline setup failed: %v", err))
		return ExitGeneralError
	}
	logger.Debug("pipeline graph", zap.String("mermaid", p.Graph().Mermaid()))

	ui.Examples()
	input, err := ReadRequest(a.Reader, ui)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			ui.Warning("Generation cancelled by user")
			return ExitSuccess
		}
		ui.Error(fmt.Sprintf("Failed to read request: %v", err))
		return ExitGeneralError
	}

	ui.Info(fmt.Sprintf("Starting floor plan generation for: '%s'", input))
	state, err := p.Run(ctx, input)
	switch {
	case errors.Is(err, context.Canceled):
		ui.Warning("Generation cancelled by user")
		return ExitSuccess
	case err != nil:
		ui.Error(fmt.Sprintf("Floor plan generation failed: %v", err))
		if hint := providerHint(err, gw.Model()); hint != "" {
			ui.Info(hint)
		}
		ui.Info(retryHint)
		return ExitGeneralError
	case state.Status == pipeline.StatusRejected:
		ui.Error(fmt.Sprintf("Floor plan request rejected: %s", state.Reason))
		ui.Info(retryHint)
		return ExitGeneralError
	}

	ui.Completion(completionTitle, completionSubtitle)
	return ExitSuccess
}
