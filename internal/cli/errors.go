// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/whiteprint/internal/cloud"
	"github.com/jeranaias/whiteprint/internal/config"
	"github.com/jeranaias/whiteprint/internal/gateway"
	"github.com/jeranaias/whiteprint/internal/ollama"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates a completed or user-cancelled run.
	ExitSuccess = 0
	// ExitGeneralError indicates a failed or rejected request.
	ExitGeneralError = 1
	// ExitConfigError indicates bad settings or a provider that cannot be set up.
	ExitConfigError = 3
)

// ErrCancelled is returned when the user aborts at the prompt.
var ErrCancelled = errors.New("cancelled by user")

// ExitCodeFor maps a startup or run error to an exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var verrs config.ValidateErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, gateway.ErrUnknownProvider),
		errors.Is(err, cloud.ErrNotConfigured):
		return ExitConfigError
	case errors.Is(err, ErrCancelled):
		return ExitSuccess
	default:
		return ExitGeneralError
	}
}

// providerHint suggests a fix for a provider failure, or returns "" when
// there is nothing specific to say.
func providerHint(err error, model string) string {
	switch {
	case ollama.IsNotRunning(err):
		return "Start Ollama with 'ollama serve', or point OLLAMA_HOST at a running server"
	case ollama.IsModelNotFound(err):
		return fmt.Sprintf("Pull the model with 'ollama pull %s'", model)
	case ollama.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return "The model did not answer in time; raise llm.timeout_secs for slow models"
	case errors.Is(err, cloud.ErrAuthFailed):
		return "Check the API key for the configured provider"
	case errors.Is(err, cloud.ErrModelNotFound):
		return fmt.Sprintf("Model %q is not available; set llm.model or LLM_MODEL", model)
	}
	return ""
}
