// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides hosted LLM clients.
//
// # Key Types
//
//   - OpenRouterClient: OpenAI-compatible /chat/completions with
//     response_format json_schema for structured output
//   - GeminiClient: Google Generative Language API generateContent with
//     responseJsonSchema for structured output
//   - APIError: provider error body, unwrapping to ErrAuthFailed,
//     ErrRateLimited, ErrModelNotFound or ErrInsufficientCredits
//
// Neither client retries. A request is sent exactly once and its failure is
// returned to the caller.
package cloud
