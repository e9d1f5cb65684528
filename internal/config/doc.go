// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for whiteprint.
//
// # Configuration File
//
// The optional file lives at ~/.whiteprint/config.toml:
//
//	[llm]
//	provider = "google_genai"   # google_genai | openrouter | ollama
//	model = "gemini-2.5-flash"
//	temperature = 0.1
//	timeout_secs = 120
//
//	[gates]
//	ambiguous_policy = "accept" # accept | reject
//
//	[output]
//	path = "floor_plan.png"
//
//	[log]
//	level = "warn"
//
// # Environment Variables
//
// LLM_PROVIDER, LLM_MODEL and LLM_TEMPERATURE override the [llm] section.
// API keys come from GOOGLE_API_KEY (or GEMINI_API_KEY) and
// OPENROUTER_API_KEY. See ApplyEnvOverrides for the full list.
package config
