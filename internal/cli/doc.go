// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the interactive front end of whiteprint.
//
// A session loads .env and the configuration, builds the model gateway,
// prints the banner and example requests, reads one request with line
// editing, and runs it through the generation pipeline. Progress is written
// with lipgloss styles that fall back to plain text when stdout is not a
// terminal or NO_COLOR is set.
//
// Exit codes:
//
//	0  completed, or cancelled by the user
//	1  request failed or was rejected
//	3  configuration or provider setup error
package cli
