// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/peterh/liner"
	"golang.org/x/text/unicode/norm"
)

// MinRequestLength is the shortest accepted request, in characters.
const MinRequestLength = 10

// RequestPrompt is unstyled because liner cannot measure ANSI escapes.
const RequestPrompt = "Floor plan request > "

var (
	ErrEmptyRequest = errors.New("empty request")
	ErrShortRequest = errors.New("request too short")
)

// LineReader reads one line of user input.
type LineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// linerReader adds line editing and in-session history on top of liner.
type linerReader struct {
	line *liner.State
}

// NewLineReader returns a LineReader on the controlling terminal. Ctrl-C at
// the prompt aborts with ErrCancelled.
func NewLineReader() LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &linerReader{line: line}
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *linerReader) Close() error {
	return r.line.Close()
}

// NormalizeRequest trims whitespace and converts to Unicode NFC, so "m²"
// typed as composed or decomposed text reaches the model the same way.
func NormalizeRequest(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// ValidateRequest checks a normalized request before any model call.
func ValidateRequest(text string) error {
	switch {
	case text == "":
		return ErrEmptyRequest
	case utf8.RuneCountInString(text) < MinRequestLength:
		return ErrShortRequest
	}
	return nil
}

// requestHint turns a validation error into the message shown to the user.
func requestHint(err error) string {
	switch {
	case errors.Is(err, ErrEmptyRequest):
		return "Please provide a floor plan description"
	case errors.Is(err, ErrShortRequest):
		return "Please provide more detail about your floor plan requirements"
	default:
		return err.Error()
	}
}

// ReadRequest prompts until a usable request is entered. Empty and too-short
// input is reported as a warning and prompted again. Ctrl-C and end of input
// return ErrCancelled.
func ReadRequest(r LineReader, ui *UI) (string, error) {
	for {
		raw, err := r.Prompt(RequestPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return "", ErrCancelled
			}
			return "", err
		}

		text := NormalizeRequest(raw)
		if err := ValidateRequest(text); err != nil {
			ui.Warning(requestHint(err))
			continue
		}
		return text, nil
	}
}
