// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

// Reporter receives user-facing progress from the pipeline. Implementations
// must not block for long; they run on the pipeline goroutine.
type Reporter interface {
	Step(title string)
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string)

	// Progress reports overall completion in [0, 1].
	Progress(label string, pct float64)

	// Result shows the final summary.
	Result(title, body string)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Step(string)              {}
func (NopReporter) Info(string)              {}
func (NopReporter) Success(string)           {}
func (NopReporter) Warning(string)           {}
func (NopReporter) Error(string)             {}
func (NopReporter) Progress(string, float64) {}
func (NopReporter) Result(string, string)    {}
