// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gate implements the two model-backed validation gates: request
// reasonableness (InputGate) and allocation integrity (AllocationGate).
package gate

import (
	"fmt"
	"strings"
)

// Verdict is the classified answer of a gate prompt.
type Verdict int

const (
	Ambiguous Verdict = iota
	Accept
	Reject
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "ambiguous"
	}
}

// Classifier maps a free-text reply to a Verdict by token search.
type Classifier struct {
	AcceptToken string
	RejectToken string
}

// Classifiers for the two gates. In both, the reject token contains the
// accept token, so the reject token must be searched first.
var (
	ReasonableClassifier = Classifier{AcceptToken: "REASONABLE", RejectToken: "UNREASONABLE"}
	ValidClassifier      = Classifier{AcceptToken: "VALID", RejectToken: "INVALID"}
)

// Classify upper-cases and trims reply, then looks for the reject token
// before the accept token. A reply with neither is Ambiguous.
func (c Classifier) Classify(reply string) Verdict {
	text := strings.ToUpper(strings.TrimSpace(reply))
	switch {
	case c.RejectToken != "" && strings.Contains(text, strings.ToUpper(c.RejectToken)):
		return Reject
	case c.AcceptToken != "" && strings.Contains(text, strings.ToUpper(c.AcceptToken)):
		return Accept
	default:
		return Ambiguous
	}
}

// AmbiguousPolicy decides whether an Ambiguous verdict passes a gate.
type AmbiguousPolicy int

const (
	// AcceptAmbiguous lets ambiguous replies through (fail open).
	AcceptAmbiguous AmbiguousPolicy = iota
	// RejectAmbiguous stops on ambiguous replies (fail closed).
	RejectAmbiguous
)

// ParsePolicy reads "accept" or "reject".
func ParsePolicy(s string) (AmbiguousPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "accept":
		return AcceptAmbiguous, nil
	case "reject":
		return RejectAmbiguous, nil
	}
	return AcceptAmbiguous, fmt.Errorf("unknown ambiguous policy %q", s)
}

func (p AmbiguousPolicy) String() string {
	if p == RejectAmbiguous {
		return "reject"
	}
	return "accept"
}

// Passes reports whether v lets the pipeline continue under p.
func (p AmbiguousPolicy) Passes(v Verdict) bool {
	switch v {
	case Accept:
		return true
	case Reject:
		return false
	default:
		return p == AcceptAmbiguous
	}
}

// Result is the outcome of one gate check.
type Result struct {
	Verdict Verdict

	// Passed is the verdict after applying the ambiguous policy.
	Passed bool

	// Reply is the raw model reply. Empty when no call was made.
	Reply string

	// Reason explains a failure in user terms.
	Reason string

	// Structural is set when the allocation failed its local checks and the
	// model was not consulted.
	Structural bool
}
