// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Node names a step in the graph.
type Node string

// End is the sink node. Reaching it terminates a run.
const End Node = "__end__"

// Branch is the outcome a router picks.
type Branch string

const (
	Continue Branch = "continue"
	Stop     Branch = "stop"
)

// StepFunc mutates the state. A returned error fails the run.
type StepFunc func(ctx context.Context, s *State) error

// RouterFunc picks the branch to follow after a step.
type RouterFunc func(s *State) Branch

var (
	// ErrCycleDetected is returned when a run visits more nodes than the graph holds.
	ErrCycleDetected = errors.New("pipeline visited more nodes than it contains")

	// ErrNotCompiled is returned by Run on a graph that has not been compiled.
	ErrNotCompiled = errors.New("graph is not compiled")
)

// StepError wraps the error of the step that failed.
type StepError struct {
	Node Node
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Node, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// =============================================================================
// GRAPH
// =============================================================================

type route struct {
	to       Node // unconditional target
	router   RouterFunc
	branches map[Branch]Node
}

func (r route) conditional() bool {
	return r.router != nil
}

// Graph is a directed graph of steps with unconditional and routed edges.
// Build it with AddNode, AddEdge, AddConditionalEdges and SetEntry, then
// Compile before Run. A compiled graph is read-only and may be run
// concurrently on separate states.
type Graph struct {
	nodes    map[Node]StepFunc
	order    []Node
	routes   map[Node]route
	entry    Node
	errs     []error
	compiled bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:  make(map[Node]StepFunc),
		routes: make(map[Node]route),
	}
}

// AddNode registers a step. Errors are reported by Compile.
func (g *Graph) AddNode(name Node, fn StepFunc) *Graph {
	switch {
	case name == End || name == "":
		g.errs = append(g.errs, fmt.Errorf("invalid node name %q", name))
	case fn == nil:
		g.errs = append(g.errs, fmt.Errorf("node %s has no step", name))
	default:
		if _, dup := g.nodes[name]; dup {
			g.errs = append(g.errs, fmt.Errorf("duplicate node %s", name))
			return g
		}
		g.nodes[name] = fn
		g.order = append(g.order, name)
	}
	return g
}

// AddEdge routes from to to unconditionally.
func (g *Graph) AddEdge(from, to Node) *Graph {
	g.setRoute(from, route{to: to})
	return g
}

// AddConditionalEdges routes from through router to one of branches.
func (g *Graph) AddConditionalEdges(from Node, router RouterFunc, branches map[Branch]Node) *Graph {
	if router == nil || len(branches) == 0 {
		g.errs = append(g.errs, fmt.Errorf("conditional edge from %s needs a router and branches", from))
		return g
	}
	copied := make(map[Branch]Node, len(branches))
	for b, n := range branches {
		copied[b] = n
	}
	g.setRoute(from, route{router: router, branches: copied})
	return g
}

func (g *Graph) setRoute(from Node, r route) {
	if _, dup := g.routes[from]; dup {
		g.errs = append(g.errs, fmt.Errorf("node %s already has an outgoing route", from))
		return
	}
	g.routes[from] = r
}

// SetEntry sets the first node to run.
func (g *Graph) SetEntry(name Node) *Graph {
	g.entry = name
	return g
}

// Compile checks the graph: the entry exists, every node has exactly one
// outgoing route, and every route points at a known node or End.
func (g *Graph) Compile() error {
	errs := append([]error(nil), g.errs...)

	if g.entry == "" {
		errs = append(errs, errors.New("entry node not set"))
	} else if _, ok := g.nodes[g.entry]; !ok {
		errs = append(errs, fmt.Errorf("entry node %s does not exist", g.entry))
	}

	for _, name := range g.order {
		if _, ok := g.routes[name]; !ok {
			errs = append(errs, fmt.Errorf("node %s has no outgoing route", name))
		}
	}

	for from, r := range g.routes {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("route from unknown node %s", from))
			continue
		}
		for _, to := range r.targets() {
			if to == End {
				continue
			}
			if _, ok := g.nodes[to]; !ok {
				errs = append(errs, fmt.Errorf("route %s -> %s targets unknown node", from, to))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid graph: %w", errors.Join(errs...))
	}
	g.compiled = true
	return nil
}

func (r route) targets() []Node {
	if !r.conditional() {
		return []Node{r.to}
	}
	out := make([]Node, 0, len(r.branches))
	for _, b := range sortedBranches(r.branches) {
		out = append(out, r.branches[b])
	}
	return out
}

// Nodes returns the registered nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.order...)
}

// Run walks the graph from the entry until End. Visited nodes are appended
// to s.History. The first step error stops the run and is returned wrapped
// in *StepError; the state is left as the step left it.
func (g *Graph) Run(ctx context.Context, s *State) error {
	if !g.compiled {
		return ErrNotCompiled
	}

	current := g.entry
	visits := 0
	for current != End {
		if err := ctx.Err(); err != nil {
			return err
		}

		visits++
		if visits > len(g.nodes) {
			return ErrCycleDetected
		}

		s.History = append(s.History, current)
		if err := g.nodes[current](ctx, s); err != nil {
			return &StepError{Node: current, Err: err}
		}

		next, err := g.next(current, s)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (g *Graph) next(from Node, s *State) (Node, error) {
	r := g.routes[from]
	if !r.conditional() {
		return r.to, nil
	}
	b := r.router(s)
	to, ok := r.branches[b]
	if !ok {
		return "", fmt.Errorf("router for %s returned unmapped branch %q", from, b)
	}
	return to, nil
}

// =============================================================================
// MERMAID
// =============================================================================

// Mermaid renders the graph as a left-to-right Mermaid flowchart.
func (g *Graph) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")
	sb.WriteString("    __start__([start])\n")
	fmt.Fprintf(&sb, "    %s([end])\n", End)
	if g.entry != "" {
		fmt.Fprintf(&sb, "    __start__ --> %s\n", g.entry)
	}

	for _, from := range g.order {
		r, ok := g.routes[from]
		if !ok {
			continue
		}
		if !r.conditional() {
			fmt.Fprintf(&sb, "    %s --> %s\n", from, r.to)
			continue
		}
		for _, b := range sortedBranches(r.branches) {
			fmt.Fprintf(&sb, "    %s -.->|%s| %s\n", from, b, r.branches[b])
		}
	}
	return sb.String()
}

func sortedBranches(m map[Branch]Node) []Branch {
	out := make([]Branch, 0, len(m))
	for b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
