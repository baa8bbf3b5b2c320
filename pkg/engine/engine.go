// Package engine provides the Lisp front end for arc editing. It wraps
// zygomys in a sandboxed environment and replays user scripts against a
// fresh ArcGraph, one editing session per evaluation.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/chazu/arcmesh/pkg/loops"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/google/uuid"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
// Err keeps the underlying error so callers can match it with errors.Is.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	Arcs    []graph.ArcID
	Err     error
}

// Session is one editing session: the graph a script built and every loop
// set it extracted, in call order.
type Session struct {
	ID       uuid.UUID
	Graph    *graph.ArcGraph
	LoopSets []loops.LoopSet
	Warnings []EvalWarning
}

func newSession(cfg graph.Config) (*Session, error) {
	g, err := graph.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Session{ID: uuid.New(), Graph: g}, nil
}

func (s *Session) warn(w EvalWarning) {
	log.Warnf("session %s: %s", s.ID, w.Message)
	s.Warnings = append(s.Warnings, w)
}

// Engine wraps the zygomys interpreter for arc scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh graph for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	cfg        graph.Config
}

// NewEngine creates a new Engine whose sessions use graph.DefaultConfig.
func NewEngine() *Engine {
	return &Engine{cfg: graph.DefaultConfig()}
}

// NewEngineWithConfig creates an Engine whose sessions start from cfg.
// Scripts may still change snapping through their own builtins.
func NewEngineWithConfig(cfg graph.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the graph configuration new sessions start from.
func (e *Engine) Config() graph.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Evaluate runs Lisp source against a new session.
//
// Return semantics:
//   - On success: returns session + nil errors + nil error
//   - On parse/eval failure: returns nil session + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Session, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	cfg := e.cfg
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := evaluate(source, cfg)
		ch <- evalResult{session: s, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string, cfg graph.Config) (*Session, []EvalError, error) {
	s, err := newSession(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return s, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		evalErrs := parseZygomysError(err)
		log.Debugf("session %s: load failed: %v", s.ID, evalErrs[0])
		return nil, evalErrs, nil
	}

	if _, err := env.Run(); err != nil {
		evalErrs := parseZygomysError(err)
		log.Debugf("session %s: run failed: %v", s.ID, evalErrs[0])
		return nil, evalErrs, nil
	}

	log.Debugf("session %s: %d arcs, %d end nodes, %d loop sets",
		s.ID, s.Graph.ArcCount(), s.Graph.EndNodeCount(), len(s.LoopSets))
	return s, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
