// Package engine provides the Lisp evaluation engine for voxmap.
// It wraps zygomys in a sandboxed environment and produces a pipeline
// plan from user source code.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/voxmap/pkg/pipeline"
	zygo "github.com/glycerine/zygomys/zygo"
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
type EvalWarning struct {
	Line    int
	Col     int
	Message string
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Plan     *pipeline.Plan
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for voxmap scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the hard limit for a single evaluation. Non-positive
// values keep EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the evaluation limit.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Evaluate takes Lisp source code and produces a new plan.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns plan + nil errors + nil error
//   - On parse/eval failure: returns nil plan + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*pipeline.Plan, []EvalError, error) {
	res, err := e.EvaluateFull(source)
	if err != nil {
		return nil, nil, err
	}
	return res.Plan, res.Errors, nil
}

// EvaluateFull is Evaluate with warnings.
func (e *Engine) EvaluateFull(source string) (*EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		ch <- e.evaluate(source)
	}()

	res, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	if err != nil {
		return nil, err
	}
	return &EvalResult{Plan: res.plan, Errors: res.errors, Warnings: res.warnings}, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) evalResult {
	// Empty source is a valid program that produces an empty plan.
	if strings.TrimSpace(source) == "" {
		return evalResult{plan: &pipeline.Plan{}}
	}

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls. raw and transfer :file only record paths; the runner
	// opens them.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newPlanBuilder()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return evalResult{errors: parseZygomysError(err)}
	}
	if _, err := env.Run(); err != nil {
		return evalResult{errors: parseZygomysError(err)}
	}

	plan, errs := b.finish()
	if len(errs) > 0 {
		return evalResult{errors: errs, warnings: b.warnings}
	}
	slog.Debug("engine: evaluated",
		"steps", len(plan.Steps),
		"warnings", len(b.warnings))
	return evalResult{plan: plan, warnings: b.warnings}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
