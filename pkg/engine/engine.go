// Package engine evaluates Lisp shape scripts. Scripts run in a sandboxed
// zygomys environment and define outline overrides for named box faces.
package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/carton/pkg/shape"
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

// ErrScript wraps the evaluation errors returned by Shapes.
var ErrScript = errors.New("shape script failed")

// EvalWarning is a non-fatal note about a script, such as a face that
// was defined twice.
type EvalWarning struct {
	Face    string
	Message string
}

// Result is the output of a successful evaluation.
type Result struct {
	// Shapes maps face names to the outlines a script defined for them.
	Shapes map[string]shape.Shape
	// Order lists defined faces in first-definition order.
	Order []string
	// Value is the script's final expression when it is a shape.
	Value    shape.Shape
	Warnings []EvalWarning
}

func newResult() *Result {
	return &Result{Shapes: make(map[string]shape.Shape)}
}

// define records an override, warning when a face is redefined.
func (r *Result) define(face string, s shape.Shape) {
	if _, ok := r.Shapes[face]; ok {
		r.Warnings = append(r.Warnings, EvalWarning{Face: face, Message: "redefined; last definition wins"})
	} else {
		r.Order = append(r.Order, face)
	}
	r.Shapes[face] = s.Clone()
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a shape script.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
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

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// Shapes evaluates source and returns its face overrides. Evaluation
// errors are joined and wrapped in ErrScript.
func (e *Engine) Shapes(source string) (map[string]shape.Shape, error) {
	res, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, ee := range evalErrs {
			errs[i] = ee
		}
		return nil, fmt.Errorf("%w: %w", ErrScript, errors.Join(errs...))
	}
	return res.Shapes, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	res := newResult()
	// Empty source is a valid script that overrides nothing.
	if strings.TrimSpace(source) == "" {
		return res, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, res)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}
	if s, ok := last.(*sexpShape); ok {
		res.Value = s.shape.Clone()
	}
	return res, nil, nil
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
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
