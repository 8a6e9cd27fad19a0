package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/carton/pkg/assembly"
	"github.com/chazu/carton/pkg/shape"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms shape script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: rounded-flap -> rounded_flap
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpInstruction wraps one outline instruction.
type sexpInstruction struct {
	in shape.Instruction
}

func (s *sexpInstruction) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %s)", s.in.Kind, strings.Trim(fmt.Sprint(s.in.Coords), "[]"))
}
func (s *sexpInstruction) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a whole outline so it can be returned from `shape` and
// the flap constructors and consumed by `defshape`.
type sexpShape struct {
	shape shape.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %d instructions)", len(s.shape))
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// numbers reads the named parameters of fn, positionally or by keyword.
// A keyword overrides the positional value in the same slot.
func (pa kwArgs) numbers(fn string, names ...string) ([]float64, error) {
	if len(pa.positional) > len(names) {
		return nil, fmt.Errorf("%s takes at most %d arguments, got %d", fn, len(names), len(pa.positional))
	}
	out := make([]float64, len(names))
	for i, n := range names {
		var v zygo.Sexp
		if i < len(pa.positional) {
			v = pa.positional[i]
		}
		if kv, ok := pa.kw[n]; ok {
			v = kv
		}
		if v == nil {
			return nil, fmt.Errorf("%s: missing %s", fn, n)
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn, n, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_upper) and plain strings ("upper").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toFace converts a keyword or string to one of the box face names.
func toFace(s zygo.Sexp) (string, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected face name: %w", err)
	}
	if !lo.Contains(assembly.FaceNames, name) {
		return "", fmt.Errorf("unknown face %q, expected one of %s", name, strings.Join(assembly.FaceNames, ", "))
	}
	return name, nil
}

// toShape flattens instructions, shapes and lists of either into one
// outline.
func toShape(args []zygo.Sexp) (shape.Shape, error) {
	var out shape.Shape
	for _, a := range args {
		switch v := a.(type) {
		case *sexpInstruction:
			out = append(out, v.in)
		case *sexpShape:
			out = append(out, v.shape...)
		default:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, fmt.Errorf("expected instruction or shape, got %T (%s)", a, a.SexpString(nil))
			}
			inner, err := toShape(items)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		}
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// instruction registers a builtin that builds one outline instruction.
func instruction(env *zygo.Zlisp, fn string, build func(c []float64) shape.Instruction, names ...string) {
	env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := parseArgs(args).numbers(fn, names...)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpInstruction{in: build(c)}, nil
	})
}

// outline registers a builtin that builds a whole library shape.
func outline(env *zygo.Zlisp, fn string, build func(c []float64) shape.Shape, names ...string) {
	env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := parseArgs(args).numbers(fn, names...)
		if err != nil {
			return zygo.SexpNull, err
		}
		for i, v := range c {
			if v < 0 || math.IsNaN(v) {
				return zygo.SexpNull, fmt.Errorf("%s: %s must be non-negative, got %g", fn, names[i], v)
			}
		}
		return &sexpShape{shape: build(c)}, nil
	})
}

// registerBuiltins installs the shape script builtins into a zygomys
// environment. defshape records overrides into res.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens and kebab-case names are recognizable.
func registerBuiltins(env *zygo.Zlisp, res *Result) {

	// (line x y) (quad cx cy x y) (bezier c1x c1y c2x c2y x y)
	// (arc cx cy r start end), angles in radians
	instruction(env, "line", func(c []float64) shape.Instruction {
		return shape.L(c[0], c[1])
	}, "x", "y")
	instruction(env, "quad", func(c []float64) shape.Instruction {
		return shape.Q(c[0], c[1], c[2], c[3])
	}, "cx", "cy", "x", "y")
	instruction(env, "bezier", func(c []float64) shape.Instruction {
		return shape.C(c[0], c[1], c[2], c[3], c[4], c[5])
	}, "c1x", "c1y", "c2x", "c2y", "x", "y")
	instruction(env, "arc", func(c []float64) shape.Instruction {
		return shape.A(c[0], c[1], c[2], c[3], c[4])
	}, "cx", "cy", "r", "start", "end")

	// (deg 90) converts degrees to radians for arc angles.
	env.AddFunction("deg", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("deg requires exactly 1 argument, got %d", len(args))
		}
		d, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deg: %w", err)
		}
		return &zygo.SexpFloat{Val: d * math.Pi / 180}, nil
	})

	// (rect w h) (rounded-flap w h r) (trapezoid-flap w h r)
	outline(env, "rect", func(c []float64) shape.Shape {
		return shape.Rectangle(c[0], c[1])
	}, "width", "height")
	outline(env, "rounded_flap", func(c []float64) shape.Shape {
		return shape.RoundedFlap(c[0], c[1], c[2])
	}, "width", "height", "radius")
	outline(env, "trapezoid_flap", func(c []float64) shape.Shape {
		return shape.RoundedTrapezoid(c[0], c[1], c[2])
	}, "width", "height", "radius")

	// (shape (line 0 10) (quad ...) ...)
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s, err := toShape(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %w", err)
		}
		if err := s.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %w", err)
		}
		return &sexpShape{shape: s}, nil
	})

	// (defshape "upperFrontLeftFlap" (rounded-flap 40 40 4))
	env.AddFunction("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a face name and a shape")
		}
		face, err := toFace(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		s, err := toShape(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape %s: %w", face, err)
		}
		if len(s) == 0 {
			return zygo.SexpNull, fmt.Errorf("defshape %s: empty shape", face)
		}
		if err := s.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape %s: %w", face, err)
		}
		res.define(face, s)
		return &sexpShape{shape: s}, nil
	})
}
