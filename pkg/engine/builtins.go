package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/voxmap/pkg/mapper"
	"github.com/chazu/voxmap/pkg/pipeline"
	"github.com/chazu/voxmap/pkg/solid"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms voxmap Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: ortho-slice -> ortho_slice
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
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
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters; a
		// minus operator is left alone.
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

// sexpSource is returned by volume and raw.
type sexpSource struct {
	src pipeline.Source
}

func (s *sexpSource) SexpString(ps *zygo.PrintState) string {
	if s.src.RawPath != "" {
		return fmt.Sprintf("(raw %q)", s.src.RawPath)
	}
	if s.src.Solid != nil {
		return "(volume " + s.src.Solid.String() + ")"
	}
	return fmt.Sprintf("(volume %s %g)", s.src.Shape, s.src.Size)
}
func (s *sexpSource) Type() *zygo.RegisteredType { return nil }

// sexpStep is returned by every mapping builtin.
type sexpStep struct {
	index int
	step  pipeline.Step
}

func (s *sexpStep) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(step %d %s)", s.index, s.step.Kind)
}
func (s *sexpStep) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a mapper.Plane.
type sexpPlane struct {
	plane mapper.Plane
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(plane %g %g %g %g)", p.plane.A, p.plane.B, p.plane.C, p.plane.D)
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a CSG solid.
type sexpSolid struct {
	solid *solid.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string { return s.solid.String() }
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps three numbers.
type sexpVec3 struct {
	vec [3]float64
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

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
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// unknownKeyword reports the first keyword not in allowed, or "".
func (pa kwArgs) unknownKeyword(allowed ...string) string {
	for k := range pa.kw {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			return k
		}
	}
	return ""
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

// toInt extracts an integer. Floats with no fractional part are accepted.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts true/false literals and the strings or keywords "true"
// and "false".
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return false, fmt.Errorf("expected boolean: %w", err)
	}
	switch name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("expected boolean, got %q", name)
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
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

// toAxis converts a keyword or string to a mapper.Axis.
func toAxis(s zygo.Sexp) (mapper.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	return mapper.ParseAxis(name)
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) ([3]float64, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return [3]float64{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (*solid.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// positionalFloats reads exactly n numeric positional arguments.
func positionalFloats(fn string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d numeric arguments, got %d", fn, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", fn, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// solidPair reads the two solid operands of a boolean operation.
func solidPair(fn string, args []zygo.Sexp) (*solid.Solid, *solid.Solid, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s requires 2 solids, got %d arguments", fn, len(args))
	}
	a, err := toSolid(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fn, err)
	}
	b, err := toSolid(args[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fn, err)
	}
	return a, b, nil
}

// toRes reads a grid resolution: a single integer for a cube, a vec3, or
// a list of three integers.
func toRes(s zygo.Sexp) ([3]int, error) {
	var res [3]int
	switch v := s.(type) {
	case *zygo.SexpInt, *zygo.SexpFloat:
		n, err := toInt(v)
		if err != nil {
			return res, err
		}
		res = [3]int{n, n, n}
	case *sexpVec3:
		for i, f := range v.vec {
			if f != math.Trunc(f) {
				return res, fmt.Errorf("resolution component %d is not an integer: %g", i, f)
			}
			res[i] = int(f)
		}
	default:
		items, err := sexpListToSlice(s)
		if err != nil {
			return res, fmt.Errorf("expected integer, vec3 or list: %w", err)
		}
		if len(items) != 3 {
			return res, fmt.Errorf("expected 3 resolution components, got %d", len(items))
		}
		for i, item := range items {
			if res[i], err = toInt(item); err != nil {
				return res, err
			}
		}
	}
	for i, n := range res {
		if n < 1 {
			return res, fmt.Errorf("resolution component %d must be positive, got %d", i, n)
		}
	}
	return res, nil
}

// toPlane extracts a plane from a sexpPlane.
func toPlane(s zygo.Sexp) (mapper.Plane, error) {
	if p, ok := s.(*sexpPlane); ok {
		return p.plane, nil
	}
	return mapper.Plane{}, fmt.Errorf("expected plane, got %T (%s)", s, s.SexpString(nil))
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

// stepName reads the optional :name keyword shared by every step.
func stepName(pa kwArgs) (string, error) {
	v, ok := pa.kw["name"]
	if !ok {
		return "", nil
	}
	return toString(v)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all voxmap DSL builtins into a zygomys
// environment. The builtins populate b during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *planBuilder) {

	// -----------------------------------------------------------------------
	// (volume :shape "sphere" :size 10 :res 32 :cells "tetrahedra" :quantize "uint8")
	// (volume :solid (difference (box 8 8 8) (sphere 5)) :res 32)
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if k := pa.unknownKeyword("shape", "solid", "size", "res", "cells", "quantize"); k != "" {
			return zygo.SexpNull, fmt.Errorf("volume: unknown keyword :%s", k)
		}
		src := pipeline.Source{Size: 1}

		shapeArg, hasShape := pa.kw["shape"]
		solidArg, hasSolid := pa.kw["solid"]
		var err error
		switch {
		case hasShape && hasSolid:
			return zygo.SexpNull, fmt.Errorf("volume takes :shape or :solid, not both")
		case hasShape:
			if src.Shape, err = toKeywordString(shapeArg); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: shape: %w", err)
			}
		case hasSolid:
			if src.Solid, err = toSolid(solidArg); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: solid: %w", err)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("volume requires :shape or :solid")
		}

		if v, ok := pa.kw["size"]; ok {
			if src.Size, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: size: %w", err)
			}
			if src.Size <= 0 {
				return zygo.SexpNull, fmt.Errorf("volume: size must be positive, got %g", src.Size)
			}
		}
		if v, ok := pa.kw["res"]; ok {
			if src.Res, err = toRes(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: res: %w", err)
			}
		}
		if v, ok := pa.kw["cells"]; ok {
			if src.Cells, err = toKeywordString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: cells: %w", err)
			}
		}
		if v, ok := pa.kw["quantize"]; ok {
			if src.Quantize, err = toKeywordString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: quantize: %w", err)
			}
		}

		b.setSource(src)
		return &sexpSource{src: src}, nil
	})

	// -----------------------------------------------------------------------
	// Solids: (box 4 4 2) (sphere 3) (cylinder 10 2)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := positionalFloats("box", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := solid.Box(d[0], d[1], d[2])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := positionalFloats("sphere", args, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := solid.Sphere(d[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	// (cylinder height radius)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := positionalFloats("cylinder", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := solid.Cylinder(d[0], d[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	// (union a b ...)
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		parts := make([]*solid.Solid, len(args))
		for i, a := range args {
			s, err := toSolid(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union argument %d: %w", i+1, err)
			}
			parts[i] = s
		}
		u, err := solid.Union(parts...)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: u}, nil
	})

	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := solidPair("difference", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: solid.Difference(a, b)}, nil
	})

	env.AddFunction("intersection", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := solidPair("intersection", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: solid.Intersection(a, b)}, nil
	})

	// (translate s (vec3 1 0 0)) and (rotate s (vec3 0 90 0)); rotation in degrees.
	for _, fn := range []string{"translate", "rotate"} {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3", fn)
			}
			s, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			if fn == "translate" {
				return &sexpSolid{solid: s.Translate(v)}, nil
			}
			return &sexpSolid{solid: s.Rotate(v)}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (raw "head.raw" :kind "uint8" :res (vec3 64 64 32) :cells "hexahedra")
	// -----------------------------------------------------------------------
	env.AddFunction("raw", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("raw requires a file path as first argument")
		}
		path, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("raw: path: %w", err)
		}
		src := pipeline.Source{RawPath: path}

		v, ok := pa.kw["kind"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("raw requires :kind")
		}
		if src.Kind, err = toKeywordString(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("raw: kind: %w", err)
		}
		v, ok = pa.kw["res"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("raw requires :res")
		}
		if src.Res, err = toRes(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("raw: res: %w", err)
		}
		if v, ok := pa.kw["cells"]; ok {
			if src.Cells, err = toKeywordString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("raw: cells: %w", err)
			}
		}

		b.setSource(src)
		return &sexpSource{src: src}, nil
	})

	// -----------------------------------------------------------------------
	// (transfer :resolution 128) or (transfer :file "tf.toml")
	// -----------------------------------------------------------------------
	env.AddFunction("transfer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var spec pipeline.TransferSpec
		var err error
		if v, ok := pa.kw["file"]; ok {
			if spec.File, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("transfer: file: %w", err)
			}
		}
		if v, ok := pa.kw["resolution"]; ok {
			if spec.Resolution, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("transfer: resolution: %w", err)
			}
			if spec.Resolution < 1 {
				return zygo.SexpNull, fmt.Errorf("transfer: resolution must be positive, got %d", spec.Resolution)
			}
		}
		if spec.File == "" && spec.Resolution == 0 {
			return zygo.SexpNull, fmt.Errorf("transfer requires :resolution or :file")
		}
		b.setTransfer(spec)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v sexpVec3
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v.vec[i] = f
		}
		return &v, nil
	})

	// -----------------------------------------------------------------------
	// (plane a b c d) is the plane ax + by + cz + d = 0
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("plane requires exactly 4 coefficients, got %d", len(args))
		}
		var c [4]float64
		for i := range c {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: coefficient %d: %w", i, err)
			}
			c[i] = f
		}
		if c[0] == 0 && c[1] == 0 && c[2] == 0 {
			return zygo.SexpNull, fmt.Errorf("plane: normal (a b c) must not be zero")
		}
		return &sexpPlane{plane: mapper.Plane{A: c[0], B: c[1], C: c[2], D: c[3]}}, nil
	})

	// -----------------------------------------------------------------------
	// (isosurface :level 0.5 :normals "vertex" :duplicate false :name "skin")
	// -----------------------------------------------------------------------
	env.AddFunction("isosurface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if k := pa.unknownKeyword("level", "normals", "duplicate", "name"); k != "" {
			return zygo.SexpNull, fmt.Errorf("isosurface: unknown keyword :%s", k)
		}
		step := pipeline.Step{
			Kind: pipeline.StepIsosurface,
			Iso:  mapper.IsoOptions{Normals: mapper.PerPolygon, Duplicate: true},
		}
		var err error
		if v, ok := pa.kw["level"]; ok {
			if step.Iso.Isolevel, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("isosurface: level: %w", err)
			}
		}
		if v, ok := pa.kw["normals"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("isosurface: normals: %w", err)
			}
			if step.Iso.Normals, err = mapper.ParseNormalPolicy(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("isosurface: normals: %w", err)
			}
		}
		if v, ok := pa.kw["duplicate"]; ok {
			if step.Iso.Duplicate, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("isosurface: duplicate: %w", err)
			}
		}
		if step.Name, err = stepName(pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("isosurface: name: %w", err)
		}
		return &sexpStep{index: b.addStep(step), step: step}, nil
	})

	// -----------------------------------------------------------------------
	// (slice (plane 0 0 1 -4) :name "mid")
	// -----------------------------------------------------------------------
	env.AddFunction("slice", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("slice requires a plane as first argument")
		}
		plane, err := toPlane(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("slice: %w", err)
		}
		step := pipeline.Step{Kind: pipeline.StepSlice, Plane: plane}
		if step.Name, err = stepName(pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("slice: name: %w", err)
		}
		return &sexpStep{index: b.addStep(step), step: step}, nil
	})

	// -----------------------------------------------------------------------
	// (ortho-slice :axis :z :at 4)
	//
	// Registered as "ortho_slice"; the preprocessor converts the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("ortho_slice", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["axis"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("ortho-slice requires :axis")
		}
		axis, err := toAxis(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ortho-slice: axis: %w", err)
		}
		at := 0.0
		if v, ok := pa.kw["at"]; ok {
			if at, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ortho-slice: at: %w", err)
			}
		}
		step := pipeline.Step{Kind: pipeline.StepSlice, Plane: mapper.OrthoPlane(axis, at)}
		if step.Name, err = stepName(pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("ortho-slice: name: %w", err)
		}
		return &sexpStep{index: b.addStep(step), step: step}, nil
	})

	// -----------------------------------------------------------------------
	// (metropolis :particles 5000 :seed 7 :size 2)
	// -----------------------------------------------------------------------
	env.AddFunction("metropolis", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if k := pa.unknownKeyword("particles", "seed", "size", "name"); k != "" {
			return zygo.SexpNull, fmt.Errorf("metropolis: unknown keyword :%s", k)
		}
		step := pipeline.Step{Kind: pipeline.StepMetropolis, Particles: mapper.DefaultParticles}
		var err error
		if v, ok := pa.kw["particles"]; ok {
			if step.Particles, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("metropolis: particles: %w", err)
			}
			if step.Particles < 0 {
				return zygo.SexpNull, fmt.Errorf("metropolis: particles must not be negative, got %d", step.Particles)
			}
		}
		if v, ok := pa.kw["seed"]; ok {
			seed, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("metropolis: seed: %w", err)
			}
			step.Seed = int64(seed)
		}
		if v, ok := pa.kw["size"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("metropolis: size: %w", err)
			}
			step.PointSize = float32(f)
		}
		if step.Name, err = stepName(pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("metropolis: name: %w", err)
		}
		return &sexpStep{index: b.addStep(step), step: step}, nil
	})

	// -----------------------------------------------------------------------
	// (vertices :size 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vertices", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		step := pipeline.Step{Kind: pipeline.StepVertices}
		if v, ok := pa.kw["size"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vertices: size: %w", err)
			}
			step.PointSize = float32(f)
		}
		var err error
		if step.Name, err = stepName(pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("vertices: name: %w", err)
		}
		return &sexpStep{index: b.addStep(step), step: step}, nil
	})
}
