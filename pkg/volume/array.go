package volume

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Kind is the element type of a volume's value array.
type Kind int

const (
	Uint8 Kind = iota
	Int8
	Uint16
	Int16
	Int32
	Float32
	Float64
)

var kindNames = [...]string{"uint8", "int8", "uint16", "int16", "int32", "float32", "float64"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Size returns the element width in bytes.
func (k Kind) Size() int {
	switch k {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// IsInteger reports whether values of this kind are integers.
func (k Kind) IsInteger() bool {
	switch k {
	case Uint8, Int8, Uint16, Int16, Int32:
		return true
	}
	return false
}

// Range returns the representable range of an integer kind. Float kinds
// return the float32/float64 extremes.
func (k Kind) Range() (min, max float64) {
	switch k {
	case Uint8:
		return 0, math.MaxUint8
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Uint16:
		return 0, math.MaxUint16
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Int32:
		return math.MinInt32, math.MaxInt32
	case Float32:
		return -math.MaxFloat32, math.MaxFloat32
	}
	return -math.MaxFloat64, math.MaxFloat64
}

// ParseKind converts a kind name such as "uint8" to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	switch name {
	case "byte", "char":
		return Uint8, nil
	case "short":
		return Int16, nil
	case "int", "integer":
		return Int32, nil
	case "float":
		return Float32, nil
	case "double":
		return Float64, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Number is the set of Go element types a value array can hold.
type Number interface {
	uint8 | int8 | uint16 | int16 | int32 | float32 | float64
}

// Array is a read-only numeric array whose element type is only known at
// run time. At widens every element to float64.
type Array interface {
	Kind() Kind
	Len() int
	At(i int) float64
}

type typedArray[T Number] struct {
	kind Kind
	data []T
}

func (a *typedArray[T]) Kind() Kind { return a.kind }
func (a *typedArray[T]) Len() int { return len(a.data) }
func (a *typedArray[T]) At(i int) float64 { return float64(a.data[i]) }
func (a *typedArray[T]) String() string { return fmt.Sprintf("%s[%d]", a.kind, len(a.data)) }

// NewArray wraps data without copying it.
func NewArray[T Number](data []T) Array {
	return &typedArray[T]{kind: kindOf[T](), data: data}
}

// Data returns the typed backing slice of a, or false if a does not hold
// elements of type T.
func Data[T Number](a Array) ([]T, bool) {
	ta, ok := a.(*typedArray[T])
	if !ok {
		return nil, false
	}
	return ta.data, true
}

func kindOf[T Number]() Kind {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return Uint8
	case int8:
		return Int8
	case uint16:
		return Uint16
	case int16:
		return Int16
	case int32:
		return Int32
	case float32:
		return Float32
	}
	return Float64
}

// MakeArray allocates a zeroed array of n elements of the given kind.
func MakeArray(kind Kind, n int) (Array, error) {
	switch kind {
	case Uint8:
		return NewArray(make([]uint8, n)), nil
	case Int8:
		return NewArray(make([]int8, n)), nil
	case Uint16:
		return NewArray(make([]uint16, n)), nil
	case Int16:
		return NewArray(make([]int16, n)), nil
	case Int32:
		return NewArray(make([]int32, n)), nil
	case Float32:
		return NewArray(make([]float32, n)), nil
	case Float64:
		return NewArray(make([]float64, n)), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}

// FromFloat64 converts values to the given kind, rounding and saturating
// for integer kinds.
func FromFloat64(kind Kind, values []float64) (Array, error) {
	lo, hi := kind.Range()
	conv := func(v float64) float64 {
		if kind.IsInteger() {
			v = math.Round(v)
		}
		return math.Max(lo, math.Min(hi, v))
	}
	switch kind {
	case Uint8:
		return NewArray(convertAll[uint8](values, conv)), nil
	case Int8:
		return NewArray(convertAll[int8](values, conv)), nil
	case Uint16:
		return NewArray(convertAll[uint16](values, conv)), nil
	case Int16:
		return NewArray(convertAll[int16](values, conv)), nil
	case Int32:
		return NewArray(convertAll[int32](values, conv)), nil
	case Float32:
		return NewArray(convertAll[float32](values, conv)), nil
	case Float64:
		out := make([]float64, len(values))
		copy(out, values)
		return NewArray(out), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}

func convertAll[T Number](values []float64, conv func(float64) float64) []T {
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(conv(v))
	}
	return out
}

// DecodeArray decodes n little- or big-endian elements of the given kind
// from b.
func DecodeArray(kind Kind, b []byte, order binary.ByteOrder) (Array, error) {
	size := kind.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	if len(b)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %s size %d", ErrShape, len(b), kind, size)
	}
	n := len(b) / size
	switch kind {
	case Uint8:
		out := make([]uint8, n)
		copy(out, b)
		return NewArray(out), nil
	case Int8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(b[i])
		}
		return NewArray(out), nil
	case Uint16:
		out := make([]uint16, n)
		for i := range out {
			out[i] = order.Uint16(b[i*2:])
		}
		return NewArray(out), nil
	case Int16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(order.Uint16(b[i*2:]))
		}
		return NewArray(out), nil
	case Int32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(order.Uint32(b[i*4:]))
		}
		return NewArray(out), nil
	case Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(b[i*4:]))
		}
		return NewArray(out), nil
	default:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(b[i*8:]))
		}
		return NewArray(out), nil
	}
}
