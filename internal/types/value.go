// Package types defines runtime value types for cexpr.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind represents the type of a runtime value.
type Kind uint8

const (
	KindInt   Kind = iota // 64-bit signed integer
	KindFloat             // 64-bit IEEE floating point
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Value is an integer or a floating point number.
// Uses tagged union pattern; the zero Value is Int(0).
// Values are small and passed by value.
type Value struct {
	kind Kind
	i    int64
	f    float64
}

// Constructors

// Int creates an integer value.
func Int(n int64) Value {
	return Value{kind: KindInt, i: n}
}

// Float creates a floating point value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Bool creates an integer value from a boolean (1 for true, 0 for false).
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Accessors

// Kind returns the value's type.
func (v Value) Kind() Kind {
	return v.kind
}

// IsInt returns true if the value is an integer.
func (v Value) IsInt() bool {
	return v.kind == KindInt
}

// IsFloat returns true if the value is floating point.
func (v Value) IsFloat() bool {
	return v.kind == KindFloat
}

// Conversions

// AsInt returns the integer representation, truncating floats toward zero.
func (v Value) AsInt() int64 {
	if v.kind == KindFloat {
		return int64(v.f)
	}
	return v.i
}

// AsFloat returns the floating point representation.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// AsBool reports whether the value is non-zero. Only an exact zero of
// either kind (including -0.0) is false; NaN is true.
func (v Value) AsBool() bool {
	if v.kind == KindFloat {
		return v.f != 0
	}
	return v.i != 0
}

// Format renders the value the way the driver prints it. Floats always
// carry a decimal point or exponent so they stay distinguishable from
// integers.
func (v Value) Format() string {
	if v.kind == KindInt {
		return strconv.FormatInt(v.i, 10)
	}
	return FormatFloat(v.f)
}

// String returns a debug representation of the value.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Float(%s)", FormatFloat(v.f))
	default:
		return "Invalid()"
	}
}

// FormatFloat formats f with the shortest representation that round-trips.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
