package types

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/coregx/coregex"
)

// ErrRange is returned for integer literals that do not fit in 64 bits.
var ErrRange = errors.New("integer literal out of range")

// Literal spellings. Checked in order; the first match decides the base.
var (
	hexLiteral   = mustCompile(`^0[xX][0-9a-fA-F]+$`)
	octLiteral   = mustCompile(`^0[0-7]+$`)
	decLiteral   = mustCompile(`^(0|[1-9][0-9]*)$`)
	floatLiteral = mustCompile(`^(([0-9]+\.[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?|[0-9]+[eE][+-]?[0-9]+)$`)
)

func mustCompile(pattern string) *coregex.Regexp {
	re, err := coregex.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("types: bad literal pattern %q: %v", pattern, err))
	}
	return re
}

// LiteralError describes a numeric lexeme that is not a valid literal.
type LiteralError struct {
	Raw string
	Err error
}

func (e *LiteralError) Error() string {
	if e.Err == ErrRange {
		return fmt.Sprintf("%s: %q", e.Err, e.Raw)
	}
	return fmt.Sprintf("invalid number literal %q", e.Raw)
}

func (e *LiteralError) Unwrap() error {
	return e.Err
}

// ParseLiteral converts a numeric lexeme to a Value.
//
// Accepted spellings:
//   - hexadecimal integer: 0x1F
//   - octal integer: 017 (a leading zero followed by octal digits)
//   - decimal integer: 0, 42
//   - floating point: 3.14, .5, 1., 1e10, 2.5E-3
//
// Integers yield KindInt, everything else KindFloat.
func ParseLiteral(raw string) (Value, error) {
	switch {
	case hexLiteral.MatchString(raw):
		return parseInt(raw, raw[2:], 16)
	case octLiteral.MatchString(raw):
		return parseInt(raw, raw[1:], 8)
	case decLiteral.MatchString(raw):
		return parseInt(raw, raw, 10)
	case floatLiteral.MatchString(raw):
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			// ParseFloat reports overflow as ErrRange but still returns ±Inf,
			// which is what a C compiler would fold the constant to.
			var numErr *strconv.NumError
			if !errors.As(err, &numErr) || numErr.Err != strconv.ErrRange {
				return Value{}, &LiteralError{Raw: raw, Err: err}
			}
		}
		return Float(f), nil
	default:
		return Value{}, &LiteralError{Raw: raw}
	}
}

func parseInt(raw, digits string, base int) (Value, error) {
	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return Value{}, &LiteralError{Raw: raw, Err: ErrRange}
		}
		return Value{}, &LiteralError{Raw: raw, Err: err}
	}
	return Int(n), nil
}

// ParseValue parses a literal with an optional leading sign, as used for
// values supplied on the command line or in store files.
func ParseValue(s string) (Value, error) {
	neg := false
	body := s
	if len(body) > 0 && (body[0] == '-' || body[0] == '+') {
		neg = body[0] == '-'
		body = body[1:]
	}
	if neg && decLiteral.MatchString(body) {
		// Parse with the sign so the minimum int64 is representable.
		n, err := strconv.ParseInt("-"+body, 10, 64)
		if err != nil {
			return Value{}, &LiteralError{Raw: s, Err: ErrRange}
		}
		return Int(n), nil
	}
	v, err := ParseLiteral(body)
	if err != nil {
		return Value{}, &LiteralError{Raw: s, Err: errors.Unwrap(err)}
	}
	if neg {
		return Negate(v), nil
	}
	return v, nil
}

// Negate returns -v with wraparound for integers.
func Negate(v Value) Value {
	if v.IsFloat() {
		return Float(-v.f)
	}
	return Int(-v.i)
}
