package interp

import (
	"math"

	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// BinaryOp applies a non-short-circuit binary operator.
//
// Arithmetic and comparisons promote to float when either operand is a
// float. Integer arithmetic wraps; / and % truncate toward zero. Bitwise
// and shift operators accept integers only. Comparisons yield 0 or 1.
func BinaryOp(pos token.Position, op token.Token, l, r types.Value) (types.Value, error) {
	switch op {
	case token.ADD, token.SUB, token.MUL, token.DIV, token.MOD:
		return arith(pos, op, l, r)

	case token.EQUALS, token.NOT_EQUALS, token.LESS, token.LTE, token.GREATER, token.GTE:
		return types.Bool(compare(op, l, r)), nil

	case token.AND, token.OR, token.XOR, token.SHL, token.SHR:
		if !l.IsInt() || !r.IsInt() {
			return types.Value{}, typeErrorf(pos, "operator %s requires integer operands, got %s and %s", op, l.Kind(), r.Kind())
		}
		return bitwise(pos, op, l.AsInt(), r.AsInt())

	case token.LAND:
		return types.Bool(l.AsBool() && r.AsBool()), nil
	case token.LOR:
		return types.Bool(l.AsBool() || r.AsBool()), nil
	}
	return types.Value{}, typeErrorf(pos, "unknown binary operator %s", op)
}

func arith(pos token.Position, op token.Token, l, r types.Value) (types.Value, error) {
	if (op == token.DIV || op == token.MOD) && !r.AsBool() {
		return types.Value{}, &DivisionError{Pos: pos, Op: op}
	}

	if l.IsInt() && r.IsInt() {
		a, b := l.AsInt(), r.AsInt()
		switch op {
		case token.ADD:
			return types.Int(a + b), nil
		case token.SUB:
			return types.Int(a - b), nil
		case token.MUL:
			return types.Int(a * b), nil
		case token.DIV:
			return types.Int(a / b), nil
		default:
			return types.Int(a % b), nil
		}
	}

	a, b := l.AsFloat(), r.AsFloat()
	switch op {
	case token.ADD:
		return types.Float(a + b), nil
	case token.SUB:
		return types.Float(a - b), nil
	case token.MUL:
		return types.Float(a * b), nil
	case token.DIV:
		return types.Float(a / b), nil
	default:
		return types.Float(math.Mod(a, b)), nil
	}
}

func compare(op token.Token, l, r types.Value) bool {
	if l.IsInt() && r.IsInt() {
		a, b := l.AsInt(), r.AsInt()
		switch op {
		case token.EQUALS:
			return a == b
		case token.NOT_EQUALS:
			return a != b
		case token.LESS:
			return a < b
		case token.LTE:
			return a <= b
		case token.GREATER:
			return a > b
		default:
			return a >= b
		}
	}

	a, b := l.AsFloat(), r.AsFloat()
	switch op {
	case token.EQUALS:
		return a == b
	case token.NOT_EQUALS:
		return a != b
	case token.LESS:
		return a < b
	case token.LTE:
		return a <= b
	case token.GREATER:
		return a > b
	default:
		return a >= b
	}
}

func bitwise(pos token.Position, op token.Token, a, b int64) (types.Value, error) {
	switch op {
	case token.AND:
		return types.Int(a & b), nil
	case token.OR:
		return types.Int(a | b), nil
	case token.XOR:
		return types.Int(a ^ b), nil
	}

	// Shifts: counts of 64 or more shift everything out; >> is arithmetic.
	if b < 0 {
		return types.Value{}, typeErrorf(pos, "negative shift count %d", b)
	}
	if op == token.SHL {
		return types.Int(a << uint64(b)), nil
	}
	return types.Int(a >> uint64(b)), nil
}

// UnaryOp applies a prefix operator other than ++ and --.
func UnaryOp(pos token.Position, op token.Token, v types.Value) (types.Value, error) {
	switch op {
	case token.ADD:
		return v, nil
	case token.SUB:
		return types.Negate(v), nil
	case token.NOT:
		return types.Bool(!v.AsBool()), nil
	case token.TILDE:
		if !v.IsInt() {
			return types.Value{}, typeErrorf(pos, "operator ~ requires an integer operand, got %s", v.Kind())
		}
		return types.Int(^v.AsInt()), nil
	}
	return types.Value{}, typeErrorf(pos, "unknown unary operator %s", op)
}

// Step adds delta (+1 or -1) to v, keeping its kind.
func Step(v types.Value, delta int64) types.Value {
	if v.IsFloat() {
		return types.Float(v.AsFloat() + float64(delta))
	}
	return types.Int(v.AsInt() + delta)
}
