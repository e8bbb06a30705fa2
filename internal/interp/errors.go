package interp

import (
	"fmt"

	"github.com/kolkov/cexpr/internal/token"
)

// RuntimeError is implemented by every error the evaluator returns:
// *NameError, *IndexError, *TypeError and *DivisionError.
type RuntimeError interface {
	error
	Position() token.Position
	runtimeError()
}

// NameError reports a read of an unbound name.
type NameError struct {
	Pos  token.Position
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%s: undefined variable %q", e.Pos, e.Name)
}

func (e *NameError) Position() token.Position { return e.Pos }
func (e *NameError) runtimeError()            {}

// IndexError reports a subscript outside an array's bounds.
type IndexError struct {
	Pos   token.Position
	Name  string
	Index int64
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range for %q (length %d)", e.Pos, e.Index, e.Name, e.Len)
}

func (e *IndexError) Position() token.Position { return e.Pos }
func (e *IndexError) runtimeError()            {}

// TypeError reports an operator applied to values it does not accept,
// such as a bitwise operator on a float or a subscript on a scalar.
type TypeError struct {
	Pos     token.Position
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func (e *TypeError) Position() token.Position { return e.Pos }
func (e *TypeError) runtimeError()            {}

// DivisionError reports a zero divisor for / or %.
type DivisionError struct {
	Pos token.Position
	Op  token.Token // DIV or MOD
}

func (e *DivisionError) Error() string {
	if e.Op == token.MOD {
		return fmt.Sprintf("%s: modulo by zero", e.Pos)
	}
	return fmt.Sprintf("%s: division by zero", e.Pos)
}

func (e *DivisionError) Position() token.Position { return e.Pos }
func (e *DivisionError) runtimeError()            {}

// typeErrorf creates a TypeError with a formatted message.
func typeErrorf(pos token.Position, format string, args ...any) *TypeError {
	return &TypeError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Compile-time interface checks.
var (
	_ RuntimeError = (*NameError)(nil)
	_ RuntimeError = (*IndexError)(nil)
	_ RuntimeError = (*TypeError)(nil)
	_ RuntimeError = (*DivisionError)(nil)
)
