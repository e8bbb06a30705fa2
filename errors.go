package cexpr

import (
	"errors"
	"fmt"

	"github.com/kolkov/cexpr/internal/interp"
	"github.com/kolkov/cexpr/internal/parser"
)

// SyntaxError represents malformed expression source.
type SyntaxError struct {
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Expected string // What the parser wanted, if known
	Found    string // What it got, if known
	Message  string // Error description
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return "syntax error: " + e.Message
	}
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// CompileError reports a parsed program that could not be compiled
// to bytecode.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return "compile error: " + e.Message
}

// CheckError reports problems found by Program.Check.
type CheckError struct {
	Message string
}

func (e *CheckError) Error() string {
	return "check error: " + e.Message
}

// Runtime errors are returned unchanged from the evaluator.
type (
	// RuntimeError is implemented by every evaluation error.
	RuntimeError = interp.RuntimeError

	// NameError reports a read of an unbound variable.
	NameError = interp.NameError

	// IndexError reports a subscript outside an array's bounds.
	IndexError = interp.IndexError

	// TypeError reports an operator applied to the wrong kind of value.
	TypeError = interp.TypeError

	// DivisionError reports division or modulo by zero.
	DivisionError = interp.DivisionError
)

// ValueError reports an initial value in Config that is not a number.
type ValueError struct {
	Name  string // Variable or array name
	Value string // Offending text
	Err   error  // Underlying parse error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %q: %v", e.Name, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// convertParseError converts a parser error to the public type.
func convertParseError(err error) error {
	var pe *parser.SyntaxError
	if errors.As(err, &pe) {
		return &SyntaxError{
			Line:     pe.Pos.Line,
			Column:   pe.Pos.Column,
			Expected: pe.Expected,
			Found:    pe.Found,
			Message:  pe.Message,
		}
	}
	return &SyntaxError{Message: err.Error()}
}
