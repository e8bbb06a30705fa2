// Package parser provides a recursive descent parser for C-style expressions.
package parser

import (
	"fmt"

	"github.com/kolkov/cexpr/internal/lexer"
	"github.com/kolkov/cexpr/internal/token"
)

// SyntaxError represents a syntax error encountered during parsing.
// Parsing stops at the first error; no partial tree is returned with it.
type SyntaxError struct {
	Pos      token.Position // Position of the offending token
	Expected string         // What the parser wanted (optional)
	Found    string         // What it got (optional)
	Message  string         // Human-readable error message
}

// Error returns a formatted error message with position information.
func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// errorf creates a SyntaxError at the given position with formatted message.
func errorf(pos token.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// expectedError creates a SyntaxError for an unexpected token.
func expectedError(pos token.Position, want string, got string) *SyntaxError {
	return &SyntaxError{
		Pos:      pos,
		Message:  fmt.Sprintf("expected %s, found %s", want, got),
		Expected: want,
		Found:    got,
	}
}

// unexpectedError reports a token left over where want was required,
// e.g. a second operand with no operator between.
func unexpectedError(pos token.Position, want string, got string) *SyntaxError {
	return &SyntaxError{
		Pos:      pos,
		Message:  "unexpected token " + got,
		Expected: want,
		Found:    got,
	}
}

// illegalError reports an ILLEGAL token. The lexer's diagnostic is the
// message.
func illegalError(tok lexer.Token, want string) *SyntaxError {
	return &SyntaxError{
		Pos:      tok.Pos,
		Message:  tok.Value,
		Expected: want,
		Found:    "'" + tok.Lexeme + "'",
	}
}

// unmatchedError reports a bracket that was never closed. The position
// is the opening bracket's, not the place the closer was missed.
func unmatchedError(open token.Position, opener, closer token.Token, got string) *SyntaxError {
	return &SyntaxError{
		Pos:      open,
		Message:  fmt.Sprintf("unmatched '%s': expected '%s', found %s", opener, closer, got),
		Expected: "'" + closer.String() + "'",
		Found:    got,
	}
}
