// Package semantic provides static checks for statement programs.
//
// The checker walks statements in evaluation order and reports:
//   - Kind conflicts: a name used both as an array and as a scalar
//   - Reads of names that nothing has bound or assigned yet
//   - Subscripts on names that are not bound as arrays
//   - Division or modulo by a constant zero
//   - Statements whose value is discarded and that change nothing
//
// Kind conflicts are errors: the program cannot run without failing
// once that code executes. Everything else is a warning, since the
// offending code may sit in a branch that never runs.
package semantic

import (
	"fmt"
	"strings"

	"github.com/kolkov/cexpr/internal/token"
)

// Error represents a semantic analysis error with source location.
type Error struct {
	Pos     token.Position
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Warning represents a semantic warning (non-fatal issue).
type Warning struct {
	Pos     token.Position
	Message string
}

// String returns the warning as a formatted string.
func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// ErrorList is a collection of semantic errors.
type ErrorList []*Error

// Add appends an error to the list.
func (el *ErrorList) Add(pos token.Position, format string, args ...any) {
	*el = append(*el, &Error{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// Err returns an error if the list is non-empty, nil otherwise.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Error implements the error interface for ErrorList.
func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		var sb strings.Builder
		sb.WriteString(el[0].Error())
		for _, e := range el[1:] {
			sb.WriteByte('\n')
			sb.WriteString(e.Error())
		}
		return sb.String()
	}
}

// WarningList is a collection of semantic warnings.
type WarningList []*Warning

// Add appends a warning to the list.
func (wl *WarningList) Add(pos token.Position, format string, args ...any) {
	*wl = append(*wl, &Warning{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// Strings returns every warning formatted with its position.
func (wl WarningList) Strings() []string {
	out := make([]string, len(wl))
	for i, w := range wl {
		out[i] = w.String()
	}
	return out
}

// Common error messages as constants for consistency.
const (
	errArrayScalarConflict = "cannot use %q as both array and scalar"
	errNotSubscriptable    = "subscripted value is not an array"
)

// Common warning messages.
const (
	warnReadBeforeAssign = "variable %q is read before it is assigned"
	warnUnboundArray     = "array %q is not bound; element access will fail"
	warnDivByZero        = "division by constant zero"
	warnModByZero        = "modulo by constant zero"
	warnNoEffect         = "statement has no effect"
)
