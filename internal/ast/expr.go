package ast

import (
	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// -----------------------------------------------------------------------------
// Primaries
// -----------------------------------------------------------------------------

// Ident represents a variable reference.
// Examples: x, arr, _tmp1
type Ident struct {
	BaseExpr
	Name string
}

// NumLit represents a numeric literal.
// Examples: 42, 017, 0x1F, 3.14, 1e10
type NumLit struct {
	BaseExpr
	Value types.Value // Parsed value; KindInt for integer spellings
	Raw   string      // Original source text
}

// -----------------------------------------------------------------------------
// Prefix and postfix forms
// -----------------------------------------------------------------------------

// UnaryExpr represents a prefix operation.
// Examples: -x, !flag, ~mask, ++i, --i
type UnaryExpr struct {
	BaseExpr
	Op   token.Token // NOT, TILDE, INCR, DECR, ADD or SUB
	Expr Expr
}

// PostfixExpr represents a postfix increment or decrement.
// Examples: i++, arr[k]--
type PostfixExpr struct {
	BaseExpr
	Expr Expr        // Operand; always an lvalue
	Op   token.Token // INCR or DECR
}

// IndexExpr represents an array subscript.
// Examples: arr[0], arr[i + 1]
type IndexExpr struct {
	BaseExpr
	Array Expr
	Index Expr
}

// -----------------------------------------------------------------------------
// Operators
// -----------------------------------------------------------------------------

// BinaryExpr represents an arithmetic, relational, logical, bitwise or
// shift operation.
// Examples: a + b, x == y, m & 0xff, a && b
type BinaryExpr struct {
	BaseExpr
	Left  Expr
	Op    token.Token
	Right Expr
}

// AssignExpr represents a simple or compound assignment.
// Examples: x = 1, arr[i] += 2, m <<= 3
type AssignExpr struct {
	BaseExpr
	Left  Expr        // Target; always an lvalue
	Op    token.Token // ASSIGN or one of the compound assignment tokens
	Right Expr
}

// -----------------------------------------------------------------------------
// Sequencing
// -----------------------------------------------------------------------------

// CondExpr represents a conditional expression.
// Example: cond ? a : b
type CondExpr struct {
	BaseExpr
	Cond Expr
	Then Expr
	Else Expr
}

// CommaExpr represents the comma operator.
// Example: a = 1, b = 2
type CommaExpr struct {
	BaseExpr
	Left  Expr
	Right Expr
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

// ExprStmt is an expression terminated by a semicolon.
type ExprStmt struct {
	BaseStmt
	Expr Expr
}

// EmptyStmt is a lone semicolon.
type EmptyStmt struct {
	BaseStmt
}

// Program is a sequence of statements evaluated against one store.
type Program struct {
	Stmts []Stmt

	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the first token in the program.
func (p *Program) Pos() token.Position { return p.StartPos }

// End returns the position after the last token in the program.
func (p *Program) End() token.Position { return p.EndPos }

// -----------------------------------------------------------------------------
// Compile-time checks
// -----------------------------------------------------------------------------

var (
	_ Expr = (*Ident)(nil)
	_ Expr = (*NumLit)(nil)
	_ Expr = (*UnaryExpr)(nil)
	_ Expr = (*PostfixExpr)(nil)
	_ Expr = (*IndexExpr)(nil)
	_ Expr = (*BinaryExpr)(nil)
	_ Expr = (*AssignExpr)(nil)
	_ Expr = (*CondExpr)(nil)
	_ Expr = (*CommaExpr)(nil)

	_ Stmt = (*ExprStmt)(nil)
	_ Stmt = (*EmptyStmt)(nil)

	_ Node = (*Program)(nil)
)
