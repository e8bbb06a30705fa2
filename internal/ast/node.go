// Package ast defines the abstract syntax tree for C-style expressions.
//
// The expression node set is closed: the unexported marker method keeps
// other packages from adding variants, so a type switch over the nine
// expression types below is exhaustive.
//
// Node hierarchy:
//
//	Node (interface)
//	├── Expr (interface) - expressions that produce values
//	│   ├── Ident, NumLit - primaries
//	│   ├── UnaryExpr, PostfixExpr, IndexExpr - prefix and postfix forms
//	│   ├── BinaryExpr, AssignExpr - operators
//	│   └── CondExpr, CommaExpr - sequencing
//	├── Stmt (interface) - ExprStmt, EmptyStmt
//	└── Program - a sequence of statements
//
// Trees are built once by the parser and never mutated afterwards.
package ast

import "github.com/kolkov/cexpr/internal/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	// Pos returns the position of the first character belonging to this node.
	Pos() token.Position

	// End returns the position of the first character immediately after this node.
	End() token.Position
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	exprNode() // marker method to prevent external implementations
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode() // marker method to prevent external implementations
}

// BaseExpr provides common fields for all expression nodes.
type BaseExpr struct {
	StartPos token.Position // Position of first token
	EndPos   token.Position // Position after last token
}

func (b *BaseExpr) Pos() token.Position { return b.StartPos }
func (b *BaseExpr) End() token.Position { return b.EndPos }
func (b *BaseExpr) exprNode()           {}

// BaseStmt provides common fields for statement nodes.
type BaseStmt struct {
	StartPos token.Position
	EndPos   token.Position
}

func (b *BaseStmt) Pos() token.Position { return b.StartPos }
func (b *BaseStmt) End() token.Position { return b.EndPos }
func (b *BaseStmt) stmtNode()           {}

// IsLValue returns true if the expression denotes a storage location:
// a variable or an array element.
func IsLValue(e Expr) bool {
	switch e.(type) {
	case *Ident, *IndexExpr:
		return true
	default:
		return false
	}
}

// MakeBaseExpr creates a BaseExpr with the given positions.
func MakeBaseExpr(start, end token.Position) BaseExpr {
	return BaseExpr{StartPos: start, EndPos: end}
}

// MakeBaseStmt creates a BaseStmt with the given positions.
func MakeBaseStmt(start, end token.Position) BaseStmt {
	return BaseStmt{StartPos: start, EndPos: end}
}
