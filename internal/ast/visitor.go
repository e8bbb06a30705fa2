package ast

import (
	"sort"

	"github.com/kolkov/cexpr/internal/token"
)

// Walk traverses an AST in depth-first order.
// For each node, it calls fn(node). If fn returns false,
// the children of that node are not visited.
//
// Example: Count all identifiers
//
//	count := 0
//	ast.Walk(expr, func(n ast.Node) bool {
//	    if _, ok := n.(*ast.Ident); ok {
//	        count++
//	    }
//	    return true
//	})
func Walk(node Node, fn func(Node) bool) {
	Inspect(node, func(n, _ Node) bool { return fn(n) })
}

// Inspect is like Walk but also passes the parent of each node
// (nil for the root).
func Inspect(node Node, fn func(node, parent Node) bool) {
	inspect(node, nil, fn)
}

func inspect(node, parent Node, fn func(node, parent Node) bool) {
	if node == nil || !fn(node, parent) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Stmts {
			inspect(s, n, fn)
		}

	case *ExprStmt:
		inspect(n.Expr, n, fn)

	case *EmptyStmt, *Ident, *NumLit:
		// no children

	case *UnaryExpr:
		inspect(n.Expr, n, fn)

	case *PostfixExpr:
		inspect(n.Expr, n, fn)

	case *IndexExpr:
		inspect(n.Array, n, fn)
		inspect(n.Index, n, fn)

	case *BinaryExpr:
		inspect(n.Left, n, fn)
		inspect(n.Right, n, fn)

	case *AssignExpr:
		inspect(n.Left, n, fn)
		inspect(n.Right, n, fn)

	case *CondExpr:
		inspect(n.Cond, n, fn)
		inspect(n.Then, n, fn)
		inspect(n.Else, n, fn)

	case *CommaExpr:
		inspect(n.Left, n, fn)
		inspect(n.Right, n, fn)
	}
}

// Refs reports the variable names a tree may read and write, sorted and
// without duplicates. Every identifier counts as a read except the
// target of a plain "=". Targets of assignments and increments count as
// writes under their base name, so arr[i] = 1 writes arr.
func Refs(node Node) (reads, writes []string) {
	r := map[string]bool{}
	w := map[string]bool{}

	Inspect(node, func(n, parent Node) bool {
		switch n := n.(type) {
		case *AssignExpr:
			if name, ok := BaseName(n.Left); ok {
				w[name] = true
			}
		case *PostfixExpr:
			if name, ok := BaseName(n.Expr); ok {
				w[name] = true
			}
		case *UnaryExpr:
			if n.Op == token.INCR || n.Op == token.DECR {
				if name, ok := BaseName(n.Expr); ok {
					w[name] = true
				}
			}
		case *Ident:
			if a, ok := parent.(*AssignExpr); ok && a.Op == token.ASSIGN && a.Left == Expr(n) {
				return true
			}
			r[n.Name] = true
		}
		return true
	})

	return sortedKeys(r), sortedKeys(w)
}

// BaseName returns the variable an lvalue ultimately names: the
// identifier itself, or the array identifier of a subscript.
func BaseName(e Expr) (string, bool) {
	switch e := e.(type) {
	case *Ident:
		return e.Name, true
	case *IndexExpr:
		return BaseName(e.Array)
	default:
		return "", false
	}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
