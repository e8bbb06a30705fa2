package semantic

import (
	"github.com/kolkov/cexpr/internal/ast"
	"github.com/kolkov/cexpr/internal/token"
)

// Result holds the outcome of checking a program.
type Result struct {
	Symbols  *SymbolTable
	Errors   ErrorList
	Warnings WarningList
}

// Err returns the errors as one error, or nil.
func (r *Result) Err() error {
	return r.Errors.Err()
}

// Checker walks a program in evaluation order, tracking what each name
// is used as and whether it has been assigned yet.
type Checker struct {
	result *Result

	// Names already reported, so each problem is reported once
	conflicts map[string]bool
	unread    map[string]bool
	unbound   map[string]bool
}

// Check analyzes prog. globals describes the names bound before the
// program runs; it may be nil and is extended with every name the
// program mentions.
func Check(prog *ast.Program, globals *SymbolTable) *Result {
	if globals == nil {
		globals = NewSymbolTable()
	}
	c := &Checker{
		result:    &Result{Symbols: globals},
		conflicts: make(map[string]bool),
		unread:    make(map[string]bool),
		unbound:   make(map[string]bool),
	}
	c.checkProgram(prog)
	return c.result
}

func (c *Checker) checkProgram(prog *ast.Program) {
	// The last expression statement supplies the program's value,
	// so only earlier ones can be without effect.
	last := -1
	for i, stmt := range prog.Stmts {
		if _, ok := stmt.(*ast.ExprStmt); ok {
			last = i
		}
	}

	for i, stmt := range prog.Stmts {
		s, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}
		if i != last && !hasEffect(s.Expr) {
			c.result.Warnings.Add(s.Pos(), warnNoEffect)
		}
		c.checkExpr(s.Expr)
	}
}

func (c *Checker) checkExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.NumLit:

	case *ast.Ident, *ast.IndexExpr:
		c.ref(e, true, false)

	case *ast.UnaryExpr:
		if e.Op == token.INCR || e.Op == token.DECR {
			c.ref(e.Expr, true, true)
			return
		}
		c.checkExpr(e.Expr)

	case *ast.PostfixExpr:
		c.ref(e.Expr, true, true)

	case *ast.BinaryExpr:
		c.checkExpr(e.Left)
		c.checkExpr(e.Right)
		c.checkDivisor(e.Op, e.Right)

	case *ast.AssignExpr:
		// The value is evaluated before the target.
		c.checkExpr(e.Right)
		c.ref(e.Left, e.Op != token.ASSIGN, true)
		c.checkDivisor(token.BinaryOf(e.Op), e.Right)

	case *ast.CondExpr:
		c.checkExpr(e.Cond)
		c.checkExpr(e.Then)
		c.checkExpr(e.Else)

	case *ast.CommaExpr:
		c.checkExpr(e.Left)
		c.checkExpr(e.Right)
	}
}

// ref records a use of an lvalue-shaped expression.
func (c *Checker) ref(expr ast.Expr, read, write bool) {
	switch e := expr.(type) {
	case *ast.Ident:
		sym := c.result.Symbols.ensure(e.Name, e.Pos())
		c.setType(sym, TypeScalar, e.Pos())
		if read {
			sym.Used = true
			if !sym.Assigned && !c.unread[e.Name] {
				c.unread[e.Name] = true
				c.result.Warnings.Add(e.Pos(), warnReadBeforeAssign, e.Name)
			}
		}
		if write {
			sym.Assigned = true
		}

	case *ast.IndexExpr:
		base, ok := e.Array.(*ast.Ident)
		if !ok {
			c.checkExpr(e.Array)
			c.result.Errors.Add(e.Pos(), errNotSubscriptable)
			c.checkExpr(e.Index)
			return
		}
		sym := c.result.Symbols.ensure(base.Name, base.Pos())
		c.setType(sym, TypeArray, base.Pos())
		sym.Used = true
		if !sym.Bound && !c.unbound[base.Name] {
			c.unbound[base.Name] = true
			c.result.Warnings.Add(base.Pos(), warnUnboundArray, base.Name)
		}
		c.checkExpr(e.Index)

	default:
		c.checkExpr(expr)
	}
}

// setType fixes a symbol's kind, reporting the first conflicting use.
func (c *Checker) setType(sym *Symbol, typ VarType, pos token.Position) {
	switch {
	case sym.Type == TypeUnknown:
		sym.Type = typ
	case sym.Type != typ && !c.conflicts[sym.Name]:
		c.conflicts[sym.Name] = true
		c.result.Errors.Add(pos, errArrayScalarConflict, sym.Name)
	}
}

// checkDivisor warns when the right operand of / or % is a literal zero.
func (c *Checker) checkDivisor(op token.Token, divisor ast.Expr) {
	lit, ok := divisor.(*ast.NumLit)
	if !ok || lit.Value.AsBool() {
		return
	}
	switch op {
	case token.DIV:
		c.result.Warnings.Add(lit.Pos(), warnDivByZero)
	case token.MOD:
		c.result.Warnings.Add(lit.Pos(), warnModByZero)
	}
}

// hasEffect reports whether evaluating expr can change the store.
func hasEffect(expr ast.Expr) bool {
	found := false
	ast.Inspect(expr, func(n, _ ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignExpr, *ast.PostfixExpr:
			found = true
		case *ast.UnaryExpr:
			if n.Op == token.INCR || n.Op == token.DECR {
				found = true
			}
		}
		return !found
	})
	return found
}
