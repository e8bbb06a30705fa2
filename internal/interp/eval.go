package interp

import (
	"github.com/kolkov/cexpr/internal/ast"
	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// Eval evaluates expr against store, applying assignments and increments
// to store as they happen. On error the store keeps every write made
// before the failing operation. A nil store is treated as empty.
func Eval(expr ast.Expr, store *Store) (types.Value, error) {
	if store == nil {
		store = NewStore()
	}
	ev := &evaluator{store: store}
	return ev.eval(expr)
}

// Run evaluates the statements of prog in order against one store and
// returns the value of the last expression statement. It stops at the
// first runtime error.
func Run(prog *ast.Program, store *Store) (types.Value, error) {
	return RunWith(prog, store, nil)
}

// Tracer observes each expression statement after it evaluates.
type Tracer func(stmt *ast.ExprStmt, v types.Value)

// RunWith is like Run but reports every completed statement to trace.
func RunWith(prog *ast.Program, store *Store, trace Tracer) (types.Value, error) {
	if store == nil {
		store = NewStore()
	}
	ev := &evaluator{store: store}
	var last types.Value
	for _, stmt := range prog.Stmts {
		s, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}
		v, err := ev.eval(s.Expr)
		if err != nil {
			return types.Value{}, err
		}
		if trace != nil {
			trace(s, v)
		}
		last = v
	}
	return last, nil
}

// evaluator walks an expression tree depth-first. It holds no state
// besides the store, so re-running a tree on an identical store gives
// identical results.
type evaluator struct {
	store *Store
}

func (ev *evaluator) eval(expr ast.Expr) (types.Value, error) {
	switch e := expr.(type) {
	case *ast.NumLit:
		return e.Value, nil

	case *ast.Ident:
		return ev.load(location{name: e.Name, pos: e.Pos()})

	case *ast.IndexExpr:
		loc, err := ev.locate(e)
		if err != nil {
			return types.Value{}, err
		}
		return ev.load(loc)

	case *ast.UnaryExpr:
		if e.Op == token.INCR || e.Op == token.DECR {
			return ev.incr(e.Expr, e.Op, true)
		}
		v, err := ev.eval(e.Expr)
		if err != nil {
			return types.Value{}, err
		}
		return UnaryOp(e.Pos(), e.Op, v)

	case *ast.PostfixExpr:
		return ev.incr(e.Expr, e.Op, false)

	case *ast.BinaryExpr:
		return ev.binary(e)

	case *ast.AssignExpr:
		return ev.assign(e)

	case *ast.CondExpr:
		cond, err := ev.eval(e.Cond)
		if err != nil {
			return types.Value{}, err
		}
		if cond.AsBool() {
			return ev.eval(e.Then)
		}
		return ev.eval(e.Else)

	case *ast.CommaExpr:
		if _, err := ev.eval(e.Left); err != nil {
			return types.Value{}, err
		}
		return ev.eval(e.Right)
	}
	return types.Value{}, typeErrorf(exprPos(expr), "cannot evaluate %T", expr)
}

// binary evaluates && and || with short-circuiting and every other
// operator left operand first, then right.
func (ev *evaluator) binary(e *ast.BinaryExpr) (types.Value, error) {
	left, err := ev.eval(e.Left)
	if err != nil {
		return types.Value{}, err
	}

	switch e.Op {
	case token.LAND:
		if !left.AsBool() {
			return types.Int(0), nil
		}
		return ev.truth(e.Right)
	case token.LOR:
		if left.AsBool() {
			return types.Int(1), nil
		}
		return ev.truth(e.Right)
	}

	right, err := ev.eval(e.Right)
	if err != nil {
		return types.Value{}, err
	}
	return BinaryOp(e.Pos(), e.Op, left, right)
}

// truth evaluates expr and normalizes the result to 0 or 1.
func (ev *evaluator) truth(expr ast.Expr) (types.Value, error) {
	v, err := ev.eval(expr)
	if err != nil {
		return types.Value{}, err
	}
	return types.Bool(v.AsBool()), nil
}

// assign evaluates the right-hand side first, then the target location.
// Compound operators read the target after both have been resolved.
func (ev *evaluator) assign(e *ast.AssignExpr) (types.Value, error) {
	value, err := ev.eval(e.Right)
	if err != nil {
		return types.Value{}, err
	}

	loc, err := ev.locate(e.Left)
	if err != nil {
		return types.Value{}, err
	}

	if e.Op != token.ASSIGN {
		cur, err := ev.load(loc)
		if err != nil {
			return types.Value{}, err
		}
		value, err = BinaryOp(e.Pos(), token.BinaryOf(e.Op), cur, value)
		if err != nil {
			return types.Value{}, err
		}
	}

	if err := ev.put(loc, value); err != nil {
		return types.Value{}, err
	}
	return value, nil
}

// incr applies ++ or -- to target. Prefix forms return the new value,
// postfix forms the old one.
func (ev *evaluator) incr(target ast.Expr, op token.Token, prefix bool) (types.Value, error) {
	loc, err := ev.locate(target)
	if err != nil {
		return types.Value{}, err
	}
	old, err := ev.load(loc)
	if err != nil {
		return types.Value{}, err
	}

	delta := int64(1)
	if op == token.DECR {
		delta = -1
	}
	updated := Step(old, delta)
	if err := ev.put(loc, updated); err != nil {
		return types.Value{}, err
	}

	if prefix {
		return updated, nil
	}
	return old, nil
}

// -----------------------------------------------------------------------------
// Locations
// -----------------------------------------------------------------------------

// location is a resolved lvalue: a scalar name, or an element of an array
// whose subscript has already been evaluated and bounds-checked.
type location struct {
	name  string
	elem  bool
	index int
	pos   token.Position
}

// locate resolves an lvalue expression. For an element, the array binding
// is checked first, then the subscript is evaluated, then bounds are checked
// against the array as it is after the subscript's side effects.
func (ev *evaluator) locate(expr ast.Expr) (location, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		return location{name: e.Name, pos: e.Pos()}, nil

	case *ast.IndexExpr:
		base, ok := e.Array.(*ast.Ident)
		if !ok {
			return location{}, typeErrorf(e.Pos(), "subscripted value is not an array")
		}
		if err := ev.store.CheckArray(base.Name, base.Pos()); err != nil {
			return location{}, err
		}

		idx, err := ev.eval(e.Index)
		if err != nil {
			return location{}, err
		}
		i, err := ev.store.ElementIndex(base.Name, base.Pos(), e.Index.Pos(), idx)
		if err != nil {
			return location{}, err
		}
		return location{name: base.Name, elem: true, index: i, pos: e.Pos()}, nil
	}
	return location{}, typeErrorf(exprPos(expr), "expression is not assignable")
}

// load reads the value at loc.
func (ev *evaluator) load(loc location) (types.Value, error) {
	if loc.elem {
		return ev.store.Element(loc.name, loc.index), nil
	}
	return ev.store.LoadScalar(loc.name, loc.pos)
}

// put writes v to loc. A scalar write creates the binding if needed.
func (ev *evaluator) put(loc location, v types.Value) error {
	if loc.elem {
		ev.store.SetElement(loc.name, loc.index, v)
		return nil
	}
	return ev.store.StoreScalar(loc.name, loc.pos, v)
}

func exprPos(expr ast.Expr) token.Position {
	if expr == nil {
		return token.NoPos
	}
	return expr.Pos()
}
