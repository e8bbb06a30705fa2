package compiler

import (
	"fmt"
	"math"

	"github.com/kolkov/cexpr/internal/ast"
	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// CompileError represents a compilation error.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return e.Message
}

// binaryOpcodes maps operator tokens to the opcode applying them.
// && and || compile to jumps instead.
var binaryOpcodes = map[token.Token]Opcode{
	token.ADD:        Add,
	token.SUB:        Subtract,
	token.MUL:        Multiply,
	token.DIV:        Divide,
	token.MOD:        Modulo,
	token.SHL:        ShiftLeft,
	token.SHR:        ShiftRight,
	token.AND:        BitAnd,
	token.OR:         BitOr,
	token.XOR:        BitXor,
	token.EQUALS:     Equal,
	token.NOT_EQUALS: NotEqual,
	token.LESS:       Less,
	token.LTE:        LessEqual,
	token.GREATER:    Greater,
	token.GTE:        GreaterEqual,
}

var opcodeTokens = func() map[Opcode]token.Token {
	m := make(map[Opcode]token.Token, len(binaryOpcodes))
	for tok, op := range binaryOpcodes {
		m[op] = tok
	}
	return m
}()

// Token returns the operator token a binary opcode applies, or
// token.ILLEGAL for other opcodes.
func (op Opcode) Token() token.Token {
	if tok, ok := opcodeTokens[op]; ok {
		return tok
	}
	return token.ILLEGAL
}

// hasPosOperand reports whether a binary opcode can fail and so carries
// a position operand. Comparisons never fail.
func hasPosOperand(op Opcode) bool {
	return operandCount(op) == 1 && op.Token() != token.ILLEGAL
}

// Compile transforms a parsed program into bytecode. Each expression
// statement becomes one code sequence that leaves its value on the stack.
func Compile(prog *ast.Program) (compiledProg *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CompileError); ok {
				err = ce
			} else {
				panic(r) // Re-panic for non-compile errors
			}
		}
	}()

	p := newProgram()
	for _, stmt := range prog.Stmts {
		s, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}
		c := &compiler{program: p}
		c.compileExpr(s.Expr)
		p.Stmts = append(p.Stmts, Stmt{Node: s, Code: c.finish()})
	}
	return p, nil
}

// compiler emits code for one statement into the shared program pools.
type compiler struct {
	program *Program
	code    []Opcode
}

func (c *compiler) add(ops ...Opcode) {
	c.code = append(c.code, ops...)
}

func (c *compiler) finish() []Opcode {
	return c.code
}

func opcodeInt(n int) Opcode {
	if n > math.MaxInt32 || n < math.MinInt32 {
		panic(&CompileError{Message: fmt.Sprintf("program too large: operand %d", n)})
	}
	return Opcode(n)
}

func (c *compiler) num(v types.Value) Opcode {
	return opcodeInt(c.program.numIndex(v))
}

func (c *compiler) name(name string) Opcode {
	return opcodeInt(c.program.nameIndex(name))
}

func (c *compiler) pos(pos token.Position) Opcode {
	return opcodeInt(c.program.posIndex(pos))
}

// jumpForward emits a jump with a placeholder offset and returns the
// mark to patch once the target is known.
func (c *compiler) jumpForward(op Opcode) int {
	c.add(op, 0)
	return len(c.code)
}

// patchForward points the jump at mark to the current end of code.
func (c *compiler) patchForward(mark int) {
	c.code[mark-1] = opcodeInt(len(c.code) - mark)
}

func (c *compiler) compileExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.NumLit:
		c.add(Num, c.num(e.Value))

	case *ast.Ident:
		c.add(LoadScalar, c.name(e.Name), c.pos(e.Pos()))

	case *ast.IndexExpr:
		if name, ok := c.compileLocate(e); ok {
			c.add(LoadElem, name)
		}

	case *ast.UnaryExpr:
		c.compileUnaryExpr(e)

	case *ast.PostfixExpr:
		c.compileIncr(e.Expr, e.Op, true)

	case *ast.BinaryExpr:
		c.compileBinaryExpr(e)

	case *ast.AssignExpr:
		c.compileAssign(e)

	case *ast.CondExpr:
		c.compileExpr(e.Cond)
		elseMark := c.jumpForward(JumpFalse)
		c.compileExpr(e.Then)
		endMark := c.jumpForward(Jump)
		c.patchForward(elseMark)
		c.compileExpr(e.Else)
		c.patchForward(endMark)

	case *ast.CommaExpr:
		c.compileExpr(e.Left)
		c.add(Drop)
		c.compileExpr(e.Right)

	default:
		panic(&CompileError{Message: fmt.Sprintf("unexpected expression type: %T", expr)})
	}
}

func (c *compiler) compileUnaryExpr(e *ast.UnaryExpr) {
	switch e.Op {
	case token.INCR, token.DECR:
		c.compileIncr(e.Expr, e.Op, false)
		return
	}

	c.compileExpr(e.Expr)
	switch e.Op {
	case token.SUB:
		c.add(UnaryMinus)
	case token.ADD:
		c.add(UnaryPlus)
	case token.NOT:
		c.add(Not)
	case token.TILDE:
		c.add(Complement, c.pos(e.Pos()))
	default:
		panic(&CompileError{Message: fmt.Sprintf("unexpected unary operator: %s", e.Op)})
	}
}

// compileBinaryExpr compiles operands left to right. && and || jump over
// the right operand when the left one decides the result.
func (c *compiler) compileBinaryExpr(e *ast.BinaryExpr) {
	switch e.Op {
	case token.LAND, token.LOR:
		c.compileExpr(e.Left)
		jump, short := JumpFalse, types.Int(0)
		if e.Op == token.LOR {
			jump, short = JumpTrue, types.Int(1)
		}
		shortMark := c.jumpForward(jump)
		c.compileExpr(e.Right)
		c.add(Boolean)
		endMark := c.jumpForward(Jump)
		c.patchForward(shortMark)
		c.add(Num, c.num(short))
		c.patchForward(endMark)
		return
	}

	op, ok := binaryOpcodes[e.Op]
	if !ok {
		panic(&CompileError{Message: fmt.Sprintf("unexpected binary operator: %s", e.Op)})
	}
	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	if hasPosOperand(op) {
		c.add(op, c.pos(e.Pos()))
	} else {
		c.add(op)
	}
}

// compileLocate emits the code resolving an element: the binding check,
// the subscript, then its validation. It returns the name operand, or
// false if the subscripted value is not a name and the code always fails.
func (c *compiler) compileLocate(e *ast.IndexExpr) (Opcode, bool) {
	base, ok := e.Array.(*ast.Ident)
	if !ok {
		c.add(NotArray, c.pos(e.Pos()))
		return 0, false
	}
	name := c.name(base.Name)
	basePos := c.pos(base.Pos())
	c.add(CheckArray, name, basePos)
	c.compileExpr(e.Index)
	c.add(ElemIndex, name, basePos, c.pos(e.Index.Pos()))
	return name, true
}

// compileIncr compiles ++ and -- on a variable or element.
func (c *compiler) compileIncr(target ast.Expr, op token.Token, post bool) {
	amount := Opcode(1)
	if op == token.DECR {
		amount = -1
	}
	var postFlag Opcode
	if post {
		postFlag = 1
	}

	switch t := target.(type) {
	case *ast.Ident:
		c.add(IncrScalar, amount, postFlag, c.name(t.Name), c.pos(t.Pos()))
	case *ast.IndexExpr:
		if name, ok := c.compileLocate(t); ok {
			c.add(IncrElem, amount, postFlag, name)
		}
	default:
		panic(&CompileError{Message: fmt.Sprintf("invalid increment operand: %T", target)})
	}
}

// compileAssign evaluates the value first, then resolves the target.
func (c *compiler) compileAssign(e *ast.AssignExpr) {
	c.compileExpr(e.Right)

	aug := e.Op != token.ASSIGN
	switch t := e.Left.(type) {
	case *ast.Ident:
		name, pos := c.name(t.Name), c.pos(t.Pos())
		if aug {
			c.add(AugScalar, Opcode(token.BinaryOf(e.Op)), name, pos, c.pos(e.Pos()))
		} else {
			c.add(StoreScalar, name, pos)
		}
	case *ast.IndexExpr:
		name, ok := c.compileLocate(t)
		if !ok {
			return
		}
		if aug {
			c.add(AugElem, Opcode(token.BinaryOf(e.Op)), name, c.pos(e.Pos()))
		} else {
			c.add(StoreElem, name)
		}
	default:
		panic(&CompileError{Message: fmt.Sprintf("invalid assignment target: %T", e.Left)})
	}
}
