package parser

import (
	"github.com/kolkov/cexpr/internal/ast"
	"github.com/kolkov/cexpr/internal/lexer"
	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// DefaultMaxDepth bounds how deeply parentheses, subscripts, prefix
// operators, assignments and conditionals may nest. The evaluator
// recurses along the same structure, so this also bounds its stack use.
const DefaultMaxDepth = 256

// Parser is a recursive descent parser over a token sequence.
//
// Each precedence level is one method, and each level only calls the
// next-higher one for its operands:
//
//	parseComma → parseAssign → parseCond → parseOr → parseAnd →
//	parseBitOr → parseBitXor → parseBitAnd → parseEquality →
//	parseRelational → parseShift → parseAdditive → parseMultiplicative →
//	parseUnary → parsePostfix → parsePrimary
//
// Parse methods return nil once an error has been recorded; callers
// propagate the nil upwards without building further nodes.
type Parser struct {
	toks    []lexer.Token // Token sequence, normally ending in EOF
	idx     int           // Index of tok in toks
	tok     lexer.Token   // Current token
	prevTok lexer.Token   // Last consumed token
	err     *SyntaxError  // First error, if any

	depth    int
	maxDepth int
}

// New creates a Parser over toks. The sequence is read strictly left to
// right with one token of lookahead. If it does not end in EOF, running
// off the end behaves as if it did.
func New(toks []lexer.Token) *Parser {
	p := &Parser{
		toks:     toks,
		idx:      -1,
		maxDepth: DefaultMaxDepth,
	}
	p.next()
	return p
}

// SetMaxDepth changes the nesting bound. Values below 1 restore the default.
func (p *Parser) SetMaxDepth(n int) {
	if n < 1 {
		n = DefaultMaxDepth
	}
	p.maxDepth = n
}

// Parse parses a token sequence holding exactly one expression.
func Parse(toks []lexer.Token) (ast.Expr, error) {
	return New(toks).ParseExpr()
}

// ParseExpr tokenizes and parses a single expression.
func ParseExpr(src string) (ast.Expr, error) {
	return New(lexer.Tokenize(src)).ParseExpr()
}

// ParseProgram tokenizes and parses a sequence of statements.
func ParseProgram(src string) (*ast.Program, error) {
	return New(lexer.Tokenize(src)).ParseProgram()
}

// ParseExpr parses one top-level expression. Tokens left over after it
// are an error.
func (p *Parser) ParseExpr() (ast.Expr, error) {
	expr := p.parseComma()
	if p.err == nil && p.tok.Type != token.EOF {
		if p.tok.Type == token.ILLEGAL {
			p.error(illegalError(p.tok, "end of input"))
		} else {
			p.error(unexpectedError(p.tok.Pos, "end of input", p.tokenDesc()))
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return expr, nil
}

// ParseProgram parses statements until EOF. A statement is an expression
// followed by ';', or a lone ';'. The final statement may omit its ';'.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{StartPos: p.tok.Pos}

	for p.err == nil && p.tok.Type != token.EOF {
		if stmt := p.parseStmt(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}
	prog.EndPos = p.tok.Pos

	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

func (p *Parser) parseStmt() ast.Stmt {
	start := p.tok.Pos
	if p.tok.Type == token.SEMICOLON {
		p.next()
		return &ast.EmptyStmt{BaseStmt: ast.MakeBaseStmt(start, p.endPos())}
	}

	expr := p.parseComma()
	if expr == nil {
		return nil
	}
	if p.tok.Type != token.EOF && !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.ExprStmt{
		BaseStmt: ast.MakeBaseStmt(start, p.endPos()),
		Expr:     expr,
	}
}

// -----------------------------------------------------------------------------
// Token handling
// -----------------------------------------------------------------------------

// next advances to the next token.
func (p *Parser) next() {
	p.prevTok = p.tok
	if p.idx+1 < len(p.toks) {
		p.idx++
		p.tok = p.toks[p.idx]
		return
	}
	// Exhausted: stay on a synthesized EOF just past the last token.
	p.tok = lexer.Token{Type: token.EOF, Pos: p.endPos()}
}

// expect checks that the current token is tok and advances.
// If not, it records an error.
func (p *Parser) expect(tok token.Token) bool {
	if p.tok.Type == token.ILLEGAL {
		p.error(illegalError(p.tok, "'"+tok.String()+"'"))
		return false
	}
	if p.tok.Type != tok {
		p.error(expectedError(p.tok.Pos, "'"+tok.String()+"'", p.tokenDesc()))
		return false
	}
	p.next()
	return true
}

// expectClose consumes the closer matching the bracket opened at open.
func (p *Parser) expectClose(open lexer.Token, closer token.Token) bool {
	if p.tok.Type == token.ILLEGAL {
		p.error(illegalError(p.tok, "'"+closer.String()+"'"))
		return false
	}
	if p.tok.Type != closer {
		p.error(unmatchedError(open.Pos, open.Type, closer, p.tokenDesc()))
		return false
	}
	p.next()
	return true
}

// match returns true if current token matches any of the given types.
func (p *Parser) match(types ...token.Token) bool {
	for _, t := range types {
		if p.tok.Type == t {
			return true
		}
	}
	return false
}

// tokenDesc returns a description of the current token for error messages.
func (p *Parser) tokenDesc() string {
	switch p.tok.Type {
	case token.EOF:
		return "end of input"
	case token.ILLEGAL:
		return "'" + p.tok.Lexeme + "'"
	default:
		return "'" + p.tok.Value + "'"
	}
}

// endPos returns the position just after the last consumed token.
func (p *Parser) endPos() token.Position {
	end := p.prevTok.Pos
	end.Column += len(p.prevTok.Value)
	end.Offset += len(p.prevTok.Value)
	return end
}

// error records a parse error. Only the first one is kept.
func (p *Parser) error(err *SyntaxError) {
	if p.err == nil {
		p.err = err
	}
}

// nested runs parse one nesting level deeper, failing once the bound is hit.
func (p *Parser) nested(parse func() ast.Expr) ast.Expr {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.error(errorf(p.tok.Pos, "expression nested too deeply (limit %d)", p.maxDepth))
		return nil
	}
	return parse()
}

// -----------------------------------------------------------------------------
// Expressions, lowest precedence first
// -----------------------------------------------------------------------------

// parseComma parses the comma operator (left-associative).
func (p *Parser) parseComma() ast.Expr {
	expr := p.parseAssign()
	if expr == nil {
		return nil
	}

	for p.tok.Type == token.COMMA {
		p.next()
		right := p.parseAssign()
		if right == nil {
			return nil
		}
		expr = &ast.CommaExpr{
			BaseExpr: ast.MakeBaseExpr(expr.Pos(), right.End()),
			Left:     expr,
			Right:    right,
		}
	}
	return expr
}

// parseAssign parses = and the compound assignments (right-associative).
func (p *Parser) parseAssign() ast.Expr {
	expr := p.parseCond()
	if expr == nil {
		return nil
	}

	if !p.tok.Type.IsAssign() {
		return expr
	}

	opTok := p.tok
	if !ast.IsLValue(expr) {
		p.error(&SyntaxError{
			Pos:      opTok.Pos,
			Message:  "invalid assignment target",
			Expected: "variable or array element",
			Found:    ast.String(expr),
		})
		return nil
	}
	p.next()

	right := p.nested(p.parseAssign)
	if right == nil {
		return nil
	}
	return &ast.AssignExpr{
		BaseExpr: ast.MakeBaseExpr(expr.Pos(), right.End()),
		Left:     expr,
		Op:       opTok.Type,
		Right:    right,
	}
}

// parseCond parses cond ? then : else (right-associative).
//
// The then-branch sits between '?' and ':', so it may hold assignments
// and commas: it is parsed as assignment-level operands folded into
// CommaExpr nodes until the ':' shows up. The else-branch recurses into
// parseCond, so a ? b : c ? d : e groups as a ? b : (c ? d : e).
func (p *Parser) parseCond() ast.Expr {
	cond := p.parseOr()
	if cond == nil {
		return nil
	}

	if p.tok.Type != token.QUESTION {
		return cond
	}
	p.next()

	then := p.nested(p.parseAssign)
	if then == nil {
		return nil
	}
	for p.tok.Type == token.COMMA {
		p.next()
		right := p.nested(p.parseAssign)
		if right == nil {
			return nil
		}
		then = &ast.CommaExpr{
			BaseExpr: ast.MakeBaseExpr(then.Pos(), right.End()),
			Left:     then,
			Right:    right,
		}
	}

	if !p.expect(token.COLON) {
		return nil
	}

	els := p.nested(p.parseCond)
	if els == nil {
		return nil
	}
	return &ast.CondExpr{
		BaseExpr: ast.MakeBaseExpr(cond.Pos(), els.End()),
		Cond:     cond,
		Then:     then,
		Else:     els,
	}
}

// parseOr parses || expressions.
func (p *Parser) parseOr() ast.Expr {
	return p.parseBinaryLeft(p.parseAnd, token.LOR)
}

// parseAnd parses && expressions.
func (p *Parser) parseAnd() ast.Expr {
	return p.parseBinaryLeft(p.parseBitOr, token.LAND)
}

// parseBitOr parses | expressions.
func (p *Parser) parseBitOr() ast.Expr {
	return p.parseBinaryLeft(p.parseBitXor, token.OR)
}

// parseBitXor parses ^ expressions.
func (p *Parser) parseBitXor() ast.Expr {
	return p.parseBinaryLeft(p.parseBitAnd, token.XOR)
}

// parseBitAnd parses & expressions.
func (p *Parser) parseBitAnd() ast.Expr {
	return p.parseBinaryLeft(p.parseEquality, token.AND)
}

// parseEquality parses == and != expressions.
func (p *Parser) parseEquality() ast.Expr {
	return p.parseBinaryLeft(p.parseRelational, token.EQUALS, token.NOT_EQUALS)
}

// parseRelational parses <, <=, > and >= expressions.
func (p *Parser) parseRelational() ast.Expr {
	return p.parseBinaryLeft(p.parseShift, token.LESS, token.LTE, token.GREATER, token.GTE)
}

// parseShift parses << and >> expressions.
func (p *Parser) parseShift() ast.Expr {
	return p.parseBinaryLeft(p.parseAdditive, token.SHL, token.SHR)
}

// parseAdditive parses + and - expressions.
func (p *Parser) parseAdditive() ast.Expr {
	return p.parseBinaryLeft(p.parseMultiplicative, token.ADD, token.SUB)
}

// parseMultiplicative parses *, / and % expressions.
func (p *Parser) parseMultiplicative() ast.Expr {
	return p.parseBinaryLeft(p.parseUnary, token.MUL, token.DIV, token.MOD)
}

// parseUnary parses prefix ! ~ ++ -- + - (right-associative).
func (p *Parser) parseUnary() ast.Expr {
	if !p.tok.Type.IsUnary() {
		return p.parsePostfix()
	}

	opTok := p.tok
	p.next()
	operand := p.nested(p.parseUnary)
	if operand == nil {
		return nil
	}
	if (opTok.Type == token.INCR || opTok.Type == token.DECR) && !ast.IsLValue(operand) {
		p.error(&SyntaxError{
			Pos:      opTok.Pos,
			Message:  "invalid increment operand",
			Expected: "variable or array element",
			Found:    ast.String(operand),
		})
		return nil
	}
	return &ast.UnaryExpr{
		BaseExpr: ast.MakeBaseExpr(opTok.Pos, operand.End()),
		Op:       opTok.Type,
		Expr:     operand,
	}
}

// parsePostfix parses a primary followed by any number of [index], ++
// and --, applied left to right.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		switch p.tok.Type {
		case token.LBRACKET:
			open := p.tok
			p.next()
			index := p.nested(p.parseComma)
			if index == nil || !p.expectClose(open, token.RBRACKET) {
				return nil
			}
			expr = &ast.IndexExpr{
				BaseExpr: ast.MakeBaseExpr(expr.Pos(), p.endPos()),
				Array:    expr,
				Index:    index,
			}

		case token.INCR, token.DECR:
			if !ast.IsLValue(expr) {
				p.error(&SyntaxError{
					Pos:      p.tok.Pos,
					Message:  "invalid increment operand",
					Expected: "variable or array element",
					Found:    ast.String(expr),
				})
				return nil
			}
			op := p.tok.Type
			p.next()
			expr = &ast.PostfixExpr{
				BaseExpr: ast.MakeBaseExpr(expr.Pos(), p.endPos()),
				Expr:     expr,
				Op:       op,
			}

		default:
			return expr
		}
	}
}

// parsePrimary parses identifiers, numbers and parenthesized expressions.
func (p *Parser) parsePrimary() ast.Expr {
	start := p.tok

	switch p.tok.Type {
	case token.NAME:
		p.next()
		return &ast.Ident{
			BaseExpr: ast.MakeBaseExpr(start.Pos, p.endPos()),
			Name:     start.Value,
		}

	case token.NUMBER:
		v, err := types.ParseLiteral(start.Value)
		if err != nil {
			p.error(&SyntaxError{
				Pos:      start.Pos,
				Message:  err.Error(),
				Expected: "number",
				Found:    "'" + start.Value + "'",
			})
			return nil
		}
		p.next()
		return &ast.NumLit{
			BaseExpr: ast.MakeBaseExpr(start.Pos, p.endPos()),
			Value:    v,
			Raw:      start.Value,
		}

	case token.LPAREN:
		p.next()
		expr := p.nested(p.parseComma)
		if expr == nil || !p.expectClose(start, token.RPAREN) {
			return nil
		}
		return expr

	case token.ILLEGAL:
		p.error(illegalError(start, "expression"))
		return nil

	case token.EOF:
		p.error(expectedError(start.Pos, "expression", "end of input"))
		return nil

	default:
		p.error(expectedError(start.Pos, "expression", p.tokenDesc()))
		return nil
	}
}

// -----------------------------------------------------------------------------
// Helper functions
// -----------------------------------------------------------------------------

// parseBinaryLeft parses left-associative binary operators, folding each
// new operand onto the accumulated left subtree.
func (p *Parser) parseBinaryLeft(higher func() ast.Expr, ops ...token.Token) ast.Expr {
	expr := higher()
	if expr == nil {
		return nil
	}

	for p.match(ops...) {
		op := p.tok.Type
		p.next()
		right := higher()
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{
			BaseExpr: ast.MakeBaseExpr(expr.Pos(), right.End()),
			Left:     expr,
			Op:       op,
			Right:    right,
		}
	}
	return expr
}
