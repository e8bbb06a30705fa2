// Package lexer provides tokenization of C-style expression source.
package lexer

import (
	"unicode/utf8"

	"github.com/kolkov/cexpr/internal/token"
)

// Lexer tokenizes expression source code.
type Lexer struct {
	src     []byte         // Source code
	ch      byte           // Current character (0 at EOF)
	offset  int            // Offset of the next character
	pos     token.Position // Position of the current character
	nextPos token.Position // Position of next character
}

// New creates a new Lexer for the given source code.
func New(src []byte) *Lexer {
	l := &Lexer{
		src: src,
		nextPos: token.Position{
			Line:   1,
			Column: 1,
		},
	}
	l.next() // Initialize first character
	return l
}

// NewFromString creates a new Lexer from a string.
func NewFromString(src string) *Lexer {
	return New([]byte(src))
}

// Token represents a scanned token with its position and lexeme.
// For ILLEGAL tokens Value holds a description of the problem and
// Lexeme the offending source text.
type Token struct {
	Type   token.Token
	Pos    token.Position
	Value  string
	Lexeme string
}

// Tokenize scans src to completion. The returned slice always ends with
// a single EOF token. Illegal input is reported in-band as ILLEGAL tokens
// so the parser can attach a position to the error.
func Tokenize(src string) []Token {
	l := NewFromString(src)
	var toks []Token
	for {
		tok := l.Scan()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

// Scan scans and returns the next token.
func (l *Lexer) Scan() Token {
	if tok, ok := l.skipSpaceAndComments(); !ok {
		return tok
	}

	pos := l.pos

	if l.atEOF() {
		return Token{Type: token.EOF, Pos: pos}
	}

	switch l.ch {
	case '+':
		return l.operator(pos, token.ADD, alt{'+', token.INCR}, alt{'=', token.ADD_ASSIGN})
	case '-':
		if l.peek() == '>' {
			l.next()
			l.next()
			return Token{Type: token.ARROW, Pos: pos, Value: "->"}
		}
		return l.operator(pos, token.SUB, alt{'-', token.DECR}, alt{'=', token.SUB_ASSIGN})
	case '*':
		return l.operator(pos, token.MUL, alt{'=', token.MUL_ASSIGN})
	case '/':
		return l.operator(pos, token.DIV, alt{'=', token.DIV_ASSIGN})
	case '%':
		return l.operator(pos, token.MOD, alt{'=', token.MOD_ASSIGN})
	case '^':
		return l.operator(pos, token.XOR, alt{'=', token.XOR_ASSIGN})
	case '!':
		return l.operator(pos, token.NOT, alt{'=', token.NOT_EQUALS})
	case '=':
		return l.operator(pos, token.ASSIGN, alt{'=', token.EQUALS})
	case '&':
		return l.operator(pos, token.AND, alt{'&', token.LAND}, alt{'=', token.AND_ASSIGN})
	case '|':
		return l.operator(pos, token.OR, alt{'|', token.LOR}, alt{'=', token.OR_ASSIGN})
	case '<':
		return l.shift(pos, '<', token.LESS, token.LTE, token.SHL, token.SHL_ASSIGN)
	case '>':
		return l.shift(pos, '>', token.GREATER, token.GTE, token.SHR, token.SHR_ASSIGN)
	case '~':
		return l.single(pos, token.TILDE)
	case '(':
		return l.single(pos, token.LPAREN)
	case ')':
		return l.single(pos, token.RPAREN)
	case '{':
		return l.single(pos, token.LBRACE)
	case '}':
		return l.single(pos, token.RBRACE)
	case '[':
		return l.single(pos, token.LBRACKET)
	case ']':
		return l.single(pos, token.RBRACKET)
	case ',':
		return l.single(pos, token.COMMA)
	case ';':
		return l.single(pos, token.SEMICOLON)
	case ':':
		return l.single(pos, token.COLON)
	case '?':
		return l.single(pos, token.QUESTION)
	}

	if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peek())) {
		return l.scanNumber(pos)
	}
	if isIdentStart(l.ch) {
		return l.scanIdent(pos)
	}

	r, _ := utf8.DecodeRune(l.src[pos.Offset:])
	l.next()
	return Token{Type: token.ILLEGAL, Pos: pos, Value: "illegal character " + quoteRune(r), Lexeme: string(r)}
}

// single consumes a one-character token.
func (l *Lexer) single(pos token.Position, t token.Token) Token {
	l.next()
	return Token{Type: t, Pos: pos, Value: t.String()}
}

// alt is a second character that extends a one-character operator.
type alt struct {
	ch  byte
	tok token.Token
}

// operator consumes a one-character operator whose spelling may be
// extended by one more character.
func (l *Lexer) operator(pos token.Position, base token.Token, alts ...alt) Token {
	l.next()
	for _, a := range alts {
		if l.ch == a.ch && !l.atEOF() {
			l.next()
			return Token{Type: a.tok, Pos: pos, Value: a.tok.String()}
		}
	}
	return Token{Type: base, Pos: pos, Value: base.String()}
}

// shift handles the < and > families, where the longest spelling wins:
// <<= before << before <= before <.
func (l *Lexer) shift(pos token.Position, c byte, cmp, cmpEq, sh, shEq token.Token) Token {
	l.next()
	t := cmp
	switch {
	case l.ch == c && !l.atEOF():
		l.next()
		t = sh
		if l.ch == '=' && !l.atEOF() {
			l.next()
			t = shEq
		}
	case l.ch == '=' && !l.atEOF():
		l.next()
		t = cmpEq
	}
	return Token{Type: t, Pos: pos, Value: t.String()}
}

// scanNumber scans a preprocessing number: digits, letters, underscores
// and dots, plus a sign directly after a decimal exponent marker. The
// lexeme is validated when the parser converts it to a value, so "08"
// and "12ab" come back as NUMBER tokens that fail there.
func (l *Lexer) scanNumber(pos token.Position) Token {
	start := pos.Offset
	hex := l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X')
	for !l.atEOF() {
		prev := l.ch
		if isIdentContinue(l.ch) || l.ch == '.' {
			l.next()
			if !hex && (prev == 'e' || prev == 'E') && (l.ch == '+' || l.ch == '-') && isDigit(l.peek()) {
				l.next()
			}
			continue
		}
		break
	}
	return Token{Type: token.NUMBER, Pos: pos, Value: string(l.src[start:l.endOffset()])}
}

func (l *Lexer) scanIdent(pos token.Position) Token {
	start := pos.Offset
	for !l.atEOF() && isIdentContinue(l.ch) {
		l.next()
	}
	return Token{Type: token.NAME, Pos: pos, Value: string(l.src[start:l.endOffset()])}
}

// skipSpaceAndComments skips whitespace, // line comments and /* block
// comments */. It returns ok=false with an ILLEGAL token when a block
// comment is not terminated.
func (l *Lexer) skipSpaceAndComments() (Token, bool) {
	for !l.atEOF() {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' || l.ch == '\f' || l.ch == '\v':
			l.next()
		case l.ch == '/' && l.peek() == '/':
			for !l.atEOF() && l.ch != '\n' {
				l.next()
			}
		case l.ch == '/' && l.peek() == '*':
			pos := l.pos
			l.next()
			l.next()
			closed := false
			for !l.atEOF() {
				if l.ch == '*' && l.peek() == '/' {
					l.next()
					l.next()
					closed = true
					break
				}
				l.next()
			}
			if !closed {
				return Token{Type: token.ILLEGAL, Pos: pos, Value: "unterminated comment", Lexeme: "/*"}, false
			}
		default:
			return Token{}, true
		}
	}
	return Token{}, true
}

// atEOF reports whether the whole source has been consumed. A NUL byte
// inside the source is not EOF.
func (l *Lexer) atEOF() bool {
	return l.pos.Offset >= len(l.src)
}

// peek returns the character after the current one without consuming it.
func (l *Lexer) peek() byte {
	if l.offset < len(l.src) {
		return l.src[l.offset]
	}
	return 0
}

// endOffset returns the correct end offset for slicing l.src.
func (l *Lexer) endOffset() int {
	if l.atEOF() {
		return len(l.src)
	}
	return l.pos.Offset
}

func (l *Lexer) next() {
	if l.offset >= len(l.src) {
		l.ch = 0
		l.pos = l.nextPos
		l.pos.Offset = len(l.src)
		return
	}

	l.pos = l.nextPos
	l.ch = l.src[l.offset]
	l.offset++
	l.nextPos.Column++
	l.nextPos.Offset = l.offset

	if l.ch == '\n' {
		l.nextPos.Line++
		l.nextPos.Column = 1
	}
}

// Helper functions

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func quoteRune(r rune) string {
	if r == utf8.RuneError {
		return "'\\ufffd'"
	}
	return "'" + string(r) + "'"
}
