// Package token defines lexical tokens for C-style expressions.
package token

import "strconv"

// Token represents a lexical token type.
type Token uint8

const (
	// Special tokens
	ILLEGAL Token = iota // <illegal>
	EOF                  // EOF

	// Operators and delimiters
	operatorStart
	ADD        // +
	ADD_ASSIGN // +=
	SUB        // -
	SUB_ASSIGN // -=
	MUL        // *
	MUL_ASSIGN // *=
	DIV        // /
	DIV_ASSIGN // /=
	MOD        // %
	MOD_ASSIGN // %=

	SHL        // <<
	SHL_ASSIGN // <<=
	SHR        // >>
	SHR_ASSIGN // >>=

	AND        // &
	AND_ASSIGN // &=
	OR         // |
	OR_ASSIGN  // |=
	XOR        // ^
	XOR_ASSIGN // ^=
	TILDE      // ~

	LAND // &&
	LOR  // ||
	NOT  // !

	ASSIGN     // =
	EQUALS     // ==
	NOT_EQUALS // !=
	LESS       // <
	LTE        // <=
	GREATER    // >
	GTE        // >=

	INCR  // ++
	DECR  // --
	ARROW // ->

	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	QUESTION  // ?
	operatorEnd

	// Literals
	NAME   // name
	NUMBER // number
)

var names = [...]string{
	ILLEGAL: "illegal",
	EOF:     "end of input",

	ADD:        "+",
	ADD_ASSIGN: "+=",
	SUB:        "-",
	SUB_ASSIGN: "-=",
	MUL:        "*",
	MUL_ASSIGN: "*=",
	DIV:        "/",
	DIV_ASSIGN: "/=",
	MOD:        "%",
	MOD_ASSIGN: "%=",
	SHL:        "<<",
	SHL_ASSIGN: "<<=",
	SHR:        ">>",
	SHR_ASSIGN: ">>=",
	AND:        "&",
	AND_ASSIGN: "&=",
	OR:         "|",
	OR_ASSIGN:  "|=",
	XOR:        "^",
	XOR_ASSIGN: "^=",
	TILDE:      "~",
	LAND:       "&&",
	LOR:        "||",
	NOT:        "!",
	ASSIGN:     "=",
	EQUALS:     "==",
	NOT_EQUALS: "!=",
	LESS:       "<",
	LTE:        "<=",
	GREATER:    ">",
	GTE:        ">=",
	INCR:       "++",
	DECR:       "--",
	ARROW:      "->",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACE:     "{",
	RBRACE:     "}",
	LBRACKET:   "[",
	RBRACKET:   "]",
	COMMA:      ",",
	SEMICOLON:  ";",
	COLON:      ":",
	QUESTION:   "?",

	NAME:   "name",
	NUMBER: "number",
}

// String returns the source spelling of an operator, or a descriptive
// name for the other token kinds.
func (t Token) String() string {
	if int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// IsOperator returns true if the token is an operator or delimiter.
func (t Token) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsLiteral returns true if the token is a name or number.
func (t Token) IsLiteral() bool {
	return t == NAME || t == NUMBER
}

// IsAssign returns true for = and the ten compound assignment operators.
func (t Token) IsAssign() bool {
	switch t {
	case ASSIGN, ADD_ASSIGN, SUB_ASSIGN, MUL_ASSIGN, DIV_ASSIGN, MOD_ASSIGN,
		SHL_ASSIGN, SHR_ASSIGN, AND_ASSIGN, XOR_ASSIGN, OR_ASSIGN:
		return true
	default:
		return false
	}
}

// IsUnary returns true for the prefix operators ! ~ ++ -- + -.
func (t Token) IsUnary() bool {
	switch t {
	case NOT, TILDE, INCR, DECR, ADD, SUB:
		return true
	default:
		return false
	}
}

// BinaryOf returns the binary operator a compound assignment applies,
// e.g. ADD for ADD_ASSIGN. It returns ILLEGAL for plain ASSIGN and for
// tokens that are not assignments.
func BinaryOf(t Token) Token {
	switch t {
	case ADD_ASSIGN:
		return ADD
	case SUB_ASSIGN:
		return SUB
	case MUL_ASSIGN:
		return MUL
	case DIV_ASSIGN:
		return DIV
	case MOD_ASSIGN:
		return MOD
	case SHL_ASSIGN:
		return SHL
	case SHR_ASSIGN:
		return SHR
	case AND_ASSIGN:
		return AND
	case XOR_ASSIGN:
		return XOR
	case OR_ASSIGN:
		return OR
	default:
		return ILLEGAL
	}
}
