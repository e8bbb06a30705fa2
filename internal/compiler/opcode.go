// Package compiler compiles statement programs into bytecode for the VM.
package compiler

import "fmt"

// Opcode represents a virtual machine instruction or one of its operands.
// Each opcode is a 32-bit signed integer, so jump offsets and pool
// indices fit without overflow concerns.
type Opcode int32

const (
	// Nop does nothing.
	Nop Opcode = iota

	// Stack operations
	Num  // Push number constant: Num numIndex
	Drop // Discard top of stack

	// Scalar access
	LoadScalar  // Push scalar: LoadScalar nameIndex posIndex
	StoreScalar // Store top of stack, leaving it: StoreScalar nameIndex posIndex

	// Array element access. CheckArray verifies the binding before the
	// subscript is evaluated; ElemIndex then validates the subscript on
	// top of the stack and replaces it with the element number.
	CheckArray // CheckArray nameIndex posIndex
	ElemIndex  // ElemIndex nameIndex basePosIndex indexPosIndex (subscript on stack)
	LoadElem   // Push element: LoadElem nameIndex (element number on stack)
	StoreElem  // Store element: StoreElem nameIndex (value and element number on stack)
	NotArray   // Fail: subscript of something that is not a name: NotArray posIndex

	// Compound assignment. The operator operand is a token.Token.
	AugScalar // op= scalar: AugScalar op nameIndex posIndex opPosIndex (value on stack)
	AugElem   // op= element: AugElem op nameIndex opPosIndex (value and element number on stack)

	// Increment and decrement. amount is +1 or -1; post is 1 for the
	// postfix forms, which leave the old value on the stack.
	IncrScalar // IncrScalar amount post nameIndex posIndex
	IncrElem   // IncrElem amount post nameIndex (element number on stack)

	// Arithmetic operators: Op posIndex
	Add      // a + b
	Subtract // a - b
	Multiply // a * b
	Divide   // a / b
	Modulo   // a % b

	// Bitwise operators: Op posIndex
	ShiftLeft  // a << b
	ShiftRight // a >> b
	BitAnd     // a & b
	BitOr      // a | b
	BitXor     // a ^ b

	// Comparison operators
	Equal        // a == b
	NotEqual     // a != b
	Less         // a < b
	LessEqual    // a <= b
	Greater      // a > b
	GreaterEqual // a >= b

	// Unary operators
	UnaryMinus // -a
	UnaryPlus  // +a
	Not        // !a
	Complement // ~a: Complement posIndex
	Boolean    // Convert to 0 or 1

	// Control flow. Offsets are relative to the instruction that follows.
	Jump      // Unconditional jump: Jump offset
	JumpTrue  // Pop and jump if true: JumpTrue offset
	JumpFalse // Pop and jump if false: JumpFalse offset
)

var opcodeNames = [...]string{
	Nop:          "Nop",
	Num:          "Num",
	Drop:         "Drop",
	LoadScalar:   "LoadScalar",
	StoreScalar:  "StoreScalar",
	CheckArray:   "CheckArray",
	ElemIndex:    "ElemIndex",
	LoadElem:     "LoadElem",
	StoreElem:    "StoreElem",
	NotArray:     "NotArray",
	AugScalar:    "AugScalar",
	AugElem:      "AugElem",
	IncrScalar:   "IncrScalar",
	IncrElem:     "IncrElem",
	Add:          "Add",
	Subtract:     "Subtract",
	Multiply:     "Multiply",
	Divide:       "Divide",
	Modulo:       "Modulo",
	ShiftLeft:    "ShiftLeft",
	ShiftRight:   "ShiftRight",
	BitAnd:       "BitAnd",
	BitOr:        "BitOr",
	BitXor:       "BitXor",
	Equal:        "Equal",
	NotEqual:     "NotEqual",
	Less:         "Less",
	LessEqual:    "LessEqual",
	Greater:      "Greater",
	GreaterEqual: "GreaterEqual",
	UnaryMinus:   "UnaryMinus",
	UnaryPlus:    "UnaryPlus",
	Not:          "Not",
	Complement:   "Complement",
	Boolean:      "Boolean",
	Jump:         "Jump",
	JumpTrue:     "JumpTrue",
	JumpFalse:    "JumpFalse",
}

// String returns a human-readable name for the opcode.
func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int32(op))
}

// operandCount returns how many operands follow op in the code stream.
func operandCount(op Opcode) int {
	switch op {
	case Num, LoadElem, StoreElem, NotArray,
		Add, Subtract, Multiply, Divide, Modulo,
		ShiftLeft, ShiftRight, BitAnd, BitOr, BitXor,
		Complement, Jump, JumpTrue, JumpFalse:
		return 1
	case LoadScalar, StoreScalar, CheckArray:
		return 2
	case ElemIndex, AugElem, IncrElem:
		return 3
	case AugScalar, IncrScalar:
		return 4
	default:
		return 0
	}
}

// instructionLength returns the length of the instruction at position i.
func instructionLength(code []Opcode, i int) int {
	if i >= len(code) {
		return 0
	}
	return 1 + operandCount(code[i])
}

// isJumpOpcode returns true if the opcode is a jump instruction.
func isJumpOpcode(op Opcode) bool {
	switch op {
	case Jump, JumpTrue, JumpFalse:
		return true
	default:
		return false
	}
}
