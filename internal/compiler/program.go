package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/kolkov/cexpr/internal/ast"
	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// Program represents a compiled statement program ready for VM execution.
// A Program is immutable after Compile and Optimize and may be run by
// many VMs at once.
type Program struct {
	// Stmts holds one code sequence per expression statement, in order.
	Stmts []Stmt

	// Constant pools
	Nums      []types.Value    // Numeric constants
	Names     []string         // Variable names
	Positions []token.Position // Source positions for error reports

	numIdx  map[numKey]int
	nameIdx map[string]int
	posIdx  map[token.Position]int
}

// Stmt is a compiled expression statement.
type Stmt struct {
	// Node is the statement the code was compiled from.
	Node *ast.ExprStmt

	// Code leaves the statement's value on the stack.
	Code []Opcode
}

// numKey identifies a constant by kind and bit pattern, so -0.0 and 0.0
// stay distinct.
type numKey struct {
	kind types.Kind
	bits uint64
}

func newProgram() *Program {
	return &Program{
		numIdx:  make(map[numKey]int),
		nameIdx: make(map[string]int),
		posIdx:  make(map[token.Position]int),
	}
}

func (p *Program) numIndex(v types.Value) int {
	key := numKey{kind: v.Kind(), bits: uint64(v.AsInt())}
	if v.IsFloat() {
		key.bits = math.Float64bits(v.AsFloat())
	}
	if idx, ok := p.numIdx[key]; ok {
		return idx
	}
	idx := len(p.Nums)
	p.Nums = append(p.Nums, v)
	p.numIdx[key] = idx
	return idx
}

func (p *Program) nameIndex(name string) int {
	if idx, ok := p.nameIdx[name]; ok {
		return idx
	}
	idx := len(p.Names)
	p.Names = append(p.Names, name)
	p.nameIdx[name] = idx
	return idx
}

func (p *Program) posIndex(pos token.Position) int {
	if idx, ok := p.posIdx[pos]; ok {
		return idx
	}
	idx := len(p.Positions)
	p.Positions = append(p.Positions, pos)
	p.posIdx[pos] = idx
	return idx
}

// CodeSize returns the total number of code words across all statements.
func (p *Program) CodeSize() int {
	n := 0
	for _, s := range p.Stmts {
		n += len(s.Code)
	}
	return n
}

// Disassemble returns a human-readable disassembly of the program.
func (p *Program) Disassemble() string {
	var sb strings.Builder

	if len(p.Nums) > 0 {
		sb.WriteString("=== Numbers ===\n")
		for i, n := range p.Nums {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, n.Format())
		}
		sb.WriteString("\n")
	}

	if len(p.Names) > 0 {
		sb.WriteString("=== Names ===\n")
		for i, name := range p.Names {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, name)
		}
		sb.WriteString("\n")
	}

	for i, s := range p.Stmts {
		fmt.Fprintf(&sb, "=== Statement %d (%s) ===\n", i+1, s.Node.Pos())
		p.disassembleCode(&sb, s.Code, "  ")
	}

	return sb.String()
}

func (p *Program) disassembleCode(sb *strings.Builder, code []Opcode, indent string) {
	for ip := 0; ip < len(code); {
		op := code[ip]
		n := instructionLength(code, ip)
		fmt.Fprintf(sb, "%s%04d %s", indent, ip, op)
		if ip+n > len(code) {
			sb.WriteString(" <truncated>\n")
			return
		}
		args := code[ip+1 : ip+n]
		if s := p.formatOperands(op, args, ip+n); s != "" {
			sb.WriteByte(' ')
			sb.WriteString(s)
		}
		sb.WriteByte('\n')
		ip += n
	}
}

// formatOperands renders an instruction's operands. next is the position
// of the following instruction, which jump offsets are relative to.
func (p *Program) formatOperands(op Opcode, args []Opcode, next int) string {
	switch op {
	case Num:
		return p.Nums[args[0]].Format()
	case LoadScalar, StoreScalar, CheckArray, ElemIndex, LoadElem, StoreElem:
		return p.Names[args[0]]
	case AugScalar, AugElem:
		return token.Token(args[0]).String() + "= " + p.Names[args[1]]
	case IncrScalar, IncrElem:
		form := "pre"
		if args[1] != 0 {
			form = "post"
		}
		return fmt.Sprintf("%+d %s %s", int32(args[0]), form, p.Names[args[2]])
	case Jump, JumpTrue, JumpFalse:
		return fmt.Sprintf("-> %04d", next+int(args[0]))
	}
	return ""
}
