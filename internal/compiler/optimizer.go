package compiler

// This file implements peephole optimization: a post-compilation pass that
// folds instruction sequences over constants into single instructions and
// drops code no jump can reach.
// A sequence is folded only when evaluating it cannot fail, so runtime
// errors such as division by zero still happen when, and only if, the
// code runs.

import (
	"github.com/kolkov/cexpr/internal/interp"
	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// Optimize applies peephole optimizations to every statement of p.
func Optimize(p *Program) {
	for i := range p.Stmts {
		p.Stmts[i].Code = p.optimizeCode(p.Stmts[i].Code)
	}
}

// optimizeCode runs folding passes until nothing changes.
func (p *Program) optimizeCode(code []Opcode) []Opcode {
	for {
		next, changed := p.foldPass(code)
		if !changed {
			return next
		}
		code = next
	}
}

// jumpFix records a jump whose offset must be recomputed after rewriting.
type jumpFix struct {
	newOffsetPos int // Position of offset in NEW code
	oldTarget    int // Target position in OLD code
}

// fold is the result of matching a pattern at one position.
type fold struct {
	consumed  int      // Old code words replaced
	code      []Opcode // Replacement, possibly empty
	oldTarget int      // Old target if the replacement is a jump, else -1
}

// foldPass rewrites code once, remapping every jump to the new layout.
func (p *Program) foldPass(code []Opcode) ([]Opcode, bool) {
	targets := jumpTargets(code)

	result := make([]Opcode, 0, len(code))
	posMap := make(map[int]int) // oldPos -> newPos
	var fixes []jumpFix
	changed := false

	dead := false // after an unconditional jump
	for oldPos := 0; oldPos < len(code); {
		posMap[oldPos] = len(result)

		// Code after an unconditional jump is unreachable until the next
		// jump target.
		if dead && !targets[oldPos] {
			oldPos += instructionLength(code, oldPos)
			changed = true
			continue
		}
		dead = false

		if f, ok := p.tryFold(code, oldPos, targets); ok {
			result = append(result, f.code...)
			if f.oldTarget >= 0 {
				fixes = append(fixes, jumpFix{newOffsetPos: len(result) - 1, oldTarget: f.oldTarget})
				dead = f.code[0] == Jump
			}
			oldPos += f.consumed
			changed = true
			continue
		}

		n := instructionLength(code, oldPos)
		result = append(result, code[oldPos:oldPos+n]...)
		if isJumpOpcode(code[oldPos]) {
			fixes = append(fixes, jumpFix{
				newOffsetPos: len(result) - 1,
				oldTarget:    oldPos + n + int(code[oldPos+1]),
			})
			dead = code[oldPos] == Jump
		}
		oldPos += n
	}
	posMap[len(code)] = len(result)

	for _, fx := range fixes {
		result[fx.newOffsetPos] = Opcode(posMap[fx.oldTarget] - (fx.newOffsetPos + 1))
	}
	return result, changed
}

// jumpTargets returns the set of positions some jump lands on.
func jumpTargets(code []Opcode) map[int]bool {
	targets := make(map[int]bool)
	for i := 0; i < len(code); {
		n := instructionLength(code, i)
		if isJumpOpcode(code[i]) {
			targets[i+n+int(code[i+1])] = true
		}
		i += n
	}
	return targets
}

// tryFold matches a foldable sequence starting at i. Only the first
// instruction of a sequence may be a jump target.
func (p *Program) tryFold(code []Opcode, i int, targets map[int]bool) (fold, bool) {
	if code[i] == Jump && code[i+1] == 0 {
		// Jump to the next instruction
		return fold{consumed: 2, oldTarget: -1}, true
	}
	if code[i] != Num || i+2 >= len(code) || targets[i+2] {
		return fold{}, false
	}
	a := p.Nums[code[i+1]]
	next := code[i+2]

	switch next {
	case UnaryMinus, UnaryPlus, Not, Complement:
		v, err := interp.UnaryOp(token.NoPos, unaryToken(next), a)
		if err != nil {
			return fold{}, false
		}
		return p.constant(2+instructionLength(code, i+2), v), true

	case Boolean:
		return p.constant(3, types.Bool(a.AsBool())), true

	case JumpTrue, JumpFalse:
		// A constant condition makes the jump unconditional or removes it.
		oldTarget := i + 4 + int(code[i+3])
		if a.AsBool() == (next == JumpTrue) {
			return fold{consumed: 4, code: []Opcode{Jump, 0}, oldTarget: oldTarget}, true
		}
		return fold{consumed: 4, oldTarget: -1}, true

	case Num:
		j := i + 4
		if j >= len(code) || targets[j] {
			return fold{}, false
		}
		tok := code[j].Token()
		if tok == token.ILLEGAL {
			return fold{}, false
		}
		b := p.Nums[code[i+3]]
		v, err := interp.BinaryOp(token.NoPos, tok, a, b)
		if err != nil {
			return fold{}, false
		}
		return p.constant(4+instructionLength(code, j), v), true
	}
	return fold{}, false
}

// constant returns a fold replacing consumed words with Num v.
func (p *Program) constant(consumed int, v types.Value) fold {
	return fold{
		consumed:  consumed,
		code:      []Opcode{Num, opcodeInt(p.numIndex(v))},
		oldTarget: -1,
	}
}

func unaryToken(op Opcode) token.Token {
	switch op {
	case UnaryMinus:
		return token.SUB
	case UnaryPlus:
		return token.ADD
	case Not:
		return token.NOT
	default:
		return token.TILDE
	}
}
