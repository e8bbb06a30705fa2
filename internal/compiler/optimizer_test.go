package compiler

import (
	"testing"

	"github.com/kolkov/cexpr/internal/types"
)

func optimizeSource(t *testing.T, source string) *Program {
	t.Helper()
	p := compileSource(t, source)
	Optimize(p)
	return p
}

func TestOptimizeFolding(t *testing.T) {
	tests := []struct {
		src  string
		ops  string
		want types.Value // value of the single remaining Num, if any
	}{
		{"1 + 2 * 3", "Num", types.Int(7)},
		{"-(1 - 3)", "Num", types.Int(2)},
		{"~5", "Num", types.Int(-6)},
		{"!0", "Num", types.Int(1)},
		{"1.5 * 2", "Num", types.Float(3)},
		{"1 < 2", "Num", types.Int(1)},
		{"1 && 2", "Num", types.Int(1)},
		{"0 || 0.0", "Num", types.Int(0)},
		{"x = 2 + 2", "Num StoreScalar", types.Int(4)},
		{"1 ? 2 : 3", "Num", types.Int(2)},
		{"0 ? 2 : 3", "Num", types.Int(3)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := optimizeSource(t, tt.src)
			code := p.Stmts[0].Code
			if got := opsString(code); got != tt.ops {
				t.Fatalf("ops = %s, want %s", got, tt.ops)
			}
			v := p.Nums[code[1]]
			if v.Kind() != tt.want.Kind() || v.Format() != tt.want.Format() {
				t.Errorf("constant = %s, want %s", v, tt.want)
			}
		})
	}
}

func TestOptimizeKeepsFailingOperations(t *testing.T) {
	tests := []struct {
		src string
		ops string
	}{
		{"1 / 0", "Num Num Divide"},
		{"1 % 0.0", "Num Num Modulo"},
		{"1 << -1", "Num Num ShiftLeft"},
		{"1.5 & 1", "Num Num BitAnd"},
		{"~1.5", "Num Complement"},
		{"x + 1", "LoadScalar Num Add"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := optimizeSource(t, tt.src)
			if got := opsString(p.Stmts[0].Code); got != tt.ops {
				t.Errorf("ops = %s, want %s", got, tt.ops)
			}
		})
	}
}

func TestOptimizeConstantCondition(t *testing.T) {
	tests := []struct {
		src string
		ops string
	}{
		// Only the branch taken survives.
		{"0 ? a : b", "LoadScalar"},
		{"1 ? a : b", "LoadScalar"},
		{"0 && a", "Num"},
		{"1 && a", "LoadScalar Boolean"},
		{"1 || a", "Num"},
		{"0 || a", "LoadScalar Boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := optimizeSource(t, tt.src)
			code := p.Stmts[0].Code
			if got := opsString(code); got != tt.ops {
				t.Fatalf("ops = %s, want %s", got, tt.ops)
			}
		})
	}

	p := optimizeSource(t, "0 ? a : b")
	if name := p.Names[p.Stmts[0].Code[1]]; name != "b" {
		t.Errorf("kept branch loads %s, want b", name)
	}
}

func TestOptimizeRespectsJumpTargets(t *testing.T) {
	// The else constant is a jump target and the constant after the
	// conditional is the end target, so neither may be folded with
	// its neighbours.
	p := optimizeSource(t, "(c ? 1 : 2) + 3")
	want := "LoadScalar JumpFalse Num Jump Num Num Add"
	if got := opsString(p.Stmts[0].Code); got != want {
		t.Errorf("ops = %s, want %s", got, want)
	}
}

func TestOptimizeShrinksCode(t *testing.T) {
	p := compileSource(t, "x = (1 + 2) * (3 + 4) - 5; y = 1 && x")
	before := p.CodeSize()
	Optimize(p)
	if after := p.CodeSize(); after >= before {
		t.Errorf("code size %d -> %d, expected it to shrink", before, after)
	}
}
