// Package vm provides the bytecode virtual machine for compiled statement
// programs. It runs against the same store, and reports the same errors,
// as the tree-walking evaluator.
package vm

import (
	"github.com/kolkov/cexpr/internal/compiler"
	"github.com/kolkov/cexpr/internal/interp"
	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// DefaultStackSize is the initial stack capacity.
const DefaultStackSize = 64

// VM is the statement virtual machine. A VM is not safe for concurrent
// use; the Program it runs may be shared.
type VM struct {
	program *compiler.Program
	store   *interp.Store

	// Value stack (inline for performance - no pointer indirection)
	stackData []types.Value
	sp        int // Stack pointer (index of next free slot)
}

// New creates a VM that runs prog against store. A nil store is
// treated as empty.
func New(prog *compiler.Program, store *interp.Store) *VM {
	if store == nil {
		store = interp.NewStore()
	}
	return &VM{
		program:   prog,
		store:     store,
		stackData: make([]types.Value, DefaultStackSize),
	}
}

// Store returns the store the VM runs against.
func (vm *VM) Store() *interp.Store {
	return vm.store
}

// Run executes the statements in order and returns the value of the last
// one. It stops at the first runtime error, leaving every write made
// before it in the store. trace, if non-nil, sees each completed statement.
func (vm *VM) Run(trace interp.Tracer) (types.Value, error) {
	var last types.Value
	for i := range vm.program.Stmts {
		stmt := &vm.program.Stmts[i]
		vm.sp = 0
		if err := vm.execute(stmt.Code); err != nil {
			return types.Value{}, err
		}
		v := vm.pop()
		if trace != nil {
			trace(stmt.Node, v)
		}
		last = v
	}
	return last, nil
}

// -----------------------------------------------------------------------------
// Inline Stack Operations
// -----------------------------------------------------------------------------

// push pushes a value onto the stack.
func (vm *VM) push(v types.Value) {
	if vm.sp >= len(vm.stackData) {
		vm.growStack()
	}
	vm.stackData[vm.sp] = v
	vm.sp++
}

// pop removes and returns the top value from the stack.
func (vm *VM) pop() types.Value {
	vm.sp--
	return vm.stackData[vm.sp]
}

// peekPop returns the second-from-top value and pops the top value.
// Returns (second-from-top, top).
func (vm *VM) peekPop() (types.Value, types.Value) {
	vm.sp--
	return vm.stackData[vm.sp-1], vm.stackData[vm.sp]
}

// replaceTop replaces the top value without pop/push overhead.
func (vm *VM) replaceTop(v types.Value) {
	vm.stackData[vm.sp-1] = v
}

// popBool pops the top value and returns it as bool.
func (vm *VM) popBool() bool {
	vm.sp--
	return vm.stackData[vm.sp].AsBool()
}

// growStack doubles the stack capacity.
func (vm *VM) growStack() {
	newData := make([]types.Value, len(vm.stackData)*2)
	copy(newData, vm.stackData)
	vm.stackData = newData
}

func (vm *VM) name(op compiler.Opcode) string {
	return vm.program.Names[op]
}

func (vm *VM) pos(op compiler.Opcode) token.Position {
	return vm.program.Positions[op]
}

//nolint:gocyclo,funlen // the dispatch loop is one switch by design
func (vm *VM) execute(code []compiler.Opcode) error {
	ip := 0
	for ip < len(code) {
		op := code[ip]
		ip++

		switch op {
		case compiler.Nop:
			// Do nothing

		case compiler.Num:
			vm.push(vm.program.Nums[code[ip]])
			ip++

		case compiler.Drop:
			vm.sp--

		case compiler.LoadScalar:
			v, err := vm.store.LoadScalar(vm.name(code[ip]), vm.pos(code[ip+1]))
			if err != nil {
				return err
			}
			ip += 2
			vm.push(v)

		case compiler.StoreScalar:
			v := vm.stackData[vm.sp-1]
			if err := vm.store.StoreScalar(vm.name(code[ip]), vm.pos(code[ip+1]), v); err != nil {
				return err
			}
			ip += 2

		case compiler.CheckArray:
			if err := vm.store.CheckArray(vm.name(code[ip]), vm.pos(code[ip+1])); err != nil {
				return err
			}
			ip += 2

		case compiler.ElemIndex:
			name, basePos, idxPos := vm.name(code[ip]), vm.pos(code[ip+1]), vm.pos(code[ip+2])
			ip += 3
			i, err := vm.store.ElementIndex(name, basePos, idxPos, vm.stackData[vm.sp-1])
			if err != nil {
				return err
			}
			vm.replaceTop(types.Int(int64(i)))

		case compiler.LoadElem:
			name := vm.name(code[ip])
			ip++
			vm.replaceTop(vm.store.Element(name, int(vm.stackData[vm.sp-1].AsInt())))

		case compiler.StoreElem:
			name := vm.name(code[ip])
			ip++
			value, i := vm.peekPop()
			vm.store.SetElement(name, int(i.AsInt()), value)

		case compiler.NotArray:
			return &interp.TypeError{Pos: vm.pos(code[ip]), Message: "subscripted value is not an array"}

		case compiler.AugScalar:
			tok := token.Token(code[ip])
			name, pos, opPos := vm.name(code[ip+1]), vm.pos(code[ip+2]), vm.pos(code[ip+3])
			ip += 4
			cur, err := vm.store.LoadScalar(name, pos)
			if err != nil {
				return err
			}
			v, err := interp.BinaryOp(opPos, tok, cur, vm.stackData[vm.sp-1])
			if err != nil {
				return err
			}
			if err := vm.store.StoreScalar(name, pos, v); err != nil {
				return err
			}
			vm.replaceTop(v)

		case compiler.AugElem:
			tok := token.Token(code[ip])
			name, opPos := vm.name(code[ip+1]), vm.pos(code[ip+2])
			ip += 3
			value, idx := vm.peekPop()
			i := int(idx.AsInt())
			v, err := interp.BinaryOp(opPos, tok, vm.store.Element(name, i), value)
			if err != nil {
				return err
			}
			vm.store.SetElement(name, i, v)
			vm.replaceTop(v)

		case compiler.IncrScalar:
			amount, post := int64(code[ip]), code[ip+1] != 0
			name, pos := vm.name(code[ip+2]), vm.pos(code[ip+3])
			ip += 4
			old, err := vm.store.LoadScalar(name, pos)
			if err != nil {
				return err
			}
			updated := interp.Step(old, amount)
			if err := vm.store.StoreScalar(name, pos, updated); err != nil {
				return err
			}
			if post {
				vm.push(old)
			} else {
				vm.push(updated)
			}

		case compiler.IncrElem:
			amount, post := int64(code[ip]), code[ip+1] != 0
			name := vm.name(code[ip+2])
			ip += 3
			i := int(vm.stackData[vm.sp-1].AsInt())
			old := vm.store.Element(name, i)
			updated := interp.Step(old, amount)
			vm.store.SetElement(name, i, updated)
			if post {
				vm.replaceTop(old)
			} else {
				vm.replaceTop(updated)
			}

		case compiler.Add, compiler.Subtract, compiler.Multiply, compiler.Divide, compiler.Modulo,
			compiler.ShiftLeft, compiler.ShiftRight, compiler.BitAnd, compiler.BitOr, compiler.BitXor:
			pos := vm.pos(code[ip])
			ip++
			l, r := vm.peekPop()
			v, err := interp.BinaryOp(pos, op.Token(), l, r)
			if err != nil {
				return err
			}
			vm.replaceTop(v)

		case compiler.Equal, compiler.NotEqual, compiler.Less, compiler.LessEqual,
			compiler.Greater, compiler.GreaterEqual:
			l, r := vm.peekPop()
			v, _ := interp.BinaryOp(token.NoPos, op.Token(), l, r)
			vm.replaceTop(v)

		case compiler.UnaryMinus:
			vm.replaceTop(types.Negate(vm.stackData[vm.sp-1]))

		case compiler.UnaryPlus:
			// Value unchanged

		case compiler.Not:
			vm.replaceTop(types.Bool(!vm.stackData[vm.sp-1].AsBool()))

		case compiler.Complement:
			v, err := interp.UnaryOp(vm.pos(code[ip]), token.TILDE, vm.stackData[vm.sp-1])
			if err != nil {
				return err
			}
			ip++
			vm.replaceTop(v)

		case compiler.Boolean:
			vm.replaceTop(types.Bool(vm.stackData[vm.sp-1].AsBool()))

		case compiler.Jump:
			offset := int(code[ip])
			ip++
			ip += offset

		case compiler.JumpTrue:
			offset := int(code[ip])
			ip++
			if vm.popBool() {
				ip += offset
			}

		case compiler.JumpFalse:
			offset := int(code[ip])
			ip++
			if !vm.popBool() {
				ip += offset
			}

		default:
			return &interp.TypeError{Message: "invalid opcode " + op.String()}
		}
	}
	return nil
}
