package cexpr

import (
	"context"
	"fmt"
	"sort"

	"github.com/kolkov/cexpr/internal/ast"
	"github.com/kolkov/cexpr/internal/compiler"
	"github.com/kolkov/cexpr/internal/interp"
	"github.com/kolkov/cexpr/internal/semantic"
	"github.com/kolkov/cexpr/internal/types"
	"github.com/kolkov/cexpr/internal/vm"
)

// Program represents a parsed statement program ready for execution.
// It is safe for concurrent use as long as each Run gets its own store.
type Program struct {
	prog   *ast.Program
	code   *compiler.Program
	source string // Original source for debugging
}

// Run evaluates the program's statements in order against store and
// returns the value of the last one. It stops at the first runtime error,
// leaving every write made before it in the store.
//
// If store is nil, a new empty store is used. If config is nil, default
// configuration is used. Config.Variables and Config.Arrays are applied to
// store before the first statement runs.
func (p *Program) Run(store *Store, config *Config) (Value, error) {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()

	if store == nil {
		store = NewStore()
	}
	if err := applyValues(store, config); err != nil {
		return Value{}, err
	}

	var trace interp.Tracer
	if config.Trace {
		stderr := config.Stderr
		trace = func(stmt *ast.ExprStmt, v types.Value) {
			fmt.Fprintf(stderr, "%s: %s => %s\n", stmt.Pos(), ast.String(stmt.Expr), v.Format())
		}
	}
	if config.Interpret {
		return interp.RunWith(p.prog, store, trace)
	}
	return vm.New(p.code, store).Run(trace)
}

// RunBatch runs the program once against each store, spreading the
// stores over config.Workers goroutines. Config.Variables and
// Config.Arrays are applied to every store first; a nil entry gets a
// new empty store. Results are returned in store order, and each
// result's Err holds that run's runtime error. Stores still queued when
// ctx is cancelled are not run and report ctx.Err().
//
// The returned error is non-nil only when the initial values in config
// are invalid, in which case no store is run.
func (p *Program) RunBatch(ctx context.Context, stores []*Store, config *Config) ([]BatchResult, error) {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()

	for i, store := range stores {
		if store == nil {
			store = NewStore()
			stores[i] = store
		}
		if err := applyValues(store, config); err != nil {
			return nil, err
		}
	}

	executor := vm.NewBatchExecutor(p.code, vm.ParallelConfig{NumWorkers: config.Workers})
	return executor.Run(ctx, stores), nil
}

// Disassemble returns a human-readable listing of the compiled bytecode.
func (p *Program) Disassemble() string {
	return p.code.Disassemble()
}

// Check analyzes the program without running it. Names bound in store,
// Config.Variables and Config.Arrays count as defined; store and config
// may be nil. Using a name as both an array and a scalar is an error
// (a *CheckError). Reads before assignment, subscripts of unbound
// arrays, constant zero divisors and statements with no effect are
// returned as warnings formatted "line:col: warning: message".
func (p *Program) Check(store *Store, config *Config) (warnings []string, err error) {
	globals := semantic.NewSymbolTable()
	if store != nil {
		for _, name := range store.Names() {
			if store.IsArray(name) {
				globals.Define(name, semantic.TypeArray)
			} else {
				globals.Define(name, semantic.TypeScalar)
			}
		}
	}
	if config != nil {
		for _, name := range sortedNames(config.Variables) {
			globals.Define(name, semantic.TypeScalar)
		}
		for _, name := range sortedNames(config.Arrays) {
			globals.Define(name, semantic.TypeArray)
		}
	}

	result := semantic.Check(p.prog, globals)
	warnings = result.Warnings.Strings()
	if len(result.Errors) > 0 {
		return warnings, &CheckError{Message: result.Errors.Error()}
	}
	return warnings, nil
}

// Dump returns the parsed statements, one Kind(op, operands...) tree per line.
func (p *Program) Dump() string {
	return ast.String(p.prog)
}

// Tree returns the parsed statements as indented trees.
func (p *Program) Tree() string {
	return ast.Tree(p.prog)
}

// Source returns the original program text.
func (p *Program) Source() string {
	return p.source
}

// Len returns the number of statements, counting empty ones.
func (p *Program) Len() int {
	return len(p.prog.Stmts)
}

// Vars returns the sorted names the program reads and the names it
// assigns or increments. Reads include array names used in subscripts.
func (p *Program) Vars() (reads, writes []string) {
	return ast.Refs(p.prog)
}

// applyValues binds config's initial values into store, in name order.
func applyValues(store *Store, config *Config) error {
	for _, name := range sortedNames(config.Variables) {
		text := config.Variables[name]
		v, err := ParseValue(text)
		if err != nil {
			return &ValueError{Name: name, Value: text, Err: err}
		}
		store.Set(name, v)
	}
	for _, name := range sortedNames(config.Arrays) {
		text := config.Arrays[name]
		vals, err := ParseArray(text)
		if err != nil {
			return &ValueError{Name: name, Value: text, Err: err}
		}
		store.SetArray(name, vals)
	}
	return nil
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
