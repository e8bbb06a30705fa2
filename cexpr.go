package cexpr

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/kolkov/cexpr/internal/ast"
	"github.com/kolkov/cexpr/internal/compiler"
	"github.com/kolkov/cexpr/internal/interp"
	"github.com/kolkov/cexpr/internal/lexer"
	"github.com/kolkov/cexpr/internal/parser"
	"github.com/kolkov/cexpr/internal/pattern"
	"github.com/kolkov/cexpr/internal/types"
	"github.com/kolkov/cexpr/internal/vm"
)

// Version is the cexpr version string.
const Version = "0.1.0"

type (
	// Store maps variable names to values or arrays of values.
	Store = interp.Store

	// Value is a 64-bit integer or a 64-bit float.
	Value = types.Value

	// BatchResult is the outcome of one store in Program.RunBatch.
	BatchResult = vm.BatchResult
)

// NewStore creates an empty store.
func NewStore() *Store {
	return interp.NewStore()
}

// Int creates an integer value.
func Int(n int64) Value {
	return types.Int(n)
}

// Float creates a floating point value.
func Float(f float64) Value {
	return types.Float(f)
}

// ParseValue parses a number written as a literal with an optional sign.
func ParseValue(s string) (Value, error) {
	return types.ParseValue(strings.TrimSpace(s))
}

var (
	listSep = pattern.MustCompile(`\s*,\s*`)

	// filters caches the name patterns used by Config.Only.
	filters = pattern.NewCache(32)
)

// ParseArray parses comma-separated numbers, optionally wrapped in braces:
// "{1, 2, 3}", "1,2,3" or "{}".
func ParseArray(s string) ([]Value, error) {
	body := strings.TrimSpace(s)
	if strings.HasPrefix(body, "{") && strings.HasSuffix(body, "}") {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}
	fields := listSep.Split(body, -1)
	vals := make([]Value, 0, len(fields))
	for i, f := range fields {
		if f == "" {
			return nil, fmt.Errorf("empty element %d in %q", i, s)
		}
		v, err := types.ParseValue(f)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// NameFilter returns a predicate accepting names that match at least one
// of the regular expressions. With none, every name is accepted.
func NameFilter(patterns ...string) (func(name string) bool, error) {
	return filters.Filter(patterns...)
}

// Expr is a parsed single expression.
type Expr struct {
	node   ast.Expr
	source string
}

// Parse parses a single expression. Tokens after a complete expression
// are an error.
func Parse(src string) (*Expr, error) {
	return ParseWithConfig(src, nil)
}

// ParseWithConfig is like Parse but honors config.MaxDepth.
func ParseWithConfig(src string, config *Config) (*Expr, error) {
	p := newParser(src, config)
	node, err := p.ParseExpr()
	if err != nil {
		return nil, convertParseError(err)
	}
	return &Expr{node: node, source: src}, nil
}

// Eval evaluates the expression against store, applying its side effects.
// A nil store is treated as empty.
func (e *Expr) Eval(store *Store) (Value, error) {
	return interp.Eval(e.node, store)
}

// String returns the expression tree in Kind(op, operands...) form,
// e.g. Binary(+, a, Binary(*, b, 3)).
func (e *Expr) String() string {
	return ast.String(e.node)
}

// Tree returns the expression tree with one operand per line.
func (e *Expr) Tree() string {
	return ast.Tree(e.node)
}

// Source returns the original expression text.
func (e *Expr) Source() string {
	return e.source
}

// Eval parses and evaluates a single expression against store.
//
// Example:
//
//	store := cexpr.NewStore()
//	store.Set("a", cexpr.Int(5))
//	v, _ := cexpr.Eval("a++", store)
//	// v: 5, store: a=6
func Eval(src string, store *Store) (Value, error) {
	e, err := Parse(src)
	if err != nil {
		return Value{}, err
	}
	return e.Eval(store)
}

// Run executes a program and returns the final store as sorted
// name=value lines. This is a convenience function for one-off execution.
// For repeated execution of the same program, use Compile followed by
// Program.Run.
//
// If config.Output is set, the store is written there and the returned
// string is empty.
//
// Example:
//
//	output, err := cexpr.Run("a = 2; b = a << 3;", nil)
//	// output: "a=2\nb=16\n"
func Run(program string, config *Config) (string, error) {
	if config == nil {
		config = &Config{}
	}
	prog, err := CompileWithConfig(program, config)
	if err != nil {
		return "", err
	}

	store := config.Store
	if store == nil {
		store = NewStore()
	}
	if _, err := prog.Run(store, config); err != nil {
		return "", err
	}

	keep, err := NameFilter(config.Only...)
	if err != nil {
		return "", err
	}
	if config.Output != nil {
		return "", store.Write(config.Output, keep)
	}
	var buf bytes.Buffer
	if err := store.Write(&buf, keep); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Exec runs a program and writes the final store to output.
//
// Example:
//
//	err := cexpr.Exec("x = 1 ? 2 : 3;", os.Stdout, nil)
func Exec(program string, output io.Writer, config *Config) error {
	if config == nil {
		config = &Config{}
	}
	config.Output = output

	_, err := Run(program, config)
	return err
}

// Compile parses a program of ';'-separated expression statements
// and compiles it to bytecode.
// The returned Program can be run many times against different stores.
//
// Example:
//
//	prog, err := cexpr.Compile("sum += x; n++;")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(program string) (*Program, error) {
	return CompileWithConfig(program, nil)
}

// CompileWithConfig is like Compile but honors config.MaxDepth.
// The statements are compiled to bytecode and optimized once here.
func CompileWithConfig(program string, config *Config) (*Program, error) {
	p := newParser(program, config)
	astProg, err := p.ParseProgram()
	if err != nil {
		return nil, convertParseError(err)
	}
	code, err := compiler.Compile(astProg)
	if err != nil {
		return nil, &CompileError{Message: err.Error()}
	}
	compiler.Optimize(code)
	return &Program{
		prog:   astProg,
		code:   code,
		source: program,
	}, nil
}

// MustCompile is like Compile but panics if the program cannot be parsed.
// It simplifies initialization of global program variables.
func MustCompile(program string) *Program {
	prog, err := Compile(program)
	if err != nil {
		panic(err)
	}
	return prog
}

func newParser(src string, config *Config) *parser.Parser {
	p := parser.New(lexer.Tokenize(src))
	if config != nil {
		p.SetMaxDepth(config.MaxDepth)
	}
	return p
}
