package cexpr

import (
	"io"
	"runtime"

	"github.com/kolkov/cexpr/internal/parser"
)

// Config holds configuration options for compiling and running programs.
type Config struct {
	// MaxDepth bounds how deeply expressions may nest (default: 256).
	// Deeper input is rejected with a SyntaxError.
	MaxDepth int

	// Variables contains initial scalar values, written the way
	// literals are: "42", "-3", "0x1F", "2.5".
	// Example: map[string]string{"threshold": "100", "rate": "0.25"}
	Variables map[string]string

	// Arrays contains initial arrays as comma-separated values,
	// with or without braces: "{1, 2, 3}" or "1,2,3".
	Arrays map[string]string

	// Store is the store to run against. If nil, a new empty store is
	// used. Variables and Arrays are applied on top of it.
	Store *Store

	// Only restricts which names Run prints to those matching at least
	// one of these regular expressions. Empty prints every name.
	Only []string

	// Output is the writer for the final store printed by Run and Exec.
	// If nil, the output is returned from Run.
	Output io.Writer

	// Stderr is the writer for trace output.
	// If nil, trace output is discarded.
	Stderr io.Writer

	// Trace prints each statement with its value to Stderr as it runs.
	Trace bool

	// Interpret evaluates the syntax tree directly instead of running
	// the compiled bytecode. Both produce the same values, store contents
	// and errors.
	Interpret bool

	// Workers is the number of goroutines RunBatch uses
	// (default: runtime.NumCPU()).
	Workers int
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = parser.DefaultMaxDepth
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Stderr == nil {
		c.Stderr = io.Discard
	}
}
