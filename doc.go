// Package cexpr parses and evaluates C-style expressions against a
// variable store.
//
// The language covers the C expression grammar: assignment and compound
// assignment, the conditional operator, logical, bitwise, relational,
// shift and arithmetic operators, prefix and postfix increment, array
// subscripts and the comma operator, with C precedence and associativity.
// Values are 64-bit integers or 64-bit floats.
//
// # Quick Start
//
// Evaluate one expression against a store:
//
//	store := cexpr.NewStore()
//	store.Set("a", cexpr.Int(2))
//	store.Set("b", cexpr.Int(5))
//	v, err := cexpr.Eval("res = a + b * 3", store)
//	// v is 17, and store now holds res=17
//
// Run a program of ';'-separated statements and get the final store:
//
//	out, err := cexpr.Run("i = 0; arr[i++] = x--;", &cexpr.Config{
//	    Variables: map[string]string{"x": "10"},
//	    Arrays:    map[string]string{"arr": "{0, 0, 0}"},
//	})
//	// out: "arr={10, 0, 0}\ni=1\nx=9\n"
//
// # Compiled Programs
//
// For repeated execution of the same program:
//
//	prog, err := cexpr.Compile("total += price * qty;")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, store := range stores {
//	    if _, err := prog.Run(store, nil); err != nil {
//	        // ...
//	    }
//	}
//
// Compile lowers the statements to bytecode once, folding constant
// subexpressions, and Run executes that bytecode on a small stack machine.
// Set [Config].Interpret to evaluate the syntax tree instead; both give
// the same results. [Program.Disassemble] shows the bytecode.
//
// To run one program against many stores in parallel:
//
//	results, err := prog.RunBatch(ctx, stores, &cexpr.Config{Workers: 8})
//	for _, r := range results {
//	    if r.Err != nil {
//	        log.Printf("store %d: %v", r.Index, r.Err)
//	    }
//	}
//
// [Program.Check] reports names used both as arrays and scalars, and warns
// about reads before assignment and similar mistakes, without running
// anything.
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [SyntaxError]: malformed source, with line and column
//   - [NameError]: read of an unbound variable
//   - [IndexError]: subscript out of range
//   - [TypeError]: operator applied to the wrong kind of value
//   - [DivisionError]: division or modulo by zero
//
// The four runtime errors all implement [RuntimeError]. [Program.Check]
// returns a [CheckError], and initial values in [Config] that are not
// numbers give a [ValueError].
//
// # Thread Safety
//
// Compiled [Program] and [Expr] values are immutable and safe for
// concurrent use. A [Store] is not; give each goroutine its own.
package cexpr
