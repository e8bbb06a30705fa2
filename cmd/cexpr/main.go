// cexpr - C expression evaluator
//
// Runs ';'-separated C expression statements against a variable store
// and prints the final store.
// Uses manual argument parsing so flags may be glued to their values
// (-vx=1, -oyaml) as well as given separately.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kolkov/cexpr"
	"github.com/kolkov/cexpr/internal/storefile"
)

// version is set at build time via -ldflags.
// For development builds, it will be "dev".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	shortUsage = "usage: cexpr [-v var=value] [-a name={1,2,3}] [-s store.yaml] [-batch file.yaml] [-f progfile | 'prog' | -]"
	longUsage  = `Input:
  -f progfile       load statements from progfile (multiple allowed)
  -                 read statements from standard input
  -v var=value      set a scalar before running (multiple allowed)
  -a name={1,2,3}   set an array before running (multiple allowed)
  -s store.yaml     load initial values from a YAML store file (multiple allowed)
  -batch file.yaml  run once per document of a multi-document YAML file

Output:
  -o mode           output mode: text (default), yaml
  -only regex       print only names matching regex (multiple allowed)
  -w store.yaml     also save the final store as YAML
  -q                do not print the final store

Execution:
  -depth N          maximum expression nesting (default 256)
  -j N              use N parallel workers for -batch (default: number of CPUs)
  -interp           evaluate the syntax tree instead of compiled bytecode

Debugging arguments:
  -d                print parsed statements to stderr and exit
  -da               print bytecode assembly to stderr and exit
  -dt               print parsed statements as indented trees and exit
  -dv               print variables read and written to stderr and exit
  -t                trace each statement and its value to stderr
  -lint             check the program against the initial values, print
                    warnings to stderr and exit

Other:
  -h, --help        show this help message
  -version          show cexpr version and exit
`
)

func main() {
	stdout := bufio.NewWriter(os.Stdout)
	err := run(os.Args[1:], os.Stdin, stdout, os.Stderr)
	stdout.Flush()
	if err != nil {
		errorExit(err)
	}
}

// options holds the parsed command line.
type options struct {
	progFiles  []string
	vars       []string
	arrays     []string
	storeFiles []string
	batchFile  string
	only       []string
	outputMode string
	saveFile   string
	quiet      bool
	depth      int
	workers    int
	interpret  bool
	debug      bool
	debugAsm   bool
	debugTree  bool
	debugVars  bool
	trace      bool
	lint       bool
	args       []string
}

// errExit is returned by parseArgs when the command is done (-h, -version).
var errExit = errors.New("exit")

//nolint:gocyclo,funlen // CLI argument parsing is inherently complex
func parseArgs(argv []string, stdout io.Writer) (*options, error) {
	opts := &options{outputMode: "text"}

	// needArg returns the value of a flag given as a separate argument.
	var i int
	needArg := func(flag string) (string, error) {
		if i+1 >= len(argv) {
			return "", fmt.Errorf("flag needs an argument: %s", flag)
		}
		i++
		return argv[i], nil
	}

	for i = 0; i < len(argv); i++ {
		// Stop on explicit end of args or first arg not prefixed with "-"
		arg := argv[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		var err error
		var val string
		switch arg {
		case "-f":
			val, err = needArg(arg)
			opts.progFiles = append(opts.progFiles, val)
		case "-v":
			val, err = needArg(arg)
			opts.vars = append(opts.vars, val)
		case "-a":
			val, err = needArg(arg)
			opts.arrays = append(opts.arrays, val)
		case "-s":
			val, err = needArg(arg)
			opts.storeFiles = append(opts.storeFiles, val)
		case "-batch":
			opts.batchFile, err = needArg(arg)
		case "-o":
			opts.outputMode, err = needArg(arg)
		case "-only":
			val, err = needArg(arg)
			opts.only = append(opts.only, val)
		case "-w":
			opts.saveFile, err = needArg(arg)
		case "-depth":
			val, err = needArg(arg)
			if err == nil {
				opts.depth, err = parseDepth(val)
			}
		case "-j":
			val, err = needArg(arg)
			if err == nil {
				opts.workers, err = parseWorkers(val)
			}
		case "-interp":
			opts.interpret = true
		case "-q":
			opts.quiet = true
		case "-d":
			opts.debug = true
		case "-da":
			opts.debugAsm = true
		case "-dt":
			opts.debugTree = true
		case "-dv":
			opts.debugVars = true
		case "-t":
			opts.trace = true
		case "-lint":
			opts.lint = true
		case "-h", "--help":
			fmt.Fprintf(stdout, "cexpr %s - C expression evaluator\n\n%s\n\n%s", version, shortUsage, longUsage)
			return nil, errExit
		case "-version", "--version":
			fmt.Fprintf(stdout, "cexpr version %s\n", version)
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
			fmt.Fprintf(stdout, "  built:  %s\n", date)
			fmt.Fprintln(stdout, "  regex:  coregex")
			return nil, errExit
		default:
			// Handle flags with no space: -ffile, -vx=1, -aarr={1}, -oyaml, etc.
			switch {
			case strings.HasPrefix(arg, "-f"):
				opts.progFiles = append(opts.progFiles, arg[2:])
			case strings.HasPrefix(arg, "-v"):
				opts.vars = append(opts.vars, arg[2:])
			case strings.HasPrefix(arg, "-a"):
				opts.arrays = append(opts.arrays, arg[2:])
			case strings.HasPrefix(arg, "-s"):
				opts.storeFiles = append(opts.storeFiles, arg[2:])
			case strings.HasPrefix(arg, "-o"):
				opts.outputMode = arg[2:]
			case strings.HasPrefix(arg, "-w"):
				opts.saveFile = arg[2:]
			case strings.HasPrefix(arg, "-j"):
				opts.workers, err = parseWorkers(arg[2:])
			default:
				err = fmt.Errorf("flag provided but not defined: %s", arg)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if i < len(argv) {
		opts.args = argv[i:]
	}
	switch opts.outputMode {
	case "text", "yaml":
	default:
		return nil, fmt.Errorf("invalid output mode: %s (expected text or yaml)", opts.outputMode)
	}
	if opts.batchFile != "" && opts.interpret {
		return nil, errors.New("-interp cannot be combined with -batch")
	}
	return opts, nil
}

func parseWorkers(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of workers: %s", s)
	}
	return n, nil
}

func parseDepth(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid nesting depth: %s", s)
	}
	return n, nil
}

// run executes the command with the given arguments, excluding the
// program name.
func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseArgs(argv, stdout)
	if err != nil {
		if errors.Is(err, errExit) {
			return nil
		}
		return err
	}

	program, err := readProgram(opts, stdin)
	if err != nil {
		return err
	}

	config := &cexpr.Config{
		MaxDepth:  opts.depth,
		Only:      opts.only,
		Stderr:    stderr,
		Trace:     opts.trace,
		Interpret: opts.interpret,
		Workers:   opts.workers,
	}

	// Compile program
	prog, err := cexpr.CompileWithConfig(program, config)
	if err != nil {
		return err
	}

	// Debug output modes
	if opts.debug {
		fmt.Fprint(stderr, prog.Dump())
		return nil
	}
	if opts.debugAsm {
		fmt.Fprint(stderr, prog.Disassemble())
		return nil
	}
	if opts.debugTree {
		fmt.Fprint(stderr, prog.Tree())
		return nil
	}
	if opts.debugVars {
		reads, writes := prog.Vars()
		fmt.Fprintf(stderr, "reads:  %s\n", strings.Join(reads, " "))
		fmt.Fprintf(stderr, "writes: %s\n", strings.Join(writes, " "))
		return nil
	}

	store := cexpr.NewStore()
	for _, path := range opts.storeFiles {
		if err := storefile.Load(path, store); err != nil {
			return err
		}
	}
	if config.Variables, err = assignments(opts.vars, "variable"); err != nil {
		return err
	}
	if config.Arrays, err = assignments(opts.arrays, "array"); err != nil {
		return err
	}

	if opts.lint {
		warnings, err := prog.Check(store, config)
		for _, w := range warnings {
			fmt.Fprintln(stderr, w)
		}
		return err
	}

	if opts.batchFile != "" {
		return runBatch(prog, opts, config, store, stdout, stderr)
	}

	// Execute program
	if _, err := prog.Run(store, config); err != nil {
		return err
	}

	if opts.saveFile != "" {
		if err := storefile.Write(opts.saveFile, store); err != nil {
			return err
		}
	}
	if opts.quiet {
		return nil
	}

	keep, err := cexpr.NameFilter(opts.only...)
	if err != nil {
		return err
	}
	if opts.outputMode == "yaml" {
		return storefile.Encode(stdout, store, keep)
	}
	return store.Write(stdout, keep)
}

// runBatch runs prog once per document of the batch file. Each document
// starts from a copy of the -s store and is overlaid by its own values;
// -v and -a apply last. Runtime errors are reported per document on
// stderr and every final store is printed, including ones that stopped
// early.
func runBatch(prog *cexpr.Program, opts *options, config *cexpr.Config, base *cexpr.Store, stdout, stderr io.Writer) error {
	docs, err := storefile.LoadAll(opts.batchFile)
	if err != nil {
		return err
	}
	stores := make([]*cexpr.Store, len(docs))
	for i, doc := range docs {
		store := base.Clone()
		for _, name := range doc.Names() {
			if arr, ok := doc.Array(name); ok {
				store.SetArray(name, arr)
				continue
			}
			v, _ := doc.Get(name)
			store.Set(name, v)
		}
		stores[i] = store
	}

	results, err := prog.RunBatch(context.Background(), stores, config)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "cexpr: document %d: %v\n", r.Index+1, r.Err)
		}
	}

	if opts.saveFile != "" {
		if err := storefile.WriteAll(opts.saveFile, stores); err != nil {
			return err
		}
	}
	if !opts.quiet {
		keep, err := cexpr.NameFilter(opts.only...)
		if err != nil {
			return err
		}
		if opts.outputMode == "yaml" {
			if err := storefile.EncodeAll(stdout, stores, keep); err != nil {
				return err
			}
		} else {
			for i, store := range stores {
				fmt.Fprintf(stdout, "# document %d\n", i+1)
				if err := store.Write(stdout, keep); err != nil {
					return err
				}
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(stores))
	}
	return nil
}

// readProgram returns the statements named by -f files, the first
// positional argument, or standard input for "-".
func readProgram(opts *options, stdin io.Reader) (string, error) {
	if len(opts.progFiles) > 0 {
		if len(opts.args) > 0 {
			return "", fmt.Errorf("unexpected argument: %s", opts.args[0])
		}
		var sb strings.Builder
		for _, f := range opts.progFiles {
			content, err := os.ReadFile(f)
			if err != nil {
				return "", fmt.Errorf("cannot read program file %s: %w", f, err)
			}
			sb.Write(content)
			sb.WriteByte('\n')
		}
		return sb.String(), nil
	}

	switch len(opts.args) {
	case 0:
		return "", errors.New(shortUsage)
	case 1:
	default:
		return "", fmt.Errorf("unexpected argument: %s", opts.args[1])
	}
	if opts.args[0] == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read standard input: %w", err)
		}
		return string(content), nil
	}
	return opts.args[0], nil
}

// assignments splits name=value arguments into a map.
func assignments(args []string, what string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid %s assignment: %s (expected name=value)", what, a)
		}
		m[name] = value
	}
	return m, nil
}

// errorExit prints error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "cexpr: %v\n", err)
	os.Exit(1)
}
