package cexpr_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kolkov/cexpr"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		program string
		config  *cexpr.Config
		want    string
		wantErr bool
	}{
		{
			name:    "assignment",
			program: "res = a + b * 3;",
			config:  &cexpr.Config{Variables: map[string]string{"a": "2", "b": "5"}},
			want:    "a=2\nb=5\nres=17\n",
		},
		{
			name:    "chained assignment",
			program: "a = b = 4;",
			want:    "a=4\nb=4\n",
		},
		{
			name:    "element write",
			program: "arr[i++] = x--;",
			config: &cexpr.Config{
				Variables: map[string]string{"i": "0", "x": "10"},
				Arrays:    map[string]string{"arr": "{0, 0, 0}"},
			},
			want: "arr={10, 0, 0}\ni=1\nx=9\n",
		},
		{
			name:    "several statements",
			program: "a = 1; ; b = a << 3; c = b > 4 ? b / 3 : -1",
			want:    "a=1\nb=8\nc=2\n",
		},
		{
			name:    "floats",
			program: "r = 7 / 2.0; n = r * 2;",
			want:    "n=7.0\nr=3.5\n",
		},
		{
			name:    "hex and octal initial values",
			program: "sum = m + o;",
			config:  &cexpr.Config{Variables: map[string]string{"m": "0x10", "o": "010"}},
			want:    "m=16\no=8\nsum=24\n",
		},
		{
			name:    "only filter",
			program: "tmp = 3; result = tmp * tmp; result2 = 1;",
			config:  &cexpr.Config{Only: []string{"^result$"}},
			want:    "result=9\n",
		},
		{
			name:    "comments",
			program: "/* setup */ a = 1; // done\n",
			want:    "a=1\n",
		},
		{
			name:    "empty program",
			program: "",
			want:    "",
		},
		{
			name:    "syntax error",
			program: "a = ;",
			wantErr: true,
		},
		{
			name:    "runtime error",
			program: "a = 1 / 0;",
			wantErr: true,
		},
		{
			name:    "bad initial value",
			program: "a;",
			config:  &cexpr.Config{Variables: map[string]string{"a": "ten"}},
			wantErr: true,
		},
		{
			name:    "bad only pattern",
			program: "a = 1;",
			config:  &cexpr.Config{Only: []string{"(unclosed"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cexpr.Run(tt.program, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Run() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval(t *testing.T) {
	store := cexpr.NewStore()
	store.Set("a", cexpr.Int(5))

	v, err := cexpr.Eval("a++", store)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "Int(5)" {
		t.Errorf("a++ = %s, want Int(5)", v)
	}
	if got, _ := store.Get("a"); got.String() != "Int(6)" {
		t.Errorf("a = %s after a++, want Int(6)", got)
	}

	v, err = cexpr.Eval("++a", store)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "Int(7)" {
		t.Errorf("++a = %s, want Int(7)", v)
	}
}

func TestParse(t *testing.T) {
	e, err := cexpr.Parse("res = a + b * 3")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.String(); got != "Assign(=, res, Binary(+, a, Binary(*, b, 3)))" {
		t.Errorf("String() = %s", got)
	}
	if e.Source() != "res = a + b * 3" {
		t.Errorf("Source() = %q", e.Source())
	}
	if !strings.HasPrefix(e.Tree(), "Assign(\n  =,\n  res,\n") {
		t.Errorf("Tree() = %q", e.Tree())
	}

	// The same tree evaluates the same way against identical stores.
	for i := 0; i < 2; i++ {
		store := cexpr.NewStore()
		store.Set("a", cexpr.Int(2))
		store.Set("b", cexpr.Int(5))
		v, err := e.Eval(store)
		if err != nil {
			t.Fatal(err)
		}
		if v.String() != "Int(17)" {
			t.Errorf("run %d: Eval() = %s, want Int(17)", i, v)
		}
	}
}

func TestSyntaxError(t *testing.T) {
	_, err := cexpr.Parse("(a + b")
	var se *cexpr.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error type = %T, want *cexpr.SyntaxError", err)
	}
	if se.Line != 1 || se.Column != 1 {
		t.Errorf("position = %d:%d, want 1:1", se.Line, se.Column)
	}
	if se.Expected != "')'" || se.Found != "end of input" {
		t.Errorf("Expected/Found = %q/%q", se.Expected, se.Found)
	}
	if got := err.Error(); !strings.HasPrefix(got, "syntax error at 1:1: unmatched '('") {
		t.Errorf("Error() = %q", got)
	}

	_, err = cexpr.Compile("a = 1;\nb = 2 +;")
	if !errors.As(err, &se) {
		t.Fatalf("error type = %T, want *cexpr.SyntaxError", err)
	}
	if se.Line != 2 || se.Column != 8 {
		t.Errorf("position = %d:%d, want 2:8", se.Line, se.Column)
	}

	_, err = cexpr.Parse("1 = 2")
	if !errors.As(err, &se) || !strings.Contains(se.Message, "invalid assignment target") {
		t.Errorf("Parse(1 = 2) error = %v", err)
	}

	_, err = cexpr.Parse("a b")
	if !errors.As(err, &se) || !strings.Contains(se.Message, "unexpected token") {
		t.Fatalf("Parse(a b) error = %v", err)
	}
	if se.Line != 1 || se.Column != 3 || se.Expected != "end of input" || se.Found != "'b'" {
		t.Errorf("Parse(a b) = %+v", *se)
	}

	_, err = cexpr.Parse("a $ b")
	if !errors.As(err, &se) {
		t.Fatalf("Parse(a $ b) error = %v", err)
	}
	if se.Column != 3 || se.Expected != "end of input" || se.Found != "'$'" || se.Message != "illegal character '$'" {
		t.Errorf("Parse(a $ b) = %+v", *se)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		src   string
		check func(error) bool
	}{
		{"a / 0", func(err error) bool { var e *cexpr.DivisionError; return errors.As(err, &e) }},
		{"missing + 1", func(err error) bool { var e *cexpr.NameError; return errors.As(err, &e) && e.Name == "missing" }},
		{"arr[5]", func(err error) bool { var e *cexpr.IndexError; return errors.As(err, &e) && e.Index == 5 }},
		{"a[0]", func(err error) bool { var e *cexpr.TypeError; return errors.As(err, &e) }},
		{"1.5 & 1", func(err error) bool { var e *cexpr.TypeError; return errors.As(err, &e) }},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			store := cexpr.NewStore()
			store.Set("a", cexpr.Int(1))
			store.SetArray("arr", []cexpr.Value{cexpr.Int(1)})

			_, err := cexpr.Eval(tt.src, store)
			if err == nil || !tt.check(err) {
				t.Errorf("Eval(%q) error = %v (%T)", tt.src, err, err)
			}
			var rt cexpr.RuntimeError
			if !errors.As(err, &rt) {
				t.Errorf("Eval(%q) error does not implement RuntimeError", tt.src)
			}
		})
	}
}

func TestValueError(t *testing.T) {
	_, err := cexpr.Run("x;", &cexpr.Config{Arrays: map[string]string{"arr": "{1, two}"}})
	var ve *cexpr.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("error type = %T, want *cexpr.ValueError", err)
	}
	if ve.Name != "arr" || ve.Value != "{1, two}" {
		t.Errorf("ValueError = %+v", ve)
	}
}

func TestProgramRun(t *testing.T) {
	prog := cexpr.MustCompile("sum += x; n++; sum / n")

	store := cexpr.NewStore()
	store.Set("sum", cexpr.Int(0))
	store.Set("n", cexpr.Int(0))

	for _, x := range []int64{4, 8, 12} {
		store.Set("x", cexpr.Int(x))
		if _, err := prog.Run(store, nil); err != nil {
			t.Fatal(err)
		}
	}
	v, err := prog.Run(store, &cexpr.Config{Variables: map[string]string{"x": "0"}})
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "Int(6)" {
		t.Errorf("average = %s, want Int(6)", v)
	}
	if prog.Len() != 3 {
		t.Errorf("Len() = %d, want 3", prog.Len())
	}
}

func TestProgramStopsAtError(t *testing.T) {
	prog := cexpr.MustCompile("a = 1; b = a / z; c = 3;")
	store := cexpr.NewStore()
	store.Set("z", cexpr.Int(0))

	_, err := prog.Run(store, nil)
	var de *cexpr.DivisionError
	if !errors.As(err, &de) {
		t.Fatalf("Run() error = %v, want DivisionError", err)
	}
	if got := store.String(); got != "a=1\nz=0\n" {
		t.Errorf("store = %q, want only writes before the error", got)
	}
}

func TestTrace(t *testing.T) {
	var stderr strings.Builder
	_, err := cexpr.Run("a = 2;\nb = a * 3;", &cexpr.Config{Trace: true, Stderr: &stderr})
	if err != nil {
		t.Fatal(err)
	}
	want := "1:1: Assign(=, a, 2) => 2\n2:1: Assign(=, b, Binary(*, a, 3)) => 6\n"
	if got := stderr.String(); got != want {
		t.Errorf("trace = %q, want %q", got, want)
	}
}

func TestMaxDepth(t *testing.T) {
	src := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
	if _, err := cexpr.ParseWithConfig(src, &cexpr.Config{MaxDepth: 10}); err == nil {
		t.Error("expected nesting error with MaxDepth 10")
	}
	if _, err := cexpr.ParseWithConfig(src, &cexpr.Config{MaxDepth: 30}); err != nil {
		t.Errorf("unexpected error with MaxDepth 30: %v", err)
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		program string
		wantErr bool
	}{
		{"a = 1;", false},
		{"a = 1; b = 2", false},
		{";;", false},
		{"a = 1 b = 2", true},
		{"++5;", true},
		{"a $ b;", true},
	}

	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			_, err := cexpr.Compile(tt.program)
			if (err != nil) != tt.wantErr {
				t.Errorf("Compile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustCompile(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCompile should panic on invalid program")
		}
	}()
	cexpr.MustCompile("a = (1;")
}

func TestProgramDump(t *testing.T) {
	prog := cexpr.MustCompile("x = a ? b = 5, b : c; ;")
	want := "Assign(=, x, Conditional(a, Comma(Assign(=, b, 5), b), c))\nEmpty\n"
	if got := prog.Dump(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

func TestProgramVars(t *testing.T) {
	prog := cexpr.MustCompile("res = a + arr[i]; i++; total += res;")
	reads, writes := prog.Vars()
	if got := strings.Join(reads, ","); got != "a,arr,i,res,total" {
		t.Errorf("reads = %s", got)
	}
	if got := strings.Join(writes, ","); got != "i,res,total" {
		t.Errorf("writes = %s", got)
	}
}

func TestProgramCheck(t *testing.T) {
	prog := cexpr.MustCompile("y = x / 0; z + 1; a[0] = y; a[0]")
	store := cexpr.NewStore()
	store.SetArray("a", []cexpr.Value{cexpr.Int(0)})
	config := &cexpr.Config{Variables: map[string]string{"z": "2"}}

	warnings, err := prog.Check(store, config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		`1:5: warning: variable "x" is read before it is assigned`,
		"1:9: warning: division by constant zero",
		"1:12: warning: statement has no effect",
	}
	if got := strings.Join(warnings, "\n"); got != strings.Join(want, "\n") {
		t.Errorf("warnings =\n%s\nwant\n%s", got, strings.Join(want, "\n"))
	}

	_, err = cexpr.MustCompile("a = 1; a[0]").Check(nil, nil)
	var checkErr *cexpr.CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("expected *CheckError, got %T: %v", err, err)
	}
	if !strings.Contains(checkErr.Error(), `cannot use "a" as both array and scalar`) {
		t.Errorf("error = %q", checkErr.Error())
	}
}

func TestInterpretMatchesCompiled(t *testing.T) {
	tests := []string{
		"a = 5; b = a++ + ++a; c = a << 2 | 1;",
		"x = 7 / 2; y = -7 % 3; z = 7.0 / 2;",
		"arr = 0; t = 1 && 0 || 2; u = !t ? 10 : 20;",
		"q = 3; q *= 2.5; r = q >= 7.5;",
	}
	for _, src := range tests {
		compiled, err := cexpr.Run(src, nil)
		if err != nil {
			t.Fatalf("Run(%q): %v", src, err)
		}
		interpreted, err := cexpr.Run(src, &cexpr.Config{Interpret: true})
		if err != nil {
			t.Fatalf("Run(%q, Interpret): %v", src, err)
		}
		if compiled != interpreted {
			t.Errorf("%q: compiled %q, interpreted %q", src, compiled, interpreted)
		}
	}

	for _, interpret := range []bool{false, true} {
		_, err := cexpr.Run("a = 1; b = a / 0;", &cexpr.Config{Interpret: interpret})
		var de *cexpr.DivisionError
		if !errors.As(err, &de) {
			t.Errorf("Interpret=%v: error = %v, want DivisionError", interpret, err)
		}
	}
}

func TestRunBatch(t *testing.T) {
	prog := cexpr.MustCompile("y = x * k; y")
	stores := make([]*cexpr.Store, 20)
	for i := range stores {
		if i == 5 {
			continue // nil store: x is unbound
		}
		stores[i] = cexpr.NewStore()
		stores[i].Set("x", cexpr.Int(int64(i)))
	}

	results, err := prog.RunBatch(context.Background(), stores, &cexpr.Config{
		Variables: map[string]string{"k": "3"},
		Workers:   4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(stores) {
		t.Fatalf("got %d results, want %d", len(results), len(stores))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
		if i == 5 {
			var ne *cexpr.NameError
			if !errors.As(r.Err, &ne) {
				t.Errorf("results[5].Err = %v, want NameError", r.Err)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
			continue
		}
		if want := cexpr.Int(int64(i * 3)); r.Value != want {
			t.Errorf("results[%d].Value = %s, want %s", i, r.Value, want)
		}
		if v, _ := stores[i].Get("y"); v != cexpr.Int(int64(i*3)) {
			t.Errorf("store %d: y = %s", i, v)
		}
	}
}

func TestRunBatchInvalidValues(t *testing.T) {
	prog := cexpr.MustCompile("x")
	_, err := prog.RunBatch(context.Background(), []*cexpr.Store{nil},
		&cexpr.Config{Variables: map[string]string{"x": "abc"}})
	var ve *cexpr.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValueError", err)
	}
}

func TestProgramDisassemble(t *testing.T) {
	asm := cexpr.MustCompile("a = 2 * 3; b = a + 1").Disassemble()
	for _, want := range []string{
		"=== Statement 1 (1:1) ===",
		"Num 6",
		"StoreScalar a",
		"LoadScalar a",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("disassembly missing %q:\n%s", want, asm)
		}
	}
	if strings.Contains(asm, "Multiply") {
		t.Errorf("constant multiply not folded:\n%s", asm)
	}
}

func TestProgramSource(t *testing.T) {
	src := "a = 1;"
	if got := cexpr.MustCompile(src).Source(); got != src {
		t.Errorf("Source() = %q, want %q", got, src)
	}
}

func TestParseArray(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"{1, 2, 3}", "[Int(1) Int(2) Int(3)]", false},
		{"1,2.5,-3", "[Int(1) Float(2.5) Int(-3)]", false},
		{" { 0x10 } ", "[Int(16)]", false},
		{"{}", "[]", false},
		{"{1, x}", "", true},
		{"1,,2", "", true},
		{"{1, , 2}", "", true},
		{"{1, 2,}", "", true},
		{",", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cexpr.ParseArray(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseArray() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && fmt.Sprint(got) != tt.want {
				t.Errorf("ParseArray() = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestExec(t *testing.T) {
	var out strings.Builder
	if err := cexpr.Exec("x = 1 ? 2 : 3;", &out, nil); err != nil {
		t.Fatal(err)
	}
	if out.String() != "x=2\n" {
		t.Errorf("Exec output = %q", out.String())
	}
}

func TestConfigStore(t *testing.T) {
	store := cexpr.NewStore()
	store.Set("a", cexpr.Int(1))
	out, err := cexpr.Run("a += 41;", &cexpr.Config{Store: store})
	if err != nil {
		t.Fatal(err)
	}
	if out != "a=42\n" {
		t.Errorf("Run() = %q", out)
	}
	if v, _ := store.Get("a"); v.AsInt() != 42 {
		t.Errorf("caller store a = %s, want 42", v)
	}
}

func BenchmarkRun(b *testing.B) {
	config := &cexpr.Config{Variables: map[string]string{"a": "2", "b": "5"}}
	for i := 0; i < b.N; i++ {
		cexpr.Run("res = a + b * 3;", config)
	}
}

func BenchmarkCompiledRun(b *testing.B) {
	prog := cexpr.MustCompile("res = (a + b) * (c - d) ? a << 2 : b % 3;")
	store := cexpr.NewStore()
	for _, name := range []string{"a", "b", "c", "d"} {
		store.Set(name, cexpr.Int(3))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		prog.Run(store, nil)
	}
}

func ExampleEval() {
	store := cexpr.NewStore()
	store.Set("a", cexpr.Int(2))
	store.Set("b", cexpr.Int(5))
	v, _ := cexpr.Eval("res = a + b * 3", store)
	fmt.Println(v.Format())
	fmt.Print(store)
	// Output:
	// 17
	// a=2
	// b=5
	// res=17
}

func ExampleRun() {
	output, _ := cexpr.Run("a = 2; b = a << 3;", nil)
	fmt.Print(output)
	// Output:
	// a=2
	// b=16
}

func ExampleParse() {
	e, _ := cexpr.Parse("a ? b = 5, b : c")
	fmt.Println(e)
	// Output: Conditional(a, Comma(Assign(=, b, 5), b), c)
}
