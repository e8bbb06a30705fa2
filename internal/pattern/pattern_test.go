package pattern

import (
	"fmt"
	"sync"
	"testing"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr bool
	}{
		{"^res", false},
		{"^[a-z]+$", false},
		{"(arr|tmp)[0-9]*", false},
		{"[invalid", true},
		{"(unclosed", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for pattern %q", tt.pattern)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if re == nil {
				t.Fatal("Compile returned nil Regex")
			}
		})
	}
}

func TestMustCompile(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid pattern")
		}
	}()
	MustCompile("[invalid")
}

func TestMatchString(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"res", "result", true},
		{"^res$", "result", false},
		{"^tmp_", "tmp_1", true},
		{"^tmp_", "x_tmp_1", false},
		{"[0-9]$", "arr2", true},
		{"a|b", "c", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.input, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindStringIndex(t *testing.T) {
	re := MustCompile("[0-9]+")
	got := re.FindStringIndex("arr12x")
	if len(got) != 2 || got[0] != 3 || got[1] != 5 {
		t.Errorf("FindStringIndex = %v, want [3 5]", got)
	}
	if got := re.FindStringIndex("arr"); got != nil {
		t.Errorf("FindStringIndex(no match) = %v, want nil", got)
	}
}

func TestSplit(t *testing.T) {
	re := MustCompile(`\s*,\s*`)
	tests := []struct {
		input string
		want  []string
	}{
		{"1,2,3", []string{"1", "2", "3"}},
		{"1 , 2,\t3", []string{"1", "2", "3"}},
		{"42", []string{"42"}},
		{"", nil},
		{"1,,2", []string{"1", "", "2"}},
		{"1 , ,2", []string{"1", "", "2"}},
		{"1,", []string{"1", ""}},
		{",", []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := re.Split(tt.input, -1)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) || len(got) != len(tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitLimit(t *testing.T) {
	re := MustCompile(",")
	if got := re.Split("a,b,c", 2); fmt.Sprint(got) != "[a b,c]" {
		t.Errorf("Split(n=2) = %q", got)
	}
	if got := re.Split("a,b", 0); got != nil {
		t.Errorf("Split(n=0) = %q, want nil", got)
	}
	if got := MustCompile("x*").Split("abc", -1); fmt.Sprint(got) != "[abc]" {
		t.Errorf("Split(empty match) = %q", got)
	}
}

func TestCache(t *testing.T) {
	c := NewCache(2)

	a1, err := c.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := c.Get("a")
	if a1 != a2 {
		t.Error("expected cached instance")
	}

	c.Get("b")
	c.Get("c")

	// "a" was evicted first, so it compiles fresh.
	a3, _ := c.Get("a")
	if a3 == a1 {
		t.Error("expected evicted pattern to be recompiled")
	}

	if _, err := c.Get("[bad"); err == nil {
		t.Error("expected compile error")
	}
}

func TestCacheConcurrency(t *testing.T) {
	c := NewCache(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			re, err := c.Get(fmt.Sprintf("p%d", i%4))
			if err != nil || re == nil {
				t.Errorf("Get: %v", err)
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("p%d", i)
		first, _ := c.Get(name)
		second, _ := c.Get(name)
		if first != second {
			t.Errorf("Get(%q) not cached", name)
		}
	}
}

func TestFilter(t *testing.T) {
	c := NewCache(0)

	keep, err := c.Filter("^res", "^arr$")
	if err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]bool{"res": true, "result": true, "arr": true, "arr2": false, "x": false} {
		if got := keep(name); got != want {
			t.Errorf("keep(%q) = %v, want %v", name, got, want)
		}
	}

	all, err := c.Filter()
	if err != nil || !all("anything") {
		t.Error("empty filter should accept everything")
	}

	if _, err := c.Filter("ok", "(bad"); err == nil {
		t.Error("expected error for bad pattern")
	}
}
