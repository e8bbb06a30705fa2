// Package pattern provides compiled regular expressions for selecting
// store names and splitting value lists.
package pattern

import (
	"sync"

	"github.com/coregx/coregex"
)

// Regex wraps a compiled coregex pattern.
// Matching is unanchored: a name passes when any part of it matches.
type Regex struct {
	re *coregex.Regexp
}

// Compile creates a new Regex from pattern with leftmost-longest matching.
func Compile(pattern string) (*Regex, error) {
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	re.Longest()
	return &Regex{re: re}, nil
}

// MustCompile creates a Regex, panicking on error.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// MatchString reports whether s contains any match.
func (r *Regex) MatchString(s string) bool {
	return r.re.MatchString(s)
}

// FindStringIndex returns the start and end of the first match, or nil.
func (r *Regex) FindStringIndex(s string) []int {
	return r.re.FindStringIndex(s)
}

// Split slices s into the fields between matches. Adjacent matches
// yield empty fields. An empty s yields no fields; n < 0 means all.
func (r *Regex) Split(s string, n int) []string {
	if s == "" || n == 0 {
		return nil
	}
	var fields []string
	for n < 0 || len(fields) < n-1 {
		loc := r.FindStringIndex(s)
		if loc == nil || loc[1] == 0 {
			break
		}
		fields = append(fields, s[:loc[0]])
		s = s[loc[1]:]
	}
	return append(fields, s)
}

// Cache provides thread-safe compiled regex caching with FIFO eviction.
type Cache struct {
	cache   sync.Map   // map[string]*Regex - lock-free reads
	orderMu sync.Mutex // Protects order for eviction
	order   []string   // FIFO order for eviction
	maxSize int
}

// NewCache creates a cache holding at most maxSize patterns.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &Cache{
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get returns a compiled regex, compiling and caching if needed.
func (c *Cache) Get(pattern string) (*Regex, error) {
	if re, ok := c.cache.Load(pattern); ok {
		return re.(*Regex), nil
	}

	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	// Another goroutine might have stored it already.
	if existing, loaded := c.cache.LoadOrStore(pattern, re); loaded {
		return existing.(*Regex), nil
	}

	c.orderMu.Lock()
	c.order = append(c.order, pattern)
	for len(c.order) > c.maxSize {
		c.cache.Delete(c.order[0])
		c.order = c.order[1:]
	}
	c.orderMu.Unlock()

	return re, nil
}

// Filter returns a predicate that accepts names matching any of the
// patterns. With no patterns every name is accepted.
func (c *Cache) Filter(patterns ...string) (func(name string) bool, error) {
	if len(patterns) == 0 {
		return func(string) bool { return true }, nil
	}
	res := make([]*Regex, 0, len(patterns))
	for _, p := range patterns {
		re, err := c.Get(p)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return func(name string) bool {
		for _, re := range res {
			if re.MatchString(name) {
				return true
			}
		}
		return false
	}, nil
}
