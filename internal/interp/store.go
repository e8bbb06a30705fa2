// Package interp implements the tree-walking evaluator and the variable
// store it runs against.
package interp

import (
	"io"
	"sort"
	"strings"

	"github.com/kolkov/cexpr/internal/types"
)

// Store maps names to scalar values or to fixed-length arrays of values.
// A name is bound to at most one of the two at a time.
//
// A Store is not safe for concurrent use.
type Store struct {
	scalars map[string]types.Value
	arrays  map[string][]types.Value
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		scalars: make(map[string]types.Value),
		arrays:  make(map[string][]types.Value),
	}
}

// Set binds name to a scalar, replacing any previous binding.
func (s *Store) Set(name string, v types.Value) {
	delete(s.arrays, name)
	s.scalars[name] = v
}

// SetArray binds name to a copy of vals, replacing any previous binding.
// Arrays never change length after they are bound.
func (s *Store) SetArray(name string, vals []types.Value) {
	delete(s.scalars, name)
	s.arrays[name] = append([]types.Value(nil), vals...)
}

// Get returns the scalar bound to name.
func (s *Store) Get(name string) (types.Value, bool) {
	v, ok := s.scalars[name]
	return v, ok
}

// Array returns a copy of the array bound to name.
func (s *Store) Array(name string) ([]types.Value, bool) {
	arr, ok := s.arrays[name]
	if !ok {
		return nil, false
	}
	return append([]types.Value(nil), arr...), true
}

// IsArray reports whether name is bound to an array.
func (s *Store) IsArray(name string) bool {
	_, ok := s.arrays[name]
	return ok
}

// Has reports whether name is bound at all.
func (s *Store) Has(name string) bool {
	if _, ok := s.scalars[name]; ok {
		return true
	}
	_, ok := s.arrays[name]
	return ok
}

// Delete removes any binding for name.
func (s *Store) Delete(name string) {
	delete(s.scalars, name)
	delete(s.arrays, name)
}

// Len returns the number of bound names.
func (s *Store) Len() int {
	return len(s.scalars) + len(s.arrays)
}

// Names returns all bound names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, s.Len())
	for name := range s.scalars {
		names = append(names, name)
	}
	for name := range s.arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := NewStore()
	for name, v := range s.scalars {
		c.scalars[name] = v
	}
	for name, arr := range s.arrays {
		c.arrays[name] = append([]types.Value(nil), arr...)
	}
	return c
}

// Equal reports whether two stores hold the same bindings with the same
// kinds and values. NaN compares equal to NaN.
func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() || len(s.scalars) != len(other.scalars) {
		return false
	}
	for name, v := range s.scalars {
		w, ok := other.scalars[name]
		if !ok || !sameValue(v, w) {
			return false
		}
	}
	for name, arr := range s.arrays {
		brr, ok := other.arrays[name]
		if !ok || len(arr) != len(brr) {
			return false
		}
		for i := range arr {
			if !sameValue(arr[i], brr[i]) {
				return false
			}
		}
	}
	return true
}

func sameValue(a, b types.Value) bool {
	return a.Kind() == b.Kind() && a.Format() == b.Format()
}

// Format renders one binding the way Write prints it: the scalar value,
// or the elements of an array as {1, 2, 3}.
func (s *Store) Format(name string) string {
	if arr, ok := s.arrays[name]; ok {
		return FormatArray(arr)
	}
	if v, ok := s.scalars[name]; ok {
		return v.Format()
	}
	return ""
}

// FormatArray renders values as {1, 2, 3}.
func FormatArray(vals []types.Value) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Format())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Write prints every binding whose name passes keep as a name=value line,
// sorted by name. A nil keep prints everything.
func (s *Store) Write(w io.Writer, keep func(name string) bool) error {
	for _, name := range s.Names() {
		if keep != nil && !keep(name) {
			continue
		}
		if _, err := io.WriteString(w, name+"="+s.Format(name)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// String returns all bindings as sorted name=value lines.
func (s *Store) String() string {
	var sb strings.Builder
	_ = s.Write(&sb, nil)
	return sb.String()
}
