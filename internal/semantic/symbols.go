package semantic

import (
	"sort"

	"github.com/kolkov/cexpr/internal/token"
)

// VarType represents the kind of a variable (scalar or array).
type VarType int

const (
	TypeUnknown VarType = iota // Not yet determined
	TypeScalar                 // Integer or float value
	TypeArray                  // Fixed-length array of values
)

// String returns a human-readable name for the variable type.
func (t VarType) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeScalar:
		return "scalar"
	case TypeArray:
		return "array"
	default:
		return "invalid"
	}
}

// Symbol holds what the checker knows about one name.
type Symbol struct {
	Name     string         // Variable name
	Type     VarType        // Scalar or array, once known
	Pos      token.Position // First use, or NoPos for pre-bound names
	Bound    bool           // Bound before the program runs
	Assigned bool           // Bound, or assigned by an earlier expression
	Used     bool           // Read anywhere
}

// SymbolTable maps names to symbols. A program has a single flat scope.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define records a name bound before the program runs.
// Returns nil if the name is already defined.
func (st *SymbolTable) Define(name string, typ VarType) *Symbol {
	if _, exists := st.symbols[name]; exists {
		return nil
	}
	sym := &Symbol{
		Name:     name,
		Type:     typ,
		Bound:    true,
		Assigned: true,
	}
	st.symbols[name] = sym
	return sym
}

// Lookup finds a symbol by name.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}

// ensure returns the symbol for name, creating it at pos if needed.
func (st *SymbolTable) ensure(name string, pos token.Position) *Symbol {
	if sym, ok := st.symbols[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name, Pos: pos}
	st.symbols[name] = sym
	return sym
}

// Names returns all symbol names in sorted order.
func (st *SymbolTable) Names() []string {
	names := make([]string, 0, len(st.symbols))
	for name := range st.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of symbols.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}
