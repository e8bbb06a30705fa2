package interp

import (
	"github.com/kolkov/cexpr/internal/token"
	"github.com/kolkov/cexpr/internal/types"
)

// The methods below are the store operations both execution engines use.
// pos is where errors are reported.

// LoadScalar reads the scalar bound to name.
func (s *Store) LoadScalar(name string, pos token.Position) (types.Value, error) {
	if v, ok := s.scalars[name]; ok {
		return v, nil
	}
	if _, ok := s.arrays[name]; ok {
		return types.Value{}, typeErrorf(pos, "array %q used as a scalar", name)
	}
	return types.Value{}, &NameError{Pos: pos, Name: name}
}

// StoreScalar writes v to name, creating the binding if needed. Names
// bound to arrays cannot be overwritten by a scalar.
func (s *Store) StoreScalar(name string, pos token.Position, v types.Value) error {
	if _, ok := s.arrays[name]; ok {
		return typeErrorf(pos, "cannot assign a scalar to array %q", name)
	}
	s.scalars[name] = v
	return nil
}

// CheckArray reports an error unless name is bound to an array.
func (s *Store) CheckArray(name string, pos token.Position) error {
	_, err := s.liveArray(name, pos)
	return err
}

// ElementIndex validates idx as a subscript of the array bound to name
// and returns it as an int. The binding is looked up again, so side
// effects of evaluating the subscript are seen.
func (s *Store) ElementIndex(name string, basePos, idxPos token.Position, idx types.Value) (int, error) {
	if !idx.IsInt() {
		return 0, typeErrorf(idxPos, "array index must be an integer, got %s", idx.Kind())
	}
	arr, err := s.liveArray(name, basePos)
	if err != nil {
		return 0, err
	}
	i := idx.AsInt()
	if i < 0 || i >= int64(len(arr)) {
		return 0, &IndexError{Pos: idxPos, Name: name, Index: i, Len: len(arr)}
	}
	return int(i), nil
}

// Element returns element i of the array bound to name. i must have been
// validated by ElementIndex.
func (s *Store) Element(name string, i int) types.Value {
	return s.arrays[name][i]
}

// SetElement writes element i of the array bound to name. i must have
// been validated by ElementIndex.
func (s *Store) SetElement(name string, i int, v types.Value) {
	s.arrays[name][i] = v
}

func (s *Store) liveArray(name string, pos token.Position) ([]types.Value, error) {
	if arr, ok := s.arrays[name]; ok {
		return arr, nil
	}
	if _, ok := s.scalars[name]; ok {
		return nil, typeErrorf(pos, "subscripted value %q is not an array", name)
	}
	return nil, &NameError{Pos: pos, Name: name}
}
