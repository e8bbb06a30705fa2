// Package storefile reads and writes variable stores as YAML documents:
//
//	variables:
//	  a: 2
//	  ratio: 0.5
//	arrays:
//	  arr: [0, 0, 0]
//
// Integers and floats keep their kind through a round trip. A batch
// file holds several such documents separated by "---", one per store.
package storefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kolkov/cexpr/internal/interp"
	"github.com/kolkov/cexpr/internal/types"
)

type storeDisk struct {
	Variables map[string]yaml.Node   `yaml:"variables"`
	Arrays    map[string][]yaml.Node `yaml:"arrays"`
}

// Load reads the YAML store file at path into store. Existing bindings
// with the same names are replaced.
func Load(path string, store *interp.Store) error {
	if path == "" {
		return fmt.Errorf("storefile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("storefile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := Decode(file, store); err != nil {
		return fmt.Errorf("storefile: parse %s: %w", abs, err)
	}
	return nil
}

// Decode reads one YAML store document from r into store. An empty
// document leaves the store unchanged.
func Decode(r io.Reader, store *interp.Store) error {
	decoder := newDecoder(r)
	var raw storeDisk
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return raw.apply(store)
}

// DecodeAll reads every YAML document in r and returns one new store per
// document, in order. An input with no documents returns no stores.
func DecodeAll(r io.Reader) ([]*interp.Store, error) {
	decoder := newDecoder(r)
	var stores []*interp.Store
	for {
		var raw storeDisk
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return stores, nil
			}
			return nil, fmt.Errorf("document %d: %w", len(stores)+1, err)
		}
		store := interp.NewStore()
		if err := raw.apply(store); err != nil {
			return nil, fmt.Errorf("document %d: %w", len(stores)+1, err)
		}
		stores = append(stores, store)
	}
}

// LoadAll reads the multi-document YAML file at path, one store per
// document.
func LoadAll(path string) ([]*interp.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storefile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storefile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stores, err := DecodeAll(file)
	if err != nil {
		return nil, fmt.Errorf("storefile: parse %s: %w", abs, err)
	}
	return stores, nil
}

func newDecoder(r io.Reader) *yaml.Decoder {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	return decoder
}

// apply binds the decoded values into store.
func (raw *storeDisk) apply(store *interp.Store) error {
	for name, node := range raw.Variables {
		v, err := decodeValue(&node)
		if err != nil {
			return fmt.Errorf("variable %q: %w", name, err)
		}
		store.Set(name, v)
	}
	for name, nodes := range raw.Arrays {
		vals := make([]types.Value, len(nodes))
		for i := range nodes {
			v, err := decodeValue(&nodes[i])
			if err != nil {
				return fmt.Errorf("array %q element %d: %w", name, i, err)
			}
			vals[i] = v
		}
		store.SetArray(name, vals)
	}
	return nil
}

// decodeValue converts a YAML scalar to a Value. Spellings follow the
// expression language (42, 0x2A, 052, 4.2e1) plus YAML's .inf and .nan.
func decodeValue(node *yaml.Node) (types.Value, error) {
	if node.Kind != yaml.ScalarNode {
		return types.Value{}, fmt.Errorf("line %d: expected a number", node.Line)
	}
	switch node.Value {
	case ".nan", ".NaN", ".NAN":
		return types.Float(math.NaN()), nil
	case ".inf", ".Inf", ".INF", "+.inf", "+.Inf", "+.INF":
		return types.Float(math.Inf(1)), nil
	case "-.inf", "-.Inf", "-.INF":
		return types.Float(math.Inf(-1)), nil
	}
	v, err := types.ParseValue(node.Value)
	if err != nil {
		return types.Value{}, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return v, nil
}

// Encode writes the bindings of store that pass keep as one YAML
// document, names sorted. A nil keep writes everything.
func Encode(w io.Writer, store *interp.Store, keep func(name string) bool) error {
	return EncodeAll(w, []*interp.Store{store}, keep)
}

// EncodeAll writes each store as its own YAML document, separated by
// "---" lines.
func EncodeAll(w io.Writer, stores []*interp.Store, keep func(name string) bool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for i, store := range stores {
		if err := enc.Encode(storeNode(store, keep)); err != nil {
			return fmt.Errorf("storefile: marshal document %d: %w", i+1, err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("storefile: encoder close: %w", err)
	}
	return nil
}

// storeNode builds the variables/arrays mapping for one store.
func storeNode(store *interp.Store, keep func(name string) bool) *yaml.Node {
	vars := &yaml.Node{Kind: yaml.MappingNode}
	arrays := &yaml.Node{Kind: yaml.MappingNode}

	for _, name := range store.Names() {
		if keep != nil && !keep(name) {
			continue
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		if arr, ok := store.Array(name); ok {
			seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, v := range arr {
				seq.Content = append(seq.Content, encodeValue(v))
			}
			arrays.Content = append(arrays.Content, key, seq)
			continue
		}
		v, _ := store.Get(name)
		vars.Content = append(vars.Content, key, encodeValue(v))
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	if len(vars.Content) > 0 {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "variables"}, vars)
	}
	if len(arrays.Content) > 0 {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "arrays"}, arrays)
	}
	if len(doc.Content) == 0 {
		doc.Style = yaml.FlowStyle
	}
	return doc
}

func encodeValue(v types.Value) *yaml.Node {
	if v.IsInt() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.Format()}
	}
	f := v.AsFloat()
	s := v.Format()
	switch {
	case math.IsNaN(f):
		s = ".nan"
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}

// Write saves store to path as YAML.
func Write(path string, store *interp.Store) error {
	return WriteAll(path, []*interp.Store{store})
}

// WriteAll saves stores to path as a multi-document YAML file.
func WriteAll(path string, stores []*interp.Store) error {
	if path == "" {
		return fmt.Errorf("storefile: missing path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("storefile: resolve %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := EncodeAll(&buf, stores, nil); err != nil {
		return err
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("storefile: write %s: %w", abs, err)
	}
	return nil
}
