// Package store implements the nested key/value container backing a merged
// configuration. Values are addressed either by a single key or by a path of
// keys descending through nested mappings. Mappings deep-merge via Update;
// everything else is treated as a leaf and replaced wholesale.
package store

import (
	"fmt"
	"sort"
	"strings"
)

// Store is a recursive mapping from string keys to values. A value is either
// a nested mapping (map[string]any or Store) or a leaf (scalar or slice).
type Store map[string]any

// Leaf pairs the full path of a non-mapping value with the value itself.
type Leaf struct {
	Path  []string
	Value any
}

// New returns an empty store.
func New() Store {
	return Store{}
}

// Get looks up a single top-level key.
func (s Store) Get(key string) (any, error) {
	value, ok := s[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}
	return value, nil
}

// GetPath descends through nested mappings and returns the value at path.
// A path of length one is equivalent to Get.
func (s Store) GetPath(path []string) (any, error) {
	if len(path) == 0 {
		return nil, errEmptyPath
	}

	current := map[string]any(s)
	for i, segment := range path[:len(path)-1] {
		value, ok := current[segment]
		if !ok {
			return nil, fmt.Errorf("%q: %w", strings.Join(path[:i+1], "."), ErrKeyNotFound)
		}
		child, ok := asMapping(value)
		if !ok {
			return nil, fmt.Errorf("%q: %w", strings.Join(path[:i+1], "."), ErrNotIndexable)
		}
		current = child
	}

	value, ok := current[path[len(path)-1]]
	if !ok {
		return nil, fmt.Errorf("%q: %w", strings.Join(path, "."), ErrKeyNotFound)
	}
	return value, nil
}

// Set assigns value under a single top-level key, creating or overwriting it.
func (s Store) Set(key string, value any) {
	s[key] = cloneValue(value)
}

// SetPath assigns value at the location named by path. Every intermediate
// segment must already resolve to an existing mapping; intermediate levels
// are never created implicitly.
func (s Store) SetPath(path []string, value any) error {
	if len(path) == 0 {
		return errEmptyPath
	}

	current := map[string]any(s)
	for i, segment := range path[:len(path)-1] {
		next, ok := current[segment]
		if !ok {
			return fmt.Errorf("%q: %w", strings.Join(path[:i+1], "."), ErrTargetMissing)
		}
		child, ok := asMapping(next)
		if !ok {
			return fmt.Errorf("%q: %w", strings.Join(path[:i+1], "."), ErrNotIndexable)
		}
		current = child
	}

	current[path[len(path)-1]] = cloneValue(value)
	return nil
}

// Update deep-merges another mapping into the store. When both sides hold a
// nested mapping under the same key the mappings merge recursively, with the
// incoming side winning at the leaves; any other collision is replaced by the
// incoming value. Incoming values are copied, never aliased.
func (s Store) Update(mapping map[string]any) {
	for key, value := range mapping {
		if incoming, ok := asMapping(value); ok {
			if existing, ok := asMapping(s[key]); ok {
				Store(existing).Update(incoming)
				continue
			}
		}
		s[key] = cloneValue(value)
	}
}

// Flatten returns one Leaf per non-mapping value, depth first. Keys are
// visited in sorted order at every level so the result is deterministic.
func (s Store) Flatten() []Leaf {
	return flatten(map[string]any(s), nil)
}

// Clone returns a deep copy sharing no mappings or slices with the original.
func (s Store) Clone() Store {
	clone := make(Store, len(s))
	for key, value := range s {
		clone[key] = cloneValue(value)
	}
	return clone
}

func (s Store) String() string {
	return fmt.Sprintf("%v", map[string]any(s))
}

func flatten(mapping map[string]any, prefix []string) []Leaf {
	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	leaves := make([]Leaf, 0, len(keys))
	for _, key := range keys {
		path := append(append([]string(nil), prefix...), key)
		if child, ok := asMapping(mapping[key]); ok {
			leaves = append(leaves, flatten(child, path)...)
			continue
		}
		leaves = append(leaves, Leaf{Path: path, Value: mapping[key]})
	}
	return leaves
}

// asMapping reports whether value is a nested mapping, unwrapping the named
// Store type so merged sub-stores and plain parsed maps behave identically.
func asMapping(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case Store:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(v))
		for key, child := range v {
			clone[key] = cloneValue(child)
		}
		return clone
	case Store:
		return cloneValue(map[string]any(v))
	case []any:
		clone := make([]any, len(v))
		for i, child := range v {
			clone[i] = cloneValue(child)
		}
		return clone
	default:
		return value
	}
}
