package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	s := Store{"port": "8080"}

	value, err := s.Get("port")
	require.NoError(t, err)
	assert.Equal(t, "8080", value)

	_, err = s.Get("nonexistent")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestGetPath(t *testing.T) {
	s := Store{
		"db": map[string]any{
			"host": "localhost",
			"pool": map[string]any{"size": 10},
		},
		"port": 8080,
	}

	t.Run("single segment equals direct lookup", func(t *testing.T) {
		value, err := s.GetPath([]string{"port"})
		require.NoError(t, err)
		assert.Equal(t, 8080, value)
	})

	t.Run("nested lookup", func(t *testing.T) {
		value, err := s.GetPath([]string{"db", "pool", "size"})
		require.NoError(t, err)
		assert.Equal(t, 10, value)
	})

	t.Run("missing intermediate segment", func(t *testing.T) {
		_, err := s.GetPath([]string{"cache", "host"})
		require.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("missing leaf", func(t *testing.T) {
		_, err := s.GetPath([]string{"db", "user"})
		require.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("scalar intermediate", func(t *testing.T) {
		_, err := s.GetPath([]string{"port", "number"})
		require.ErrorIs(t, err, ErrNotIndexable)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := s.GetPath(nil)
		require.Error(t, err)
	})
}

func TestSetPath(t *testing.T) {
	t.Run("set then get are equivalent", func(t *testing.T) {
		s := Store{"a": map[string]any{}}

		require.NoError(t, s.SetPath([]string{"a", "b"}, 5))

		value, err := s.GetPath([]string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, 5, value)

		parent, err := s.Get("a")
		require.NoError(t, err)
		assert.Equal(t, 5, parent.(map[string]any)["b"])
	})

	t.Run("overwrites existing leaf", func(t *testing.T) {
		s := Store{"db": map[string]any{"host": "x"}}

		require.NoError(t, s.SetPath([]string{"db", "host"}, "y"))

		value, err := s.GetPath([]string{"db", "host"})
		require.NoError(t, err)
		assert.Equal(t, "y", value)
	})

	t.Run("missing intermediate container", func(t *testing.T) {
		s := Store{}
		err := s.SetPath([]string{"db", "host"}, "y")
		require.ErrorIs(t, err, ErrTargetMissing)
	})

	t.Run("scalar intermediate", func(t *testing.T) {
		s := Store{"db": "not-a-mapping"}
		err := s.SetPath([]string{"db", "host"}, "y")
		require.ErrorIs(t, err, ErrNotIndexable)
	})

	t.Run("single segment creates entry", func(t *testing.T) {
		s := Store{}
		require.NoError(t, s.SetPath([]string{"port"}, "9000"))
		value, err := s.Get("port")
		require.NoError(t, err)
		assert.Equal(t, "9000", value)
	})
}

func TestUpdateDeepMerge(t *testing.T) {
	t.Run("preserves siblings", func(t *testing.T) {
		s := New()
		s.Update(map[string]any{"a": map[string]any{"x": 1, "y": 2}})
		s.Update(map[string]any{"a": map[string]any{"x": 9}})

		assert.Equal(t, Store{"a": map[string]any{"x": 9, "y": 2}}, s)
	})

	t.Run("mapping replaces scalar", func(t *testing.T) {
		s := Store{"a": 1}
		s.Update(map[string]any{"a": map[string]any{"x": 1}})

		assert.Equal(t, Store{"a": map[string]any{"x": 1}}, s)
	})

	t.Run("scalar replaces mapping", func(t *testing.T) {
		s := Store{"a": map[string]any{"x": 1}}
		s.Update(map[string]any{"a": 7})

		assert.Equal(t, Store{"a": 7}, s)
	})

	t.Run("does not alias incoming mappings", func(t *testing.T) {
		incoming := map[string]any{"a": map[string]any{"x": 1}}
		s := New()
		s.Update(incoming)

		incoming["a"].(map[string]any)["x"] = 99

		value, err := s.GetPath([]string{"a", "x"})
		require.NoError(t, err)
		assert.Equal(t, 1, value)
	})
}

func TestFlatten(t *testing.T) {
	s := Store{"a": map[string]any{"b": 1, "c": 2}}

	leaves := s.Flatten()

	require.Len(t, leaves, 2)
	assert.Equal(t, Leaf{Path: []string{"a", "b"}, Value: 1}, leaves[0])
	assert.Equal(t, Leaf{Path: []string{"a", "c"}, Value: 2}, leaves[1])
}

func TestFlattenTreatsSlicesAsLeaves(t *testing.T) {
	s := Store{"sizes": []any{250, 500}, "name": "app"}

	leaves := s.Flatten()

	require.Len(t, leaves, 2)
	assert.Equal(t, []string{"name"}, leaves[0].Path)
	assert.Equal(t, []string{"sizes"}, leaves[1].Path)
	assert.Equal(t, []any{250, 500}, leaves[1].Value)
}

func TestClone(t *testing.T) {
	s := Store{"db": map[string]any{"host": "x"}}

	clone := s.Clone()
	require.NoError(t, clone.SetPath([]string{"db", "host"}, "y"))

	original, err := s.GetPath([]string{"db", "host"})
	require.NoError(t, err)
	assert.Equal(t, "x", original)
}

func TestSetCopiesValue(t *testing.T) {
	s := New()
	child := map[string]any{"x": 1}
	s.Set("a", child)

	child["x"] = 2

	value, err := s.GetPath([]string{"a", "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}
