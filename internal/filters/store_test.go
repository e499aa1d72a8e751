package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore()

	saved, err := store.Create("open urgent", "priority >= 4 && done = false", 7, false)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "open urgent", saved.Name)
	assert.Equal(t, "priority >= 4 && done = false", saved.Filter)
	require.NotNil(t, saved.Expression)
	assert.Equal(t, 2, saved.Expression.ConditionCount())
	assert.False(t, saved.Created.IsZero())

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, saved.Filter, got.Filter)
}

func TestStoreCreateRejectsInvalidFilter(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name       string
		filterName string
		filterText string
		wantErr    string
	}{
		{
			name:       "missing name",
			filterName: "",
			filterText: "done = true",
			wantErr:    "name is required",
		},
		{
			name:       "empty filter",
			filterName: "x",
			filterText: "",
			wantErr:    "filter text is required",
		},
		{
			name:       "parse error",
			filterName: "x",
			filterText: "priority >=",
			wantErr:    "invalid filter",
		},
		{
			name:       "content rejected",
			filterName: "x",
			filterText: `title = "<script>alert(1)</script>"`,
			wantErr:    "disallowed content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(tt.filterName, tt.filterText, 0, true)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 0, store.Len())
}

func TestStoreListScoping(t *testing.T) {
	store := NewStore()

	_, err := store.Create("everywhere", "done = false", 0, true)
	require.NoError(t, err)
	_, err = store.Create("alpha project", "priority >= 3", 1, false)
	require.NoError(t, err)
	_, err = store.Create("beta project", "priority >= 3", 2, false)
	require.NoError(t, err)

	t.Run("project with globals", func(t *testing.T) {
		got := store.List(1, true)
		require.Len(t, got, 2)
		// Sorted by name.
		assert.Equal(t, "alpha project", got[0].Name)
		assert.Equal(t, "everywhere", got[1].Name)
	})

	t.Run("project without globals", func(t *testing.T) {
		got := store.List(2, false)
		require.Len(t, got, 1)
		assert.Equal(t, "beta project", got[0].Name)
	})

	t.Run("globals only", func(t *testing.T) {
		got := store.List(0, true)
		require.Len(t, got, 1)
		assert.Equal(t, "everywhere", got[0].Name)
	})
}

func TestStoreUpdate(t *testing.T) {
	store := NewStore()

	saved, err := store.Create("old name", "done = false", 0, true)
	require.NoError(t, err)

	updated, err := store.Update(saved.ID, "new name", "done = true")
	require.NoError(t, err)
	assert.Equal(t, "new name", updated.Name)
	assert.Equal(t, "done = true", updated.Filter)

	t.Run("empty fields leave values unchanged", func(t *testing.T) {
		got, err := store.Update(saved.ID, "", "")
		require.NoError(t, err)
		assert.Equal(t, "new name", got.Name)
		assert.Equal(t, "done = true", got.Filter)
	})

	t.Run("invalid filter text is rejected before mutation", func(t *testing.T) {
		_, err := store.Update(saved.ID, "other", "priority >=")
		require.Error(t, err)

		got, err := store.Get(saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "new name", got.Name)
		assert.Equal(t, "done = true", got.Filter)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Update("missing", "x", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()

	saved, err := store.Create("temp", "done = false", 0, true)
	require.NoError(t, err)

	require.NoError(t, store.Delete(saved.ID))
	assert.Equal(t, 0, store.Len())

	_, err = store.Get(saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(saved.ID), ErrNotFound)
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()

	saved, err := store.Create("stable", "done = false", 0, true)
	require.NoError(t, err)

	saved.Name = "mutated"

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "stable", got.Name)
}
