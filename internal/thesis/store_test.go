package thesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harper/dealflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "thesis.json")
	store, err := NewStore(path)
	require.NoError(t, err)

	// Missing file is not an error
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	original := &types.FundThesis{
		FundName: "Hale Ventures",
		Sectors:  []string{"AI/ML", "FinTech"},
		Stages:   []string{"Seed", "Series A"},
	}
	require.NoError(t, store.Save(original))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original, loaded)

	// File permissions are owner-only
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_SaveNil(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "thesis.json"))
	require.NoError(t, err)
	assert.Error(t, store.Save(nil))
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thesis.json")
	store, err := NewStore(path)
	require.NoError(t, err)

	// Clearing a missing file is fine
	require.NoError(t, store.Clear())

	require.NoError(t, store.Save(&types.FundThesis{FundName: "X"}))
	require.NoError(t, store.Clear())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thesis.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse thesis JSON")
}
