package sqliterepo_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/myfintrack/fintrack-go/tokenstore/sqliterepo"
)

func TestRepoRoundTrip(t *testing.T) {
	repo, err := sqliterepo.New(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	defer repo.Close()

	_, ok, err := repo.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Set("k", "v1"))
	require.NoError(t, repo.Set("k", "v2")) // upsert

	v, ok, err := repo.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)

	require.NoError(t, repo.Delete("k"))
	require.NoError(t, repo.Delete("k")) // idempotent

	_, ok, err = repo.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRepoSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	repo, err := sqliterepo.New(path)
	require.NoError(t, err)
	require.NoError(t, repo.Set("k", "v"))
	require.NoError(t, repo.Close())

	repo, err = sqliterepo.New(path)
	require.NoError(t, err)
	defer repo.Close()

	v, ok, err := repo.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}
