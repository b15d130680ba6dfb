package ledger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoad_MissingKeyYieldsEmptyLedger(t *testing.T) {
	store := openTestStore(t)

	l, version, err := store.Load("octocat-hello-world")
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	assert.Empty(t, l.Bugs)
	assert.Empty(t, l.Tasks)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	l := &types.RepositoryLedger{
		Bugs: []types.ProcessedError{{
			ID:       1,
			TaskName: "lint",
			Kind:     types.KindLint,
			Priority: types.PriorityMedium,
			Message:  "'x' is never used",
			Location: &types.Location{File: "src/a.ts", Line: 10, Column: 5},
			Status:   "unchecked",
		}},
		Tasks: []types.WorkItem{{ID: 1, Title: "upgrade node", Priority: types.PriorityLow}},
	}
	require.NoError(t, store.Save("octocat-hello-world", l, 0))

	got, version, err := store.Load("octocat-hello-world")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	require.Len(t, got.Bugs, 1)
	assert.Equal(t, "'x' is never used", got.Bugs[0].Message)
	require.NotNil(t, got.Bugs[0].Location)
	assert.Equal(t, 10, got.Bugs[0].Location.Line)
	require.Len(t, got.Tasks, 1)
}

func TestSave_InsertConflictWhenKeyExists(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Save("k", &types.RepositoryLedger{}, 0))

	// A second writer that loaded before the first insert sees version 0
	// and must fail rather than clobber.
	err := store.Save("k", &types.RepositoryLedger{}, 0)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSave_StaleVersionConflict(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Save("k", &types.RepositoryLedger{}, 0))

	l, version, err := store.Load("k")
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	// Another writer advances the snapshot first.
	require.NoError(t, store.Save("k", l, version))

	err = store.Save("k", l, version)
	assert.ErrorIs(t, err, ErrConflict)

	// The winning write survived.
	_, finalVersion, err := store.Load("k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), finalVersion)
}

func TestUpdate_CreatesAndMutates(t *testing.T) {
	store := openTestStore(t)

	err := store.Update("k", func(l *types.RepositoryLedger) error {
		l.Bugs = append(l.Bugs, types.ProcessedError{ID: l.NextBugID(), Message: "first"})
		return nil
	})
	require.NoError(t, err)

	err = store.Update("k", func(l *types.RepositoryLedger) error {
		l.Bugs = append(l.Bugs, types.ProcessedError{ID: l.NextBugID(), Message: "second"})
		return nil
	})
	require.NoError(t, err)

	l, version, err := store.Load("k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	require.Len(t, l.Bugs, 2)
	assert.Equal(t, 1, l.Bugs[0].ID)
	assert.Equal(t, 2, l.Bugs[1].ID)
}

func TestUpdate_CallbackErrorAborts(t *testing.T) {
	store := openTestStore(t)
	sentinel := errors.New("nope")

	err := store.Update("k", func(l *types.RepositoryLedger) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	// Nothing was written.
	_, version, err := store.Load("k")
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "ledger.db")
	store, err := Open(path, nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("k", &types.RepositoryLedger{}, 0))
}

func TestLedgersAreIsolatedByKey(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Update("a-one", func(l *types.RepositoryLedger) error {
		l.Bugs = append(l.Bugs, types.ProcessedError{ID: 1, Message: "only in a"})
		return nil
	}))

	other, _, err := store.Load("b-two")
	require.NoError(t, err)
	assert.Empty(t, other.Bugs)
}
