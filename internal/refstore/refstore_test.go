package refstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitbook/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "buildings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenCreatesSchema(t *testing.T) {
	store := openTestStore(t)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplaceAllRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := []domain.Building{
		{Name: "A Tower", Address: "1 Main St", Attrs: map[string]string{"floors": "12"}},
		{Name: "B House", Address: "2 Side St"},
	}

	count, err := store.ReplaceAll(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "A Tower", got[0].Name)
	assert.Equal(t, "1 Main St", got[0].Address)
	assert.Equal(t, map[string]string{"floors": "12"}, got[0].Attrs)
	assert.Equal(t, "B House", got[1].Name)
	assert.Nil(t, got[1].Attrs)

	// Fresh ids assigned in insertion order.
	assert.NotZero(t, got[0].ID)
	assert.Greater(t, got[1].ID, got[0].ID)
}

func TestReplaceAllReplacesPriorSet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.ReplaceAll(ctx, []domain.Building{
		{Name: "Old Tower", Address: "9 Gone St"},
	})
	require.NoError(t, err)

	count, err := store.ReplaceAll(ctx, []domain.Building{
		{Name: "New Tower", Address: "1 Here St"},
		{Name: "New House", Address: "2 Here St"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "New Tower", got[0].Name)
	assert.Equal(t, "New House", got[1].Name)
}

func TestReplaceAllRollbackKeepsPriorSet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.ReplaceAll(ctx, []domain.Building{
		{Name: "Kept Tower", Address: "1 Safe St"},
	})
	require.NoError(t, err)

	// A cancelled context fails the transaction mid-flight; the store must
	// roll back to the prior set.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = store.ReplaceAll(cancelled, []domain.Building{
		{Name: "Never Tower", Address: "2 Lost St"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImportAborted)

	got, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kept Tower", got[0].Name)
}

func TestReplaceAllEmptySet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.ReplaceAll(ctx, []domain.Building{
		{Name: "A Tower", Address: "1 Main St"},
	})
	require.NoError(t, err)

	count, err := store.ReplaceAll(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	got, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Readers racing a ReplaceAll must only ever observe the full old set or the
// full new set, never a mix. Reads that lose the lock race are retried.
func TestReplaceAllAtomicVisibility(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	oldSet := []domain.Building{
		{Name: "Old 1", Address: "a"},
		{Name: "Old 2", Address: "b"},
	}
	newSet := []domain.Building{
		{Name: "New 1", Address: "c"},
		{Name: "New 2", Address: "d"},
		{Name: "New 3", Address: "e"},
	}

	_, err := store.ReplaceAll(ctx, oldSet)
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			got, err := store.FindAll(ctx)
			if err != nil {
				continue // writer holds the lock, retry
			}
			if len(got) != len(oldSet) && len(got) != len(newSet) {
				t.Errorf("observed mixed set of %d buildings", len(got))
				return
			}
		}
	}()

	for i := 0; i < 10; i++ {
		_, err := store.ReplaceAll(ctx, newSet)
		require.NoError(t, err)
		_, err = store.ReplaceAll(ctx, oldSet)
		require.NoError(t, err)
	}

	close(done)
	wg.Wait()
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "nested", "buildings.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
