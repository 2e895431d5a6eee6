package discord

import (
	"context"
	"sync"
	"testing"

	"beautystudio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStudioSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStudioSessionRepository(3)

	first, err := repo.GetOrCreate(ctx, "channel-1")
	require.NoError(t, err)
	assert.Equal(t, "channel-1", first.ID)
	assert.Equal(t, 3, first.RemainingReferenceSlots(domain.ReferenceKindModel))

	again, err := repo.GetOrCreate(ctx, "channel-1")
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := repo.GetOrCreate(ctx, "channel-2")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, repo.Count())

	require.NoError(t, repo.Delete(ctx, "channel-1"))
	require.NoError(t, repo.Delete(ctx, "missing"))
	assert.Equal(t, 1, repo.Count())

	recreated, err := repo.GetOrCreate(ctx, "channel-1")
	require.NoError(t, err)
	assert.NotSame(t, first, recreated)
}

func TestMemoryStudioSessionRepository_Concurrent(t *testing.T) {
	repo := NewMemoryStudioSessionRepository(3)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.GetOrCreate(context.Background(), "channel-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, repo.Count())
}

func TestMemoryStudioSessionRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryStudioSessionRepository(3)
	_, err := repo.GetOrCreate(ctx, "channel-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Delete(ctx, "channel-1"), context.Canceled)
}
