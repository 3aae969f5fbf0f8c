package farm

import (
	"context"
	"testing"

	"farm_webapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	loads int
}

func (l *fakeLoader) Get(_ context.Context, playerID string) (*domain.Player, error) {
	l.loads++
	return domain.NewPlayer(playerID, domain.SourceAnonymous), nil
}

func TestManagerAcquireReusesEngine(t *testing.T) {
	loader := &fakeLoader{}
	m := NewManager(loader, &fakeStore{})
	defer m.Shutdown()
	ctx := context.Background()

	e1, err := m.Acquire(ctx, "p1")
	require.NoError(t, err)
	e2, err := m.Acquire(ctx, "p1")
	require.NoError(t, err)

	assert.Same(t, e1, e2, "same player reuses the live engine")
	assert.Equal(t, 1, loader.loads, "persisted record loaded once per session")

	e3, err := m.Acquire(ctx, "p2")
	require.NoError(t, err)
	assert.NotSame(t, e1, e3)
	assert.Equal(t, 2, loader.loads)
}

func TestManagerEvictSkipsSubscribed(t *testing.T) {
	m := NewManager(&fakeLoader{}, &fakeStore{})
	defer m.Shutdown()
	m.idleTTL = 0 // everything counts as idle immediately

	ctx := context.Background()
	watched, err := m.Acquire(ctx, "watched")
	require.NoError(t, err)
	_, err = m.Acquire(ctx, "abandoned")
	require.NoError(t, err)

	ch := make(chan DisplayState, 1)
	watched.Subscribe(ch)
	defer watched.Unsubscribe(ch)

	m.evictIdle()

	m.mu.Lock()
	_, watchedAlive := m.sessions["watched"]
	_, abandonedAlive := m.sessions["abandoned"]
	m.mu.Unlock()

	assert.True(t, watchedAlive, "engine with a live subscriber survives eviction")
	assert.False(t, abandonedAlive, "idle engine without subscribers is torn down")
}

func TestManagerShutdownClearsSessions(t *testing.T) {
	m := NewManager(&fakeLoader{}, &fakeStore{})
	ctx := context.Background()

	_, err := m.Acquire(ctx, "p1")
	require.NoError(t, err)
	_, err = m.Acquire(ctx, "p2")
	require.NoError(t, err)

	m.Shutdown()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.sessions)
}
