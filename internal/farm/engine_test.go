package farm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"farm_webapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu     sync.Mutex
	writes []domain.Snapshot
	err    error
}

func (s *fakeStore) MergeSnapshot(_ context.Context, _ string, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, snap)
	return nil
}

func (s *fakeStore) last(t *testing.T) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.writes)
	return s.writes[len(s.writes)-1]
}

// testClock is a settable clock for driving growth without sleeping.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T) (*Engine, *fakeStore, *testClock) {
	t.Helper()
	store := &fakeStore{}
	clock := newTestClock()
	p := domain.NewPlayer("p1", domain.SourceAnonymous)
	return NewEngineAt(p, store, clock.Now), store, clock
}

func TestPlantGrowHarvestCycle(t *testing.T) {
	e, store, clock := newTestEngine(t)
	ctx := context.Background()
	growth := domain.Catalog[domain.CropWheat].GrowthTime

	crop, err := e.Plant(ctx, 0, domain.CropWheat)
	require.NoError(t, err)
	assert.Equal(t, 0, crop.Slot)
	assert.Equal(t, int64(8), e.Snapshot(clock.Now()).Silver)

	// growing crops cannot be harvested
	_, err = e.Harvest(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrNotReady)

	clock.Advance(growth / 2)
	state := e.Tick(clock.Now())
	require.NotNil(t, state.Slots[0].Crop)
	assert.Equal(t, 2, state.Slots[0].Crop.Stage)
	assert.False(t, state.Slots[0].Crop.Ready)

	clock.Advance(growth / 2)
	state = e.Tick(clock.Now())
	assert.Equal(t, 5, state.Slots[0].Crop.Stage)
	assert.True(t, state.Slots[0].Crop.Ready)

	reward, err := e.Harvest(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(20), reward)

	snap := e.Snapshot(clock.Now())
	assert.Equal(t, int64(28), snap.Silver)
	assert.Empty(t, snap.Crops)

	// a second harvest of the same slot finds nothing
	_, err = e.Harvest(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrNoCropAtSlot)

	// every mutation merge-wrote a snapshot
	assert.Len(t, store.writes, 2)
	assert.Equal(t, int64(28), store.last(t).Silver)
}

func TestPlantRejections(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Plant(ctx, 42, domain.CropWheat)
	assert.ErrorIs(t, err, domain.ErrUnknownSlot)

	_, err = e.Plant(ctx, 0, domain.CropType("pumpkin"))
	assert.ErrorIs(t, err, domain.ErrUnknownCrop)

	// premium pool is locked before the research purchase
	_, err = e.Plant(ctx, domain.PremiumSlotBase, domain.CropWheat)
	assert.ErrorIs(t, err, domain.ErrPoolLocked)

	// beet requires its unlock
	_, err = e.Plant(ctx, 0, domain.CropBeet)
	assert.ErrorIs(t, err, domain.ErrPoolLocked)

	_, err = e.Plant(ctx, 0, domain.CropWheat)
	require.NoError(t, err)
	_, err = e.Plant(ctx, 0, domain.CropWheat)
	assert.ErrorIs(t, err, domain.ErrSlotOccupied)
}

func TestPlantInsufficientFunds(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	// 10 starting silver covers five wheat plantings
	for slot := 0; slot < 5; slot++ {
		_, err := e.Plant(ctx, slot, domain.CropWheat)
		require.NoError(t, err)
	}
	_, err := e.Plant(ctx, 5, domain.CropWheat)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// a failed plant left the slot empty and the balance untouched
	snap := e.Snapshot(time.Now())
	assert.Equal(t, int64(0), snap.Silver)
	assert.Len(t, snap.Crops, 5)
}

func TestUnlockGatesPlanting(t *testing.T) {
	e, _, clock := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Unlock(ctx, domain.UnlockBeetSeeds))
	assert.Equal(t, int64(5), e.Snapshot(clock.Now()).Silver)

	// idempotent: buying again costs nothing
	require.NoError(t, e.Unlock(ctx, domain.UnlockBeetSeeds))
	assert.Equal(t, int64(5), e.Snapshot(clock.Now()).Silver)

	_, err := e.Plant(ctx, 0, domain.CropBeet)
	require.NoError(t, err)

	err = e.Unlock(ctx, "time_travel")
	assert.ErrorIs(t, err, domain.ErrUnknownResearch)

	err = e.Unlock(ctx, domain.UnlockPremiumPlots)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestPremiumHarvestPaysGold(t *testing.T) {
	store := &fakeStore{}
	clock := newTestClock()
	p := domain.NewPlayer("p1", domain.SourceAnonymous)
	p.Silver = 20
	p.Unlocks = map[string]bool{domain.UnlockPremiumPlots: true}
	e := NewEngineAt(p, store, clock.Now)
	ctx := context.Background()

	_, err := e.Plant(ctx, domain.PremiumSlotBase, domain.CropWheat)
	require.NoError(t, err)

	clock.Advance(domain.Catalog[domain.CropWheat].GrowthTime)
	reward, err := e.Harvest(ctx, domain.PremiumSlotBase)
	require.NoError(t, err)
	assert.Equal(t, int64(20), reward)

	snap := e.Snapshot(clock.Now())
	assert.Equal(t, int64(1), snap.Gold)
}

func TestSelectBonus(t *testing.T) {
	e, _, clock := newTestEngine(t)
	ctx := context.Background()

	err := e.SelectBonus(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrUnknownBonus)

	require.NoError(t, e.SelectBonus(ctx, 2))
	snap := e.Snapshot(clock.Now())
	assert.True(t, snap.HasOnboarded)
	assert.True(t, snap.Unlocks["bonus:2"])

	err = e.SelectBonus(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyOnboarded)
}

func TestExchangeGold(t *testing.T) {
	store := &fakeStore{}
	clock := newTestClock()
	p := domain.NewPlayer("p1", domain.SourceAnonymous)
	p.Gold = 3
	e := NewEngineAt(p, store, clock.Now)
	ctx := context.Background()

	credited, err := e.ExchangeGold(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(20), credited)

	snap := e.Snapshot(clock.Now())
	assert.Equal(t, int64(1), snap.Gold)
	assert.Equal(t, int64(30), snap.Silver)

	_, err = e.ExchangeGold(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	_, err = e.ExchangeGold(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestStoredStageIsIgnored(t *testing.T) {
	store := &fakeStore{}
	clock := newTestClock()

	p := domain.NewPlayer("p1", domain.SourceAnonymous)
	p.Crops = []domain.Crop{{
		Slot:      0,
		Type:      domain.CropWheat,
		PlantedAt: clock.Now().Add(-domain.Catalog[domain.CropWheat].GrowthTime),
		Stage:     1, // stale stored value
	}}
	e := NewEngineAt(p, store, clock.Now)

	state := e.Tick(clock.Now())
	require.NotNil(t, state.Slots[0].Crop)
	assert.Equal(t, 5, state.Slots[0].Crop.Stage, "stage derives from PlantedAt, not storage")

	_, err := e.Harvest(context.Background(), 0)
	assert.NoError(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	e, store, clock := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Plant(ctx, 3, domain.CropWheat)
	require.NoError(t, err)
	require.NoError(t, e.Unlock(ctx, domain.UnlockBeetSeeds))

	clock.Advance(5 * time.Minute)
	snap := e.Snapshot(clock.Now())

	// rebuild a fresh engine from the snapshot, as a reload would
	restored := NewEngineAt(&domain.Player{
		PlayerID:     "p1",
		Silver:       snap.Silver,
		Gold:         snap.Gold,
		Crops:        snap.Crops,
		Unlocks:      snap.Unlocks,
		HasOnboarded: snap.HasOnboarded,
	}, store, clock.Now)

	assert.Equal(t, snap, restored.Snapshot(clock.Now()))
}

func TestPersistFailureKeepsState(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	clock := newTestClock()
	e := NewEngineAt(domain.NewPlayer("p1", domain.SourceAnonymous), store, clock.Now)
	ctx := context.Background()

	// a failed durable write does not roll back the in-memory mutation
	crop, err := e.Plant(ctx, 0, domain.CropWheat)
	require.NoError(t, err)
	require.NotNil(t, crop)

	snap := e.Snapshot(clock.Now())
	assert.Equal(t, int64(8), snap.Silver)
	assert.Len(t, snap.Crops, 1)
}

func TestTickBroadcast(t *testing.T) {
	e, _, clock := newTestEngine(t)

	ch := make(chan DisplayState, 1)
	e.Subscribe(ch)
	defer e.Unsubscribe(ch)

	e.broadcast(e.Tick(clock.Now()))

	select {
	case state := <-ch:
		assert.Equal(t, "p1", state.PlayerID)
		assert.Len(t, state.Slots, domain.DefaultPoolSize+domain.PremiumPoolSize)
	default:
		t.Fatal("no frame delivered")
	}

	// a full buffer drops frames instead of blocking the ticker
	e.broadcast(e.Tick(clock.Now()))
	e.broadcast(e.Tick(clock.Now()))
}
