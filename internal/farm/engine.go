package farm

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"farm_webapp/internal/domain"
	"farm_webapp/internal/logger"
)

// Store is the durable side of the engine: merge-writes of the player
// snapshot keyed by player id.
type Store interface {
	MergeSnapshot(ctx context.Context, playerID string, snap domain.Snapshot) error
}

// Engine owns the authoritative in-memory crop and currency state for one
// player session. All operations are serialized by the engine mutex; growth
// stages are never stored, only derived from PlantedAt on every read.
type Engine struct {
	playerID string

	mu           sync.Mutex
	silver       int64
	gold         int64
	crops        map[int]domain.Crop
	unlocks      map[string]bool
	hasOnboarded bool

	store Store
	now   func() time.Time

	subMu sync.Mutex
	subs  map[chan DisplayState]struct{}
}

// NewEngine initializes an engine from a persisted record. Any stage value
// riding in the stored crops is ignored; stages are recomputed from
// PlantedAt.
func NewEngine(p *domain.Player, store Store) *Engine {
	return NewEngineAt(p, store, time.Now)
}

// NewEngineAt is NewEngine with an injectable clock.
func NewEngineAt(p *domain.Player, store Store, now func() time.Time) *Engine {
	e := &Engine{
		playerID:     p.PlayerID,
		silver:       p.Silver,
		gold:         p.Gold,
		crops:        make(map[int]domain.Crop, len(p.Crops)),
		unlocks:      make(map[string]bool, len(p.Unlocks)),
		hasOnboarded: p.HasOnboarded,
		store:        store,
		now:          now,
		subs:         make(map[chan DisplayState]struct{}),
	}
	for _, c := range p.Crops {
		e.crops[c.Slot] = c
	}
	for k, v := range p.Unlocks {
		if v {
			e.unlocks[k] = true
		}
	}
	return e
}

func (e *Engine) PlayerID() string { return e.playerID }

// Plant debits the plant cost and inserts a new crop at the slot. The
// in-memory mutation happens before the durable write; a write failure does
// not roll it back.
func (e *Engine) Plant(ctx context.Context, slot int, cropType domain.CropType) (*domain.Crop, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !domain.IsKnownSlot(slot) {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownSlot, slot)
	}
	info, ok := domain.Catalog[cropType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCrop, cropType)
	}
	if domain.IsPremiumSlot(slot) && !e.unlocks[domain.UnlockPremiumPlots] {
		return nil, fmt.Errorf("%w: premium slot %d", domain.ErrPoolLocked, slot)
	}
	if info.UnlockKey != "" && !e.unlocks[info.UnlockKey] {
		return nil, fmt.Errorf("%w: %s", domain.ErrPoolLocked, cropType)
	}
	if _, occupied := e.crops[slot]; occupied {
		return nil, fmt.Errorf("%w: %d", domain.ErrSlotOccupied, slot)
	}
	if e.silver < info.PlantCost {
		return nil, fmt.Errorf("%w: need %d silver", domain.ErrInsufficientFunds, info.PlantCost)
	}

	e.silver -= info.PlantCost
	crop := domain.Crop{Slot: slot, Type: cropType, PlantedAt: e.now().UTC()}
	e.crops[slot] = crop

	plantsTotal.WithLabelValues(string(cropType)).Inc()
	e.persistLocked(ctx)
	return &crop, nil
}

// Harvest removes a terminal-stage crop and credits its reward. Removal and
// credit happen in one critical section: there is no state where one is
// visible without the other.
func (e *Engine) Harvest(ctx context.Context, slot int) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	crop, ok := e.crops[slot]
	if !ok {
		return 0, fmt.Errorf("%w: %d", domain.ErrNoCropAtSlot, slot)
	}
	if domain.StageOf(crop.PlantedAt, crop.Type, e.now()) < domain.StageHarvestable {
		return 0, fmt.Errorf("%w: slot %d", domain.ErrNotReady, slot)
	}

	reward := domain.Catalog[crop.Type].Reward
	delete(e.crops, slot)
	e.silver += reward
	if domain.IsPremiumSlot(slot) {
		e.gold += domain.PremiumHarvestGold
	}

	harvestsTotal.WithLabelValues(string(crop.Type)).Inc()
	e.persistLocked(ctx)
	return reward, nil
}

// Unlock purchases a research item. Already-owned items are a no-op success.
func (e *Engine) Unlock(ctx context.Context, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := domain.ResearchCatalog[key]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownResearch, key)
	}
	if e.unlocks[key] {
		return nil
	}
	if e.silver < item.Cost {
		return fmt.Errorf("%w: need %d silver", domain.ErrInsufficientFunds, item.Cost)
	}

	e.silver -= item.Cost
	e.unlocks[key] = true
	e.persistLocked(ctx)
	return nil
}

// SelectBonus completes the one-time onboarding pick.
func (e *Engine) SelectBonus(ctx context.Context, bonusID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasOnboarded {
		return domain.ErrAlreadyOnboarded
	}
	var found bool
	for _, b := range domain.Bonuses {
		if b.ID == bonusID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %d", domain.ErrUnknownBonus, bonusID)
	}

	e.hasOnboarded = true
	e.unlocks[fmt.Sprintf("bonus:%d", bonusID)] = true
	e.persistLocked(ctx)
	return nil
}

// ExchangeGold converts gold to silver at the fixed rate. Rejected whole when
// the balance does not cover the amount.
func (e *Engine) ExchangeGold(ctx context.Context, amount int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", domain.ErrInsufficientFunds)
	}
	if e.gold < amount {
		return 0, fmt.Errorf("%w: have %d gold", domain.ErrInsufficientFunds, e.gold)
	}

	credited := amount * domain.GoldExchangeRate
	e.gold -= amount
	e.silver += credited
	e.persistLocked(ctx)
	return credited, nil
}

// Snapshot captures the engine state for persistence or a fresh engine.
// Crop stages are derived at the given instant and stored for display
// continuity only.
func (e *Engine) Snapshot(now time.Time) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(now)
}

func (e *Engine) snapshotLocked(now time.Time) domain.Snapshot {
	crops := make([]domain.Crop, 0, len(e.crops))
	for _, c := range e.crops {
		c.Stage = domain.StageOf(c.PlantedAt, c.Type, now)
		crops = append(crops, c)
	}
	sort.Slice(crops, func(i, j int) bool { return crops[i].Slot < crops[j].Slot })

	unlocks := make(map[string]bool, len(e.unlocks))
	for k := range e.unlocks {
		unlocks[k] = true
	}

	return domain.Snapshot{
		Silver:       e.silver,
		Gold:         e.gold,
		Crops:        crops,
		Unlocks:      unlocks,
		HasOnboarded: e.hasOnboarded,
	}
}

// persistLocked merge-writes the current snapshot. A failure is logged and
// counted but never rolls back the in-memory mutation; the next successful
// write catches up.
func (e *Engine) persistLocked(ctx context.Context) {
	snap := e.snapshotLocked(e.now())
	if err := e.store.MergeSnapshot(ctx, e.playerID, snap); err != nil {
		persistFailures.Inc()
		logger.Warn("snapshot write failed, state kept in memory",
			"player_id", e.playerID, "error", err)
	}
}
