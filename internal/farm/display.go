package farm

import (
	"sort"
	"time"

	"farm_webapp/internal/domain"
)

// CropView is the derived per-crop projection handed to the presentation
// layer. Stage and readiness are recomputed on every call, never read from
// storage.
type CropView struct {
	Type             domain.CropType `json:"type"`
	PlantedAt        time.Time       `json:"planted_at"`
	Stage            int             `json:"stage"`
	Ready            bool            `json:"ready"`
	RemainingSeconds int64           `json:"remaining_seconds"`
}

// SlotView is one addressable planting position.
type SlotView struct {
	Slot    int       `json:"slot"`
	Premium bool      `json:"premium"`
	Locked  bool      `json:"locked"`
	Crop    *CropView `json:"crop,omitempty"`
}

// DisplayState is the full pull-based render model: balances plus the derived
// state of every slot in both pools.
type DisplayState struct {
	PlayerID     string     `json:"player_id"`
	Silver       int64      `json:"silver"`
	Gold         int64      `json:"gold"`
	HasOnboarded bool       `json:"has_onboarded"`
	Unlocks      []string   `json:"unlocks"`
	Slots        []SlotView `json:"slots"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

// Tick recomputes all derived stages at the given instant. Pure: it performs
// no persistence and cannot fail.
func (e *Engine) Tick(now time.Time) DisplayState {
	e.mu.Lock()
	defer e.mu.Unlock()

	premiumUnlocked := e.unlocks[domain.UnlockPremiumPlots]

	slots := make([]SlotView, 0, domain.DefaultPoolSize+domain.PremiumPoolSize)
	appendPool := func(base, size int, locked bool) {
		for i := 0; i < size; i++ {
			slot := base + i
			view := SlotView{Slot: slot, Premium: domain.IsPremiumSlot(slot), Locked: locked}
			if crop, ok := e.crops[slot]; ok {
				stage := domain.StageOf(crop.PlantedAt, crop.Type, now)
				view.Crop = &CropView{
					Type:             crop.Type,
					PlantedAt:        crop.PlantedAt,
					Stage:            stage,
					Ready:            stage == domain.StageHarvestable,
					RemainingSeconds: int64(domain.RemainingOf(crop.PlantedAt, crop.Type, now).Seconds()),
				}
			}
			slots = append(slots, view)
		}
	}
	appendPool(0, domain.DefaultPoolSize, false)
	appendPool(domain.PremiumSlotBase, domain.PremiumPoolSize, !premiumUnlocked)

	unlocks := make([]string, 0, len(e.unlocks))
	for k := range e.unlocks {
		unlocks = append(unlocks, k)
	}
	sort.Strings(unlocks)

	return DisplayState{
		PlayerID:     e.playerID,
		Silver:       e.silver,
		Gold:         e.gold,
		HasOnboarded: e.hasOnboarded,
		Unlocks:      unlocks,
		Slots:        slots,
		GeneratedAt:  now,
	}
}

// DisplayState is Tick evaluated at the engine clock.
func (e *Engine) DisplayState() DisplayState {
	return e.Tick(e.now())
}

// Subscribe registers a channel that receives the display state on every
// engine tick. Sends are non-blocking: a slow consumer misses frames rather
// than stalling the ticker.
func (e *Engine) Subscribe(ch chan DisplayState) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.subs[ch] = struct{}{}
}

func (e *Engine) Unsubscribe(ch chan DisplayState) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	delete(e.subs, ch)
}

func (e *Engine) subscriberCount() int {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	return len(e.subs)
}

func (e *Engine) broadcast(state DisplayState) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- state:
		default:
		}
	}
}
