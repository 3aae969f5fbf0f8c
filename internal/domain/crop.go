package domain

import "time"

type CropType string

const (
	CropWheat CropType = "wheat"
	CropBeet  CropType = "beet"
)

// CropInfo describes one entry of the static crop catalog: how long the crop
// takes to reach the harvestable stage, what planting costs and what
// harvesting pays (both in silver).
type CropInfo struct {
	Type       CropType      `json:"type"`
	Name       string        `json:"name"`
	GrowthTime time.Duration `json:"growth_time"`
	PlantCost  int64         `json:"plant_cost"`
	Reward     int64         `json:"reward"`
	// UnlockKey gates planting; empty means available from the start.
	UnlockKey string `json:"unlock_key,omitempty"`
}

// Catalog is the single source of growth durations and harvest rewards.
var Catalog = map[CropType]CropInfo{
	CropWheat: {Type: CropWheat, Name: "Wheat", GrowthTime: 12 * time.Minute, PlantCost: 2, Reward: 20},
	CropBeet:  {Type: CropBeet, Name: "Beet", GrowthTime: 15 * time.Minute, PlantCost: 3, Reward: 25, UnlockKey: UnlockBeetSeeds},
}

// Growth stages run 0..5; StageHarvestable is terminal.
const (
	StageCount       = 5
	StageHarvestable = 5
)

// Slot pools. Membership is derivable from the slot value alone: the premium
// pool sits at a base offset so the two pools never overlap.
const (
	DefaultPoolSize = 6
	PremiumSlotBase = 100
	PremiumPoolSize = 6
)

// Crop is a planted crop owned by a Player. PlantedAt is set at plant time
// and immutable thereafter. Stage carries the last derived stage for display
// continuity only; it is never trusted over recomputation from PlantedAt.
type Crop struct {
	Slot      int       `json:"slot"`
	Type      CropType  `json:"type"`
	PlantedAt time.Time `json:"planted_at"`
	Stage     int       `json:"stage"`
}

// StageOf derives the growth stage from elapsed wall-clock time. Pure: the
// same inputs always yield the same stage, non-decreasing in now and bounded
// to [0,5]. Unknown crop types derive stage 0 forever.
func StageOf(plantedAt time.Time, cropType CropType, now time.Time) int {
	info, ok := Catalog[cropType]
	if !ok || info.GrowthTime <= 0 {
		return 0
	}
	elapsed := now.Sub(plantedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= info.GrowthTime {
		return StageHarvestable
	}
	// piecewise-constant: one stage per 1/5 of the growth time
	return int(elapsed * StageCount / info.GrowthTime)
}

// RemainingOf returns the time left until the crop is harvestable, zero once
// the terminal stage is reached.
func RemainingOf(plantedAt time.Time, cropType CropType, now time.Time) time.Duration {
	info, ok := Catalog[cropType]
	if !ok {
		return 0
	}
	left := info.GrowthTime - now.Sub(plantedAt)
	if left < 0 {
		return 0
	}
	return left
}

// IsPremiumSlot reports whether the slot belongs to the gated premium pool.
func IsPremiumSlot(slot int) bool {
	return slot >= PremiumSlotBase && slot < PremiumSlotBase+PremiumPoolSize
}

// IsKnownSlot reports whether the slot belongs to any pool.
func IsKnownSlot(slot int) bool {
	if slot >= 0 && slot < DefaultPoolSize {
		return true
	}
	return IsPremiumSlot(slot)
}
