package domain

import "time"

// IdentitySource records how a player id was obtained.
type IdentitySource string

const (
	SourceTelegram  IdentitySource = "telegram"
	SourceAnonymous IdentitySource = "anonymous"
)

// Research unlock keys. Unlocks are idempotent flags: buying one twice is a
// no-op.
const (
	UnlockBeetSeeds    = "beet_seeds"
	UnlockPremiumPlots = "premium_plots"
)

// ResearchItem is one purchasable unlock from the research screen.
type ResearchItem struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

var ResearchCatalog = map[string]ResearchItem{
	UnlockBeetSeeds:    {Key: UnlockBeetSeeds, Name: "Beet Seeds", Cost: 5},
	UnlockPremiumPlots: {Key: UnlockPremiumPlots, Name: "Premium Plots", Cost: 8},
}

// Bonus is one of the one-time onboarding picks. The selection itself is what
// completes onboarding; effects are cosmetic for now.
type Bonus struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var Bonuses = []Bonus{
	{ID: 1, Name: "Speed", Description: "Grow crops 20% faster"},
	{ID: 2, Name: "More farms", Description: "20% more farmland"},
	{ID: 3, Name: "Higher price", Description: "20% more profit"},
}

const (
	// StartingSilver seeds every new player record.
	StartingSilver = 10

	// GoldExchangeRate is how much silver one gold buys.
	GoldExchangeRate = 10

	// PremiumHarvestGold is the gold bonus paid on premium-pool harvests.
	PremiumHarvestGold = 1
)

// Player is the durable per-identifier record: balances, crops and unlock
// state. PlayerID and CreatedAt are set once and never mutated.
type Player struct {
	PlayerID     string          `json:"player_id"`
	Source       IdentitySource  `json:"source"`
	Silver       int64           `json:"silver"`
	Gold         int64           `json:"gold"`
	Crops        []Crop          `json:"crops"`
	Unlocks      map[string]bool `json:"unlocks"`
	HasOnboarded bool            `json:"has_onboarded"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewPlayer returns a fresh record with default balances.
func NewPlayer(playerID string, source IdentitySource) *Player {
	return &Player{
		PlayerID:  playerID,
		Source:    source,
		Silver:    StartingSilver,
		Gold:      0,
		Crops:     []Crop{},
		Unlocks:   map[string]bool{},
		CreatedAt: time.Now().UTC(),
	}
}

// Snapshot is the merge-written sub-document: everything the engine owns.
// Writes are last-writer-wins at the granularity of the whole snapshot.
type Snapshot struct {
	Silver       int64           `json:"silver"`
	Gold         int64           `json:"gold"`
	Crops        []Crop          `json:"crops"`
	Unlocks      map[string]bool `json:"unlocks"`
	HasOnboarded bool            `json:"has_onboarded"`
}
