package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farm_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlayerRepository is the document store: one JSONB document per player id,
// merge-written as a whole. No optimistic concurrency - last writer wins.
type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Get returns the stored record, or domain.ErrPlayerNotFound when absent.
// Balances and crops are returned exactly as stored; nothing is mutated on
// read.
func (r *PlayerRepository) Get(ctx context.Context, playerID string) (*domain.Player, error) {
	var (
		source    string
		doc       []byte
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT source, doc, created_at FROM players WHERE player_id = $1`,
		playerID,
	).Scan(&source, &doc, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return nil, fmt.Errorf("decode player doc: %w", err)
	}

	return &domain.Player{
		PlayerID:     playerID,
		Source:       domain.IdentitySource(source),
		Silver:       snap.Silver,
		Gold:         snap.Gold,
		Crops:        snap.Crops,
		Unlocks:      snap.Unlocks,
		HasOnboarded: snap.HasOnboarded,
		CreatedAt:    createdAt,
	}, nil
}

// Ensure creates the record if absent and returns what is stored afterwards.
// A concurrent Ensure for the same id never overwrites the existing economy
// fields: the insert is create-if-absent and loses gracefully.
func (r *PlayerRepository) Ensure(ctx context.Context, p *domain.Player) (*domain.Player, error) {
	doc, err := json.Marshal(domain.Snapshot{
		Silver:       p.Silver,
		Gold:         p.Gold,
		Crops:        p.Crops,
		Unlocks:      p.Unlocks,
		HasOnboarded: p.HasOnboarded,
	})
	if err != nil {
		return nil, fmt.Errorf("encode player doc: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO players (player_id, source, doc, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (player_id) DO NOTHING`,
		p.PlayerID, string(p.Source), doc, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure player: %w", err)
	}

	return r.Get(ctx, p.PlayerID)
}

// MergeSnapshot merge-writes the {balances, crops, unlocks, onboarding}
// sub-document into the stored record. Single-document-atomic; the whole
// snapshot replaces the corresponding keys.
func (r *PlayerRepository) MergeSnapshot(ctx context.Context, playerID string, snap domain.Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE players SET doc = doc || $2::jsonb WHERE player_id = $1`,
		playerID, doc,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, playerID)
	}
	return nil
}
