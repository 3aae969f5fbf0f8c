package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"farm_webapp/internal/domain"
	"farm_webapp/internal/logger"

	"github.com/google/uuid"
)

// HostIdentity is the authenticated user supplied by the embedding
// environment, when the mini-game runs inside one.
type HostIdentity struct {
	ID        int64
	Username  string
	FirstName string
	Locale    string
	Premium   bool
}

// ErrHostNotReady signals that the embedding environment may still be
// booting; the resolver retries the probe a bounded number of times before
// falling back to an anonymous identity.
var ErrHostNotReady = errors.New("host environment not ready")

// HostProvider probes the embedding environment. (nil, nil) means the game is
// definitively not running inside a host, which is not an error.
type HostProvider interface {
	Identity(ctx context.Context) (*HostIdentity, error)
}

// HostFunc adapts a plain function to HostProvider.
type HostFunc func(ctx context.Context) (*HostIdentity, error)

func (f HostFunc) Identity(ctx context.Context) (*HostIdentity, error) { return f(ctx) }

// TokenStore caches the anonymous session token in persistent client
// storage.
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string) error
}

// PlayerStore is the durable record store the resolver provisions against.
type PlayerStore interface {
	Get(ctx context.Context, playerID string) (*domain.Player, error)
	Ensure(ctx context.Context, p *domain.Player) (*domain.Player, error)
}

// Resolution is the outcome of identity resolution: a stable player id, how
// it was obtained, and the persisted record guaranteed to exist.
type Resolution struct {
	PlayerID string
	Source   domain.IdentitySource
	Player   *domain.Player
}

const (
	defaultProbeAttempts = 5
	defaultProbeBackoff  = 200 * time.Millisecond
)

// Resolver determines the session's player id by probing, in priority order,
// the host environment, a previously stored token, and a freshly generated
// one, then ensures the corresponding record exists. Resolve memoizes its
// result, so repeated calls within one session never generate a second token.
type Resolver struct {
	host    HostProvider
	tokens  TokenStore
	players PlayerStore

	probeAttempts int
	probeBackoff  time.Duration

	mu       sync.Mutex
	resolved *Resolution
}

func NewResolver(host HostProvider, tokens TokenStore, players PlayerStore) *Resolver {
	return &Resolver{
		host:          host,
		tokens:        tokens,
		players:       players,
		probeAttempts: defaultProbeAttempts,
		probeBackoff:  defaultProbeBackoff,
	}
}

// Resolve yields the session identity. On failure the result is not cached:
// the caller may retry, and must not proceed with a fabricated id.
func (r *Resolver) Resolve(ctx context.Context) (*Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil {
		return r.resolved, nil
	}

	playerID, source, err := r.selectID(ctx)
	if err != nil {
		return nil, err
	}

	player, err := r.players.Ensure(ctx, domain.NewPlayer(playerID, source))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}

	r.resolved = &Resolution{PlayerID: playerID, Source: source, Player: player}
	return r.resolved, nil
}

// selectID runs the prioritized probe order. The host identity, when present,
// is authoritative and skips the token steps entirely.
func (r *Resolver) selectID(ctx context.Context) (string, domain.IdentitySource, error) {
	if host, err := r.probeHost(ctx); err != nil {
		return "", "", err
	} else if host != nil {
		return strconv.FormatInt(host.ID, 10), domain.SourceTelegram, nil
	}

	if token, ok := r.tokens.Token(); ok && token != "" {
		return token, domain.SourceAnonymous, nil
	}

	token := uuid.NewString()
	if err := r.tokens.SetToken(token); err != nil {
		// A token we cannot persist would orphan progress on the next visit.
		return "", "", fmt.Errorf("%w: store token: %v", domain.ErrIdentityUnavailable, err)
	}
	return token, domain.SourceAnonymous, nil
}

// probeHost polls the embedding environment with fixed backoff while it
// reports not-ready. Absence and hard probe failures both fall back to the
// anonymous path.
func (r *Resolver) probeHost(ctx context.Context) (*HostIdentity, error) {
	if r.host == nil {
		return nil, nil
	}
	for attempt := 0; attempt < r.probeAttempts; attempt++ {
		host, err := r.host.Identity(ctx)
		if err == nil {
			return host, nil
		}
		if !errors.Is(err, ErrHostNotReady) {
			logger.Warn("host identity probe failed, falling back", "error", err)
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, ctx.Err())
		case <-time.After(r.probeBackoff):
		}
	}
	return nil, nil
}
