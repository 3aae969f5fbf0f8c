package farm

import (
	"context"
	"sync"
	"time"

	"farm_webapp/internal/domain"
	"farm_webapp/internal/logger"
)

// Loader reads persisted player records when a session starts.
type Loader interface {
	Get(ctx context.Context, playerID string) (*domain.Player, error)
}

const (
	// DefaultTickInterval is the cadence of derived-stage recomputation.
	DefaultTickInterval = time.Second

	// DefaultIdleTTL is how long an engine without requests or subscribers
	// survives before teardown.
	DefaultIdleTTL = 10 * time.Minute

	cleanupInterval = time.Minute
)

type session struct {
	engine   *Engine
	cancel   context.CancelFunc
	lastSeen time.Time
}

// Manager keeps one Engine per active player and owns the single periodic
// recomputation loop per engine. Tickers are cancelled on idle teardown and
// on shutdown, so no state is mutated after disposal.
type Manager struct {
	store  Store
	loader Loader

	tickInterval time.Duration
	idleTTL      time.Duration

	mu       sync.Mutex
	sessions map[string]*session

	rootCtx context.Context
	stop    context.CancelFunc
}

func NewManager(loader Loader, store Store) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:        store,
		loader:       loader,
		tickInterval: DefaultTickInterval,
		idleTTL:      DefaultIdleTTL,
		sessions:     make(map[string]*session),
		rootCtx:      ctx,
		stop:         cancel,
	}
}

// SetTiming overrides the tick cadence and idle eviction TTL. Call before
// the first Acquire.
func (m *Manager) SetTiming(tick, idle time.Duration) {
	if tick > 0 {
		m.tickInterval = tick
	}
	if idle > 0 {
		m.idleTTL = idle
	}
}

// Acquire returns the engine for the player, loading the persisted snapshot
// and starting the tick loop on first use. Stored stages are discarded in
// favor of recomputation inside the engine.
func (m *Manager) Acquire(ctx context.Context, playerID string) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[playerID]; ok {
		s.lastSeen = time.Now()
		return s.engine, nil
	}

	player, err := m.loader.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	engine := NewEngine(player, m.store)
	tickCtx, cancel := context.WithCancel(m.rootCtx)
	m.sessions[playerID] = &session{engine: engine, cancel: cancel, lastSeen: time.Now()}
	activeSessions.Inc()

	go m.runTicker(tickCtx, engine)
	return engine, nil
}

func (m *Manager) runTicker(ctx context.Context, e *Engine) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.broadcast(e.Tick(now))
		}
	}
}

// StartCleanup launches the idle-session janitor.
func (m *Manager) StartCleanup() {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.rootCtx.Done():
				return
			case <-ticker.C:
				m.evictIdle()
			}
		}
	}()
}

func (m *Manager) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.idleTTL)
	for id, s := range m.sessions {
		if s.lastSeen.After(cutoff) || s.engine.subscriberCount() > 0 {
			continue
		}
		s.cancel()
		delete(m.sessions, id)
		activeSessions.Dec()
		logger.Debug("farm session evicted", "player_id", id)
	}
}

// Shutdown cancels every tick loop. Engines are not flushed here: every
// mutating operation already merge-wrote its snapshot.
func (m *Manager) Shutdown() {
	m.stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.cancel()
		delete(m.sessions, id)
		activeSessions.Dec()
	}
}
