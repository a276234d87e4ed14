package session

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/groblegark/dashd/internal/idgen"
)

// SweeperConfig configures the background expired-session sweeper.
type SweeperConfig struct {
	// Interval is how often the sweeper scans for expired sessions.
	// Default: 30 seconds.
	Interval time.Duration

	// OnExpired is called for each expired session after it has been
	// removed from the registry. Called outside the lock, so it is safe to make
	// blocking calls such as closing the underlying connection.
	OnExpired func(s *Session)
}

// Registry tracks all live sessions. Operations on distinct sessions never
// block one another; the registry lock covers membership only.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create registers a new session around conn and returns it.
func (r *Registry) Create(conn io.Writer, projectRoot string) (*Session, error) {
	id, err := idgen.Session()
	if err != nil {
		return nil, err
	}
	s := New(id, conn, projectRoot)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns the session with the given ID, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Remove drops a session from the registry. The caller owns closing the
// underlying connection.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Each calls fn for every live session. fn must not call back into the
// registry.
func (r *Registry) Each(fn func(s *Session)) {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		fn(s)
	}
}

// StartSweeper launches a background goroutine that periodically removes
// expired sessions. Call Stop to shut it down.
func (r *Registry) StartSweeper(cfg *SweeperConfig) {
	if cfg == nil {
		cfg = &SweeperConfig{}
	}
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}

	r.sweepStop = make(chan struct{})
	r.sweepDone = make(chan struct{})

	go r.sweepLoop(cfg)
	slog.Info("session: sweeper started", "interval", cfg.Interval, "timeout", Timeout)
}

// Stop shuts down the sweeper goroutine.
func (r *Registry) Stop() {
	if r.sweepStop != nil {
		close(r.sweepStop)
		<-r.sweepDone
		r.sweepStop = nil
		r.sweepDone = nil
	}
}

func (r *Registry) sweepLoop(cfg *SweeperConfig) {
	defer close(r.sweepDone)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.sweepStop:
			return
		case <-ticker.C:
			r.sweep(cfg)
		}
	}
}

func (r *Registry) sweep(cfg *SweeperConfig) {
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, id)
			expired = append(expired, s)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		slog.Info("session: expired", "session_id", s.ID, "last_activity", s.LastActivity())
		if cfg.OnExpired != nil {
			cfg.OnExpired(s)
		}
	}
}
