// Package session owns per-connection dashboard state: conversation history,
// liveness, rate limiting, and the outbound push path. A Session is the sole
// writer to its socket; at most one Session ever holds a given connection.
package session

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/groblegark/dashd/internal/protocol"
	"github.com/groblegark/dashd/internal/wire"
)

// Engine constants. The rate limiter is full-bucket-per-interval: after one
// refill interval the token count resets to the maximum, it never trickles.
const (
	Timeout         = 30 * time.Minute
	RateLimitTokens = 10
	RefillInterval  = time.Second
)

// HistoryEntry is one message in a session's conversation history.
type HistoryEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one live client connection's mutable server-side state.
//
// Mutating operations must be serialized by the caller: a session is driven
// by the single goroutine reading its inbound frames. Two exceptions are
// internally locked: lastActivity, which the expiry sweeper reads, and the
// outbound write path, which broadcasts reach from other sessions'
// goroutines.
type Session struct {
	ID          string
	ProjectRoot string
	Meta        map[string]string

	sendMu  sync.Mutex
	conn    io.Writer
	state   string
	history []HistoryEntry

	createdAt time.Time

	activityMu   sync.Mutex
	lastActivity time.Time

	tokens     int
	lastRefill time.Time

	// now is replaced by tests that steer the clock.
	now func() time.Time
}

// New wraps an accepted connection in a fresh session. conn may be nil for
// a detached session; Send then becomes a no-op.
func New(id string, conn io.Writer, projectRoot string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		ProjectRoot:  projectRoot,
		Meta:         make(map[string]string),
		conn:         conn,
		createdAt:    now,
		lastActivity: now,
		tokens:       RateLimitTokens,
		lastRefill:   now,
		now:          time.Now,
	}
}

// State returns the current free-form state tag.
func (s *Session) State() string { return s.state }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActivity returns the time of the last successful send or mutation.
func (s *Session) LastActivity() time.Time {
	s.activityMu.Lock()
	defer s.activityMu.Unlock()
	return s.lastActivity
}

// IsExpired reports whether the session has been inactive longer than the
// engine timeout. Pure; closing an expired session is the sweeper's job.
func (s *Session) IsExpired() bool {
	return s.now().Sub(s.LastActivity()) > Timeout
}

// CheckRateLimit consumes one token if available. When a full refill
// interval has elapsed the bucket resets to the maximum before the token is
// taken. Exceeding the limit is a policy outcome, not an error: callers drop
// or defer the message.
func (s *Session) CheckRateLimit() bool {
	now := s.now()
	if now.Sub(s.lastRefill) >= RefillInterval {
		s.tokens = RateLimitTokens
		s.lastRefill = now
	}
	if s.tokens > 0 {
		s.tokens--
		return true
	}
	return false
}

// Send encodes msg and writes it as a single text frame. Messages are
// delivered in the order Send is called; concurrent senders are serialized
// so frames never interleave. A write failure is logged and absorbed; the
// session stays alive and lastActivity does not advance. With no connection
// the call is a silent no-op.
func (s *Session) Send(msg protocol.Message) {
	if s.conn == nil {
		return
	}
	payload, err := protocol.Marshal(msg)
	if err != nil {
		slog.Warn("session: marshal failed", "session_id", s.ID, "type", msg["type"], "err", err)
		return
	}

	s.sendMu.Lock()
	_, err = s.conn.Write(wire.EncodeText(payload))
	s.sendMu.Unlock()
	if err != nil {
		slog.Warn("session: write failed", "session_id", s.ID, "err", err)
		return
	}
	s.Touch()
}

// AddMessage appends one entry to the conversation history and marks the
// session active. History is append-only, insertion order preserved.
func (s *Session) AddMessage(role, content string) {
	s.history = append(s.history, HistoryEntry{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
	s.Touch()
}

// History returns a snapshot of the conversation history. The returned slice
// is the caller's to keep; later appends do not show through.
func (s *Session) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// SetState sets the open-string state tag and immediately pushes a
// session-state message to the client. No transition table is enforced:
// any value may follow any other.
func (s *Session) SetState(state string) {
	s.state = state
	s.Send(protocol.NewSessionState(s.ID, state))
}

// Touch marks the session active without any other effect. The dispatch
// loop calls it when inbound traffic arrives.
func (s *Session) Touch() {
	now := s.now()
	s.activityMu.Lock()
	if now.After(s.lastActivity) {
		s.lastActivity = now
	}
	s.activityMu.Unlock()
}
