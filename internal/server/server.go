// Package server accepts dashboard connections and drives each one's
// read/dispatch loop. One goroutine owns each connection, so a slow git
// invocation on one session never stalls another.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/groblegark/dashd/internal/automation"
	"github.com/groblegark/dashd/internal/events"
	"github.com/groblegark/dashd/internal/gitops"
	"github.com/groblegark/dashd/internal/session"
	"github.com/groblegark/dashd/internal/store"
	"github.com/groblegark/dashd/internal/wire"
)

// Config carries the server's collaborators.
type Config struct {
	Gateway     *gitops.Gateway
	Store       store.Store
	Publisher   events.Publisher
	Automations []*automation.Automation

	// SweepInterval is how often expired sessions are reaped. Zero uses the
	// registry default.
	SweepInterval time.Duration
}

// Server ties the session registry, git gateway, automation surface, and
// event bus together behind one listener.
type Server struct {
	gateway     *gitops.Gateway
	store       store.Store
	publisher   events.Publisher
	automations []*automation.Automation
	registry    *session.Registry

	mu      sync.Mutex
	conns   map[string]net.Conn // session ID → connection, for sweeper close
	running map[string]bool     // automation ID → currently running

	ctx    context.Context
	cancel context.CancelFunc
	ln     net.Listener
	wg     sync.WaitGroup
}

// New builds a server from its collaborators. A nil publisher degrades to
// the no-op publisher.
func New(cfg Config) *Server {
	if cfg.Publisher == nil {
		cfg.Publisher = &events.NoopPublisher{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		gateway:     cfg.Gateway,
		store:       cfg.Store,
		publisher:   cfg.Publisher,
		automations: cfg.Automations,
		registry:    session.NewRegistry(),
		conns:       make(map[string]net.Conn),
		running:     make(map[string]bool),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.registry.StartSweeper(&session.SweeperConfig{
		Interval:  cfg.SweepInterval,
		OnExpired: s.closeExpired,
	})
	return s
}

// Registry exposes the session registry, mainly for tests and diagnostics.
func (s *Server) Registry() *session.Registry { return s.registry }

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.ln = ln
	slog.Info("server: listening", "addr", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Shutdown closes the listener, stops the sweeper, and waits for all
// connection goroutines to drain.
func (s *Server) Shutdown() {
	s.cancel()
	if s.ln != nil {
		s.ln.Close()
	}

	s.mu.Lock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.registry.Stop()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	sess, err := s.registry.Create(conn, s.gateway.Root())
	if err != nil {
		slog.Error("server: create session failed", "err", err)
		return
	}

	s.mu.Lock()
	s.conns[sess.ID] = conn
	s.mu.Unlock()

	slog.Info("server: session connected", "session_id", sess.ID, "remote", conn.RemoteAddr())
	s.publish(events.TopicSessionCreated, events.SessionCreated{
		SessionID:   sess.ID,
		ProjectRoot: sess.ProjectRoot,
	})

	// The state push doubles as the hello: it tells the client its session ID.
	sess.SetState("connected")

	defer func() {
		s.mu.Lock()
		delete(s.conns, sess.ID)
		s.mu.Unlock()

		// The sweeper may have already removed and announced this session.
		if s.registry.Get(sess.ID) != nil {
			s.registry.Remove(sess.ID)
			slog.Info("server: session disconnected", "session_id", sess.ID)
			s.publish(events.TopicSessionClosed, events.SessionClosed{
				SessionID: sess.ID,
				Reason:    "disconnect",
			})
		}
	}()

	for {
		op, payload, err := wire.ReadMessage(conn)
		if err != nil {
			return
		}
		if op == wire.OpClose {
			return
		}
		sess.Touch()
		if op.IsControl() {
			// Ping/pong only refresh liveness.
			continue
		}

		if !sess.CheckRateLimit() {
			slog.Warn("server: rate limit exceeded, dropping message", "session_id", sess.ID)
			continue
		}
		s.dispatch(sess, payload)
	}
}

// closeExpired is the sweeper callback: announce the expiry and close the
// connection so the read loop unwinds.
func (s *Server) closeExpired(sess *session.Session) {
	s.publish(events.TopicSessionClosed, events.SessionClosed{
		SessionID: sess.ID,
		Reason:    "expired",
	})

	s.mu.Lock()
	conn := s.conns[sess.ID]
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// publish emits an event, logging failures. Event delivery is best effort
// and never blocks dispatch.
func (s *Server) publish(topic string, event any) {
	if err := s.publisher.Publish(s.ctx, topic, event); err != nil {
		slog.Warn("server: publish failed", "topic", topic, "err", err)
	}
}
