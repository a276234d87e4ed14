package server

import (
	"log/slog"
	"time"

	"github.com/groblegark/dashd/internal/automation"
	"github.com/groblegark/dashd/internal/events"
	"github.com/groblegark/dashd/internal/gitops"
	"github.com/groblegark/dashd/internal/protocol"
	"github.com/groblegark/dashd/internal/session"
)

// dispatch routes one inbound payload for a session. Invalid payloads and
// unknown types are logged and dropped; the session stays alive.
func (s *Server) dispatch(sess *session.Session, payload []byte) {
	msg, err := protocol.ParseInbound(payload)
	if err != nil {
		slog.Warn("server: invalid message", "session_id", sess.ID, "err", err)
		return
	}
	sess.AddMessage("client", string(payload))

	switch msg.Type {
	case protocol.TypeStage, protocol.TypeUnstage, protocol.TypeCommit, protocol.TypeRevert:
		s.handleGitAction(sess, msg)

	case protocol.TypeStatus:
		sess.Send(protocol.NewGitStatus(s.gateway.Status(s.ctx)))

	case protocol.TypeDiff:
		diff := s.gateway.FileDiff(s.ctx, msg.File, msg.Staged)
		stats := gitops.ParseDiffStats(diff)
		sess.Send(protocol.NewFileDiff(msg.File, msg.Staged, diff, stats))

	case protocol.TypeAutomations:
		entries := automation.EnrichList(s.ctx, s.automations, s.runningSnapshot(), s.store)
		sess.Send(protocol.NewAutomationList(entries))

	case protocol.TypeAutomationResult:
		s.handleAutomationResult(sess, msg)

	case protocol.TypeTeamMetrics:
		out := protocol.NewTeamMetrics(msg.TraceID, msg.Metrics())
		s.registry.Each(func(peer *session.Session) {
			peer.Send(out)
		})

	default:
		slog.Warn("server: unknown message type", "session_id", sess.ID, "type", msg.Type)
	}
}

// handleGitAction executes one repository mutation, replies with the action
// result, and follows a success with a fresh status snapshot.
func (s *Server) handleGitAction(sess *session.Session, msg *protocol.Inbound) {
	req := &gitops.ActionRequest{
		Kind:    msg.Type,
		Files:   msg.Files,
		Message: msg.Message,
	}
	_, err := s.gateway.Execute(s.ctx, req)
	if err != nil {
		slog.Warn("server: git action failed", "session_id", sess.ID, "action", msg.Type, "err", err)
	}

	sess.Send(protocol.NewActionResult(msg.Type, err))
	if err == nil {
		sess.Send(protocol.NewGitStatus(s.gateway.Status(s.ctx)))
	}

	ev := events.GitAction{
		SessionID: sess.ID,
		Action:    msg.Type,
		Files:     msg.Files,
		OK:        err == nil,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	s.publish(events.TopicGitAction, ev)
}

// handleAutomationResult records a completed run, files an inbox item, and
// notifies the reporting session. Persistence failures are logged; the
// client still receives its notice when the item could be created.
func (s *Server) handleAutomationResult(sess *session.Session, msg *protocol.Inbound) {
	s.setRunning(msg.AutomationID, false)

	rec := automation.RunRecord{
		AutomationID: msg.AutomationID,
		At:           time.Now().UTC(),
		Success:      msg.Success,
		Output:       msg.Output,
	}
	if err := s.store.RecordRun(s.ctx, rec); err != nil {
		slog.Error("server: record run failed", "automation_id", msg.AutomationID, "err", err)
	}

	item, err := automation.CreateInboxItem(msg.AutomationID, automation.RunResult{
		Success: msg.Success,
		Output:  msg.Output,
		Error:   msg.Error,
	}, msg.Title)
	if err != nil {
		slog.Error("server: create inbox item failed", "automation_id", msg.AutomationID, "err", err)
		return
	}
	if err := s.store.SaveInboxItem(s.ctx, item); err != nil {
		slog.Error("server: save inbox item failed", "inbox_id", item.ID, "err", err)
	}

	sess.Send(protocol.NewInboxNotice(item))
	s.publish(events.TopicAutomationRun, events.AutomationRun{
		AutomationID: msg.AutomationID,
		Success:      msg.Success,
		InboxID:      item.ID,
	})
}

// MarkRunning flags an automation as in flight. The flag clears when its
// result is reported.
func (s *Server) MarkRunning(automationID string) {
	s.setRunning(automationID, true)
}

func (s *Server) setRunning(automationID string, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if running {
		s.running[automationID] = true
	} else {
		delete(s.running, automationID)
	}
}

func (s *Server) runningSnapshot() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.running))
	for id := range s.running {
		out[id] = true
	}
	return out
}
