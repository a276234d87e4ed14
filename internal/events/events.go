// Package events defines the dashboard's event bus: topic names, event
// payloads, and the publisher/subscriber interfaces. Events are advisory;
// the engine works identically with the no-op publisher.
package events

import "context"

// Event topics.
const (
	TopicSessionCreated = "dashd.session.created"
	TopicSessionClosed  = "dashd.session.closed"
	TopicSessionState   = "dashd.session.state"

	TopicGitAction = "dashd.git.action"

	TopicAutomationRun = "dashd.automation.run"
)

// SessionCreated is emitted when a dashboard connection is registered.
type SessionCreated struct {
	SessionID   string `json:"session_id"`
	ProjectRoot string `json:"project_root"`
}

// SessionClosed is emitted when a session disconnects or is swept as expired.
type SessionClosed struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"` // "disconnect" or "expired"
}

// SessionStateChanged is emitted when a session's state tag changes.
type SessionStateChanged struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

// GitAction is emitted after a git action has been attempted.
type GitAction struct {
	SessionID string   `json:"session_id"`
	Action    string   `json:"action"`
	Files     []string `json:"files,omitempty"`
	OK        bool     `json:"ok"`
	Error     string   `json:"error,omitempty"`
}

// AutomationRun is emitted when an automation run result has been recorded.
type AutomationRun struct {
	AutomationID string `json:"automation_id"`
	Success      bool   `json:"success"`
	InboxID      string `json:"inbox_id,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
