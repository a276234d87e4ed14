// Package protocol defines the typed message vocabulary exchanged between
// the dashboard engine and its UI client.
//
// A message is a flat field mapping with a "type" discriminant, serialized
// as JSON text before framing. Server-originated messages always carry an
// ISO-8601 timestamp.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inbound message types (client → server).
const (
	TypeStage            = "stage"
	TypeUnstage          = "unstage"
	TypeRevert           = "revert"
	TypeCommit           = "commit"
	TypeStatus           = "status"
	TypeDiff             = "diff"
	TypeAutomations      = "automations"
	TypeAutomationResult = "automation_result"
	TypeTeamMetrics      = "team_metrics"
)

// Outbound message types (server → client).
const (
	TypeSessionState   = "session_state"
	TypeActionResult   = "action_result"
	TypeGitStatus      = "git_status"
	TypeFileDiff       = "file_diff"
	TypeAutomationList = "automation_list"
	TypeInboxNotice    = "inbox_notice"
)

// Message is one unit on the wire: a flat mapping with a "type" field.
// Messages are constructed per event and never mutated after creation.
type Message map[string]any

// Marshal serializes a message to its transmittable text form.
func Marshal(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal %v message: %w", m["type"], err)
	}
	return data, nil
}

// now is swapped out by tests that pin the timestamp.
var now = time.Now

func timestamp() string {
	return now().UTC().Format(time.RFC3339)
}

// NewSessionState notifies the client that a session's state tag changed.
func NewSessionState(sessionID, state string) Message {
	return Message{
		"type":       TypeSessionState,
		"session_id": sessionID,
		"state":      state,
		"timestamp":  timestamp(),
	}
}

// TeamMetrics is the aggregate payload carried by a team-metrics report.
// Fields may be nil; the constructor degrades to a defaulted shape.
type TeamMetrics struct {
	PerAgent         map[string]any `json:"per_agent"`
	PerGate          map[string]any `json:"per_gate"`
	TeamCompletionMS any            `json:"team_completion_ms"`
	ComputedAt       any            `json:"computed_at"`
}

// NewTeamMetrics builds a team-metrics report. A nil metrics argument yields
// the defaulted shape: empty per-agent and per-gate mappings, passthrough
// completion and computation fields.
func NewTeamMetrics(traceID string, metrics *TeamMetrics) Message {
	m := Message{
		"type":               TypeTeamMetrics,
		"trace_id":           traceID,
		"per_agent":          map[string]any{},
		"per_gate":           map[string]any{},
		"team_completion_ms": nil,
		"computed_at":        nil,
		"timestamp":          timestamp(),
	}
	if metrics == nil {
		return m
	}
	if metrics.PerAgent != nil {
		m["per_agent"] = metrics.PerAgent
	}
	if metrics.PerGate != nil {
		m["per_gate"] = metrics.PerGate
	}
	m["team_completion_ms"] = metrics.TeamCompletionMS
	m["computed_at"] = metrics.ComputedAt
	return m
}

// NewActionResult reports the outcome of a client-requested git action.
// Failures carry ok:false and a descriptive error; this is the uniform
// result shape used across the surrounding system.
func NewActionResult(action string, err error) Message {
	m := Message{
		"type":      TypeActionResult,
		"action":    action,
		"ok":        err == nil,
		"timestamp": timestamp(),
	}
	if err != nil {
		m["error"] = err.Error()
	}
	return m
}

// NewGitStatus wraps a parsed status snapshot.
func NewGitStatus(status any) Message {
	return Message{
		"type":      TypeGitStatus,
		"status":    status,
		"timestamp": timestamp(),
	}
}

// NewFileDiff carries the raw diff text for one file plus its line stats.
func NewFileDiff(file string, staged bool, diff string, stats any) Message {
	return Message{
		"type":      TypeFileDiff,
		"file":      file,
		"staged":    staged,
		"diff":      diff,
		"stats":     stats,
		"timestamp": timestamp(),
	}
}

// NewAutomationList carries the enriched automation listing.
func NewAutomationList(items any) Message {
	return Message{
		"type":        TypeAutomationList,
		"automations": items,
		"timestamp":   timestamp(),
	}
}

// NewInboxNotice announces a freshly created inbox item.
func NewInboxNotice(item any) Message {
	return Message{
		"type":      TypeInboxNotice,
		"item":      item,
		"timestamp": timestamp(),
	}
}
