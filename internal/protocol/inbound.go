package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound is a parsed client-to-server message. Only the fields relevant to
// the declared type are populated; the taxonomy is extensible, so unknown
// types parse successfully and are rejected by the dispatcher.
type Inbound struct {
	Type string `json:"type"`

	// Git action payload (stage/unstage/revert/commit/diff).
	Files   []string `json:"files,omitempty"`
	Message string   `json:"message,omitempty"`
	File    string   `json:"file,omitempty"`
	Staged  bool     `json:"staged,omitempty"`

	// Team metrics relay payload.
	TraceID          string         `json:"trace_id,omitempty"`
	PerAgent         map[string]any `json:"per_agent,omitempty"`
	PerGate          map[string]any `json:"per_gate,omitempty"`
	TeamCompletionMS any            `json:"team_completion_ms,omitempty"`
	ComputedAt       any            `json:"computed_at,omitempty"`

	// Automation run report payload.
	AutomationID string `json:"automation_id,omitempty"`
	Success      bool   `json:"success,omitempty"`
	Output       string `json:"output,omitempty"`
	Error        string `json:"error,omitempty"`
	Title        string `json:"title,omitempty"`
}

// ParseInbound decodes a client message payload. A payload without a type
// discriminant is an invalid protocol message.
func ParseInbound(data []byte) (*Inbound, error) {
	var m Inbound
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid protocol message: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("invalid protocol message: missing type")
	}
	return &m, nil
}

// Metrics assembles the team-metrics payload carried by an inbound relay.
func (m *Inbound) Metrics() *TeamMetrics {
	return &TeamMetrics{
		PerAgent:         m.PerAgent,
		PerGate:          m.PerGate,
		TeamCompletionMS: m.TeamCompletionMS,
		ComputedAt:       m.ComputedAt,
	}
}
