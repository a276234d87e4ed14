package automation

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/groblegark/dashd/internal/idgen"
)

// maxSummaryLen caps inbox summaries; full output stays in the embedded result.
const maxSummaryLen = 200

// Inbox item read status.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// RunResult is the raw outcome of one automation run.
type RunResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// InboxItem is the client-facing summary of one automation run.
type InboxItem struct {
	ID           string    `json:"id"`
	AutomationID string    `json:"automation_id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Status       string    `json:"status"`
	Result       RunResult `json:"result"`
	Timestamp    time.Time `json:"timestamp"`
}

// CreateInboxItem builds an unread inbox item for a completed run. The title
// falls back to the automation ID; the summary is the truncated output on
// success or the error message on failure.
func CreateInboxItem(automationID string, result RunResult, title string) (*InboxItem, error) {
	id, err := idgen.Inbox()
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = automationID
	}
	return &InboxItem{
		ID:           id,
		AutomationID: automationID,
		Title:        title,
		Summary:      summarize(result),
		Status:       StatusUnread,
		Result:       result,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func summarize(r RunResult) string {
	if r.Success {
		if r.Output == "" {
			return "Completed successfully"
		}
		return truncate(r.Output, maxSummaryLen)
	}
	if r.Error == "" {
		return "Failed"
	}
	return r.Error
}

// truncate keeps at most n characters, cutting on a rune boundary so a
// multi-byte character straddling the limit is dropped whole.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// RunRecord is one entry of an automation's run history, most recent first.
type RunRecord struct {
	AutomationID string    `json:"automation_id"`
	At           time.Time `json:"at"`
	Success      bool      `json:"success"`
	Output       string    `json:"output,omitempty"`
}

// HistoryProvider is the run-history collaborator consulted during list
// enrichment.
type HistoryProvider interface {
	GetRunHistory(ctx context.Context, automationID string) ([]RunRecord, error)
}

// ListEntry is one automation decorated with live status and last-run data.
type ListEntry struct {
	*Automation
	Status         string     `json:"status"`
	NextRun        *NextRun   `json:"next_run,omitempty"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	LastRunSuccess *bool      `json:"last_run_success,omitempty"`
}

// EnrichList decorates each automation with its status (disabled, running,
// or idle), its computed next run, and its most recent run outcome. History
// lookup failures leave the last-run fields empty rather than failing the
// whole listing.
func EnrichList(ctx context.Context, automations []*Automation, running map[string]bool, history HistoryProvider) []ListEntry {
	entries := make([]ListEntry, 0, len(automations))
	now := time.Now()

	for _, a := range automations {
		e := ListEntry{Automation: a, NextRun: CalculateNextRun(a, now)}
		switch {
		case !a.Enabled:
			e.Status = "disabled"
		case running[a.ID]:
			e.Status = "running"
		default:
			e.Status = "idle"
		}

		if history != nil {
			if recs, err := history.GetRunHistory(ctx, a.ID); err == nil && len(recs) > 0 {
				at := recs[0].At
				success := recs[0].Success
				e.LastRun = &at
				e.LastRunSuccess = &success
			}
		}
		entries = append(entries, e)
	}
	return entries
}
