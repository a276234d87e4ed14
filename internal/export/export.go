// Package export periodically snapshots run history and inbox items as JSONL
// and ships the snapshot to configured destinations.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/groblegark/dashd/internal/automation"
	"github.com/groblegark/dashd/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version         string    `json:"version"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	AutomationCount int       `json:"automation_count"`
	InboxCount      int       `json:"inbox_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes the run history of each automation plus all inbox items
// from the store as JSONL to w.
func ExportJSONL(ctx context.Context, s store.Store, automations []*automation.Automation, w io.Writer) error {
	items, err := s.ListInbox(ctx)
	if err != nil {
		return fmt.Errorf("list inbox: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:         "1",
		Type:            "header",
		Timestamp:       time.Now().UTC(),
		AutomationCount: len(automations),
		InboxCount:      len(items),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, a := range automations {
		recs, err := s.GetRunHistory(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("get run history for %s: %w", a.ID, err)
		}
		for _, r := range recs {
			if err := enc.Encode(record{Type: "run", Data: r}); err != nil {
				return fmt.Errorf("encode run for %s: %w", a.ID, err)
			}
		}
	}

	for _, item := range items {
		if err := enc.Encode(record{Type: "inbox_item", Data: item}); err != nil {
			return fmt.Errorf("encode inbox item %s: %w", item.ID, err)
		}
	}

	return nil
}
