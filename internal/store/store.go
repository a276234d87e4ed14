// Package store persists automation run history and inbox items. The engine
// itself treats persistence as a collaborator: everything here is replaceable
// by the in-memory implementation for single-process use.
package store

import (
	"context"

	"github.com/groblegark/dashd/internal/automation"
)

// Store is the run-history and inbox persistence interface.
type Store interface {
	// RecordRun appends one run record for an automation.
	RecordRun(ctx context.Context, rec automation.RunRecord) error

	// GetRunHistory returns an automation's run records, most recent first.
	GetRunHistory(ctx context.Context, automationID string) ([]automation.RunRecord, error)

	// SaveInboxItem persists a freshly created inbox item.
	SaveInboxItem(ctx context.Context, item *automation.InboxItem) error

	// ListInbox returns all inbox items, most recent first.
	ListInbox(ctx context.Context) ([]*automation.InboxItem, error)

	// MarkInboxRead toggles an item's read status.
	MarkInboxRead(ctx context.Context, id string, read bool) error

	Close() error
}

// Compile-time check that the memory store satisfies the interface.
var _ Store = (*MemoryStore)(nil)
