package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/groblegark/dashd/internal/automation"
)

// MemoryStore keeps run history and inbox items in process memory. It is the
// default when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string][]automation.RunRecord // automation ID → records, newest first
	inbox []*automation.InboxItem           // newest first
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string][]automation.RunRecord)}
}

func (s *MemoryStore) RecordRun(_ context.Context, rec automation.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rec.AutomationID] = append([]automation.RunRecord{rec}, s.runs[rec.AutomationID]...)
	return nil
}

func (s *MemoryStore) GetRunHistory(_ context.Context, automationID string) ([]automation.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.runs[automationID]
	out := make([]automation.RunRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out, nil
}

func (s *MemoryStore) SaveInboxItem(_ context.Context, item *automation.InboxItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = append([]*automation.InboxItem{item}, s.inbox...)
	return nil
}

func (s *MemoryStore) ListInbox(_ context.Context) ([]*automation.InboxItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*automation.InboxItem, len(s.inbox))
	copy(out, s.inbox)
	return out, nil
}

func (s *MemoryStore) MarkInboxRead(_ context.Context, id string, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.inbox {
		if item.ID == id {
			if read {
				item.Status = automation.StatusRead
			} else {
				item.Status = automation.StatusUnread
			}
			return nil
		}
	}
	return fmt.Errorf("inbox item not found: %s", id)
}

func (s *MemoryStore) Close() error { return nil }
