package postgres

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/groblegark/dashd/internal/automation"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PostgresStore{db: db}, mock
}

func TestRecordRun(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO automation_runs").
		WithArgs("daily-report", at, true, "done").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.RecordRun(context.Background(), automation.RunRecord{
		AutomationID: "daily-report",
		At:           at,
		Success:      true,
		Output:       "done",
	})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetRunHistory(t *testing.T) {
	s, mock := newMockStore(t)
	newer := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	rows := sqlmock.NewRows([]string{"automation_id", "at", "success", "output"}).
		AddRow("daily-report", newer, true, "").
		AddRow("daily-report", older, false, "boom")

	mock.ExpectQuery("SELECT automation_id, at, success, output").
		WithArgs("daily-report", historyLimit).
		WillReturnRows(rows)

	recs, err := s.GetRunHistory(context.Background(), "daily-report")
	if err != nil {
		t.Fatalf("GetRunHistory: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if !recs[0].At.Equal(newer) {
		t.Errorf("expected newest record first, got %v", recs[0].At)
	}
	if recs[1].Success || recs[1].Output != "boom" {
		t.Errorf("unexpected second record: %+v", recs[1])
	}
}

func TestSaveAndListInbox(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	item := &automation.InboxItem{
		ID:           "inbox_abc123",
		AutomationID: "daily-report",
		Title:        "Daily report",
		Summary:      "Completed successfully",
		Status:       automation.StatusUnread,
		Result:       automation.RunResult{Success: true},
		Timestamp:    created,
	}

	mock.ExpectExec("INSERT INTO inbox_items").
		WithArgs(item.ID, item.AutomationID, item.Title, item.Summary, item.Status,
			true, "", "", created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.SaveInboxItem(context.Background(), item); err != nil {
		t.Fatalf("SaveInboxItem: %v", err)
	}

	rows := sqlmock.NewRows([]string{
		"id", "automation_id", "title", "summary", "status",
		"success", "output", "error", "created_at",
	}).AddRow(item.ID, item.AutomationID, item.Title, item.Summary, item.Status,
		true, "", "", created)

	mock.ExpectQuery("SELECT id, automation_id, title, summary").
		WillReturnRows(rows)

	items, err := s.ListInbox(context.Background())
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("unexpected inbox: %+v", items)
	}
	if !items[0].Result.Success {
		t.Error("expected success result")
	}
}

func TestMarkInboxRead(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE inbox_items SET status").
		WithArgs(automation.StatusRead, "inbox_abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.MarkInboxRead(context.Background(), "inbox_abc123", true); err != nil {
		t.Fatalf("MarkInboxRead: %v", err)
	}
}

func TestMarkInboxReadUnknownItem(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE inbox_items SET status").
		WithArgs(automation.StatusRead, "inbox_nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.MarkInboxRead(context.Background(), "inbox_nope", true); err == nil {
		t.Error("expected error for unknown item")
	}
}
