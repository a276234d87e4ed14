package postgres

import (
	"context"
	"fmt"

	"github.com/groblegark/dashd/internal/automation"
)

// historyLimit caps how many run records a single history query returns.
// The dashboard only ever shows the most recent outcomes.
const historyLimit = 50

func (s *PostgresStore) RecordRun(ctx context.Context, rec automation.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO automation_runs (automation_id, at, success, output)
		VALUES ($1, $2, $3, $4)`,
		rec.AutomationID, rec.At, rec.Success, rec.Output,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRunHistory(ctx context.Context, automationID string) ([]automation.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT automation_id, at, success, output
		FROM automation_runs
		WHERE automation_id = $1
		ORDER BY at DESC
		LIMIT $2`,
		automationID, historyLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("get run history: %w", err)
	}
	defer rows.Close()

	var recs []automation.RunRecord
	for rows.Next() {
		var r automation.RunRecord
		if err := rows.Scan(&r.AutomationID, &r.At, &r.Success, &r.Output); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *PostgresStore) SaveInboxItem(ctx context.Context, item *automation.InboxItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inbox_items (id, automation_id, title, summary, status, success, output, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.AutomationID, item.Title, item.Summary, item.Status,
		item.Result.Success, item.Result.Output, item.Result.Error, item.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("save inbox item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListInbox(ctx context.Context) ([]*automation.InboxItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, automation_id, title, summary, status, success, output, error, created_at
		FROM inbox_items
		ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	defer rows.Close()

	var items []*automation.InboxItem
	for rows.Next() {
		var item automation.InboxItem
		if err := rows.Scan(
			&item.ID, &item.AutomationID, &item.Title, &item.Summary, &item.Status,
			&item.Result.Success, &item.Result.Output, &item.Result.Error, &item.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan inbox item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) MarkInboxRead(ctx context.Context, id string, read bool) error {
	status := automation.StatusUnread
	if read {
		status = automation.StatusRead
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE inbox_items SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("mark inbox read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("inbox item not found: %s", id)
	}
	return nil
}
