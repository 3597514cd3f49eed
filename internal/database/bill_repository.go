package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

const timestampLayout = time.RFC3339Nano

// BillRepository handles database operations for bills
type BillRepository struct {
	db *DB
}

func NewBillRepository(db *DB) *BillRepository {
	return &BillRepository{db: db}
}

// UpsertBill stores a bill, replacing an earlier copy with the same identifier.
func (r *BillRepository) UpsertBill(ctx context.Context, bill *civic.Bill) error {
	data, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("failed to marshal bill: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bills (
			jurisdiction, identifier, legislative_session, classification, title, data, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (jurisdiction, identifier) DO UPDATE SET
			legislative_session = excluded.legislative_session,
			classification = excluded.classification,
			title = excluded.title,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, bill.Jurisdiction, bill.Identifier, bill.LegislativeSession, string(bill.Classification),
		bill.Title, string(data), time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to store bill: %w", err)
	}

	return nil
}

// GetBill returns the bill with identifier, or nil when there is none.
func (r *BillRepository) GetBill(jurisdiction, identifier string) (*Bill, error) {
	row := r.db.QueryRow(`
		SELECT jurisdiction, identifier, legislative_session, classification, title, data, updated_at
		FROM bills
		WHERE jurisdiction = ? AND identifier = ?
	`, jurisdiction, identifier)

	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

// ListBills returns the bills of a jurisdiction, newest session first. An
// empty session lists all sessions; a non-positive limit lists everything.
func (r *BillRepository) ListBills(jurisdiction, session string, limit int) ([]Bill, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(`
		SELECT jurisdiction, identifier, legislative_session, classification, title, data, updated_at
		FROM bills
		WHERE jurisdiction = ?
		  AND (? = '' OR legislative_session = ?)
		ORDER BY legislative_session DESC, identifier ASC
		LIMIT ?
	`, jurisdiction, session, session, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill row: %w", err)
		}
		bills = append(bills, *bill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bill rows: %w", err)
	}

	return bills, nil
}

// GetBillCount returns the number of stored bills. An empty jurisdiction
// counts all of them.
func (r *BillRepository) GetBillCount(jurisdiction string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM bills WHERE ? = '' OR jurisdiction = ?", jurisdiction, jurisdiction).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get bill count: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(s scanner) (*Bill, error) {
	var bill Bill
	var data, updatedAt string

	err := s.Scan(&bill.Jurisdiction, &bill.Identifier, &bill.LegislativeSession,
		&bill.Classification, &bill.Title, &data, &updatedAt)
	if err != nil {
		return nil, err
	}

	bill.Data = json.RawMessage(data)
	bill.UpdatedAt = parseTimestamp(updatedAt)
	return &bill, nil
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
