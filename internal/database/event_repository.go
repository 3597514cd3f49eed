package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

// EventRepository handles database operations for events
type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// UpsertEvent stores an event, replacing an earlier copy with the same
// external id.
func (r *EventRepository) UpsertEvent(ctx context.Context, event *civic.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (jurisdiction, external_id, name, start_date, status, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (jurisdiction, external_id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			status = excluded.status,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, event.Jurisdiction, event.ExternalID, event.Name,
		event.StartDate.UTC().Format(time.RFC3339), event.Status,
		string(data), time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}

	return nil
}

// GetEvent returns the event with externalID, or nil when there is none.
func (r *EventRepository) GetEvent(jurisdiction, externalID string) (*Event, error) {
	row := r.db.QueryRow(`
		SELECT jurisdiction, external_id, name, start_date, status, data, updated_at
		FROM events
		WHERE jurisdiction = ? AND external_id = ?
	`, jurisdiction, externalID)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// ListEvents returns the events of a jurisdiction, latest first.
func (r *EventRepository) ListEvents(jurisdiction string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(`
		SELECT jurisdiction, external_id, name, start_date, status, data, updated_at
		FROM events
		WHERE jurisdiction = ?
		ORDER BY start_date DESC, external_id ASC
		LIMIT ?
	`, jurisdiction, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

func (r *EventRepository) GetEventCount(jurisdiction string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM events WHERE ? = '' OR jurisdiction = ?", jurisdiction, jurisdiction).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}

func scanEvent(s scanner) (*Event, error) {
	var event Event
	var start, data, updatedAt string

	err := s.Scan(&event.Jurisdiction, &event.ExternalID, &event.Name,
		&start, &event.Status, &data, &updatedAt)
	if err != nil {
		return nil, err
	}

	event.StartDate, _ = time.Parse(time.RFC3339, start)
	event.Data = json.RawMessage(data)
	event.UpdatedAt = parseTimestamp(updatedAt)
	return &event, nil
}
