package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

// VoteRepository handles database operations for votes
type VoteRepository struct {
	db *DB
}

func NewVoteRepository(db *DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// VoteID derives the stable id of a vote from its jurisdiction, bill and
// first source.
func VoteID(vote *civic.Vote) string {
	source := ""
	if len(vote.Sources) > 0 {
		source = vote.Sources[0].URL
	}

	sum := sha256.Sum256([]byte(vote.Jurisdiction + "|" + vote.BillIdentifier + "|" + source))
	return hex.EncodeToString(sum[:])
}

// UpsertVote stores a vote and returns its id.
func (r *VoteRepository) UpsertVote(ctx context.Context, vote *civic.Vote) (string, error) {
	data, err := json.Marshal(vote)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vote: %w", err)
	}

	id := VoteID(vote)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO votes (id, jurisdiction, bill_identifier, start_date, result, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			start_date = excluded.start_date,
			result = excluded.result,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, id, vote.Jurisdiction, vote.BillIdentifier, vote.StartDate, vote.Result,
		string(data), time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return "", fmt.Errorf("failed to store vote: %w", err)
	}

	return id, nil
}

// ListVotesForBill returns the votes taken on a bill in date order.
func (r *VoteRepository) ListVotesForBill(jurisdiction, identifier string) ([]Vote, error) {
	rows, err := r.db.Query(`
		SELECT id, jurisdiction, bill_identifier, start_date, result, data, updated_at
		FROM votes
		WHERE jurisdiction = ? AND bill_identifier = ?
		ORDER BY start_date ASC, id ASC
	`, jurisdiction, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	votes := []Vote{}
	for rows.Next() {
		var vote Vote
		var data, updatedAt string
		err := rows.Scan(&vote.ID, &vote.Jurisdiction, &vote.BillIdentifier,
			&vote.StartDate, &vote.Result, &data, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote row: %w", err)
		}
		vote.Data = json.RawMessage(data)
		vote.UpdatedAt = parseTimestamp(updatedAt)
		votes = append(votes, vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote rows: %w", err)
	}

	return votes, nil
}

func (r *VoteRepository) GetVoteCount(jurisdiction string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM votes WHERE ? = '' OR jurisdiction = ?", jurisdiction, jurisdiction).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get vote count: %w", err)
	}
	return count, nil
}
