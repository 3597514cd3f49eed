package database

import (
	"encoding/json"
	"time"
)

// Bill is a stored bill row. Data holds the bill as emitted.
type Bill struct {
	Jurisdiction       string          `json:"jurisdiction"`
	Identifier         string          `json:"identifier"`
	LegislativeSession string          `json:"legislative_session"`
	Classification     string          `json:"classification"`
	Title              string          `json:"title"`
	Data               json.RawMessage `json:"data"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type Vote struct {
	ID             string          `json:"id"` // sha256 of jurisdiction, bill and source
	Jurisdiction   string          `json:"jurisdiction"`
	BillIdentifier string          `json:"bill_identifier"`
	StartDate      string          `json:"start_date"`
	Result         string          `json:"result"`
	Data           json.RawMessage `json:"data"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Event struct {
	Jurisdiction string          `json:"jurisdiction"`
	ExternalID   string          `json:"external_id"`
	Name         string          `json:"name"`
	StartDate    time.Time       `json:"start_date"`
	Status       string          `json:"status"`
	Data         json.RawMessage `json:"data"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Counts summarizes the stored entities of one jurisdiction, or of all of
// them when Jurisdiction is empty.
type Counts struct {
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Bills        int    `json:"bills"`
	Votes        int    `json:"votes"`
	Events       int    `json:"events"`
}
