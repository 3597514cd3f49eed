package civic

import (
	"context"
	"time"
)

type Kind string

const (
	KindBill  Kind = "bill"
	KindVote  Kind = "vote"
	KindEvent Kind = "event"
)

// Entity is a canonical record handed to the persistence layer.
type Entity interface {
	EntityKind() Kind
}

// Emitter receives normalized entities one at a time.
type Emitter interface {
	Emit(ctx context.Context, entity Entity) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ctx context.Context, entity Entity) error

func (f EmitterFunc) Emit(ctx context.Context, entity Entity) error {
	return f(ctx, entity)
}

type BillClassification string

const (
	BillTypeBill       BillClassification = "bill"
	BillTypeResolution BillClassification = "resolution"
	BillTypePetition   BillClassification = "petition"
	BillTypeNone       BillClassification = "none"
)

// Valid reports whether c belongs to the bill classification vocabulary.
func (c BillClassification) Valid() bool {
	switch c {
	case BillTypeBill, BillTypeResolution, BillTypePetition, BillTypeNone:
		return true
	}
	return false
}

const (
	SponsorshipPrimary = "Primary"
	SponsorshipRegular = "Regular"

	EntityPerson       = "person"
	EntityOrganization = "organization"

	MediaTypePDF  = "application/pdf"
	MediaTypeHTML = "text/html"

	StatusCancelled = "cancelled"
)

type Source struct {
	URL  string `json:"url"`
	Note string `json:"note,omitempty"`
}

type Link struct {
	Note      string `json:"note"`
	URL       string `json:"url"`
	MediaType string `json:"media_type,omitempty"`
	Type      string `json:"type,omitempty"`
}

type Sponsorship struct {
	Name           string `json:"name"`
	EntityType     string `json:"entity_type"`
	Classification string `json:"classification"`
	Primary        bool   `json:"primary"`
}

type Action struct {
	Description    string `json:"description"`
	Date           string `json:"date"` // YYYY-MM-DD in the jurisdiction timezone
	Organization   string `json:"organization"`
	Classification string `json:"classification,omitempty"`
}

type Bill struct {
	Jurisdiction       string             `json:"jurisdiction"`
	Identifier         string             `json:"identifier"`
	Title              string             `json:"title"`
	LegislativeSession string             `json:"legislative_session"`
	Classification     BillClassification `json:"classification"`
	FromOrganization   string             `json:"from_organization"`
	Sponsorships       []Sponsorship      `json:"sponsorships"`
	Versions           []Link             `json:"versions"`
	Documents          []Link             `json:"documents"`
	Actions            []Action           `json:"actions"`
	Sources            []Source           `json:"sources"`
}

func (b *Bill) EntityKind() Kind { return KindBill }

func (b *Bill) AddSource(url, note string) {
	b.Sources = append(b.Sources, Source{URL: url, Note: note})
}

type VotePosition struct {
	Voter  string `json:"voter"`
	Option string `json:"option"`
}

type VoteCount struct {
	Option string `json:"option"`
	Value  int    `json:"value"`
}

type Vote struct {
	Jurisdiction       string         `json:"jurisdiction"`
	LegislativeSession string         `json:"legislative_session"`
	MotionText         string         `json:"motion_text"`
	Organization       string         `json:"organization"`
	Result             string         `json:"result"`
	StartDate          string         `json:"start_date"`
	BillIdentifier     string         `json:"bill_identifier"`
	Positions          []VotePosition `json:"positions"`
	Counts             []VoteCount    `json:"counts"`
	Sources            []Source       `json:"sources"`

	// Bill is the parent bill. It is not owned by the vote and not serialized.
	Bill *Bill `json:"-"`
}

func (v *Vote) EntityKind() Kind { return KindVote }

type Participant struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
}

type AgendaItem struct {
	Title          string `json:"title"`
	BillIdentifier string `json:"bill_identifier,omitempty"`
	Media          []Link `json:"media,omitempty"`
}

type Event struct {
	Jurisdiction string        `json:"jurisdiction"`
	ExternalID   string        `json:"external_id"`
	Name         string        `json:"name"`
	StartDate    time.Time     `json:"start_date"`
	Description  string        `json:"description,omitempty"`
	LocationName string        `json:"location_name"`
	Status       string        `json:"status"`
	Media        []Link        `json:"media"`
	Documents    []Link        `json:"documents"`
	Participants []Participant `json:"participants"`
	AgendaItems  []AgendaItem  `json:"agenda_items"`
	Sources      []Source      `json:"sources"`
}

func (e *Event) EntityKind() Kind { return KindEvent }

func (e *Event) AddSource(url, note string) {
	e.Sources = append(e.Sources, Source{URL: url, Note: note})
}

func (e *Event) AddParticipant(name, entityType string) {
	e.Participants = append(e.Participants, Participant{Name: name, EntityType: entityType})
}
