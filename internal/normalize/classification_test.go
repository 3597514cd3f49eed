package normalize

import (
	"errors"
	"testing"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
)

func TestTablesBillType(t *testing.T) {
	tables, err := NewTables(loadJurisdiction(t, "nyc").Bills)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		label    string
		expected civic.BillClassification
	}{
		{"Introduction", civic.BillTypeBill},
		{"Resolution", civic.BillTypeResolution},
		{"Petition", civic.BillTypePetition},
		{"Oversight", civic.BillTypeNone},
		{"Mayor's Message", civic.BillTypeNone},
	}

	for _, tt := range tests {
		got, err := tables.BillType(tt.label)
		if err != nil {
			t.Errorf("Unexpected error for %q: %v", tt.label, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("Expected %s for %q, got %s", tt.expected, tt.label, got)
		}
	}

	_, err = tables.BillType("Local Law")
	if !errors.Is(err, ErrUnknownClassification) {
		t.Fatalf("Expected ErrUnknownClassification, got %v", err)
	}

	var unknown *UnknownClassificationError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected *UnknownClassificationError, got %T", err)
	}
	if unknown.Label != "Local Law" || unknown.Table != "bill type" {
		t.Errorf("Unexpected error details: %+v", unknown)
	}
}

func TestTablesAction(t *testing.T) {
	tables, err := NewTables(loadJurisdiction(t, "nyc").Bills)
	if err != nil {
		t.Fatal(err)
	}

	code, err := tables.Action("Introduced by Council")
	if err != nil || code != "introduction" {
		t.Errorf("Expected introduction, got %q (%v)", code, err)
	}

	code, err = tables.Action("Hearing Held by Committee")
	if err != nil || code != "" {
		t.Errorf("Expected known uncategorized action, got %q (%v)", code, err)
	}

	code, err = tables.Action("Approved with Modifications and Referred to the City Planning Commission pursuant to Rule 11.70(b) of the Rules of the Council and Section 197-(d) of the New York City Charter.")
	if err != nil || code != "" {
		t.Errorf("Expected long label to be known, got %q (%v)", code, err)
	}

	code, err = tables.Action("Vetoed by Mayor")
	if !errors.Is(err, ErrUnknownClassification) {
		t.Errorf("Expected ErrUnknownClassification, got %v", err)
	}
	if code != "" {
		t.Errorf("Expected empty code for unknown action, got %q", code)
	}
}

func TestTablesVoteLookups(t *testing.T) {
	tables, err := NewTables(loadJurisdiction(t, "nyc").Bills)
	if err != nil {
		t.Fatal(err)
	}

	options := map[string]string{
		"Affirmative": "yes",
		"NEGATIVE":    "no",
		"Medical":     "absent",
		" absent ":    "absent",
	}
	for label, expected := range options {
		got, err := tables.VoteOption(label)
		if err != nil {
			t.Errorf("Unexpected error for %q: %v", label, err)
		}
		if got != expected {
			t.Errorf("Expected %s for %q, got %s", expected, label, got)
		}
	}

	got, err := tables.VoteOption("Excused")
	if !errors.Is(err, ErrUnknownClassification) || got != VoteOptionOther {
		t.Errorf("Expected other with error, got %q (%v)", got, err)
	}

	got, err = tables.VoteResult("Pass")
	if err != nil || got != "pass" {
		t.Errorf("Expected pass, got %q (%v)", got, err)
	}

	got, err = tables.VoteResult("Carried")
	if !errors.Is(err, ErrUnknownClassification) || got != "carried" {
		t.Errorf("Expected lowercased raw result with error, got %q (%v)", got, err)
	}
}

func TestNewTablesInvalidCode(t *testing.T) {
	_, err := NewTables(jurisdiction.BillConfig{
		Types: map[string]string{"Ordinance": "law"},
	})
	if err == nil {
		t.Error("Expected error for invalid bill code")
	}
}
