package civic

import (
	"encoding/json"
	"testing"
)

func TestRawRecordString(t *testing.T) {
	var record RawRecord
	err := json.Unmarshal([]byte(`{"EventId": 1234, "Title": "Budget", "Flag": true, "Empty": null}`), &record)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key      string
		expected string
	}{
		{"EventId", "1234"},
		{"Title", "Budget"},
		{"Flag", "true"},
		{"Empty", ""},
		{"Missing", ""},
	}

	for _, tt := range tests {
		if got := record.String(tt.key); got != tt.expected {
			t.Errorf("Expected %q for key %s, got %q", tt.expected, tt.key, got)
		}
	}
}

func TestRawRecordNonBreakingSpaceKeys(t *testing.T) {
	record := RawRecord{
		"File #": "Int 0001-2015",
		"File #":      "wrong",
	}

	if got := record.String(KeyFileNumber); got != "Int 0001-2015" {
		t.Errorf("Expected exact NBSP key match, got %q", got)
	}
}

func TestRawRecordNestedRecords(t *testing.T) {
	var record RawRecord
	err := json.Unmarshal([]byte(`{
		"Meeting video": "Not available",
		"Meeting Details": {"label": "Meeting details", "url": "https://example.com/md"},
		"Sponsors": [{"label": "A"}, "junk", {"label": "B"}]
	}`), &record)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := record.Record("Meeting video"); ok {
		t.Error("Expected NotAvailable marker not to be a record")
	}

	details, ok := record.Record("Meeting Details")
	if !ok {
		t.Fatal("Expected Meeting Details to be a record")
	}
	if details.String("url") != "https://example.com/md" {
		t.Errorf("Expected details url, got %q", details.String("url"))
	}

	sponsors := record.Records("Sponsors")
	if len(sponsors) != 2 {
		t.Fatalf("Expected 2 sponsor records, got %d", len(sponsors))
	}
	if sponsors[1].String("label") != "B" {
		t.Errorf("Expected second sponsor B, got %q", sponsors[1].String("label"))
	}

	if record.Records("Missing") != nil {
		t.Error("Expected nil for missing list")
	}
}

func TestRawRecordStrings(t *testing.T) {
	record := RawRecord{
		"status": []any{"confirmed", "Room change to 3rd floor"},
		"single": "passed",
	}

	status := record.Strings("status")
	if len(status) != 2 || status[1] != "Room change to 3rd floor" {
		t.Errorf("Unexpected status tuple: %v", status)
	}

	single := record.Strings("single")
	if len(single) != 1 || single[0] != "passed" {
		t.Errorf("Unexpected single status: %v", single)
	}
}
