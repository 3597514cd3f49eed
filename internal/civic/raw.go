package civic

import (
	"fmt"
	"strconv"
)

// Upstream field names scraped from Legistar web pages. Several carry a
// non-breaking space and must be matched byte for byte.
const (
	KeyFileNumber    = "File #"
	KeyActionBy      = "Action By"
	KeyActionDetails = "Action Details"

	// NotAvailable is the placeholder Legistar renders in place of a link.
	NotAvailable = "Not available"
)

// RawRecord is an untyped record as produced by the fetch layer.
type RawRecord map[string]any

// EventRecord pairs a web API event with its scraped calendar row.
type EventRecord struct {
	API RawRecord
	Web RawRecord
}

// String returns the value stored under key as a string. Numbers are
// formatted without exponent so that JSON ids survive the round trip.
func (r RawRecord) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}

	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Record returns the nested mapping stored under key. It reports false when
// the value is absent or not a mapping (for example the NotAvailable marker).
func (r RawRecord) Record(key string) (RawRecord, bool) {
	return asRecord(r[key])
}

// Records returns the list of mappings stored under key, skipping elements
// that are not mappings.
func (r RawRecord) Records(key string) []RawRecord {
	switch t := r[key].(type) {
	case []RawRecord:
		return t
	case []map[string]any:
		records := make([]RawRecord, 0, len(t))
		for _, m := range t {
			records = append(records, RawRecord(m))
		}
		return records
	case []any:
		records := make([]RawRecord, 0, len(t))
		for _, v := range t {
			if rec, ok := asRecord(v); ok {
				records = append(records, rec)
			}
		}
		return records
	default:
		return nil
	}
}

// Strings returns the list of strings stored under key.
func (r RawRecord) Strings(key string) []string {
	switch t := r[key].(type) {
	case []string:
		return t
	case []any:
		values := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				values = append(values, s)
			} else if v == nil {
				values = append(values, "")
			}
		}
		return values
	case string:
		return []string{t}
	default:
		return nil
	}
}

func asRecord(v any) (RawRecord, bool) {
	switch t := v.(type) {
	case RawRecord:
		return t, true
	case map[string]any:
		return RawRecord(t), true
	default:
		return nil, false
	}
}
