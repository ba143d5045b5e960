package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layouts accepted when reading persisted timestamps. Data files written by
// earlier bot versions carry zone-less ISO 8601 times in UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads an RFC 3339 time, or a zone-less ISO 8601 time as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// storedTime decodes with ParseTimestamp. Records still encode plain time.Time.
type storedTime time.Time

func (st *storedTime) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*st = storedTime(t)
	return nil
}

func (st *storedTime) timePtr() *time.Time {
	if st == nil {
		return nil
	}
	t := time.Time(*st)
	return &t
}
