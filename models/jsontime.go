package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// JSONDate is a calendar date entered on a form ("2025-05-16"). It also
// accepts full timestamps, which some clients send for date pickers.
type JSONDate time.Time

// NewJSONDate truncates t to its calendar day.
func NewJSONDate(t time.Time) *JSONDate {
	d := JSONDate(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	return &d
}

// UnmarshalJSON parses "2006-01-02", RFC3339 (with or without fraction) or the
// timezone-less micro/millisecond forms. An empty string yields the zero date.
func (jd *JSONDate) UnmarshalJSON(b []byte) error {
	// strip quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*jd = JSONDate(time.Time{})
		return nil
	}

	layouts := []string{
		dateLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			*jd = JSONDate(t)
			return nil
		}
	}
	return fmt.Errorf("JSONDate.UnmarshalJSON: cannot parse %q", s)
}

// MarshalJSON always emits the date-only form; the zero date is null.
func (jd JSONDate) MarshalJSON() ([]byte, error) {
	if jd.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(jd.String())
}

func (jd JSONDate) IsZero() bool {
	return time.Time(jd).IsZero()
}

func (jd JSONDate) String() string {
	if jd.IsZero() {
		return ""
	}
	return time.Time(jd).Format(dateLayout)
}
