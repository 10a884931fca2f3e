package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestJSONDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"date only", `"2025-05-16"`, "2025-05-16", true},
		{"rfc3339", `"2025-05-16T15:32:25Z"`, "2025-05-16", true},
		{"rfc3339 nano", `"2025-05-16T15:32:25.181226+02:00"`, "2025-05-16", true},
		{"micro no tz", `"2025-05-16T15:32:25.181226"`, "2025-05-16", true},
		{"milli no tz", `"2025-05-16T15:32:25.000"`, "2025-05-16", true},
		{"no fraction", `"2025-05-16T15:32:25"`, "2025-05-16", true},
		{"empty", `""`, "", true},
		{"garbage", `"16/05/2025"`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d JSONDate
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("expected error for %s", tt.input)
				}
				return
			}
			if d.String() != tt.want {
				t.Errorf("got %q, want %q", d.String(), tt.want)
			}
		})
	}
}

func TestJSONDate_MarshalJSON(t *testing.T) {
	d := NewJSONDate(time.Date(2024, 2, 29, 18, 30, 0, 0, time.UTC))
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-02-29"` {
		t.Errorf("got %s", b)
	}

	var zero JSONDate
	b, _ = json.Marshal(zero)
	if string(b) != "null" {
		t.Errorf("zero date should marshal to null, got %s", b)
	}
}
