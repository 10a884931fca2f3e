package models

import (
	"regexp"
	"testing"
	"time"
)

func TestNewReportID(t *testing.T) {
	now := time.UnixMilli(1747386000123)
	pattern := regexp.MustCompile(`^report_1747386000123_[0-9a-z]{5}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewReportID(now)
		if !pattern.MatchString(id) {
			t.Fatalf("NewReportID() = %q, want report_<ms>_<5 base36>", id)
		}
		seen[id] = true
	}
	if len(seen) < 45 {
		t.Errorf("expected mostly distinct ids for the same millisecond, got %d of 50", len(seen))
	}
}
