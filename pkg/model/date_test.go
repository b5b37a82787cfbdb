package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if date.String() != "2026-03-10" {
		t.Errorf("got %s, want 2026-03-10", date)
	}

	for _, invalid := range []string{"2026-3-10", "10-03-2026", "2026-03-10T00:00:00Z", "not-a-date", ""} {
		if _, err := ParseDate(invalid); err == nil {
			t.Errorf("ParseDate(%q) should fail", invalid)
		}
	}
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Day Date `json:"day"`
	}

	var decoded payload
	if err := json.Unmarshal([]byte(`{"day":"2026-12-24"}`), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.Day.Equal(NewDate(2026, time.December, 24)) {
		t.Errorf("got %s, want 2026-12-24", decoded.Day)
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(encoded) != `{"day":"2026-12-24"}` {
		t.Errorf("got %s", encoded)
	}

	if err := json.Unmarshal([]byte(`{"day":"yesterday"}`), &decoded); err == nil {
		t.Error("unmarshal of malformed date should fail")
	}
}

func TestDateComparisons(t *testing.T) {
	earlier := NewDate(2026, time.January, 1)
	later := NewDate(2026, time.January, 2)

	if !earlier.Before(later) {
		t.Error("earlier.Before(later) should be true")
	}
	if !later.After(earlier) {
		t.Error("later.After(earlier) should be true")
	}
	if earlier.Before(earlier) {
		t.Error("a date is not before itself")
	}
	if !earlier.Equal(NewDate(2026, time.January, 1)) {
		t.Error("dates with the same day should be equal")
	}
}
