package model

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	existing := &Reservation{
		StartDate: NewDate(2026, time.March, 10),
		EndDate:   NewDate(2026, time.March, 15),
	}

	tests := []struct {
		name  string
		start Date
		end   Date
		want  bool
	}{
		{
			name:  "identical interval",
			start: NewDate(2026, time.March, 10),
			end:   NewDate(2026, time.March, 15),
			want:  true,
		},
		{
			name:  "back to back after",
			start: NewDate(2026, time.March, 15),
			end:   NewDate(2026, time.March, 20),
			want:  false,
		},
		{
			name:  "back to back before",
			start: NewDate(2026, time.March, 5),
			end:   NewDate(2026, time.March, 10),
			want:  false,
		},
		{
			name:  "partial overlap at start",
			start: NewDate(2026, time.March, 8),
			end:   NewDate(2026, time.March, 11),
			want:  true,
		},
		{
			name:  "partial overlap at end",
			start: NewDate(2026, time.March, 14),
			end:   NewDate(2026, time.March, 20),
			want:  true,
		},
		{
			name:  "candidate contains existing",
			start: NewDate(2026, time.March, 1),
			end:   NewDate(2026, time.March, 31),
			want:  true,
		},
		{
			name:  "existing contains candidate",
			start: NewDate(2026, time.March, 11),
			end:   NewDate(2026, time.March, 12),
			want:  true,
		},
		{
			name:  "fully before",
			start: NewDate(2026, time.March, 1),
			end:   NewDate(2026, time.March, 5),
			want:  false,
		},
		{
			name:  "fully after",
			start: NewDate(2026, time.March, 20),
			end:   NewDate(2026, time.March, 25),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := existing.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestOverlapsIsSymmetric(t *testing.T) {
	a := &Reservation{
		StartDate: NewDate(2026, time.June, 1),
		EndDate:   NewDate(2026, time.June, 10),
	}
	b := &Reservation{
		StartDate: NewDate(2026, time.June, 5),
		EndDate:   NewDate(2026, time.June, 20),
	}

	if a.Overlaps(b.StartDate, b.EndDate) != b.Overlaps(a.StartDate, a.EndDate) {
		t.Error("overlap check must not depend on argument order")
	}
}
