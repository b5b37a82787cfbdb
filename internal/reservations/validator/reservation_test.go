package validator

import (
	"io"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/timschopinski/hotel-management-system/pkg/logger"
	"github.com/timschopinski/hotel-management-system/pkg/model"
)

func newTestValidator() *ReservationValidator {
	return NewReservationValidator(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
}

func validReservation() *model.Reservation {
	return &model.Reservation{
		RoomID:     primitive.NewObjectID().Hex(),
		GuestName:  "Alice Carter",
		GuestEmail: "alice@example.com",
		StartDate:  model.NewDate(2026, time.March, 10),
		EndDate:    model.NewDate(2026, time.March, 15),
	}
}

func TestValidateReservation(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validReservation()); err != nil {
		t.Fatalf("valid reservation rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *model.Reservation)
	}{
		{"missing room id", func(r *model.Reservation) { r.RoomID = "" }},
		{"malformed room id", func(r *model.Reservation) { r.RoomID = "not-hex" }},
		{"missing guest name", func(r *model.Reservation) { r.GuestName = "" }},
		{"guest name too short", func(r *model.Reservation) { r.GuestName = "A" }},
		{"invalid email", func(r *model.Reservation) { r.GuestEmail = "nope" }},
		{"reversed dates", func(r *model.Reservation) {
			r.StartDate = model.NewDate(2026, time.March, 15)
			r.EndDate = model.NewDate(2026, time.March, 10)
		}},
		{"equal dates", func(r *model.Reservation) { r.EndDate = r.StartDate }},
		{"notes too long", func(r *model.Reservation) { r.Notes = strings.Repeat("x", 2001) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reservation := validReservation()
			tt.mutate(reservation)
			if err := v.Validate(reservation); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateFilterSortAllowList(t *testing.T) {
	v := newTestValidator()

	for field := range model.ReservationSortFields {
		if err := v.ValidateFilter(&model.ReservationFilter{SortBy: field}); err != nil {
			t.Errorf("allow-listed field %q rejected: %v", field, err)
		}
	}

	for _, field := range []string{"guest_email", "notes", "$where", "room_id; drop", "unknown"} {
		err := v.ValidateFilter(&model.ReservationFilter{SortBy: field})
		if err == nil {
			t.Errorf("field %q should be rejected", field)
			continue
		}
		if !strings.Contains(err.Error(), "sort_by must be one of") {
			t.Errorf("rejection for %q should list allowed fields, got: %v", field, err)
		}
	}
}

func TestValidateFilterSortOrder(t *testing.T) {
	v := newTestValidator()

	for _, order := range []string{"", model.SortAsc, model.SortDesc} {
		if err := v.ValidateFilter(&model.ReservationFilter{SortOrder: order}); err != nil {
			t.Errorf("sort order %q rejected: %v", order, err)
		}
	}

	if err := v.ValidateFilter(&model.ReservationFilter{SortOrder: "descending"}); err == nil {
		t.Error("unknown sort order should be rejected")
	}
}

func TestValidateFilterDateRange(t *testing.T) {
	v := newTestValidator()

	start := model.NewDate(2026, time.March, 15)
	end := model.NewDate(2026, time.March, 10)
	if err := v.ValidateFilter(&model.ReservationFilter{StartDate: &start, EndDate: &end}); err == nil {
		t.Error("end filter before start filter should be rejected")
	}

	same := model.NewDate(2026, time.March, 10)
	if err := v.ValidateFilter(&model.ReservationFilter{StartDate: &same, EndDate: &same}); err != nil {
		t.Errorf("equal filter bounds should be accepted: %v", err)
	}

	if err := v.ValidateFilter(nil); err != nil {
		t.Errorf("nil filter should be accepted: %v", err)
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()

	notes := "ground floor please"
	if err := v.ValidateUpdate(&model.ReservationUpdate{Notes: &notes}); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}

	if err := v.ValidateUpdate(&model.ReservationUpdate{}); err != nil {
		t.Fatalf("empty update rejected: %v", err)
	}

	long := strings.Repeat("x", 2001)
	if err := v.ValidateUpdate(&model.ReservationUpdate{Notes: &long}); err == nil {
		t.Error("oversized notes should be rejected")
	}
}
