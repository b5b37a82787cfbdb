package model

import (
	"time"
)

type Reservation struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID     string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	GuestName  string    `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	GuestEmail string    `json:"guest_email" bson:"guest_email" validate:"required,email"`
	StartDate  Date      `json:"start_date" bson:"start_date" validate:"required"`
	EndDate    Date      `json:"end_date" bson:"end_date" validate:"required"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Overlaps reports whether the reservation's half-open [StartDate, EndDate)
// interval intersects [start, end). Back-to-back intervals do not overlap.
func (r *Reservation) Overlaps(start, end Date) bool {
	return r.StartDate.Before(end) && start.Before(r.EndDate)
}

// ReservationUpdate carries the only mutable reservation field. Dates and
// guest identity are fixed at admission time.
type ReservationUpdate struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ReservationSortFields maps the public sort keys accepted by listing
// endpoints to their stored field names. Sort keys outside this allow-list
// are rejected before they reach the store.
var ReservationSortFields = map[string]string{
	"id":         "_id",
	"start_date": "start_date",
	"end_date":   "end_date",
	"guest_name": "guest_name",
	"created_at": "created_at",
}

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ReservationFilter narrows and orders reservation listings. Nil or empty
// fields are ignored.
type ReservationFilter struct {
	RoomID    string
	StartDate *Date  // keep reservations starting on or after this day
	EndDate   *Date  // keep reservations ending on or before this day
	GuestName string // case-insensitive substring match
	SortBy    string
	SortOrder string
}
