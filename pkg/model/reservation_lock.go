package model

import "time"

// ReservationLock is a per-room advisory lock document. Its _id is derived
// from the room id, so a unique-key violation on insert means some other
// admission holds the room. A TTL index on expires_at reaps locks leaked by
// crashed processes.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
