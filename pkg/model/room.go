package model

import "time"

type Room struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url,max=500"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"omitempty,mongodb"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
