package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SportTypes lists the sports an event may be created for.
var SportTypes = []string{"Soccer", "Basketball", "Tennis", "Baseball", "Volleyball"}

type SportEvent struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name" validate:"required,min=3,max=100"`
	Sport           string        `json:"sport" validate:"required,oneof=Soccer Basketball Tennis Baseball Volleyball"`
	MaxParticipants int           `json:"maxParticipants" validate:"required,min=2,max=100"`
	StartTime       time.Time     `json:"startTime" validate:"required"`
	EndTime         time.Time     `json:"endTime" validate:"required,gtfield=StartTime"`
	CreatedBy       uuid.UUID     `json:"createdBy"`
	Creator         *EventCreator `json:"creator,omitempty"`
	Participants    []uuid.UUID   `json:"participants"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// MarshalJSON always emits participants as an array. Nothing in this
// service adds participants, so it is empty unless a caller filled it.
func (e SportEvent) MarshalJSON() ([]byte, error) {
	type plain SportEvent
	out := plain(e)
	if out.Participants == nil {
		out.Participants = []uuid.UUID{}
	}
	return json.Marshal(out)
}

type EventCreator struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type CreateEventRequest struct {
	Name            string    `json:"name" binding:"required,min=3,max=100"`
	Sport           string    `json:"sport" binding:"required,oneof=Soccer Basketball Tennis Baseball Volleyball"`
	MaxParticipants int       `json:"maxParticipants" binding:"required,min=2,max=100"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	EndTime         time.Time `json:"endTime" binding:"required"`
}

// UpdateEventRequest carries a partial update; nil fields are left unchanged.
type UpdateEventRequest struct {
	Name            *string    `json:"name" binding:"omitempty,min=3,max=100"`
	Sport           *string    `json:"sport" binding:"omitempty,oneof=Soccer Basketball Tennis Baseball Volleyball"`
	MaxParticipants *int       `json:"maxParticipants" binding:"omitempty,min=2,max=100"`
	StartTime       *time.Time `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
}
