package sync

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventPriceAdded   = "price.added"
	EventPriceUpdated = "price.updated"
	EventPriceDeleted = "price.deleted"
)

// PriceEvent is broadcast to every TCP and WebSocket subscriber after a
// successful store mutation has been persisted.
type PriceEvent struct {
	ID    string    `json:"id"`
	Type  string    `json:"type"`
	Key   string    `json:"key"`
	Grade string    `json:"grade,omitempty"`
	Min   float64   `json:"min,omitempty"`
	Max   float64   `json:"max,omitempty"`
	At    time.Time `json:"at"`
}

func NewPriceEvent(eventType, key, grade string, min, max float64) PriceEvent {
	return PriceEvent{
		ID:    uuid.NewString(),
		Type:  eventType,
		Key:   key,
		Grade: grade,
		Min:   min,
		Max:   max,
		At:    time.Now().UTC(),
	}
}
