package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoadEvent records one committed change of a load, forming its audit history.
type LoadEvent struct {
	ID        string    `json:"id" bson:"id"`
	LoadID    string    `json:"load_id" bson:"load_id"`
	Event     Event     `json:"event" bson:"event"`
	From      Status    `json:"from,omitempty" bson:"from,omitempty"`
	To        Status    `json:"to" bson:"to"`
	ActorID   string    `json:"actor_id" bson:"actor_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// PostedEvent is the first history entry of a freshly created load.
func PostedEvent(load *Load) LoadEvent {
	return LoadEvent{
		ID:        uuid.NewString(),
		LoadID:    load.ID,
		Event:     EventPost,
		To:        load.Status,
		ActorID:   load.ShipperID,
		CreatedAt: load.PostedAt,
	}
}

// EventFor builds the history entry for a committed status change.
func EventFor(change StatusChange) LoadEvent {
	return LoadEvent{
		ID:        uuid.NewString(),
		LoadID:    change.LoadID,
		Event:     change.Event,
		From:      change.From,
		To:        change.To,
		ActorID:   change.ActorID,
		CreatedAt: Stamp(change.At),
	}
}
