package domain

import (
	"strings"
	"time"
)

// Event is a lifecycle trigger applied to a load.
type Event string

const (
	EventPost          Event = "post"
	EventAccept        Event = "accept"
	EventCancel        Event = "cancel"
	EventStartTransit  Event = "start-transit"
	EventMarkDelivered Event = "mark-delivered"
)

// Events lists the events a caller may trigger on an existing load.
var Events = []Event{EventAccept, EventCancel, EventStartTransit, EventMarkDelivered}

// ParseEvent resolves an event name; "deliver" is accepted for mark-delivered.
func ParseEvent(value string) (Event, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	if normalized == "deliver" {
		normalized = string(EventMarkDelivered)
	}
	for _, event := range Events {
		if Event(normalized) == event {
			return event, nil
		}
	}
	return "", Validation("event", "unknown load event "+value)
}

type edge struct {
	from  Status
	event Event
}

// transitions is the complete edge set of the load state machine.
var transitions = map[edge]Status{
	{StatusStandBy, EventAccept}:         StatusActive,
	{StatusStandBy, EventCancel}:         StatusCancelled,
	{StatusActive, EventCancel}:          StatusCancelled,
	{StatusActive, EventStartTransit}:    StatusInTransit,
	{StatusInTransit, EventMarkDelivered}: StatusDelivered,
}

// NextStatus returns the status reached by applying event from the given status.
func NextStatus(from Status, event Event) (Status, error) {
	to, ok := transitions[edge{from: from, event: event}]
	if !ok {
		return "", InvalidTransition(from, event)
	}
	return to, nil
}

// Authorize checks that the caller may trigger event on the load. It runs
// before the state check so a wrong actor is always Forbidden.
func Authorize(load *Load, caller Caller, event Event) error {
	switch event {
	case EventAccept:
		if !caller.Is(RoleLoader) {
			return Forbidden("only loaders can accept loads")
		}
	case EventCancel:
		if !caller.Is(RoleShipper) || load.ShipperID != caller.UserID {
			return Forbidden("only the owning shipper can cancel a load")
		}
	case EventStartTransit, EventMarkDelivered:
		if !caller.Is(RoleLoader) {
			return Forbidden("only the assigned loader can " + string(event) + " a load")
		}
		if assigned := load.AssignedTo(); assigned != "" && assigned != caller.UserID {
			return Forbidden("load is assigned to another loader")
		}
	default:
		return Validation("event", "unknown load event "+string(event))
	}
	return nil
}

// StatusChange is a conditional write request: move LoadID from From to To,
// recording LoaderID as the assignment when non-empty.
type StatusChange struct {
	LoadID   string
	From     Status
	To       Status
	LoaderID string
	Event    Event
	ActorID  string
	At       time.Time
}

// Plan authorizes the caller and resolves the transition for event against
// the load's current state.
func Plan(load *Load, caller Caller, event Event, now time.Time) (StatusChange, error) {
	if err := Authorize(load, caller, event); err != nil {
		return StatusChange{}, err
	}
	to, err := NextStatus(load.Status, event)
	if err != nil {
		return StatusChange{}, err
	}
	change := StatusChange{
		LoadID:  load.ID,
		From:    load.Status,
		To:      to,
		Event:   event,
		ActorID: caller.UserID,
		At:      Stamp(now),
	}
	if event == EventAccept {
		change.LoaderID = caller.UserID
	}
	return change, nil
}

// AcceptChange is the single conditional write the assignment coordinator issues.
func AcceptChange(loadID string, loaderID string, now time.Time) StatusChange {
	return StatusChange{
		LoadID:   loadID,
		From:     StatusStandBy,
		To:       StatusActive,
		LoaderID: loaderID,
		Event:    EventAccept,
		ActorID:  loaderID,
		At:       Stamp(now),
	}
}
