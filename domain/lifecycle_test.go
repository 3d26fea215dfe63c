package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTableIsClosed(t *testing.T) {
	allowed := map[Status][]Event{
		StatusStandBy:   {EventAccept, EventCancel},
		StatusActive:    {EventCancel, EventStartTransit},
		StatusInTransit: {EventMarkDelivered},
	}

	for _, from := range Statuses {
		for _, event := range Events {
			to, err := NextStatus(from, event)
			if contains(allowed[from], event) {
				require.NoErrorf(t, err, "%s --%s-->", from, event)
				assert.True(t, to.Valid())
				continue
			}
			require.Errorf(t, err, "%s --%s--> must be rejected", from, event)
			assert.True(t, IsDomainError(err, ErrCodeInvalidTransition))
			assert.Contains(t, err.Error(), string(from))
			assert.Contains(t, err.Error(), string(event))
		}
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	for _, status := range []Status{StatusDelivered, StatusCancelled} {
		assert.True(t, status.Terminal())
		for _, event := range Events {
			_, err := NextStatus(status, event)
			assert.Error(t, err)
		}
	}
}

func TestAuthorizeRunsBeforeStateCheck(t *testing.T) {
	loaderID := "loader-1"
	load := &Load{ID: "l1", ShipperID: "shipper-1", Status: StatusDelivered, AssignedLoaderID: &loaderID}

	_, err := Plan(load, Caller{UserID: "shipper-1", Role: RoleShipper}, EventAccept, time.Now())
	assert.True(t, IsDomainError(err, ErrCodeForbidden))

	_, err = Plan(load, Caller{UserID: "loader-2", Role: RoleLoader}, EventMarkDelivered, time.Now())
	assert.True(t, IsDomainError(err, ErrCodeForbidden))

	_, err = Plan(load, Caller{UserID: loaderID, Role: RoleLoader}, EventMarkDelivered, time.Now())
	assert.True(t, IsDomainError(err, ErrCodeInvalidTransition))
}

func TestPlanAccept(t *testing.T) {
	load := &Load{ID: "l1", ShipperID: "s", Status: StatusStandBy}
	now := time.Date(2026, 1, 2, 3, 4, 5, 6789, time.UTC)

	change, err := Plan(load, Caller{UserID: "loader-1", Role: RoleLoader}, EventAccept, now)
	require.NoError(t, err)
	assert.Equal(t, AcceptChange("l1", "loader-1", now), change)
	assert.Equal(t, now.Truncate(time.Millisecond), change.At)

	load.Apply(change)
	assert.Equal(t, StatusActive, load.Status)
	assert.Equal(t, "loader-1", load.AssignedTo())
}

func TestApplyCancelKeepsAssignment(t *testing.T) {
	loaderID := "loader-1"
	load := &Load{ID: "l1", ShipperID: "s", Status: StatusActive, AssignedLoaderID: &loaderID}

	change, err := Plan(load, Caller{UserID: "s", Role: RoleShipper}, EventCancel, time.Now())
	require.NoError(t, err)
	load.Apply(change)
	assert.Equal(t, StatusCancelled, load.Status)
	assert.Equal(t, "loader-1", load.AssignedTo())
}

func TestParseEvent(t *testing.T) {
	cases := map[string]Event{
		"accept":         EventAccept,
		" Cancel ":       EventCancel,
		"start_transit":  EventStartTransit,
		"deliver":        EventMarkDelivered,
		"mark-delivered": EventMarkDelivered,
	}
	for raw, want := range cases {
		got, err := ParseEvent(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := ParseEvent("post")
	assert.Equal(t, "event", FieldOf(err))
}

func contains(events []Event, event Event) bool {
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}
