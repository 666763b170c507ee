package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToSubscriber(t *testing.T) {
	hub := NewHub()
	events, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	hub.Publish("user-1", Event{Event: EventAttendanceCheckedIn, Data: map[string]string{"id": "att-1"}})
	hub.Publish("user-2", Event{Event: EventAttendanceCheckedIn})

	select {
	case e := <-events:
		assert.Equal(t, "user-1", e.UserID)
		assert.Equal(t, EventAttendanceCheckedIn, e.Event)
	default:
		t.Fatal("expected an event")
	}
	assert.Len(t, events, 0)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("user-1")
	assert.Equal(t, 1, hub.SubscriberCount("user-1"))

	cleanup()
	cleanup()

	assert.Zero(t, hub.SubscriberCount("user-1"))
	hub.Publish("user-1", Event{Event: EventLeaveUpdated})
}

func TestHub_FullSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	for i := 0; i < defaultBuffer+3; i++ {
		hub.Publish("user-1", Event{Event: EventLeaveUpdated})
	}
	assert.Equal(t, int64(3), hub.Dropped())
}

func TestEvent_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	_, err := Event{Event: EventLeaveUpdated, Data: map[string]string{"id": "leave-1"}}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "event: leave.updated\ndata: {\"id\":\"leave-1\"}\n\n", buf.String())
}
