package events

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/homewire/x10/internal/pkg/log"
)

func TestHubPublishSubscribe(t *testing.T) {
	t.Parallel()
	now := time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC)
	hub := NewHub(log.NewNopLogger(), clockwork.NewFakeClockAt(now))

	feed1, cancel1 := hub.Subscribe()
	feed2, cancel2 := hub.Subscribe()
	defer cancel2()
	assert.Equal(t, 2, hub.Len())

	hub.Publish(NamespaceUnits, "signal", "porch-light", map[string]bool{"on": true})

	expected := Event{
		Namespace: NamespaceUnits,
		Action:    "signal",
		ID:        "porch-light",
		Time:      now,
		Payload:   map[string]bool{"on": true},
	}
	assert.Equal(t, expected, <-feed1)
	assert.Equal(t, expected, <-feed2)

	// A cancelled subscriber gets nothing more and its channel is closed
	cancel1()
	assert.Equal(t, 1, hub.Len())
	hub.Publish(NamespacePerson, "leave", "", nil)
	_, open := <-feed1
	assert.False(t, open)
	event := <-feed2
	assert.Equal(t, NamespacePerson, event.Namespace)
	assert.Equal(t, "leave", event.Action)

	// Double cancel is harmless
	cancel1()
}

func TestHubSlowSubscriber(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	hub := NewHub(logger, clockwork.NewFakeClock())

	_, cancel := hub.Subscribe()
	defer cancel()

	// Nobody reads the feed, the buffer fills up and events are dropped
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(NamespaceUnits, "signal", "porch-light", nil)
	}
	assert.Contains(t, logger.AllMessages(), `is too slow, dropping event "units.signal"`)
}

func TestHubNoSubscribers(t *testing.T) {
	t.Parallel()
	hub := NewHub(log.NewNopLogger(), clockwork.NewFakeClock())
	// Publishing without subscribers is a no-op
	hub.Publish(NamespaceProject, "reload", "", nil)
	assert.Equal(t, 0, hub.Len())
}
