// Package events is the in-process notification hub of the daemon.
// Transmissions, state and presence changes and project reloads are
// published here, control subscribers receive the feed as one JSON
// object per line.
package events

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/homewire/x10/internal/pkg/log"
)

// Subscriber channel capacity, a slow consumer loses events
// instead of blocking the publishers.
const subscriberBuffer = 64

// Namespaces of the published events.
const (
	NamespaceUnits   = "units"
	NamespacePerson  = "person"
	NamespaceProject = "project"
)

// Event is one daemon notification.
type Event struct {
	Namespace string    `json:"namespace"`
	Action    string    `json:"action"`
	ID        string    `json:"id,omitempty"`
	Time      time.Time `json:"time"`
	Payload   any       `json:"payload,omitempty"`
}

type Hub struct {
	logger log.Logger
	clock  clockwork.Clock

	lock   sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewHub(logger log.Logger, clock clockwork.Clock) *Hub {
	return &Hub{logger: logger, clock: clock, subs: make(map[int]chan Event)}
}

// Publish delivers the event to all subscribers, it never blocks.
func (h *Hub) Publish(namespace, action, id string, payload any) {
	event := Event{
		Namespace: namespace,
		Action:    action,
		ID:        id,
		Time:      h.clock.Now().UTC(),
		Payload:   payload,
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	for key, sub := range h.subs {
		select {
		case sub <- event:
		default:
			h.logger.Warnf(`Subscriber %d is too slow, dropping event "%s.%s"`, key, namespace, action)
		}
	}
}

// Subscribe returns a feed channel and a cancel function.
// The channel is closed by the cancel function.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.lock.Lock()
	defer h.lock.Unlock()

	key := h.nextID
	h.nextID++
	sub := make(chan Event, subscriberBuffer)
	h.subs[key] = sub

	cancel := func() {
		h.lock.Lock()
		defer h.lock.Unlock()
		if _, found := h.subs[key]; found {
			delete(h.subs, key)
			close(sub)
		}
	}
	return sub, cancel
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.subs)
}
