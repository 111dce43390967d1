package service

import (
	"log"
	"sync"

	"deskcontrol/models"
)

// Buffered events held per subscriber before old ones are dropped.
const monitorBufferSize = 100

// MonitorHub fans out action request/response events from the queue
// worker to any number of observers. Delivery is best-effort: a slow
// subscriber loses its oldest buffered events instead of slowing the
// publisher down.
type MonitorHub struct {
	mu          sync.Mutex
	subscribers map[*MonitorSubscriber]bool
}

// MonitorSubscriber is one observer's view of the event stream.
type MonitorSubscriber struct {
	hub *MonitorHub
	ch  chan models.MonitorEvent
}

func NewMonitorHub() *MonitorHub {
	return &MonitorHub{
		subscribers: make(map[*MonitorSubscriber]bool),
	}
}

// Subscribe registers a new observer. The caller must Close it when done.
func (h *MonitorHub) Subscribe() *MonitorSubscriber {
	sub := &MonitorSubscriber{
		hub: h,
		ch:  make(chan models.MonitorEvent, monitorBufferSize),
	}
	h.mu.Lock()
	h.subscribers[sub] = true
	count := len(h.subscribers)
	h.mu.Unlock()
	log.Printf("Monitor subscriber added (total: %d)", count)
	return sub
}

// SubscriberCount reports how many observers are currently registered.
func (h *MonitorHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Publish delivers an event to every subscriber without ever blocking.
// A full subscriber buffer sheds its oldest event to make room.
func (h *MonitorHub) Publish(event models.MonitorEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		select {
		case sub.ch <- event:
		default:
			// Buffer full - drop oldest and try again
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
			}
		}
	}
}

// Events is the channel the subscriber receives published events on.
func (s *MonitorSubscriber) Events() <-chan models.MonitorEvent {
	return s.ch
}

// Close unregisters the subscriber and releases its buffer.
func (s *MonitorSubscriber) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.hub.subscribers[s] {
		delete(s.hub.subscribers, s)
		close(s.ch)
	}
}
