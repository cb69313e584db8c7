package realtime

import (
	"sync"

	"telicommunity-go/pkg/logger"
)

const defaultBufferSize = 32

type Subscription struct {
	C <-chan Event

	ch     chan Event
	filter Filter
	hub    *Hub
	once   sync.Once
}

// Close detaches the subscription and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans committed row changes out to filtered subscribers.
type Hub struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	bufferSize int
	closed     bool
	log        logger.Logger
}

func NewHub(bufferSize int, log logger.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		subs:       make(map[*Subscription]struct{}),
		bufferSize: bufferSize,
		log:        log,
	}
}

func (h *Hub) Subscribe(filter Filter) *Subscription {
	ch := make(chan Event, h.bufferSize)
	sub := &Subscription{C: ch, ch: ch, filter: filter, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.once.Do(func() { close(ch) })
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish never blocks. A subscriber whose buffer is full misses the event.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	for sub := range h.subs {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.log.Warn("realtime.publish: subscriber buffer full, event dropped",
				"table", event.Table, "type", string(event.Type))
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
	sub.once.Do(func() { close(sub.ch) })
}
