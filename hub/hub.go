// Package hub implements room-keyed fan-out of payloads to subscribed
// connections. It knows nothing about the transport; connections appear
// here only as Subscribers.
package hub

import (
	"context"
	"log/slog"
)

// Subscriber is one realtime connection. Notify must not block: it reports
// false when the payload cannot be accepted (buffer full, teardown), which
// causes the hub to drop the subscriber. Close is called exactly once, after
// the subscriber has been removed from every room.
type Subscriber interface {
	ID() string
	Notify(payload []byte) bool
	Close()
}

type subscription struct {
	sub    Subscriber
	roomID string
}

type envelope struct {
	roomID  string
	payload []byte
}

type Hub struct {
	// roomID -> subscriber set
	rooms map[string]map[Subscriber]bool
	// subscriber -> rooms it is joined to, for disconnect reaping
	joined map[Subscriber]map[string]bool

	join    chan subscription
	leave   chan subscription
	drop    chan Subscriber
	publish chan envelope

	log *slog.Logger
}

func New(log *slog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[Subscriber]bool),
		joined:  make(map[Subscriber]map[string]bool),
		join:    make(chan subscription),
		leave:   make(chan subscription),
		drop:    make(chan Subscriber),
		publish: make(chan envelope, 256),
		log:     log,
	}
}

// Run processes joins, leaves, drops and publishes on a single goroutine.
// Serializing them here is what guarantees that every subscriber sees a
// room's messages in append order.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case s := <-h.join:
			h.addSubscription(s)
		case s := <-h.leave:
			h.removeSubscription(s.sub, s.roomID)
		case sub := <-h.drop:
			h.removeSubscriber(sub)
		case e := <-h.publish:
			h.fanOut(e)
		}
	}
}

// Join subscribes sub to roomID. Idempotent; no authentication required.
func (h *Hub) Join(sub Subscriber, roomID string) {
	h.join <- subscription{sub: sub, roomID: roomID}
}

// Leave removes sub from roomID. Idempotent.
func (h *Hub) Leave(sub Subscriber, roomID string) {
	h.leave <- subscription{sub: sub, roomID: roomID}
}

// Drop removes sub from every room and closes it. Must be called when the
// underlying connection goes away so stale subscriptions cannot accumulate.
func (h *Hub) Drop(sub Subscriber) {
	h.drop <- sub
}

// Publish delivers payload to every current subscriber of roomID, the
// submitter's own connections included. Best effort: a subscriber that
// cannot take the payload is dropped, never retried.
func (h *Hub) Publish(roomID string, payload []byte) {
	h.publish <- envelope{roomID: roomID, payload: payload}
}

func (h *Hub) addSubscription(s subscription) {
	if h.rooms[s.roomID] == nil {
		h.rooms[s.roomID] = make(map[Subscriber]bool)
	}
	h.rooms[s.roomID][s.sub] = true

	if h.joined[s.sub] == nil {
		h.joined[s.sub] = make(map[string]bool)
	}
	h.joined[s.sub][s.roomID] = true

	h.log.Debug("subscriber joined room",
		"subscriber", s.sub.ID(), "room", s.roomID, "room_size", len(h.rooms[s.roomID]))
}

func (h *Hub) removeSubscription(sub Subscriber, roomID string) {
	if subs, ok := h.rooms[roomID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.rooms, roomID)
		}
	}
	if rooms, ok := h.joined[sub]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(h.joined, sub)
		}
	}
}

func (h *Hub) removeSubscriber(sub Subscriber) {
	for roomID := range h.joined[sub] {
		if subs, ok := h.rooms[roomID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	if _, ok := h.joined[sub]; ok {
		delete(h.joined, sub)
		sub.Close()
		h.log.Debug("subscriber dropped", "subscriber", sub.ID())
	} else {
		// Never joined anything; still close so the connection can tear down.
		sub.Close()
	}
}

func (h *Hub) fanOut(e envelope) {
	for sub := range h.rooms[e.roomID] {
		if !sub.Notify(e.payload) {
			h.log.Warn("subscriber not keeping up, dropping",
				"subscriber", sub.ID(), "room", e.roomID)
			h.removeSubscriber(sub)
		}
	}
}

func (h *Hub) closeAll() {
	for sub := range h.joined {
		sub.Close()
	}
	h.rooms = make(map[string]map[Subscriber]bool)
	h.joined = make(map[Subscriber]map[string]bool)
}
