package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/edutalksorg/liveclass/internal/data"
	"github.com/edutalksorg/liveclass/internal/signaling"
)

// roomKey scopes a signaling room. classType rides along so batch classes
// and grade-wide super classes on the same relay never cross-talk even if
// their ids collide.
type roomKey struct {
	classID   string
	classType string
}

type client struct {
	conn     *websocket.Conn
	identity signaling.Identity
	key      roomKey
	send     chan signaling.Event
}

type relayMsg struct {
	from  *client
	event signaling.Event
}

// Hub relays control-plane events between the clients of each room. It does
// no ordering or deduplication beyond fan-out in arrival order, and holds
// no permission state: clients rebuild that from the event stream.
type Hub struct {
	logger     *log.Logger
	models     *data.Models
	register   chan *client
	unregister chan *client
	relay      chan relayMsg
	rooms      map[roomKey]map[*client]bool
}

func NewHub(logger *log.Logger, models *data.Models) *Hub {
	return &Hub{
		logger:     logger,
		models:     models,
		register:   make(chan *client),
		unregister: make(chan *client),
		relay:      make(chan relayMsg, 64),
		rooms:      make(map[roomKey]map[*client]bool),
	}
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			room := h.rooms[c.key]
			if room == nil {
				room = make(map[*client]bool)
				h.rooms[c.key] = room
			}
			room[c] = true

			// The joiner gets the authoritative roster snapshot; everyone
			// else learns about the joiner.
			c.send <- mustEvent("current_users", signaling.CurrentUsers{Users: h.roster(c.key)})
			h.broadcast(c.key, mustEvent("user_joined", signaling.Participant{
				UserID:   c.identity.UserID,
				UserName: c.identity.UserName,
				Role:     c.identity.Role,
			}), c)

		case c := <-h.unregister:
			room := h.rooms[c.key]
			if room == nil || !room[c] {
				continue
			}
			delete(room, c)
			close(c.send)
			if len(room) == 0 {
				delete(h.rooms, c.key)
			}
			h.broadcast(c.key, mustEvent("user_left", signaling.UserLeft{
				UserID:   c.identity.UserID,
				UserName: c.identity.UserName,
				Role:     c.identity.Role,
			}), nil)

		case m := <-h.relay:
			out, ok := rebroadcast(m.event, m.from.identity)
			if !ok {
				h.logger.Printf("hub: dropping event %q from %s", m.event.Type, m.from.identity.UserID)
				continue
			}
			if out.Type == "class_ended" {
				if err := h.models.Classes.MarkEnded(context.Background(), m.from.key.classID); err != nil {
					h.logger.Printf("hub: mark ended: %v", err)
				}
			}
			h.broadcast(m.from.key, out, nil)
		}
	}
}

// broadcast fans an event out to a room; except is skipped when non-nil.
func (h *Hub) broadcast(key roomKey, e signaling.Event, except *client) {
	var evicted []*client
	for c := range h.rooms[key] {
		if c == except {
			continue
		}
		select {
		case c.send <- e:
		default:
			// A slow consumer with a full buffer gets dropped rather than
			// stalling the whole room.
			h.logger.Printf("hub: dropping slow client %s", c.identity.UserID)
			delete(h.rooms[key], c)
			close(c.send)
			evicted = append(evicted, c)
		}
	}

	// An evicted client is already out of the room when its read pump
	// reaches unregister, which skips departed members. Its departure has
	// to be announced here or the rest of the room keeps it in the roster
	// forever.
	for _, c := range evicted {
		h.broadcast(key, mustEvent("user_left", signaling.UserLeft{
			UserID:   c.identity.UserID,
			UserName: c.identity.UserName,
			Role:     c.identity.Role,
		}), nil)
	}
	if len(h.rooms[key]) == 0 {
		delete(h.rooms, key)
	}
}

func (h *Hub) roster(key roomKey) []signaling.Participant {
	var users []signaling.Participant
	for c := range h.rooms[key] {
		users = append(users, signaling.Participant{
			UserID:   c.identity.UserID,
			UserName: c.identity.UserName,
			Role:     c.identity.Role,
		})
	}
	return users
}

func (app *application) wsHandler(w http.ResponseWriter, r *http.Request) {
	u := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	conn, err := u.Upgrade(w, r, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// The first event must be join_class; everything after it is relayed.
	var first signaling.Event
	if err := conn.ReadJSON(&first); err != nil || first.Type != "join_class" {
		conn.Close()
		return
	}
	var identity signaling.Identity
	if err := json.Unmarshal(first.Payload, &identity); err != nil || identity.UserID == "" {
		conn.Close()
		return
	}

	c := &client{
		conn:     conn,
		identity: identity,
		key:      roomKey{classID: identity.ClassID, classType: identity.ClassType},
		send:     make(chan signaling.Event, 64),
	}
	app.hub.register <- c

	go c.writePump(app.logger)
	c.readPump(app.hub)
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		var e signaling.Event
		if err := c.conn.ReadJSON(&e); err != nil {
			return
		}
		h.relay <- relayMsg{from: c, event: e}
	}
}

func (c *client) writePump(logger *log.Logger) {
	for e := range c.send {
		if err := c.conn.WriteJSON(e); err != nil {
			logger.Printf("hub: write to %s: %v", c.identity.UserID, err)
			c.conn.Close()
			return
		}
	}
	c.conn.Close()
}

func mustEvent(eventType string, payload any) signaling.Event {
	b, err := json.Marshal(payload)
	if err != nil {
		panic("hub: marshal event payload: " + err.Error())
	}
	return signaling.Event{Type: eventType, Payload: b}
}
