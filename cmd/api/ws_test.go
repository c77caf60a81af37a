package main

import (
	"io"
	"log"
	"testing"

	"github.com/edutalksorg/liveclass/internal/signaling"
)

func testHub() *Hub {
	return NewHub(log.New(io.Discard, "", 0), nil)
}

func drainEvents(ch chan signaling.Event) []signaling.Event {
	var out []signaling.Event
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestBroadcastEvictionAnnouncesDeparture(t *testing.T) {
	h := testHub()
	key := roomKey{classID: "c1", classType: "batch"}
	healthy := &client{
		identity: signaling.Identity{UserID: "a", UserName: "Ada"},
		key:      key,
		send:     make(chan signaling.Event, 8),
	}
	// Unbuffered with no reader: the first fan-out evicts it.
	stuck := &client{
		identity: signaling.Identity{UserID: "b", UserName: "Ben"},
		key:      key,
		send:     make(chan signaling.Event),
	}
	h.rooms[key] = map[*client]bool{healthy: true, stuck: true}

	h.broadcast(key, mustEvent("receive_message", signaling.ChatMessage{Message: "hi"}), nil)

	if h.rooms[key][stuck] {
		t.Fatal("stuck client must be evicted from the room")
	}
	if _, open := <-stuck.send; open {
		t.Error("evicted client's send channel must be closed")
	}

	got := drainEvents(healthy.send)
	if len(got) != 2 {
		t.Fatalf("healthy client got %d events, want 2: %+v", len(got), got)
	}
	if got[0].Type != "receive_message" {
		t.Errorf("first event = %q, want receive_message", got[0].Type)
	}
	if got[1].Type != "user_left" {
		t.Fatalf("second event = %q, want user_left for the evicted client", got[1].Type)
	}
	left, err := signaling.Decode(got[1])
	if err != nil {
		t.Fatal(err)
	}
	if left.(*signaling.UserLeft).UserID != "b" {
		t.Errorf("user_left for %q, want b", left.(*signaling.UserLeft).UserID)
	}
}

func TestBroadcastEvictionOfLastClientDropsRoom(t *testing.T) {
	h := testHub()
	key := roomKey{classID: "c1", classType: "batch"}
	stuck := &client{
		identity: signaling.Identity{UserID: "b", UserName: "Ben"},
		key:      key,
		send:     make(chan signaling.Event),
	}
	h.rooms[key] = map[*client]bool{stuck: true}

	h.broadcast(key, mustEvent("force_mute_all", nil), nil)

	if _, ok := h.rooms[key]; ok {
		t.Error("emptied room must be dropped from the hub")
	}
}
