package classroom

import (
	"testing"
	"time"

	"github.com/edutalksorg/liveclass/internal/signaling"
)

func rosterWith(clock Clock, users ...signaling.Participant) *Roster {
	r := NewRoster(clock)
	r.Replace(users)
	return r
}

func TestRosterGracePeriod(t *testing.T) {
	clock := newFakeClock()
	r := rosterWith(clock,
		signaling.Participant{UserID: "a", UserName: "Ada"},
		signaling.Participant{UserID: "b", UserName: "Ben"},
	)

	r.ScheduleRemoval("a", LeaveGrace, func(id string) { r.Remove(id) })

	// Still listed, marked offline, for the whole grace window.
	p, ok := r.Get("a")
	if !ok {
		t.Fatal("participant dropped before the grace period elapsed")
	}
	if p.Online {
		t.Error("departed participant must show offline during the grace period")
	}

	clock.Advance(14 * time.Second)
	if _, ok := r.Get("a"); !ok {
		t.Fatal("participant dropped 1s early")
	}

	clock.Advance(2 * time.Second)
	if _, ok := r.Get("a"); ok {
		t.Error("participant must be removed after the grace period")
	}
	if _, ok := r.Get("b"); !ok {
		t.Error("unrelated participant removed")
	}
}

func TestRosterRejoinCancelsRemoval(t *testing.T) {
	clock := newFakeClock()
	r := rosterWith(clock, signaling.Participant{UserID: "a", UserName: "Ada"})

	r.ScheduleRemoval("a", LeaveGrace, func(id string) { r.Remove(id) })
	clock.Advance(10 * time.Second)
	r.Upsert(signaling.Participant{UserID: "a", UserName: "Ada"})

	clock.Advance(time.Minute)
	p, ok := r.Get("a")
	if !ok {
		t.Fatal("rejoined participant was removed by the stale timer")
	}
	if !p.Online {
		t.Error("rejoined participant must be back online")
	}
}

func TestRosterSnapshotCancelsPendingRemovals(t *testing.T) {
	clock := newFakeClock()
	r := rosterWith(clock, signaling.Participant{UserID: "a", UserName: "Ada"})

	r.ScheduleRemoval("a", LeaveGrace, func(id string) { r.Remove(id) })
	r.Replace([]signaling.Participant{{UserID: "a", UserName: "Ada"}})

	clock.Advance(time.Minute)
	if _, ok := r.Get("a"); !ok {
		t.Error("snapshot is authoritative; the stale removal must not fire")
	}
}

func TestRosterParticipantsSortedByName(t *testing.T) {
	clock := newFakeClock()
	r := rosterWith(clock,
		signaling.Participant{UserID: "3", UserName: "Cleo"},
		signaling.Participant{UserID: "1", UserName: "Ada"},
		signaling.Participant{UserID: "2", UserName: "Ben"},
	)

	got := r.Participants()
	want := []string{"Ada", "Ben", "Cleo"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].UserName != name {
			t.Errorf("position %d = %q, want %q", i, got[i].UserName, name)
		}
	}
}

func TestRosterHands(t *testing.T) {
	clock := newFakeClock()
	r := rosterWith(clock,
		signaling.Participant{UserID: "a", UserName: "Ada"},
		signaling.Participant{UserID: "b", UserName: "Ben"},
	)

	r.RaiseHand("a", "Ada")
	r.RaiseHand("b", "Ben")
	if !r.HandRaised("a") || !r.HandRaised("b") {
		t.Fatal("hands not recorded")
	}

	r.LowerHand("a")
	if r.HandRaised("a") {
		t.Error("lowered hand still recorded")
	}

	r.LowerAllHands()
	if len(r.RaisedHands()) != 0 {
		t.Errorf("raised hands after lower-all: %v", r.RaisedHands())
	}
	if p, _ := r.Get("b"); p.HandRaised {
		t.Error("participant flag not cleared by lower-all")
	}
}

func TestRosterSnapshotCarriesHands(t *testing.T) {
	clock := newFakeClock()
	r := rosterWith(clock, signaling.Participant{UserID: "a", UserName: "Ada", HandRaised: true})

	if !r.HandRaised("a") {
		t.Error("snapshot hand state must seed the raised-hands index")
	}
}
