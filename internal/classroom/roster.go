package classroom

import (
	"sort"

	"github.com/edutalksorg/liveclass/internal/signaling"
)

// LeaveGrace is how long a departed participant lingers in the roster
// before removal, to absorb the rapid disconnect/reconnect of a page
// refresh. The duration is a deployed heuristic; do not tune it casually.
const LeaveGrace = 15 // seconds

type Participant struct {
	UserID     string
	UserName   string
	Role       string
	Online     bool
	AudioOn    bool
	VideoOn    bool
	HandRaised bool
}

// Roster is the presence replica. It is rebuilt wholesale from every
// current_users snapshot and patched by user_joined/user_left in between.
type Roster struct {
	clock Clock

	participants map[string]*Participant
	pending      map[string]Timer // scheduled grace-period removals
	raisedHands  map[string]string // id -> display name
}

func NewRoster(clock Clock) *Roster {
	return &Roster{
		clock:        clock,
		participants: make(map[string]*Participant),
		pending:      make(map[string]Timer),
		raisedHands:  make(map[string]string),
	}
}

// Replace installs a full snapshot, discarding all local roster state built
// before it. Pending removals are cancelled; the snapshot is authoritative.
func (r *Roster) Replace(users []signaling.Participant) {
	for id, t := range r.pending {
		t.Stop()
		delete(r.pending, id)
	}
	r.participants = make(map[string]*Participant)
	for _, u := range users {
		r.participants[u.UserID] = &Participant{
			UserID:     u.UserID,
			UserName:   u.UserName,
			Role:       u.Role,
			Online:     true,
			AudioOn:    u.AudioOn,
			VideoOn:    u.VideoOn,
			HandRaised: u.HandRaised,
		}
		if u.HandRaised {
			r.raisedHands[u.UserID] = u.UserName
		}
	}
}

// Upsert adds or refreshes a participant. A rejoin within the grace window
// cancels the scheduled removal.
func (r *Roster) Upsert(u signaling.Participant) {
	if t, ok := r.pending[u.UserID]; ok {
		t.Stop()
		delete(r.pending, u.UserID)
	}
	if existing, ok := r.participants[u.UserID]; ok {
		existing.UserName = u.UserName
		existing.Role = u.Role
		existing.Online = true
		return
	}
	r.participants[u.UserID] = &Participant{
		UserID:   u.UserID,
		UserName: u.UserName,
		Role:     u.Role,
		Online:   true,
	}
}

// ScheduleRemoval marks the participant offline and removes them for real
// only after the grace period, via the onRemoved callback.
func (r *Roster) ScheduleRemoval(id string, grace int, onRemoved func(id string)) {
	p, ok := r.participants[id]
	if !ok {
		return
	}
	p.Online = false

	if t, ok := r.pending[id]; ok {
		t.Stop()
	}
	r.pending[id] = r.clock.AfterFunc(secondsToDuration(grace), func() {
		onRemoved(id)
	})
}

// Remove drops the participant immediately. Called from the grace timer and
// by media-transport participant-left purges.
func (r *Roster) Remove(id string) {
	if t, ok := r.pending[id]; ok {
		t.Stop()
		delete(r.pending, id)
	}
	delete(r.participants, id)
	delete(r.raisedHands, id)
}

func (r *Roster) Get(id string) (*Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

// Participants returns the roster ordered by display name for stable
// presentation.
func (r *Roster) Participants() []*Participant {
	out := make([]*Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserName == out[j].UserName {
			return out[i].UserID < out[j].UserID
		}
		return out[i].UserName < out[j].UserName
	})
	return out
}

func (r *Roster) RaiseHand(id, name string) {
	r.raisedHands[id] = name
	if p, ok := r.participants[id]; ok {
		p.HandRaised = true
	}
}

func (r *Roster) LowerHand(id string) {
	delete(r.raisedHands, id)
	if p, ok := r.participants[id]; ok {
		p.HandRaised = false
	}
}

func (r *Roster) LowerAllHands() {
	r.raisedHands = make(map[string]string)
	for _, p := range r.participants {
		p.HandRaised = false
	}
}

func (r *Roster) HandRaised(id string) bool {
	_, ok := r.raisedHands[id]
	return ok
}

func (r *Roster) RaisedHands() map[string]string {
	out := make(map[string]string, len(r.raisedHands))
	for id, name := range r.raisedHands {
		out[id] = name
	}
	return out
}

// Clear cancels pending removals and empties the roster, for teardown.
func (r *Roster) Clear() {
	for id, t := range r.pending {
		t.Stop()
		delete(r.pending, id)
	}
	r.participants = make(map[string]*Participant)
	r.raisedHands = make(map[string]string)
}
