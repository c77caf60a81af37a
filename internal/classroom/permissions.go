package classroom

import "github.com/edutalksorg/liveclass/internal/signaling"

type Capability string

const (
	CapAudio  Capability = "audio"
	CapVideo  Capability = "video"
	CapScreen Capability = "screen"
	CapChat   Capability = "chat"
)

// Permissions is this client's replica of the room-wide lock flags and the
// per-capability grant/block sets. Every client rebuilds the same replica
// from the same ordered event stream; there is no central authority to
// query.
//
// Known limitation: replicas can diverge permanently if a client misses an
// event across a reconnect gap. The roster has a full-snapshot resync
// (current_users) but permissions do not.
type Permissions struct {
	locks   map[Capability]bool
	granted map[Capability]map[string]bool
	blocked map[Capability]map[string]bool
}

func NewPermissions() *Permissions {
	p := &Permissions{
		locks:   make(map[Capability]bool),
		granted: make(map[Capability]map[string]bool),
		blocked: make(map[Capability]map[string]bool),
	}
	for _, c := range []Capability{CapAudio, CapVideo, CapScreen, CapChat} {
		p.granted[c] = make(map[string]bool)
		p.blocked[c] = make(map[string]bool)
	}
	return p
}

func (p *Permissions) Locked(c Capability) bool {
	return p.locks[c]
}

func (p *Permissions) SetLock(c Capability, locked bool) {
	p.locks[c] = locked
}

func (p *Permissions) Granted(c Capability, id string) bool {
	return p.granted[c][id]
}

func (p *Permissions) Blocked(c Capability, id string) bool {
	return p.blocked[c][id]
}

// Grant adds id to the grant set and lifts any standing block, which is the
// only way out of the block set.
func (p *Permissions) Grant(c Capability, id string) {
	p.granted[c][id] = true
	delete(p.blocked[c], id)
}

// Block revokes any grant and pins the participant below the room-wide
// lock: no lock change re-admits them, only an explicit Grant.
func (p *Permissions) Block(c Capability, id string) {
	delete(p.granted[c], id)
	p.blocked[c][id] = true
}

func (p *Permissions) ClearGrants(c Capability) {
	p.granted[c] = make(map[string]bool)
}

func (p *Permissions) ClearBlocks(c Capability) {
	p.blocked[c] = make(map[string]bool)
}

// CanActivate is the single decision function consulted before any local
// capability toggle. Instructors pass unconditionally. A student passes iff
// they are not blocked and either the room-wide lock is off or they hold an
// explicit grant. The reason string is user-facing; denials must never be
// silent.
func (p *Permissions) CanActivate(c Capability, role, selfID string) (bool, string) {
	if role == signaling.RoleInstructor {
		return true, ""
	}
	if p.blocked[c][selfID] {
		return false, "no permission: raise your hand or wait for the teacher to allow you"
	}
	if p.locks[c] && !p.granted[c][selfID] {
		return false, "no permission: raise your hand or wait for the teacher to allow you"
	}
	return true, ""
}
