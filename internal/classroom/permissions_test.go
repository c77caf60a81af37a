package classroom

import (
	"testing"

	"github.com/edutalksorg/liveclass/internal/signaling"
)

func TestCanActivate(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		locked  bool
		granted bool
		blocked bool
		want    bool
	}{
		{name: "instructor unlocked", role: signaling.RoleInstructor, want: true},
		{name: "instructor locked", role: signaling.RoleInstructor, locked: true, want: true},
		{name: "instructor blocked", role: signaling.RoleInstructor, blocked: true, want: true},
		{name: "student unlocked", role: signaling.RoleStudent, want: true},
		{name: "student locked", role: signaling.RoleStudent, locked: true, want: false},
		{name: "student locked with grant", role: signaling.RoleStudent, locked: true, granted: true, want: true},
		{name: "student blocked", role: signaling.RoleStudent, blocked: true, want: false},
		{name: "student blocked despite unlock", role: signaling.RoleStudent, locked: false, blocked: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPermissions()
			p.SetLock(CapAudio, tt.locked)
			if tt.granted {
				p.Grant(CapAudio, "s1")
			}
			if tt.blocked {
				p.Block(CapAudio, "s1")
			}

			got, reason := p.CanActivate(CapAudio, tt.role, "s1")
			if got != tt.want {
				t.Errorf("CanActivate = %t, want %t", got, tt.want)
			}
			if !got && reason == "" {
				t.Error("denial must carry a user-facing reason")
			}
			if got && reason != "" {
				t.Errorf("allowed result carried reason %q", reason)
			}
		})
	}
}

// A blocked student must stay blocked across any sequence of lock toggles.
// Only an explicit grant re-admits them.
func TestBlockSurvivesLockToggles(t *testing.T) {
	p := NewPermissions()
	p.Block(CapAudio, "s1")

	for _, locked := range []bool{true, false, true, false} {
		p.SetLock(CapAudio, locked)
		if ok, _ := p.CanActivate(CapAudio, signaling.RoleStudent, "s1"); ok {
			t.Fatalf("blocked student passed with lock=%t", locked)
		}
	}

	p.Grant(CapAudio, "s1")
	if ok, _ := p.CanActivate(CapAudio, signaling.RoleStudent, "s1"); !ok {
		t.Error("grant must lift the block")
	}
}

func TestBlockRevokesGrant(t *testing.T) {
	p := NewPermissions()
	p.SetLock(CapAudio, true)
	p.Grant(CapAudio, "s1")
	p.Block(CapAudio, "s1")

	if p.Granted(CapAudio, "s1") {
		t.Error("block must revoke the grant")
	}
	if ok, _ := p.CanActivate(CapAudio, signaling.RoleStudent, "s1"); ok {
		t.Error("blocked student must not pass")
	}
}

func TestClearGrantsAndBlocks(t *testing.T) {
	p := NewPermissions()
	p.SetLock(CapScreen, true)
	p.Grant(CapScreen, "s1")
	p.Block(CapScreen, "s2")

	p.ClearGrants(CapScreen)
	if ok, _ := p.CanActivate(CapScreen, signaling.RoleStudent, "s1"); ok {
		t.Error("cleared grant must not pass under lock")
	}

	p.ClearBlocks(CapScreen)
	p.SetLock(CapScreen, false)
	if ok, _ := p.CanActivate(CapScreen, signaling.RoleStudent, "s2"); !ok {
		t.Error("cleared block must pass once the lock lifts")
	}
}

func TestCapabilitiesAreIndependent(t *testing.T) {
	p := NewPermissions()
	p.SetLock(CapAudio, true)
	p.Block(CapVideo, "s1")

	if ok, _ := p.CanActivate(CapChat, signaling.RoleStudent, "s1"); !ok {
		t.Error("chat must be unaffected by audio lock and video block")
	}
	if ok, _ := p.CanActivate(CapScreen, signaling.RoleStudent, "s1"); !ok {
		t.Error("screen must be unaffected by audio lock and video block")
	}
}
