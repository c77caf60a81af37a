package classroom

import (
	"context"
	"time"

	"github.com/edutalksorg/liveclass/internal/data"
	"github.com/edutalksorg/liveclass/internal/signaling"
)

// endedRedirectDelay is how long a student's view lingers after class_ended
// before tearing down, giving the UI time to show the farewell and
// redirect.
const endedRedirectDelay = 3 * time.Second

// ApplySignal reconciles one inbound signaling event into local state.
// Every branch is safe to replay: applying the same event twice leaves the
// same end state as applying it once.
func (e *Engine) ApplySignal(ctx context.Context, ev any) {
	switch v := ev.(type) {
	case *signaling.CurrentUsers:
		e.mu.Lock()
		e.roster.Replace(v.Users)
		e.mu.Unlock()
		e.listener.RosterChanged()

	case *signaling.UserJoined:
		e.mu.Lock()
		e.roster.Upsert(v.Participant)
		e.mu.Unlock()
		e.listener.RosterChanged()

	case *signaling.UserLeft:
		e.mu.Lock()
		e.roster.ScheduleRemoval(v.UserID, LeaveGrace, func(id string) {
			e.mu.Lock()
			e.roster.Remove(id)
			e.mu.Unlock()
			e.listener.RosterChanged()
		})
		e.mu.Unlock()
		e.listener.RosterChanged()

	case *signaling.ChatMessage:
		e.applyChat(v)

	case *signaling.LockStatus:
		e.applyLock(ctx, v)

	case *signaling.HandRaised:
		e.mu.Lock()
		e.roster.RaiseHand(v.ID, v.Name)
		if v.ID == e.identity.UserID {
			e.handRaised = true
		}
		e.mu.Unlock()
		e.listener.RosterChanged()

	case *signaling.HandLowered:
		e.mu.Lock()
		e.roster.LowerHand(v.ID)
		if v.ID == e.identity.UserID {
			e.handRaised = false
		}
		e.mu.Unlock()
		e.listener.RosterChanged()

	case *signaling.AllHandsLowered:
		e.mu.Lock()
		e.roster.LowerAllHands()
		e.handRaised = false
		e.mu.Unlock()
		e.listener.RosterChanged()

	case *signaling.HandApproved:
		e.applyGrant(ctx, v.StudentID)

	case *signaling.GrantUnmute:
		e.applyGrant(ctx, v.StudentID)

	case *signaling.ForceMuteStudent:
		e.mu.Lock()
		e.perms.Block(CapAudio, v.StudentID)
		isSelf := v.StudentID == e.identity.UserID
		e.mu.Unlock()
		e.listener.PermissionsChanged()
		if isSelf {
			// Authoritative override: no permission re-check on the way down.
			e.forceMicOff(ctx)
			e.notifier.Notify(SeverityInfo, "you were muted by the teacher")
		}

	case *signaling.ForceMuteAll:
		e.mu.Lock()
		e.perms.ClearGrants(CapAudio)
		student := e.identity.Role != signaling.RoleInstructor
		if student {
			e.perms.SetLock(CapAudio, true)
			e.perms.Block(CapAudio, e.identity.UserID)
		}
		e.mu.Unlock()
		e.listener.PermissionsChanged()
		if student {
			e.forceMicOff(ctx)
			e.notifier.Notify(SeverityInfo, "the teacher muted everyone")
		}

	case *signaling.UnlockAllMics:
		e.mu.Lock()
		e.perms.ClearBlocks(CapAudio)
		if e.identity.Role != signaling.RoleInstructor {
			e.perms.SetLock(CapAudio, false)
		}
		e.mu.Unlock()
		e.listener.PermissionsChanged()

	case *signaling.RequestUnmute:
		if v.StudentID == e.identity.UserID {
			e.notifier.Notify(SeverityInfo, "the teacher is asking you to unmute")
			e.listener.UnmuteRequested()
		}

	case *signaling.ScreenShareRequest:
		if e.identity.Role == signaling.RoleInstructor {
			e.listener.ScreenShareRequested(v.StudentID, v.StudentName)
		}

	case *signaling.ScreenShareApproved:
		e.mu.Lock()
		e.perms.Grant(CapScreen, v.StudentID)
		isSelf := v.StudentID == e.identity.UserID
		if isSelf {
			e.perms.SetLock(CapScreen, false)
		}
		e.mu.Unlock()
		e.listener.PermissionsChanged()
		if isSelf {
			// Approval does not start the share; the student still has to
			// toggle it themselves.
			e.notifier.Notify(SeveritySuccess, "you can share your screen now")
		}

	case *signaling.ScreenShareStatus:
		e.applyShareStatus(ctx, v)

	case *signaling.ForceStopScreenShare:
		e.mu.Lock()
		e.perms.Block(CapScreen, v.StudentID)
		isSelf := v.StudentID == e.identity.UserID
		sharing := e.isScreenSharing
		e.mu.Unlock()
		e.listener.PermissionsChanged()
		if isSelf && sharing {
			e.stopScreenShare(ctx, true)
			e.listener.TracksChanged()
			e.notifier.Notify(SeverityInfo, "the teacher stopped your screen share")
		}

	case *signaling.ForceStopAllScreenShare:
		e.mu.Lock()
		e.perms.ClearGrants(CapScreen)
		student := e.identity.Role != signaling.RoleInstructor
		if student {
			e.perms.SetLock(CapScreen, true)
			e.perms.Block(CapScreen, e.identity.UserID)
		}
		sharing := e.isScreenSharing
		e.mu.Unlock()
		e.listener.PermissionsChanged()
		if student && sharing {
			e.stopScreenShare(ctx, true)
			e.listener.TracksChanged()
		}

	case *signaling.GrantScreenShare:
		e.mu.Lock()
		e.perms.Grant(CapScreen, v.StudentID)
		if v.StudentID == e.identity.UserID {
			e.perms.SetLock(CapScreen, false)
		}
		e.mu.Unlock()
		e.listener.PermissionsChanged()

	case *signaling.UnlockAllScreenShares:
		e.mu.Lock()
		e.perms.ClearBlocks(CapScreen)
		if e.identity.Role != signaling.RoleInstructor {
			e.perms.SetLock(CapScreen, false)
		}
		e.mu.Unlock()
		e.listener.PermissionsChanged()

	case *signaling.WhiteboardVisibility:
		e.applyWhiteboard(ctx, v.Show)

	case *signaling.WhiteboardDraw:
		e.listener.WhiteboardStroke(*v)

	case *signaling.WhiteboardClear:
		e.listener.WhiteboardCleared()

	case *signaling.Reaction:
		e.applyReaction(v)

	case *signaling.ClassEnded:
		e.mu.Lock()
		if e.session != nil {
			e.session.Status = data.ClassStatusCompleted
		}
		student := e.identity.Role != signaling.RoleInstructor
		e.mu.Unlock()
		e.listener.SessionChanged()
		e.listener.ClassEnded()
		if student {
			e.notifier.Notify(SeverityInfo, "the class has ended")
			e.clock.AfterFunc(endedRedirectDelay, e.Close)
		} else {
			e.Close()
		}

	default:
		e.logger.Printf("classroom: unhandled signaling event %T", ev)
	}
}

// applyLock handles the four <kind>_status lock broadcasts. When audio or
// video locks down, a student without a grant has the matching track forced
// off locally so published media can never contradict the lock.
func (e *Engine) applyLock(ctx context.Context, v *signaling.LockStatus) {
	c := Capability(v.Kind)

	e.mu.Lock()
	e.perms.SetLock(c, v.Locked)
	forced := v.Locked &&
		e.identity.Role != signaling.RoleInstructor &&
		!e.perms.Granted(c, e.identity.UserID)
	e.mu.Unlock()
	e.listener.PermissionsChanged()

	if !forced {
		return
	}
	switch c {
	case CapAudio:
		e.forceMicOff(ctx)
	case CapVideo:
		e.forceCameraOff(ctx)
	}
}

// applyGrant handles grant_unmute_permission and hand_approved, which share
// semantics: the participant joins the grant set, leaves the block set and
// the raised-hands roster. For self, local lock flags clear and the
// microphone and camera come back automatically so the approval is
// instantly productive.
func (e *Engine) applyGrant(ctx context.Context, studentID string) {
	e.mu.Lock()
	e.perms.Grant(CapAudio, studentID)
	e.perms.Grant(CapVideo, studentID)
	e.roster.LowerHand(studentID)
	isSelf := studentID == e.identity.UserID
	if isSelf {
		e.handRaised = false
		e.perms.SetLock(CapAudio, false)
		e.perms.SetLock(CapVideo, false)
		e.perms.SetLock(CapScreen, false)
	}
	e.mu.Unlock()

	e.listener.PermissionsChanged()
	e.listener.RosterChanged()

	if isSelf {
		e.notifier.Notify(SeveritySuccess, "you can speak now")
		e.enableOnGrant(ctx)
	}
}

// applyShareStatus consumes the room's only truth for who is on stage.
// A new sharer replaces the previous one atomically, and a stale local
// share (we thought we were sharing, the room says someone else is) is
// cleaned up without re-announcing.
func (e *Engine) applyShareStatus(ctx context.Context, v *signaling.ScreenShareStatus) {
	e.mu.Lock()
	staleSelf := false
	if v.Allowed {
		staleSelf = e.isScreenSharing && v.StudentID != e.identity.UserID
		e.sharerID = v.StudentID
	} else if e.sharerID == v.StudentID {
		e.sharerID = ""
	}
	e.mu.Unlock()

	if staleSelf {
		e.stopScreenShare(ctx, false)
	}
	e.listener.TracksChanged()
}

// applyWhiteboard mirrors the instructor's whiteboard toggle. Whiteboard
// and screen share are mutually exclusive on the main stage, so showing the
// board stops a local share.
func (e *Engine) applyWhiteboard(ctx context.Context, show bool) {
	e.mu.Lock()
	e.whiteboardVisible = show
	stopShare := show && e.isScreenSharing
	e.mu.Unlock()

	if stopShare {
		e.stopScreenShare(ctx, true)
		e.listener.TracksChanged()
	}
	e.listener.WhiteboardChanged()
}

func (e *Engine) applyChat(v *signaling.ChatMessage) {
	entry := ChatEntry{
		SenderName: v.SenderName,
		Role:       v.Role,
		Body:       v.Message,
		Timestamp:  time.UnixMilli(v.Timestamp),
	}
	e.mu.Lock()
	e.chat = append(e.chat, entry)
	if !e.chatFocused && v.SenderName != e.identity.UserName {
		e.unread++
	}
	e.mu.Unlock()
	e.listener.ChatReceived(entry)
}

func (e *Engine) applyReaction(v *signaling.Reaction) {
	r := FloatingReaction{Emoji: v.Reaction, SenderName: v.StudentName}
	e.mu.Lock()
	e.reactions = append(e.reactions, r)
	e.mu.Unlock()

	e.clock.AfterFunc(ReactionTTL, func() {
		e.mu.Lock()
		for i, existing := range e.reactions {
			if existing == r {
				e.reactions = append(e.reactions[:i], e.reactions[i+1:]...)
				break
			}
		}
		e.mu.Unlock()
	})
	e.listener.ReactionReceived(r)
}
