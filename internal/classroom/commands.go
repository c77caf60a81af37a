package classroom

import (
	"context"

	"github.com/edutalksorg/liveclass/internal/data"
	"github.com/edutalksorg/liveclass/internal/signaling"
)

// Student-side actions. Emits are fire-and-forget; local state settles when
// the server echo comes back through ApplySignal, except for the hand flag
// which flips optimistically so a raise/lower tap pair before any echo
// still lands on lowered.

func (e *Engine) RaiseHand() {
	e.mu.Lock()
	if e.closed || e.handRaised {
		e.mu.Unlock()
		return
	}
	e.handRaised = true
	e.mu.Unlock()

	if err := e.signaler.RaiseHand(); err != nil {
		e.logger.Printf("classroom: raise hand emit: %v", err)
	}
}

func (e *Engine) LowerHand() {
	e.mu.Lock()
	if e.closed || !e.handRaised {
		e.mu.Unlock()
		return
	}
	e.handRaised = false
	e.mu.Unlock()

	if err := e.signaler.LowerHand(); err != nil {
		e.logger.Printf("classroom: lower hand emit: %v", err)
	}
}

func (e *Engine) HandRaised() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handRaised
}

func (e *Engine) RequestScreenShare() {
	if err := e.signaler.RequestScreenShare(); err != nil {
		e.logger.Printf("classroom: share request emit: %v", err)
	}
	e.notifier.Notify(SeverityInfo, "asked the teacher to share your screen")
}

func (e *Engine) SendChat(body string) {
	e.mu.Lock()
	if ok, reason := e.perms.CanActivate(CapChat, e.identity.Role, e.identity.UserID); !ok {
		e.mu.Unlock()
		e.notifier.Notify(SeverityWarning, reason)
		return
	}
	e.mu.Unlock()

	if err := e.signaler.SendMessage(body); err != nil {
		e.logger.Printf("classroom: chat emit: %v", err)
	}
}

// SetChatFocused tracks whether the chat tray is open; focusing it clears
// the unread counter.
func (e *Engine) SetChatFocused(focused bool) {
	e.mu.Lock()
	e.chatFocused = focused
	if focused {
		e.unread = 0
	}
	e.mu.Unlock()
}

func (e *Engine) UnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unread
}

func (e *Engine) Chat() []ChatEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ChatEntry, len(e.chat))
	copy(out, e.chat)
	return out
}

func (e *Engine) SendReaction(emoji string) {
	if err := e.signaler.SendReaction(emoji); err != nil {
		e.logger.Printf("classroom: reaction emit: %v", err)
	}
}

func (e *Engine) Reactions() []FloatingReaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]FloatingReaction, len(e.reactions))
	copy(out, e.reactions)
	return out
}

// Instructor-side actions. Authorization is by announced role only; the
// relay applies the same weak check. A malicious client forging these is a
// trust-boundary problem for the signaling server, not this engine.

func (e *Engine) instructorOnly() bool {
	if e.identity.Role != signaling.RoleInstructor {
		e.notifier.Notify(SeverityWarning, "only the teacher can do that")
		return false
	}
	return true
}

func (e *Engine) ApproveHand(studentID string) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.ApproveHand(studentID); err != nil {
		e.logger.Printf("classroom: approve hand emit: %v", err)
	}
}

func (e *Engine) LowerAllHands() {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.LowerAllHands(); err != nil {
		e.logger.Printf("classroom: lower all hands emit: %v", err)
	}
}

// SetLock toggles one of the four room-wide locks. The local replica
// updates when the broadcast echoes back, same as on every other client.
func (e *Engine) SetLock(c Capability, locked bool) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.SetLock(string(c), locked); err != nil {
		e.logger.Printf("classroom: lock emit: %v", err)
	}
}

func (e *Engine) MuteStudent(studentID string) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.MuteStudent(studentID); err != nil {
		e.logger.Printf("classroom: mute student emit: %v", err)
	}
}

func (e *Engine) MuteAll() {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.MuteAll(); err != nil {
		e.logger.Printf("classroom: mute all emit: %v", err)
	}
}

func (e *Engine) GrantUnmutePermission(studentID string) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.GrantUnmute(studentID); err != nil {
		e.logger.Printf("classroom: grant unmute emit: %v", err)
	}
}

func (e *Engine) UnlockAllMics() {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.UnlockAllMics(); err != nil {
		e.logger.Printf("classroom: unlock mics emit: %v", err)
	}
}

func (e *Engine) RequestStudentUnmute(studentID string) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.RequestUnmute(studentID); err != nil {
		e.logger.Printf("classroom: request unmute emit: %v", err)
	}
}

func (e *Engine) ApproveScreenShare(studentID string) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.ApproveScreenShare(studentID); err != nil {
		e.logger.Printf("classroom: approve share emit: %v", err)
	}
}

func (e *Engine) StopStudentScreenShare(studentID string) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.StopStudentScreenShare(studentID); err != nil {
		e.logger.Printf("classroom: stop share emit: %v", err)
	}
}

func (e *Engine) StopAllScreenShares() {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.StopAllScreenShares(); err != nil {
		e.logger.Printf("classroom: stop all shares emit: %v", err)
	}
}

func (e *Engine) GrantScreenSharePermission(studentID string) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.GrantScreenShare(studentID); err != nil {
		e.logger.Printf("classroom: grant share emit: %v", err)
	}
}

func (e *Engine) UnlockAllScreenShares() {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.UnlockAllScreenShares(); err != nil {
		e.logger.Printf("classroom: unlock shares emit: %v", err)
	}
}

// ToggleWhiteboard shows or hides the board for everyone. Showing it while
// the local screen share is up stops the share first; the two never occupy
// the stage together.
func (e *Engine) ToggleWhiteboard(ctx context.Context, show bool) {
	if !e.instructorOnly() {
		return
	}

	e.mu.Lock()
	stopShare := show && e.isScreenSharing
	e.whiteboardVisible = show
	e.mu.Unlock()

	if stopShare {
		e.stopScreenShare(ctx, true)
		e.listener.TracksChanged()
	}

	if err := e.signaler.ToggleWhiteboard(show); err != nil {
		e.logger.Printf("classroom: whiteboard toggle emit: %v", err)
	}
	e.listener.WhiteboardChanged()
}

func (e *Engine) WhiteboardVisible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.whiteboardVisible
}

// Draw relays one stroke. Drawing is instructor-only, matching the board's
// ownership model.
func (e *Engine) Draw(stroke signaling.WhiteboardDraw) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.DrawWhiteboard(stroke); err != nil {
		e.logger.Printf("classroom: draw emit: %v", err)
	}
}

func (e *Engine) ClearWhiteboard() {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.ClearWhiteboard(); err != nil {
		e.logger.Printf("classroom: clear emit: %v", err)
	}
}

// EndClass ends the session for everyone and marks it completed upstream.
func (e *Engine) EndClass(ctx context.Context) {
	if !e.instructorOnly() {
		return
	}
	if err := e.signaler.EndClass(); err != nil {
		e.logger.Printf("classroom: end class emit: %v", err)
	}
	if err := e.service.MarkEnded(ctx, e.identity.ClassID); err != nil {
		e.logger.Printf("classroom: mark ended: %v", err)
	}
	e.Close()
}

// Snapshot accessors for the presentation layer.

func (e *Engine) Session() *data.Class {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	s := *e.session
	return &s
}

func (e *Engine) Participants() []*Participant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roster.Participants()
}

func (e *Engine) RaisedHands() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roster.RaisedHands()
}

// CanActivate exposes the decision function so the UI can grey out toggles
// with the same logic the toggles themselves use.
func (e *Engine) CanActivate(c Capability) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.perms.CanActivate(c, e.identity.Role, e.identity.UserID)
}

func (e *Engine) Locked(c Capability) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.perms.Locked(c)
}
