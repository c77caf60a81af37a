package classroom

import "github.com/edutalksorg/liveclass/internal/signaling"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives the short-lived user-facing toasts. Every permission
// denial and every device or transport error produces exactly one.
type Notifier interface {
	Notify(severity Severity, message string)
}

type NotifierFunc func(severity Severity, message string)

func (f NotifierFunc) Notify(severity Severity, message string) {
	f(severity, message)
}

// Listener is the presentation layer's view of state changes. The engine's
// contract is this interface, not any rendering: whatever UI is attached
// redraws from these callbacks instead of poking at engine internals.
type Listener interface {
	RosterChanged()
	PermissionsChanged()
	TracksChanged()
	ChatReceived(msg ChatEntry)
	ReactionReceived(r FloatingReaction)
	WhiteboardChanged()
	WhiteboardStroke(stroke signaling.WhiteboardDraw)
	WhiteboardCleared()
	ScreenShareRequested(studentID, studentName string)
	UnmuteRequested()
	ActiveSpeakerChanged(participantID string)
	SessionChanged()
	ClassEnded()
}

// NopListener satisfies Listener for embedders that only care about a few
// callbacks.
type NopListener struct{}

func (NopListener) RosterChanged()                        {}
func (NopListener) PermissionsChanged()                   {}
func (NopListener) TracksChanged()                        {}
func (NopListener) ChatReceived(ChatEntry)                {}
func (NopListener) ReactionReceived(FloatingReaction)     {}
func (NopListener) WhiteboardChanged()                    {}
func (NopListener) WhiteboardStroke(signaling.WhiteboardDraw) {}
func (NopListener) WhiteboardCleared()                    {}
func (NopListener) ScreenShareRequested(string, string)   {}
func (NopListener) UnmuteRequested()                      {}
func (NopListener) ActiveSpeakerChanged(string)           {}
func (NopListener) SessionChanged()                       {}
func (NopListener) ClassEnded()                           {}
