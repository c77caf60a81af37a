package signaling

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownEvent = errors.New("unknown signaling event")

// Event is the wire envelope for every control-plane message. Payload stays
// raw until Decode maps the type name to a concrete payload struct.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Roles a participant can announce. Teacher-equivalent roles (admin,
// moderator) are normalized to RoleInstructor before they reach the engine.
const (
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

type Identity struct {
	ClassID   string `json:"classId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Role      string `json:"role"`
	ClassType string `json:"classType"`
}

type Participant struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	Role       string `json:"role"`
	AudioOn    bool   `json:"audioOn"`
	VideoOn    bool   `json:"videoOn"`
	HandRaised bool   `json:"handRaised"`
}

// Inbound payloads, one struct per event name.

type CurrentUsers struct {
	Users []Participant `json:"users"`
}

type UserJoined struct {
	Participant
}

type UserLeft struct {
	UserID   string `json:"userId"`
	UserName string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

type ChatMessage struct {
	ClassID    string `json:"classId"`
	Message    string `json:"message"`
	SenderName string `json:"senderName"`
	Role       string `json:"role"`
	Timestamp  int64  `json:"timestamp"`
}

// LockStatus is shared by chat_status, audio_status, video_status and
// screen_status; Kind is filled in from the event name during decode.
type LockStatus struct {
	Kind   string `json:"-"`
	Locked bool   `json:"locked"`
}

type HandRaised struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type HandLowered struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type HandApproved struct {
	StudentID string `json:"studentId"`
}

type AllHandsLowered struct{}

type ForceMuteStudent struct {
	StudentID string `json:"studentId"`
}

type ForceMuteAll struct{}

type GrantUnmute struct {
	StudentID string `json:"studentId"`
}

type UnlockAllMics struct{}

type RequestUnmute struct {
	StudentID string `json:"studentId"`
}

type ScreenShareRequest struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
}

type ScreenShareApproved struct {
	StudentID string `json:"studentId"`
}

type ScreenShareStatus struct {
	Allowed   bool   `json:"allowed"`
	StudentID string `json:"studentId"`
}

type ForceStopScreenShare struct {
	StudentID string `json:"studentId"`
}

type ForceStopAllScreenShare struct{}

type GrantScreenShare struct {
	StudentID string `json:"studentId"`
}

type UnlockAllScreenShares struct{}

type WhiteboardVisibility struct {
	Show bool `json:"show"`
}

type WhiteboardDraw struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	PrevX     *float64 `json:"prevX,omitempty"`
	PrevY     *float64 `json:"prevY,omitempty"`
	Color     string   `json:"color"`
	LineWidth float64  `json:"lineWidth"`
}

type WhiteboardClear struct{}

type Reaction struct {
	Reaction    string `json:"reaction"`
	StudentName string `json:"studentName"`
}

type ClassEnded struct{}

// Decode maps an envelope to its concrete payload. Unknown event names come
// back as ErrUnknownEvent so callers can log and drop them instead of
// reaching into an untyped map.
func Decode(e Event) (any, error) {
	var v any
	switch e.Type {
	case "current_users":
		v = &CurrentUsers{}
	case "user_joined":
		v = &UserJoined{}
	case "user_left":
		v = &UserLeft{}
	case "receive_message":
		v = &ChatMessage{}
	case "chat_status", "audio_status", "video_status", "screen_status":
		v = &LockStatus{}
	case "hand_raised":
		v = &HandRaised{}
	case "hand_lowered":
		v = &HandLowered{}
	case "hand_approved":
		v = &HandApproved{}
	case "all_hands_lowered":
		v = &AllHandsLowered{}
	case "force_mute_student":
		v = &ForceMuteStudent{}
	case "force_mute_all":
		v = &ForceMuteAll{}
	case "grant_unmute_permission":
		v = &GrantUnmute{}
	case "unlock_all_mics":
		v = &UnlockAllMics{}
	case "request_unmute_student":
		v = &RequestUnmute{}
	case "receive_screen_share_request":
		v = &ScreenShareRequest{}
	case "screen_share_approved":
		v = &ScreenShareApproved{}
	case "screen_share_status":
		v = &ScreenShareStatus{}
	case "force_stop_screen_share":
		v = &ForceStopScreenShare{}
	case "force_stop_all_screen_share":
		v = &ForceStopAllScreenShare{}
	case "grant_screen_share_permission":
		v = &GrantScreenShare{}
	case "unlock_all_screen_shares":
		v = &UnlockAllScreenShares{}
	case "whiteboard_visibility":
		v = &WhiteboardVisibility{}
	case "whiteboard_draw":
		v = &WhiteboardDraw{}
	case "whiteboard_clear":
		v = &WhiteboardClear{}
	case "receive_reaction":
		v = &Reaction{}
	case "class_ended", "si_class_ended":
		v = &ClassEnded{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}

	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, v); err != nil {
			return nil, fmt.Errorf("decoding %q payload: %w", e.Type, err)
		}
	}

	if ls, ok := v.(*LockStatus); ok {
		// "audio_status" -> "audio"
		ls.Kind = e.Type[:len(e.Type)-len("_status")]
	}
	return v, nil
}
