package main

import (
	"encoding/json"

	"github.com/edutalksorg/liveclass/internal/signaling"
)

// rebroadcastNames maps each actor-side emit to the event name it fans out
// as. Events relayed under their own name (whiteboard_draw, the four
// <kind>_status lock toggles) are listed identically.
var rebroadcastNames = map[string]string{
	"send_message":                   "receive_message",
	"raise_hand":                     "hand_raised",
	"lower_hand":                     "hand_lowered",
	"approve_hand":                   "hand_approved",
	"lower_all_hands":                "all_hands_lowered",
	"chat_status":                    "chat_status",
	"audio_status":                   "audio_status",
	"video_status":                   "video_status",
	"screen_status":                  "screen_status",
	"admin_mute_student":             "force_mute_student",
	"admin_mute_all":                 "force_mute_all",
	"admin_grant_unmute":             "grant_unmute_permission",
	"admin_unlock_all":               "unlock_all_mics",
	"admin_request_unmute":           "request_unmute_student",
	"request_screen_share":           "receive_screen_share_request",
	"approve_screen_share":           "screen_share_approved",
	"share_screen":                   "screen_share_status",
	"admin_stop_screen_share":        "force_stop_screen_share",
	"admin_stop_all_screen_share":    "force_stop_all_screen_share",
	"admin_grant_screen_share":       "grant_screen_share_permission",
	"admin_unlock_all_screen_shares": "unlock_all_screen_shares",
	"toggle_whiteboard_visibility":   "whiteboard_visibility",
	"whiteboard_draw":                "whiteboard_draw",
	"whiteboard_clear":               "whiteboard_clear",
	"send_reaction":                  "receive_reaction",
	"end_class":                      "class_ended",
}

// instructorOnly lists the emits gated on the sender's announced role. The
// gate trusts the role from join_class; a hardened deployment would verify
// it against the class record.
var instructorOnly = map[string]bool{
	"approve_hand":                   true,
	"lower_all_hands":                true,
	"chat_status":                    true,
	"audio_status":                   true,
	"video_status":                   true,
	"screen_status":                  true,
	"admin_mute_student":             true,
	"admin_mute_all":                 true,
	"admin_grant_unmute":             true,
	"admin_unlock_all":               true,
	"admin_request_unmute":           true,
	"approve_screen_share":           true,
	"admin_stop_screen_share":        true,
	"admin_stop_all_screen_share":    true,
	"admin_grant_screen_share":       true,
	"admin_unlock_all_screen_shares": true,
	"toggle_whiteboard_visibility":   true,
	"whiteboard_draw":                true,
	"whiteboard_clear":               true,
	"end_class":                      true,
}

// rebroadcast maps one client emit to the event the room receives. It
// returns ok=false for unknown names and for admin emits from
// non-instructors.
func rebroadcast(e signaling.Event, from signaling.Identity) (signaling.Event, bool) {
	name, known := rebroadcastNames[e.Type]
	if !known {
		return signaling.Event{}, false
	}
	if instructorOnly[e.Type] && from.Role != signaling.RoleInstructor {
		return signaling.Event{}, false
	}

	payload := e.Payload
	switch e.Type {
	case "raise_hand", "lower_hand":
		// {studentId, studentName} -> {id, name}
		var in struct {
			StudentID   string `json:"studentId"`
			StudentName string `json:"studentName"`
		}
		if err := json.Unmarshal(e.Payload, &in); err != nil {
			return signaling.Event{}, false
		}
		out, err := json.Marshal(signaling.HandRaised{ID: in.StudentID, Name: in.StudentName})
		if err != nil {
			return signaling.Event{}, false
		}
		payload = out
	case "lower_all_hands", "admin_mute_all", "admin_unlock_all",
		"admin_stop_all_screen_share", "admin_unlock_all_screen_shares",
		"whiteboard_clear", "end_class":
		payload = nil
	}

	return signaling.Event{Type: name, Payload: payload}, true
}
