package signaling

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    any
	}{
		{
			name: "current users",
			raw:  `{"type":"current_users","payload":{"users":[{"userId":"u1","userName":"Ada","role":"student","handRaised":true}]}}`,
			want: &CurrentUsers{Users: []Participant{{UserID: "u1", UserName: "Ada", Role: "student", HandRaised: true}}},
		},
		{
			name: "user joined",
			raw:  `{"type":"user_joined","payload":{"userId":"u2","userName":"Ben","role":"instructor"}}`,
			want: &UserJoined{Participant: Participant{UserID: "u2", UserName: "Ben", Role: "instructor"}},
		},
		{
			name: "user left",
			raw:  `{"type":"user_left","payload":{"userId":"u2"}}`,
			want: &UserLeft{UserID: "u2"},
		},
		{
			name: "chat",
			raw:  `{"type":"receive_message","payload":{"classId":"c1","message":"hi","senderName":"Ada","role":"student","timestamp":1700000000000}}`,
			want: &ChatMessage{ClassID: "c1", Message: "hi", SenderName: "Ada", Role: "student", Timestamp: 1700000000000},
		},
		{
			name: "audio lock",
			raw:  `{"type":"audio_status","payload":{"locked":true}}`,
			want: &LockStatus{Kind: "audio", Locked: true},
		},
		{
			name: "chat unlock",
			raw:  `{"type":"chat_status","payload":{"locked":false}}`,
			want: &LockStatus{Kind: "chat", Locked: false},
		},
		{
			name: "screen lock",
			raw:  `{"type":"screen_status","payload":{"locked":true}}`,
			want: &LockStatus{Kind: "screen", Locked: true},
		},
		{
			name: "hand raised",
			raw:  `{"type":"hand_raised","payload":{"id":"u1","name":"Ada"}}`,
			want: &HandRaised{ID: "u1", Name: "Ada"},
		},
		{
			name: "hand approved",
			raw:  `{"type":"hand_approved","payload":{"studentId":"u1"}}`,
			want: &HandApproved{StudentID: "u1"},
		},
		{
			name: "all hands lowered without payload",
			raw:  `{"type":"all_hands_lowered"}`,
			want: &AllHandsLowered{},
		},
		{
			name: "force mute student",
			raw:  `{"type":"force_mute_student","payload":{"studentId":"u1"}}`,
			want: &ForceMuteStudent{StudentID: "u1"},
		},
		{
			name: "grant unmute",
			raw:  `{"type":"grant_unmute_permission","payload":{"studentId":"u1"}}`,
			want: &GrantUnmute{StudentID: "u1"},
		},
		{
			name: "screen share status",
			raw:  `{"type":"screen_share_status","payload":{"allowed":true,"studentId":"u1"}}`,
			want: &ScreenShareStatus{Allowed: true, StudentID: "u1"},
		},
		{
			name: "screen share request",
			raw:  `{"type":"receive_screen_share_request","payload":{"studentId":"u1","studentName":"Ada"}}`,
			want: &ScreenShareRequest{StudentID: "u1", StudentName: "Ada"},
		},
		{
			name: "whiteboard visibility",
			raw:  `{"type":"whiteboard_visibility","payload":{"show":true}}`,
			want: &WhiteboardVisibility{Show: true},
		},
		{
			name: "reaction",
			raw:  `{"type":"receive_reaction","payload":{"reaction":"clap","studentName":"Ada"}}`,
			want: &Reaction{Reaction: "clap", StudentName: "Ada"},
		},
		{
			name: "class ended",
			raw:  `{"type":"class_ended"}`,
			want: &ClassEnded{},
		},
		{
			name: "class ended super variant",
			raw:  `{"type":"si_class_ended"}`,
			want: &ClassEnded{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			if err := json.Unmarshal([]byte(tt.raw), &e); err != nil {
				t.Fatalf("envelope: %v", err)
			}
			got, err := Decode(e)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("Decode = %s, want %s", gotJSON, wantJSON)
			}
			if gl, ok := got.(*LockStatus); ok {
				if gl.Kind != tt.want.(*LockStatus).Kind {
					t.Errorf("Kind = %q, want %q", gl.Kind, tt.want.(*LockStatus).Kind)
				}
			}
		})
	}
}

func TestDecodeUnknownEvent(t *testing.T) {
	_, err := Decode(Event{Type: "no_such_event"})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("err = %v, want ErrUnknownEvent", err)
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := Decode(Event{Type: "hand_raised", Payload: json.RawMessage(`"not an object"`)})
	if err == nil {
		t.Error("malformed payload must fail decode")
	}
	if errors.Is(err, ErrUnknownEvent) {
		t.Error("malformed payload is not an unknown event")
	}
}
