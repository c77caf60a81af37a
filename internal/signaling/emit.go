package signaling

import "time"

// Outbound payload shapes. Every emit carries the class id so the relay can
// scope the broadcast without tracking per-connection state beyond join.

type handAction struct {
	ClassID     string `json:"classId"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
}

type adminTarget struct {
	ClassID   string `json:"classId"`
	StudentID string `json:"studentId,omitempty"`
}

type lockToggle struct {
	ClassID string `json:"classId"`
	Locked  bool   `json:"locked"`
}

type shareScreen struct {
	ClassID   string `json:"classId"`
	StudentID string `json:"studentId"`
	Allowed   bool   `json:"allowed"`
}

type whiteboardToggle struct {
	ClassID string `json:"classId"`
	Show    bool   `json:"show"`
}

type whiteboardDrawOut struct {
	ClassID string `json:"classId"`
	WhiteboardDraw
}

type reactionOut struct {
	ClassID     string `json:"classId"`
	Reaction    string `json:"reaction"`
	StudentName string `json:"studentName"`
}

type classScoped struct {
	ClassID string `json:"classId"`
}

func (c *Client) SendMessage(body string) error {
	return c.Emit("send_message", ChatMessage{
		ClassID:    c.identity.ClassID,
		Message:    body,
		SenderName: c.identity.UserName,
		Role:       c.identity.Role,
		Timestamp:  time.Now().UnixMilli(),
	})
}

func (c *Client) RaiseHand() error {
	return c.Emit("raise_hand", handAction{c.identity.ClassID, c.identity.UserID, c.identity.UserName})
}

func (c *Client) LowerHand() error {
	return c.Emit("lower_hand", handAction{c.identity.ClassID, c.identity.UserID, c.identity.UserName})
}

func (c *Client) ApproveHand(studentID string) error {
	return c.Emit("approve_hand", adminTarget{c.identity.ClassID, studentID})
}

func (c *Client) LowerAllHands() error {
	return c.Emit("lower_all_hands", classScoped{c.identity.ClassID})
}

// SetLock toggles a room-wide lock; kind is one of chat, audio, video,
// screen and becomes the <kind>_status broadcast on the way back.
func (c *Client) SetLock(kind string, locked bool) error {
	return c.Emit(kind+"_status", lockToggle{c.identity.ClassID, locked})
}

func (c *Client) MuteStudent(studentID string) error {
	return c.Emit("admin_mute_student", adminTarget{c.identity.ClassID, studentID})
}

func (c *Client) MuteAll() error {
	return c.Emit("admin_mute_all", classScoped{c.identity.ClassID})
}

func (c *Client) GrantUnmute(studentID string) error {
	return c.Emit("admin_grant_unmute", adminTarget{c.identity.ClassID, studentID})
}

func (c *Client) UnlockAllMics() error {
	return c.Emit("admin_unlock_all", classScoped{c.identity.ClassID})
}

func (c *Client) RequestUnmute(studentID string) error {
	return c.Emit("admin_request_unmute", adminTarget{c.identity.ClassID, studentID})
}

func (c *Client) RequestScreenShare() error {
	return c.Emit("request_screen_share", handAction{c.identity.ClassID, c.identity.UserID, c.identity.UserName})
}

func (c *Client) ApproveScreenShare(studentID string) error {
	return c.Emit("approve_screen_share", adminTarget{c.identity.ClassID, studentID})
}

// ShareScreen announces that the local participant started (allowed=true)
// or stopped (allowed=false) sharing; the relay rebroadcasts it as
// screen_share_status, the single source of truth for who is on stage.
func (c *Client) ShareScreen(allowed bool) error {
	return c.Emit("share_screen", shareScreen{c.identity.ClassID, c.identity.UserID, allowed})
}

func (c *Client) StopStudentScreenShare(studentID string) error {
	return c.Emit("admin_stop_screen_share", adminTarget{c.identity.ClassID, studentID})
}

func (c *Client) StopAllScreenShares() error {
	return c.Emit("admin_stop_all_screen_share", classScoped{c.identity.ClassID})
}

func (c *Client) GrantScreenShare(studentID string) error {
	return c.Emit("admin_grant_screen_share", adminTarget{c.identity.ClassID, studentID})
}

func (c *Client) UnlockAllScreenShares() error {
	return c.Emit("admin_unlock_all_screen_shares", classScoped{c.identity.ClassID})
}

func (c *Client) ToggleWhiteboard(show bool) error {
	return c.Emit("toggle_whiteboard_visibility", whiteboardToggle{c.identity.ClassID, show})
}

func (c *Client) DrawWhiteboard(stroke WhiteboardDraw) error {
	return c.Emit("whiteboard_draw", whiteboardDrawOut{c.identity.ClassID, stroke})
}

func (c *Client) ClearWhiteboard() error {
	return c.Emit("whiteboard_clear", classScoped{c.identity.ClassID})
}

func (c *Client) SendReaction(emoji string) error {
	return c.Emit("send_reaction", reactionOut{c.identity.ClassID, emoji, c.identity.UserName})
}

func (c *Client) EndClass() error {
	return c.Emit("end_class", classScoped{c.identity.ClassID})
}
