package media

import (
	"context"
	"errors"
)

type Kind string

const (
	KindAudio  Kind = "audio"
	KindVideo  Kind = "video"
	KindScreen Kind = "screen"
)

// ErrCaptureCancelled is returned when the user dismisses the OS screen
// picker. Callers treat it as a normal negative outcome, not a failure.
var ErrCaptureCancelled = errors.New("capture cancelled by user")

// JoinCredential is the short-lived room credential served by
// GET /v1/classes/{id}/token.
type JoinCredential struct {
	Token       string `json:"token"`
	ChannelName string `json:"channelName"`
	UID         string `json:"uid"`
}

// Transport adapts the permission/track model onto a real-time routing
// service. Publish and Unpublish are idempotent: repeating either call for
// the same track is a no-op, because concurrent toggle attempts are
// expected upstream.
type Transport interface {
	// Join connects to the media room and returns the local participant id.
	Join(ctx context.Context, cred JoinCredential) (string, error)

	Publish(ctx context.Context, t *LocalTrack) error
	Unpublish(ctx context.Context, t *LocalTrack) error

	// Events delivers remote-track lifecycle and audio-level reports. The
	// channel closes after Leave.
	Events() <-chan TransportEvent

	// Leave disconnects and is safe to call at any time, including before a
	// successful Join or more than once.
	Leave() error
}

// TransportEvent is one of TrackAnnounced, TrackWithdrawn, ParticipantLeft
// or AudioLevels.
type TransportEvent any

type TrackAnnounced struct {
	ParticipantID string
	Kind          Kind
}

type TrackWithdrawn struct {
	ParticipantID string
	Kind          Kind
}

type ParticipantLeft struct {
	ParticipantID string
}

// AudioLevels reports per-participant audio energy in [0, 1].
type AudioLevels struct {
	Levels map[string]float64
}
