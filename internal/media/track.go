package media

import (
	"context"
	"sync"
)

// Devices acquires hardware-backed captures. Opening a device is an awaited
// operation that may be refused by the OS; OpenScreen additionally goes
// through a user-driven picker and may return ErrCaptureCancelled.
type Devices interface {
	OpenMicrophone(ctx context.Context) (Capture, error)
	OpenCamera(ctx context.Context) (Capture, error)
	OpenScreen(ctx context.Context) (Capture, error)
}

// Capture is one acquired device handle. SetEnabled mutes or unmutes
// without releasing the hardware; Close releases it for good. The Ended
// channel is closed when the capture terminates for any reason: the user
// hitting "stop sharing" in the OS chrome, the device going away, or
// Close itself. Waiters must not assume it means an OS-level stop.
type Capture interface {
	SetEnabled(enabled bool)
	Close() error
	Ended() <-chan struct{}
}

// LocalTrack pairs a capture with its publication state. The track must be
// unpublished before its capture is closed or swapped for another device.
type LocalTrack struct {
	kind    Kind
	capture Capture

	mu        sync.Mutex
	enabled   bool
	published bool
}

func NewLocalTrack(kind Kind, capture Capture) *LocalTrack {
	return &LocalTrack{kind: kind, capture: capture}
}

func (t *LocalTrack) Kind() Kind       { return t.kind }
func (t *LocalTrack) Capture() Capture { return t.capture }

func (t *LocalTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enabled == enabled {
		return
	}
	t.enabled = enabled
	t.capture.SetEnabled(enabled)
}

func (t *LocalTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *LocalTrack) Published() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.published
}

// SetPublished records publication state; it is meant to be called by
// Transport implementations, not by consumers of the track.
func (t *LocalTrack) SetPublished(published bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.published = published
}

// Stop disables the track and releases the underlying device. Safe to call
// repeatedly; the capture's own Close must tolerate that.
func (t *LocalTrack) Stop() error {
	t.mu.Lock()
	t.enabled = false
	capture := t.capture
	t.mu.Unlock()
	capture.SetEnabled(false)
	return capture.Close()
}
