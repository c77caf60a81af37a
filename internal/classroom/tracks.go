package classroom

import (
	"context"
	"errors"

	"github.com/edutalksorg/liveclass/internal/media"
)

// MicOn reports whether the local microphone is enabled and published.
func (e *Engine) MicOn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mic != nil && e.mic.Enabled()
}

func (e *Engine) CameraOn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera != nil && e.camera.Enabled()
}

func (e *Engine) IsScreenSharing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isScreenSharing
}

// ToggleMic flips the microphone, guarded by CanActivate on the way up.
// While a toggle's own publish call is in flight further toggles are
// rejected so a double tap cannot interleave publish/unpublish.
func (e *Engine) ToggleMic(ctx context.Context) {
	e.mu.Lock()
	if e.closed || e.micBusy {
		e.mu.Unlock()
		return
	}
	turningOn := e.mic == nil || !e.mic.Enabled()
	if turningOn {
		if ok, reason := e.perms.CanActivate(CapAudio, e.identity.Role, e.identity.UserID); !ok {
			e.mu.Unlock()
			e.notifier.Notify(SeverityWarning, reason)
			return
		}
	}
	e.micBusy = true
	e.mu.Unlock()

	if turningOn {
		e.enableMic(ctx)
	} else {
		e.disableMic(ctx)
	}

	e.mu.Lock()
	e.micBusy = false
	e.mu.Unlock()
	e.listener.TracksChanged()
}

// enableMic creates the track on first use and publishes it. Device
// refusal is a non-fatal notification; the capability stays off with no
// track.
func (e *Engine) enableMic(ctx context.Context) {
	e.mu.Lock()
	track := e.mic
	e.mu.Unlock()

	if track == nil {
		capture, err := e.devices.OpenMicrophone(ctx)
		if err != nil {
			e.logger.Printf("classroom: open microphone: %v", err)
			e.notifier.Notify(SeverityWarning, "microphone is not available")
			return
		}
		track = media.NewLocalTrack(media.KindAudio, capture)
		e.mu.Lock()
		e.mic = track
		e.mu.Unlock()
	}

	track.SetEnabled(true)
	if err := e.transport.Publish(ctx, track); err != nil {
		e.logger.Printf("classroom: publish mic: %v", err)
		e.notifier.Notify(SeverityWarning, "could not send your audio")
		track.SetEnabled(false)
	}
}

func (e *Engine) disableMic(ctx context.Context) {
	e.mu.Lock()
	track := e.mic
	e.mu.Unlock()
	if track == nil {
		return
	}
	track.SetEnabled(false)
	if err := e.transport.Unpublish(ctx, track); err != nil {
		e.logger.Printf("classroom: unpublish mic: %v", err)
	}
}

// forceMicOff is the authoritative override path: no permission re-check,
// always succeeds, and applying it twice is the same as once.
func (e *Engine) forceMicOff(ctx context.Context) {
	e.disableMic(ctx)
	e.listener.TracksChanged()
}

func (e *Engine) ToggleCamera(ctx context.Context) {
	e.mu.Lock()
	if e.closed || e.cameraBusy {
		e.mu.Unlock()
		return
	}
	if e.isScreenSharing {
		// At most one outgoing video track; the camera comes back when the
		// share stops.
		e.mu.Unlock()
		e.notifier.Notify(SeverityInfo, "stop sharing your screen to use the camera")
		return
	}
	turningOn := e.camera == nil || !e.camera.Enabled()
	if turningOn {
		if ok, reason := e.perms.CanActivate(CapVideo, e.identity.Role, e.identity.UserID); !ok {
			e.mu.Unlock()
			e.notifier.Notify(SeverityWarning, reason)
			return
		}
	}
	e.cameraBusy = true
	e.mu.Unlock()

	if turningOn {
		e.enableCamera(ctx)
	} else {
		e.disableCamera(ctx)
	}

	e.mu.Lock()
	e.cameraBusy = false
	e.mu.Unlock()
	e.listener.TracksChanged()
}

func (e *Engine) enableCamera(ctx context.Context) {
	e.mu.Lock()
	track := e.camera
	e.mu.Unlock()

	if track == nil {
		capture, err := e.devices.OpenCamera(ctx)
		if err != nil {
			e.logger.Printf("classroom: open camera: %v", err)
			e.notifier.Notify(SeverityWarning, "camera is not available")
			return
		}
		track = media.NewLocalTrack(media.KindVideo, capture)
		e.mu.Lock()
		e.camera = track
		e.mu.Unlock()
	}

	track.SetEnabled(true)
	if err := e.transport.Publish(ctx, track); err != nil {
		e.logger.Printf("classroom: publish camera: %v", err)
		e.notifier.Notify(SeverityWarning, "could not send your video")
		track.SetEnabled(false)
	}
}

func (e *Engine) disableCamera(ctx context.Context) {
	e.mu.Lock()
	track := e.camera
	e.mu.Unlock()
	if track == nil {
		return
	}
	track.SetEnabled(false)
	if err := e.transport.Unpublish(ctx, track); err != nil {
		e.logger.Printf("classroom: unpublish camera: %v", err)
	}
}

func (e *Engine) forceCameraOff(ctx context.Context) {
	e.disableCamera(ctx)
	e.listener.TracksChanged()
}

// enableOnGrant re-enables microphone and camera after an approval so the
// grant is instantly productive. Tracks are created if they never existed.
func (e *Engine) enableOnGrant(ctx context.Context) {
	e.enableMic(ctx)
	e.mu.Lock()
	sharing := e.isScreenSharing
	e.mu.Unlock()
	if !sharing {
		e.enableCamera(ctx)
	}
	e.listener.TracksChanged()
}

// ToggleScreenShare starts or stops the local screen share.
func (e *Engine) ToggleScreenShare(ctx context.Context) {
	e.mu.Lock()
	if e.closed || e.screenBusy {
		e.mu.Unlock()
		return
	}
	starting := !e.isScreenSharing
	if starting {
		if ok, reason := e.perms.CanActivate(CapScreen, e.identity.Role, e.identity.UserID); !ok {
			e.mu.Unlock()
			e.notifier.Notify(SeverityWarning, reason)
			return
		}
		if e.sharerID != "" && e.sharerID != e.identity.UserID {
			e.mu.Unlock()
			e.notifier.Notify(SeverityInfo, "someone else is already sharing their screen")
			return
		}
	}
	e.screenBusy = true
	e.mu.Unlock()

	if starting {
		e.startScreenShare(ctx)
	} else {
		e.stopScreenShare(ctx, true)
	}

	e.mu.Lock()
	e.screenBusy = false
	e.mu.Unlock()
	e.listener.TracksChanged()
}

// startScreenShare swaps the outgoing video from camera to screen. The
// camera is unpublished strictly before the screen track is published
// because the transport carries at most one video track per participant.
func (e *Engine) startScreenShare(ctx context.Context) {
	capture, err := e.devices.OpenScreen(ctx)
	if err != nil {
		if errors.Is(err, media.ErrCaptureCancelled) {
			// The user dismissed the OS picker; nothing to report.
			return
		}
		e.logger.Printf("classroom: open screen capture: %v", err)
		e.notifier.Notify(SeverityWarning, "screen capture is not available")
		return
	}

	e.mu.Lock()
	camera := e.camera
	e.cameraWasOn = camera != nil && camera.Enabled()
	e.mu.Unlock()

	if camera != nil && camera.Published() {
		camera.SetEnabled(false)
		if err := e.transport.Unpublish(ctx, camera); err != nil {
			e.logger.Printf("classroom: unpublish camera for share: %v", err)
			capture.Close()
			e.notifier.Notify(SeverityWarning, "could not start the screen share")
			return
		}
	}

	track := media.NewLocalTrack(media.KindScreen, capture)
	track.SetEnabled(true)
	if err := e.transport.Publish(ctx, track); err != nil {
		e.logger.Printf("classroom: publish screen: %v", err)
		e.notifier.Notify(SeverityWarning, "could not start the screen share")
		track.Stop()
		return
	}

	e.mu.Lock()
	e.screen = track
	e.isScreenSharing = true
	e.sharerID = e.identity.UserID
	wasWhiteboard := e.whiteboardVisible
	e.whiteboardVisible = false
	e.mu.Unlock()

	// The share and the whiteboard are mutually exclusive on stage.
	if wasWhiteboard {
		if err := e.signaler.ToggleWhiteboard(false); err != nil {
			e.logger.Printf("classroom: whiteboard toggle emit: %v", err)
		}
		e.listener.WhiteboardChanged()
	}

	if err := e.signaler.ShareScreen(true); err != nil {
		e.logger.Printf("classroom: share emit: %v", err)
	}

	// The OS chrome has its own stop button; funnel it into the same
	// cleanup as a manual stop.
	go func() {
		<-capture.Ended()
		e.mu.Lock()
		stillSharing := e.isScreenSharing && e.screen == track
		e.mu.Unlock()
		if stillSharing {
			e.stopScreenShare(context.Background(), true)
			e.listener.TracksChanged()
		}
	}()
}

// stopScreenShare releases the screen device and, when the camera was on
// before the swap, republishes it. announce=false is the forced path where
// the stop order came from the room.
func (e *Engine) stopScreenShare(ctx context.Context, announce bool) {
	e.mu.Lock()
	track := e.screen
	e.screen = nil
	wasSharing := e.isScreenSharing
	e.isScreenSharing = false
	if e.sharerID == e.identity.UserID {
		e.sharerID = ""
	}
	restoreCamera := e.cameraWasOn
	e.cameraWasOn = false
	e.mu.Unlock()

	if track != nil {
		if err := e.transport.Unpublish(ctx, track); err != nil {
			e.logger.Printf("classroom: unpublish screen: %v", err)
		}
		if err := track.Stop(); err != nil {
			e.logger.Printf("classroom: stop screen capture: %v", err)
		}
	}

	if restoreCamera {
		e.enableCamera(ctx)
	}

	if wasSharing && announce {
		if err := e.signaler.ShareScreen(false); err != nil {
			e.logger.Printf("classroom: share emit: %v", err)
		}
	}
}

// SharerID is the id of the participant currently on stage, or "".
func (e *Engine) SharerID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sharerID
}

func (e *Engine) ActiveSpeaker() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaker.Active()
}

// ApplyTransport consumes one media-transport callback.
func (e *Engine) ApplyTransport(ev media.TransportEvent) {
	switch v := ev.(type) {
	case media.TrackAnnounced:
		e.mu.Lock()
		if e.remoteTracks[v.ParticipantID] == nil {
			e.remoteTracks[v.ParticipantID] = make(map[media.Kind]bool)
		}
		e.remoteTracks[v.ParticipantID][v.Kind] = true
		e.updatePresenceFromTracks(v.ParticipantID)
		e.mu.Unlock()
		e.listener.RosterChanged()
	case media.TrackWithdrawn:
		e.mu.Lock()
		if tracks, ok := e.remoteTracks[v.ParticipantID]; ok {
			delete(tracks, v.Kind)
		}
		e.updatePresenceFromTracks(v.ParticipantID)
		e.mu.Unlock()
		e.listener.RosterChanged()
	case media.ParticipantLeft:
		e.mu.Lock()
		delete(e.remoteTracks, v.ParticipantID)
		e.updatePresenceFromTracks(v.ParticipantID)
		e.mu.Unlock()
		e.listener.RosterChanged()
	case media.AudioLevels:
		if id, changed := e.speakerUpdate(v.Levels); changed {
			e.listener.ActiveSpeakerChanged(id)
		}
	}
}

func (e *Engine) speakerUpdate(levels map[string]float64) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaker.Update(levels)
}

// updatePresenceFromTracks mirrors observed publish state onto the roster
// entry. Caller holds e.mu.
func (e *Engine) updatePresenceFromTracks(id string) {
	p, ok := e.roster.Get(id)
	if !ok {
		return
	}
	tracks := e.remoteTracks[id]
	p.AudioOn = tracks[media.KindAudio]
	p.VideoOn = tracks[media.KindVideo] || tracks[media.KindScreen]
}
