package classroom

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/edutalksorg/liveclass/internal/data"
	"github.com/edutalksorg/liveclass/internal/media"
	"github.com/edutalksorg/liveclass/internal/signaling"
)

// Signaler is the outbound half of the control plane. Every emit is
// fire-and-forget; *signaling.Client satisfies it.
type Signaler interface {
	RaiseHand() error
	LowerHand() error
	ApproveHand(studentID string) error
	LowerAllHands() error
	SetLock(kind string, locked bool) error
	MuteStudent(studentID string) error
	MuteAll() error
	GrantUnmute(studentID string) error
	UnlockAllMics() error
	RequestUnmute(studentID string) error
	RequestScreenShare() error
	ApproveScreenShare(studentID string) error
	ShareScreen(allowed bool) error
	StopStudentScreenShare(studentID string) error
	StopAllScreenShares() error
	GrantScreenShare(studentID string) error
	UnlockAllScreenShares() error
	ToggleWhiteboard(show bool) error
	DrawWhiteboard(stroke signaling.WhiteboardDraw) error
	ClearWhiteboard() error
	SendMessage(body string) error
	SendReaction(emoji string) error
	EndClass() error
	Close() error
}

// TokenFetcher obtains the media-join credential; *media.TokenClient
// satisfies it.
type TokenFetcher interface {
	Fetch(ctx context.Context, classID string) (media.JoinCredential, error)
}

type ChatEntry struct {
	SenderName string
	Role       string
	Body       string
	Timestamp  time.Time
}

// FloatingReaction is an ephemeral emoji; it expires out of the visible
// list after ReactionTTL.
type FloatingReaction struct {
	Emoji      string
	SenderName string
}

const ReactionTTL = 3 * time.Second

type Config struct {
	Identity  signaling.Identity
	Service   Service
	Tokens    TokenFetcher
	Transport media.Transport
	Devices   media.Devices
	Signaler  Signaler
	Notifier  Notifier
	Listener  Listener
	Logger    *log.Logger
	Clock     Clock
}

// Engine is the per-session-view reconciliation core. It owns the
// permission replica, the roster, and the three local capability tracks,
// and it is the only writer to all of them. Signaling events, transport
// callbacks, user commands and timer ticks all funnel into methods on this
// one struct, so long-lived handlers never read stale captured state.
type Engine struct {
	mu sync.Mutex

	identity  signaling.Identity
	service   Service
	tokens    TokenFetcher
	transport media.Transport
	devices   Devices
	signaler  Signaler
	notifier  Notifier
	listener  Listener
	logger    *log.Logger
	clock     Clock

	session   *data.Class
	isLive    bool
	joining   bool // media join attempted or underway, the re-entrant guard
	countdown *Countdown
	display   string

	perms   *Permissions
	roster  *Roster
	speaker *media.SpeakerDetector

	mic    *media.LocalTrack
	camera *media.LocalTrack
	screen *media.LocalTrack

	micBusy, cameraBusy, screenBusy bool // toggle in flight

	handRaised        bool
	isScreenSharing   bool
	cameraWasOn       bool // republish camera when the share stops
	sharerID          string
	whiteboardVisible bool

	chat        []ChatEntry
	chatFocused bool
	unread      int
	reactions   []FloatingReaction

	remoteTracks map[string]map[media.Kind]bool

	closed bool
}

// Devices aliases media.Devices so constructing an Engine reads naturally.
type Devices = media.Devices

func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Listener == nil {
		cfg.Listener = NopListener{}
	}
	return &Engine{
		identity:     cfg.Identity,
		service:      cfg.Service,
		tokens:       cfg.Tokens,
		transport:    cfg.Transport,
		devices:      cfg.Devices,
		signaler:     cfg.Signaler,
		notifier:     cfg.Notifier,
		listener:     cfg.Listener,
		logger:       cfg.Logger,
		clock:        cfg.Clock,
		perms:        NewPermissions(),
		roster:       NewRoster(cfg.Clock),
		speaker:      media.NewSpeakerDetector(),
		remoteTracks: make(map[string]map[media.Kind]bool),
	}
}

// Bootstrap fetches session details once and primes the live/countdown
// state. If the session is already live the media join starts immediately.
func (e *Engine) Bootstrap(ctx context.Context) error {
	session, err := e.service.FetchSession(ctx, e.identity.ClassID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		e.notifier.Notify(SeverityError, "could not load class details")
		return err
	}

	e.mu.Lock()
	e.session = session
	e.isLive = session.Status == data.ClassStatusLive
	if !e.isLive {
		e.countdown = NewCountdown(e.clock, session.StartsAt)
	}
	live := e.isLive
	e.mu.Unlock()

	e.listener.SessionChanged()
	if live {
		e.joinMedia(ctx)
	}
	return nil
}

// Run pumps the async event streams into the engine until ctx is done or
// the signaling channel closes. Ticks drive the countdown and the student
// side's poll for the status flip.
func (e *Engine) Run(ctx context.Context, signals <-chan any) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	transportEvents := e.transport.Events()
	for {
		select {
		case <-ctx.Done():
			e.Close()
			return
		case ev, ok := <-signals:
			if !ok {
				// Signaling loss is fatal to this view's consistency; tear
				// down rather than resume on stale permission assumptions.
				// After a deliberate Close the channel closing is expected
				// and not worth a toast.
				if !e.Closed() {
					e.notifier.Notify(SeverityError, "connection to the class was lost")
				}
				e.Close()
				return
			}
			e.ApplySignal(ctx, ev)
		case ev, ok := <-transportEvents:
			if !ok {
				transportEvents = nil
				continue
			}
			e.ApplyTransport(ev)
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick runs the 1-second housekeeping: countdown display and, for
// non-instructors, polling for the live flip (only the instructor's call
// transitions status transactionally).
func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	if e.closed || e.isLive || e.countdown == nil {
		e.mu.Unlock()
		return
	}
	display, startedNow := e.countdown.Tick()
	changed := display != e.display
	e.display = display
	poll := display == StartingNow && e.identity.Role != signaling.RoleInstructor
	e.mu.Unlock()

	if changed || startedNow {
		e.listener.SessionChanged()
	}

	if poll {
		session, err := e.service.FetchSession(ctx, e.identity.ClassID)
		if err != nil {
			e.logger.Printf("classroom: status poll: %v", err)
			return
		}
		if session.Status == data.ClassStatusLive {
			e.setLive(ctx, session)
		}
	}
}

// CountdownDisplay is the current "12m 3s" / "STARTING NOW" string.
func (e *Engine) CountdownDisplay() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.display
}

// GoLiveNow is the instructor's optimistic start: the view flips live
// immediately and the media-join flow is responsible for marking the
// session started upstream.
func (e *Engine) GoLiveNow(ctx context.Context) {
	e.mu.Lock()
	if e.identity.Role != signaling.RoleInstructor || e.isLive {
		e.mu.Unlock()
		return
	}
	session := e.session
	e.mu.Unlock()
	e.setLive(ctx, session)
}

func (e *Engine) setLive(ctx context.Context, session *data.Class) {
	e.mu.Lock()
	if e.closed || e.isLive {
		e.mu.Unlock()
		return
	}
	e.isLive = true
	if session != nil {
		e.session = session
		e.session.Status = data.ClassStatusLive
	}
	e.countdown = nil
	e.mu.Unlock()

	e.listener.SessionChanged()
	e.joinMedia(ctx)
}

func (e *Engine) IsLive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isLive
}

// joinMedia connects the media transport exactly once per session attempt.
// Becoming live is its sole trigger; repeat calls are no-ops.
func (e *Engine) joinMedia(ctx context.Context) {
	e.mu.Lock()
	if e.joining || e.closed {
		e.mu.Unlock()
		return
	}
	e.joining = true
	isInstructor := e.identity.Role == signaling.RoleInstructor
	e.mu.Unlock()

	cred, err := e.tokens.Fetch(ctx, e.identity.ClassID)
	if err != nil {
		e.logger.Printf("classroom: token fetch: %v", err)
		e.notifier.Notify(SeverityError, "could not join the class audio/video")
		e.mu.Lock()
		e.joining = false
		e.mu.Unlock()
		return
	}

	if _, err := e.transport.Join(ctx, cred); err != nil {
		e.logger.Printf("classroom: media join: %v", err)
		e.notifier.Notify(SeverityError, "could not join the class audio/video")
		e.mu.Lock()
		e.joining = false
		e.mu.Unlock()
		return
	}

	if isInstructor {
		if err := e.service.MarkStarted(ctx, e.identity.ClassID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			e.logger.Printf("classroom: mark started: %v", err)
		}
	}
}

// Close tears the session view down: every local track stopped, the media
// room left, the signaling connection closed. All steps run unconditionally
// even when some resources never finished initializing, and running it
// twice is safe.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	mic, camera, screen := e.mic, e.camera, e.screen
	e.mic, e.camera, e.screen = nil, nil, nil
	e.isScreenSharing = false
	e.roster.Clear()
	e.mu.Unlock()

	ctx := context.Background()
	for _, t := range []*media.LocalTrack{mic, camera, screen} {
		if t == nil {
			continue
		}
		if err := e.transport.Unpublish(ctx, t); err != nil {
			e.logger.Printf("classroom: teardown unpublish: %v", err)
		}
		if err := t.Stop(); err != nil {
			e.logger.Printf("classroom: teardown stop track: %v", err)
		}
	}
	if err := e.transport.Leave(); err != nil {
		e.logger.Printf("classroom: teardown leave: %v", err)
	}
	if err := e.signaler.Close(); err != nil {
		e.logger.Printf("classroom: teardown signaling close: %v", err)
	}
}

func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
