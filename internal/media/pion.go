package media

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"
)

// SampleSource is implemented by captures that can feed encoded media
// samples into a published track. Captures that cannot (the test doubles)
// are published without a sample pump.
type SampleSource interface {
	NextSample() (pionmedia.Sample, error)
}

// sfuMessage is the wire shape spoken with the SFU over its websocket.
// SDP offers/answers ride next to the out-of-band notifications the SFU
// pushes (audio levels, participant departures, track withdrawals).
type sfuMessage struct {
	Kind          string             `json:"kind"`
	SDP           string             `json:"sdp,omitempty"`
	Token         string             `json:"token,omitempty"`
	ChannelName   string             `json:"channelName,omitempty"`
	UID           string             `json:"uid,omitempty"`
	ParticipantID string             `json:"participantId,omitempty"`
	Media         string             `json:"media,omitempty"`
	Levels        map[string]float64 `json:"levels,omitempty"`
	Success       bool               `json:"success,omitempty"`
}

// PionTransport publishes and subscribes over a single WebRTC peer
// connection, negotiated with the SFU through a websocket side channel.
type PionTransport struct {
	SFUURL     string
	ICEServers []webrtc.ICEServer
	Logger     *log.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	pc      *webrtc.PeerConnection
	uid     string
	senders map[*LocalTrack]*webrtc.RTPSender
	pumps   map[*LocalTrack]chan struct{}

	negotiateMu sync.Mutex
	answerCh    chan string

	events    chan TransportEvent
	leaveOnce sync.Once
	done      chan struct{}
}

func NewPionTransport(sfuURL string, iceServers []webrtc.ICEServer, logger *log.Logger) *PionTransport {
	return &PionTransport{
		SFUURL:     sfuURL,
		ICEServers: iceServers,
		Logger:     logger,
		senders:    make(map[*LocalTrack]*webrtc.RTPSender),
		pumps:      make(map[*LocalTrack]chan struct{}),
		answerCh:   make(chan string, 1),
		events:     make(chan TransportEvent, 64),
		done:       make(chan struct{}),
	}
}

func (p *PionTransport) Events() <-chan TransportEvent {
	return p.events
}

func (p *PionTransport) Join(ctx context.Context, cred JoinCredential) (string, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.SFUURL, nil)
	if err != nil {
		return "", err
	}

	join := sfuMessage{Kind: "join", Token: cred.Token, ChannelName: cred.ChannelName, UID: cred.UID}
	if err := conn.WriteJSON(&join); err != nil {
		conn.Close()
		return "", err
	}

	var ack sfuMessage
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return "", err
	}
	if !ack.Success {
		conn.Close()
		return "", errors.New("sfu refused join")
	}

	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		conn.Close()
		return "", err
	}

	api := webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine))
	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: p.ICEServers})
	if err != nil {
		conn.Close()
		return "", err
	}

	pc.OnTrack(func(remote *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		p.handleRemoteTrack(remote)
	})
	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		p.Logger.Printf("media: ice state %s", state)
	})

	p.mu.Lock()
	p.conn = conn
	p.pc = pc
	p.uid = cred.UID
	p.mu.Unlock()

	go p.readPump()

	// Initial negotiation carries the recvonly transceivers so remote
	// tracks can flow before anything local is published.
	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio); err != nil {
		p.Leave()
		return "", err
	}
	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo); err != nil {
		p.Leave()
		return "", err
	}
	if err := p.negotiate(ctx); err != nil {
		p.Leave()
		return "", err
	}

	return cred.UID, nil
}

func (p *PionTransport) Publish(ctx context.Context, t *LocalTrack) error {
	p.mu.Lock()
	pc := p.pc
	if pc == nil {
		p.mu.Unlock()
		return errors.New("media: publish before join")
	}
	if _, ok := p.senders[t]; ok {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	local, err := newOutgoingTrack(t.Kind(), p.uid)
	if err != nil {
		return err
	}

	sender, err := pc.AddTrack(local)
	if err != nil {
		return err
	}

	if err := p.negotiate(ctx); err != nil {
		pc.RemoveTrack(sender)
		return err
	}

	p.mu.Lock()
	p.senders[t] = sender
	if src, ok := t.Capture().(SampleSource); ok {
		stop := make(chan struct{})
		p.pumps[t] = stop
		go p.pumpSamples(local, src, stop)
	}
	p.mu.Unlock()

	t.SetPublished(true)
	return nil
}

func (p *PionTransport) Unpublish(ctx context.Context, t *LocalTrack) error {
	p.mu.Lock()
	sender, ok := p.senders[t]
	if !ok {
		p.mu.Unlock()
		return nil
	}
	delete(p.senders, t)
	if stop, ok := p.pumps[t]; ok {
		close(stop)
		delete(p.pumps, t)
	}
	pc := p.pc
	p.mu.Unlock()

	if err := pc.RemoveTrack(sender); err != nil {
		return err
	}
	if err := p.negotiate(ctx); err != nil {
		return err
	}

	t.SetPublished(false)
	return nil
}

func (p *PionTransport) Leave() error {
	var err error
	p.leaveOnce.Do(func() {
		close(p.done)

		p.mu.Lock()
		for t, stop := range p.pumps {
			close(stop)
			delete(p.pumps, t)
		}
		for t := range p.senders {
			t.SetPublished(false)
			delete(p.senders, t)
		}
		pc, conn := p.pc, p.conn
		close(p.events)
		p.mu.Unlock()

		if pc != nil {
			err = pc.Close()
		}
		if conn != nil {
			conn.Close()
		}
	})
	return err
}

// negotiate runs one offer/answer exchange. Offers are serialized; the SFU
// answers each in turn on the websocket.
func (p *PionTransport) negotiate(ctx context.Context) error {
	p.negotiateMu.Lock()
	defer p.negotiateMu.Unlock()

	p.mu.Lock()
	pc, conn := p.pc, p.conn
	p.mu.Unlock()

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return err
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		return err
	}
	<-gatherComplete

	if err := conn.WriteJSON(&sfuMessage{Kind: "offer", SDP: pc.LocalDescription().SDP}); err != nil {
		return err
	}

	select {
	case sdp := <-p.answerCh:
		return pc.SetRemoteDescription(webrtc.SessionDescription{
			Type: webrtc.SDPTypeAnswer,
			SDP:  sdp,
		})
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return errors.New("media: left during negotiation")
	case <-time.After(15 * time.Second):
		return errors.New("media: timed out waiting for sfu answer")
	}
}

func (p *PionTransport) readPump() {
	for {
		var msg sfuMessage
		if err := p.conn.ReadJSON(&msg); err != nil {
			select {
			case <-p.done:
			default:
				p.Logger.Printf("media: sfu socket read error: %v", err)
				p.Leave()
			}
			return
		}

		switch msg.Kind {
		case "answer":
			select {
			case p.answerCh <- msg.SDP:
			default:
			}
		case "levels":
			p.emit(AudioLevels{Levels: msg.Levels})
		case "withdrawn":
			p.emit(TrackWithdrawn{ParticipantID: msg.ParticipantID, Kind: Kind(msg.Media)})
		case "left":
			p.emit(ParticipantLeft{ParticipantID: msg.ParticipantID})
		default:
			p.Logger.Printf("media: dropping sfu message kind %q", msg.Kind)
		}
	}
}

func (p *PionTransport) handleRemoteTrack(remote *webrtc.TrackRemote) {
	kind := Kind(remote.Kind().String())
	if remote.ID() == string(KindScreen) {
		kind = KindScreen
	}
	participant := remote.StreamID()

	p.emit(TrackAnnounced{ParticipantID: participant, Kind: kind})

	// The remote track must be drained for the subscription to stay alive;
	// playback is the presentation layer's concern, not this adapter's.
	buf := make([]byte, 1500)
	for {
		if _, _, err := remote.Read(buf); err != nil {
			p.emit(TrackWithdrawn{ParticipantID: participant, Kind: kind})
			return
		}
	}
}

func (p *PionTransport) pumpSamples(local *webrtc.TrackLocalStaticSample, src SampleSource, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-p.done:
			return
		default:
		}

		sample, err := src.NextSample()
		if err != nil {
			p.Logger.Printf("media: sample source ended: %v", err)
			return
		}
		if err := local.WriteSample(sample); err != nil {
			p.Logger.Printf("media: write sample: %v", err)
			return
		}
	}
}

func (p *PionTransport) emit(e TransportEvent) {
	// Taking the lock orders emits against the channel close in Leave.
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
	default:
		select {
		case p.events <- e:
		default:
			p.Logger.Print("media: event buffer full, dropping")
		}
	}
}

func newOutgoingTrack(kind Kind, uid string) (*webrtc.TrackLocalStaticSample, error) {
	var capability webrtc.RTPCodecCapability
	switch kind {
	case KindAudio:
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}
	case KindVideo, KindScreen:
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}
	default:
		return nil, fmt.Errorf("media: unknown track kind %q", kind)
	}
	return webrtc.NewTrackLocalStaticSample(capability, string(kind), uid)
}
