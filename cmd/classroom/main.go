package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/edutalksorg/liveclass/internal/classroom"
	"github.com/edutalksorg/liveclass/internal/media"
	"github.com/edutalksorg/liveclass/internal/signaling"
)

// classroom is a headless session client: it joins a class, prints roster,
// chat and permission changes, and never publishes media (there is no
// capture hardware to acquire here). Useful for poking at a running relay.

type config struct {
	apiURL   string
	wsURL    string
	sfuURL   string
	classID  string
	userID   string
	userName string
	role     string
	kind     string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.apiURL, "api-url", "http://localhost:6969", "Coordination API base URL")
	flag.StringVar(&cfg.wsURL, "ws-url", "ws://localhost:6969/v1/ws", "Signaling websocket URL")
	flag.StringVar(&cfg.sfuURL, "sfu-url", "ws://localhost:8000/sfu", "SFU websocket URL")
	flag.StringVar(&cfg.classID, "class", "", "Class id to join")
	flag.StringVar(&cfg.userID, "user", uuid.NewString(), "User id")
	flag.StringVar(&cfg.userName, "name", "observer", "Display name")
	flag.StringVar(&cfg.role, "role", signaling.RoleStudent, "Role (instructor or student)")
	flag.StringVar(&cfg.kind, "class-type", "batch", "Class type (batch or super)")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.Ldate|log.Ltime)
	if cfg.classID == "" {
		logger.Fatal("missing required flag: -class")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identity := signaling.Identity{
		ClassID:   cfg.classID,
		UserID:    cfg.userID,
		UserName:  cfg.userName,
		Role:      cfg.role,
		ClassType: cfg.kind,
	}

	sig, err := signaling.Dial(ctx, cfg.wsURL, identity, logger)
	if err != nil {
		logger.Fatal(err)
	}

	engine := classroom.New(classroom.Config{
		Identity:  identity,
		Service:   classroom.NewHTTPService(cfg.apiURL),
		Tokens:    media.NewTokenClient(cfg.apiURL),
		Transport: media.NewPionTransport(cfg.sfuURL, nil, logger),
		Devices:   noDevices{},
		Signaler:  sig,
		Notifier: classroom.NotifierFunc(func(severity classroom.Severity, message string) {
			logger.Printf("[%s] %s", severity, message)
		}),
		Listener: printListener{logger: logger},
		Logger:   logger,
	})

	if err := engine.Bootstrap(ctx); err != nil {
		logger.Fatal(err)
	}

	go engine.Run(ctx, sig.Events())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	engine.Close()
}

type noDevices struct{}

var errHeadless = errors.New("no capture devices in headless mode")

func (noDevices) OpenMicrophone(context.Context) (media.Capture, error) { return nil, errHeadless }
func (noDevices) OpenCamera(context.Context) (media.Capture, error)     { return nil, errHeadless }
func (noDevices) OpenScreen(context.Context) (media.Capture, error)     { return nil, errHeadless }

type printListener struct {
	classroom.NopListener
	logger *log.Logger
}

func (l printListener) ChatReceived(msg classroom.ChatEntry) {
	l.logger.Printf("chat %s (%s): %s", msg.SenderName, msg.Role, msg.Body)
}

func (l printListener) ReactionReceived(r classroom.FloatingReaction) {
	l.logger.Printf("reaction %s from %s", r.Emoji, r.SenderName)
}

func (l printListener) ActiveSpeakerChanged(id string) {
	if id != "" {
		l.logger.Printf("active speaker: %s", id)
	}
}

func (l printListener) ClassEnded() {
	fmt.Println("class has ended")
}
