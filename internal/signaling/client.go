package signaling

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is a thin control-plane connection. It performs no ordering,
// deduplication or reconnection: on read failure the event channel closes
// and the owning view is expected to tear the whole session down.
type Client struct {
	identity Identity
	conn     *websocket.Conn
	logger   *log.Logger

	events chan any

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the relay, announces join_class and starts the read
// pump. Decoded inbound events are delivered on Events until the connection
// drops or Close is called.
func Dial(ctx context.Context, url string, identity Identity, logger *log.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		identity: identity,
		conn:     conn,
		logger:   logger,
		events:   make(chan any, 64),
		done:     make(chan struct{}),
	}

	if err := c.Emit("join_class", identity); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readPump()
	return c, nil
}

// Events yields decoded payload structs (*CurrentUsers, *LockStatus, ...).
// The channel is closed when the connection is gone.
func (c *Client) Events() <-chan any {
	return c.events
}

func (c *Client) Identity() Identity {
	return c.identity
}

// Emit sends a control event and never waits for acknowledgement. Payload
// must marshal to JSON.
func (c *Client) Emit(eventType string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = b
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}
	return c.conn.WriteJSON(Event{Type: eventType, Payload: raw})
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readPump() {
	defer close(c.events)
	for {
		var e Event
		if err := c.conn.ReadJSON(&e); err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Printf("signaling: read error: %v", err)
				c.Close()
			}
			return
		}

		decoded, err := Decode(e)
		if err != nil {
			c.logger.Printf("signaling: dropping event: %v", err)
			continue
		}

		select {
		case c.events <- decoded:
		case <-c.done:
			return
		}
	}
}
