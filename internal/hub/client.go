package hub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultReconnectDelay = 5 * time.Second

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Handler receives inbound messages of a subscribed kind. Each call runs on
// its own goroutine.
type Handler func(ctx context.Context, in Inbound)

type ClientConfig struct {
	URL        string
	APIKey     string
	ServerType string
	ServerName string
	// ReconnectDelay is the fixed wait before every reconnect attempt.
	ReconnectDelay time.Duration
}

// Client keeps a connection to the broadcast hub open for the lifetime of
// Run. Publishing never blocks: messages are dropped while disconnected and
// are never replayed.
type Client struct {
	logger *zap.SugaredLogger
	cfg    ClientConfig
	dialer *websocket.Dialer

	state atomic.Int32

	handlersMu     sync.RWMutex
	handlers       map[Kind][]Handler
	stateListeners []func(State)

	sendMu sync.Mutex
	send   chan []byte

	now func() time.Time
}

func NewClient(logger *zap.SugaredLogger, cfg ClientConfig) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}

	return &Client{
		logger: logger,
		cfg:    cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		handlers: make(map[Kind][]Handler),
		now:      time.Now,
	}
}

// Subscribe registers handler for messages of kind.
func (c *Client) Subscribe(kind Kind, handler Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[kind] = append(c.handlers[kind], handler)
}

// OnStateChange registers fn to be called after every state transition.
func (c *Client) OnStateChange(fn func(State)) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.stateListeners = append(c.stateListeners, fn)
}

func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	if State(c.state.Swap(int32(s))) == s {
		return
	}

	c.handlersMu.RLock()
	listeners := c.stateListeners
	c.handlersMu.RUnlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Publish queues msg for the current connection. It reports whether the
// message was queued.
func (c *Client) Publish(msg Message) bool {
	if c.State() != StateConnected {
		c.logger.Warnw("hub not connected, dropping message", "type", msg.Kind())
		return false
	}

	frame, err := Encode(msg, c.cfg.ServerType, c.cfg.ServerName, c.now())
	if err != nil {
		c.logger.Errorw("failed to encode hub message", "type", msg.Kind(), "error", err)
		return false
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.send == nil {
		c.logger.Warnw("hub not connected, dropping message", "type", msg.Kind())
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warnw("hub send queue full, dropping message", "type", msg.Kind())
		return false
	}
}

// Run connects to the hub and reconnects after a fixed delay whenever the
// connection fails, until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	for {
		c.setState(StateConnecting)
		err := c.connect(ctx)
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			return
		}
		c.logger.Warnw("hub connection lost, reconnecting", "error", err, "delay", c.cfg.ReconnectDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid hub url: %w", err)
	}

	q := u.Query()
	q.Set("api_key", c.cfg.APIKey)
	q.Set("type", c.cfg.ServerType)
	q.Set("name", c.cfg.ServerName)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// connect dials the hub and serves the connection until it fails.
func (c *Client) connect(ctx context.Context) error {
	target, err := c.dialURL()
	if err != nil {
		return err
	}

	conn, _, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to dial hub: %w", err)
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	send := make(chan []byte, sendBufferSize)
	c.sendMu.Lock()
	c.send = send
	c.sendMu.Unlock()

	defer func() {
		c.sendMu.Lock()
		c.send = nil
		c.sendMu.Unlock()
	}()

	c.setState(StateConnected)
	c.logger.Infow("connected to hub", "url", c.cfg.URL, "serverType", c.cfg.ServerType, "serverName", c.cfg.ServerName)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		c.writePump(connCtx, conn, send)
	}()

	err = c.readPump(ctx, conn)
	cancel()
	<-writeDone
	return err
}

func (c *Client) readPump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errors.New("hub closed the connection")
			}
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		c.dispatch(ctx, frame)
	}
}

// writePump is the only writer of conn. It closes conn when ctx ends or a
// write fails, which also stops readPump.
func (c *Client) writePump(ctx context.Context, conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case frame := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warnw("failed to write to hub", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(ctx context.Context, frame []byte) {
	in, err := Decode(frame)
	if err != nil {
		c.logger.Warnw("dropping malformed hub message", "error", err)
		return
	}

	switch m := in.Message.(type) {
	case Connected:
		c.logger.Infow("hub accepted connection", "message", m.Message)
	case ErrorMessage:
		c.logger.Warnw("hub reported an error", "message", m.Message)
	case Unrecognized:
		c.logger.Warnw("dropping unrecognized hub message", "type", m.Type)
		return
	}

	c.handlersMu.RLock()
	handlers := c.handlers[in.Message.Kind()]
	c.handlersMu.RUnlock()

	for _, h := range handlers {
		go h(ctx, in)
	}
}
