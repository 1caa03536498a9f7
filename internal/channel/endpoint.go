package channel

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"permission-sync/internal/platform"
)

type Role int

const (
	// RoleProxy accepts grant changes reported by backends.
	RoleProxy Role = iota
	// RoleBackend accepts grant changes and private messages from the proxy.
	RoleBackend
)

type (
	GrantChangeHandler    func(ctx context.Context, from platform.Session, m GrantChange)
	PrivateMessageHandler func(ctx context.Context, from platform.Session, m PrivateMessage)
)

// Endpoint sends and receives messages on one plugin channel. Payloads that
// fail to decode or are not accepted by the role are logged and dropped.
type Endpoint struct {
	logger *zap.SugaredLogger
	name   string
	role   Role

	mu              sync.RWMutex
	grantHandlers   []GrantChangeHandler
	messageHandlers []PrivateMessageHandler
}

func NewEndpoint(logger *zap.SugaredLogger, name string, role Role) *Endpoint {
	if name == "" {
		name = DefaultName
	}
	return &Endpoint{logger: logger, name: name, role: role}
}

func (e *Endpoint) Name() string {
	return e.name
}

func (e *Endpoint) Accepts(kind Kind) bool {
	switch kind {
	case KindGrantChange:
		return true
	case KindPrivateMessage:
		return e.role == RoleBackend
	default:
		return false
	}
}

func (e *Endpoint) OnGrantChange(fn GrantChangeHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grantHandlers = append(e.grantHandlers, fn)
}

func (e *Endpoint) OnPrivateMessage(fn PrivateMessageHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messageHandlers = append(e.messageHandlers, fn)
}

// Send writes msg over the connection of session.
func (e *Endpoint) Send(session platform.Session, msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	if err := session.SendData(e.name, data); err != nil {
		return fmt.Errorf("failed to send %s via %s: %w", msg.Kind(), session.Username(), err)
	}
	return nil
}

// Handle processes plugin data that arrived through from. Data on other
// channels is ignored. Handlers run on their own goroutine.
func (e *Endpoint) Handle(ctx context.Context, channel string, from platform.Session, data []byte) {
	if channel != e.name {
		return
	}

	msg, err := Decode(data)
	if err != nil {
		e.logger.Warnw("dropping malformed channel message", "channel", channel, "error", err)
		return
	}
	if !e.Accepts(msg.Kind()) {
		e.logger.Debugw("dropping channel message not accepted here", "type", msg.Kind())
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	switch m := msg.(type) {
	case GrantChange:
		for _, h := range e.grantHandlers {
			go h(ctx, from, m)
		}
	case PrivateMessage:
		for _, h := range e.messageHandlers {
			go h(ctx, from, m)
		}
	}
}

// Receiver adapts Handle for plugin data arriving through session.
func (e *Endpoint) Receiver(ctx context.Context, session platform.Session) platform.DataHandler {
	return func(channel string, data []byte) error {
		e.Handle(ctx, channel, session, data)
		return nil
	}
}
