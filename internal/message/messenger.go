package message

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"permission-sync/internal/channel"
	"permission-sync/internal/platform"
)

var (
	ErrSenderOffline = errors.New("sender is not connected")
	ErrTargetOffline = errors.New("target is not connected")
	ErrSelfMessage   = errors.New("cannot message yourself")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNoReplyTarget = errors.New("no one to reply to")
)

// FormatIncoming is the text shown to the receiver of a private message.
func FormatIncoming(senderName string, text string) string {
	return "§7[§6" + senderName + "§7 -> §6me§7] §f" + text
}

// FormatOutgoing is the confirmation shown to the sender.
func FormatOutgoing(targetName string, text string) string {
	return "§7[§6me§7 -> §6" + targetName + "§7] §f" + text
}

// DisplayNames resolves the name a player is shown as in messages.
type DisplayNames interface {
	DisplayName(id uuid.UUID) (string, bool)
}

// Messenger sends private messages between players attached to the proxy.
// The text reaches the target through the point-to-point channel of their
// connection.
type Messenger struct {
	logger   *zap.SugaredLogger
	server   platform.Server
	endpoint *channel.Endpoint
	manager  *Manager
	names    DisplayNames
}

func NewMessenger(logger *zap.SugaredLogger, server platform.Server, endpoint *channel.Endpoint,
	manager *Manager, names DisplayNames) *Messenger {

	return &Messenger{logger: logger, server: server, endpoint: endpoint, manager: manager, names: names}
}

// Send delivers text from senderId to the player named targetName and
// returns the confirmation for the sender.
func (m *Messenger) Send(senderId uuid.UUID, targetName string, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	sender, ok := m.server.Session(senderId)
	if !ok || !sender.Connected() {
		return "", ErrSenderOffline
	}
	target, ok := m.server.SessionByUsername(targetName)
	if !ok || !target.Connected() {
		return "", ErrTargetOffline
	}

	return m.deliver(sender, target, text)
}

// Reply sends text to the reply target of senderId.
func (m *Messenger) Reply(senderId uuid.UUID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	targetId, ok := m.manager.ReplyTarget(senderId)
	if !ok {
		return "", ErrNoReplyTarget
	}

	sender, ok := m.server.Session(senderId)
	if !ok || !sender.Connected() {
		return "", ErrSenderOffline
	}
	target, ok := m.server.Session(targetId)
	if !ok || !target.Connected() {
		return "", ErrTargetOffline
	}

	return m.deliver(sender, target, text)
}

func (m *Messenger) deliver(sender platform.Session, target platform.Session, text string) (string, error) {
	if sender.ID() == target.ID() {
		return "", ErrSelfMessage
	}

	m.manager.RecordMessage(sender.ID(), target.ID())

	senderName := m.displayName(sender)
	msg := channel.PrivateMessage{
		SenderId:         sender.ID(),
		SenderName:       senderName,
		Message:          text,
		FormattedMessage: FormatIncoming(senderName, text),
	}
	if err := m.endpoint.Send(target, msg); err != nil {
		return "", fmt.Errorf("failed to deliver private message: %w", err)
	}

	m.logger.Debugw("delivered private message", "senderId", sender.ID(), "targetId", target.ID())
	return FormatOutgoing(m.displayName(target), text), nil
}

func (m *Messenger) displayName(s platform.Session) string {
	if m.names != nil {
		if name, ok := m.names.DisplayName(s.ID()); ok {
			return name
		}
	}
	return s.Username()
}
