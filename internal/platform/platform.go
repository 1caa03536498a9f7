// Package platform is the boundary to the game server or proxy hosting the
// player connections.
package platform

import (
	"errors"

	"github.com/google/uuid"
)

var ErrNoPeer = errors.New("session has no peer for plugin data")

// Session is a player connection attached to this process.
type Session interface {
	ID() uuid.UUID
	Username() string
	Connected() bool
	// SetPermissions replaces the complete permission set of the session.
	SetPermissions(perms map[string]bool)
	SendMessage(text string)
	// SendData writes a plugin message on the named channel of the
	// connection, reaching the process on the other side of it.
	SendData(channel string, data []byte) error
	Disconnect(reason string)
}

type Server interface {
	Session(id uuid.UUID) (Session, bool)
	SessionByUsername(username string) (Session, bool)
	Sessions() []Session
	// Schedule runs task on the execution context that owns sessions.
	Schedule(task func())
}
