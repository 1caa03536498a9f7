// Package permission pushes computed permission sets into platform sessions.
package permission

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"permission-sync/internal/platform"
)

// Source provides the effective permissions of a cached player.
type Source interface {
	Permissions(id uuid.UUID) (map[string]bool, bool)
}

type Applicator struct {
	logger *zap.SugaredLogger
	server platform.Server
	source Source
}

func NewApplicator(logger *zap.SugaredLogger, server platform.Server, source Source) *Applicator {
	return &Applicator{logger: logger, server: server, source: source}
}

// Apply replaces the permission set of the player's session with the one
// computed from the cache. Nothing happens when the player is not cached or
// has no connected session here.
func (a *Applicator) Apply(id uuid.UUID) {
	session, ok := a.server.Session(id)
	if !ok || !session.Connected() {
		return
	}

	perms, ok := a.source.Permissions(id)
	if !ok {
		return
	}

	a.server.Schedule(func() {
		if !session.Connected() {
			return
		}
		session.SetPermissions(perms)
		a.logger.Debugw("applied permissions", "playerId", id, "count", len(perms))
	})
}

// Clear removes every permission from the player's session.
func (a *Applicator) Clear(id uuid.UUID) {
	session, ok := a.server.Session(id)
	if !ok {
		return
	}
	a.server.Schedule(func() {
		session.SetPermissions(map[string]bool{})
	})
}
