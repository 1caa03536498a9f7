// Package relay routes grant change notifications between the session cache
// and the transports.
package relay

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"permission-sync/internal/channel"
	"permission-sync/internal/config"
	"permission-sync/internal/hub"
	"permission-sync/internal/platform"
	"permission-sync/internal/session"
)

// Publisher is the outbound side of the broadcast hub.
type Publisher interface {
	Publish(msg hub.Message) bool
}

// Propagator forwards grant changes according to the role of the process:
// the proxy broadcasts over the hub, a backend notifies its proxy over the
// point-to-point channel. Changes that arrived from the hub are never
// forwarded.
type Propagator struct {
	logger    *zap.SugaredLogger
	mode      config.Mode
	publisher Publisher
	endpoint  *channel.Endpoint
	server    platform.Server
}

func NewPropagator(logger *zap.SugaredLogger, mode config.Mode, publisher Publisher,
	endpoint *channel.Endpoint, server platform.Server) *Propagator {

	return &Propagator{
		logger:    logger,
		mode:      mode,
		publisher: publisher,
		endpoint:  endpoint,
		server:    server,
	}
}

func (p *Propagator) GrantChanged(_ context.Context, playerId uuid.UUID, origin session.Origin) {
	if origin == session.OriginHub {
		return
	}

	switch p.mode {
	case config.ModeProxy:
		p.publisher.Publish(hub.GrantChange{PlayerId: playerId})
	case config.ModeBackend:
		// The proxy re-broadcasts what it receives, so only local changes
		// leave a backend.
		if origin == session.OriginLocal {
			p.notifyProxy(playerId)
		}
	}
}

// notifyProxy sends GRANT_CHANGE through the player's own connection, or
// through any connected session when the player is not attached here.
func (p *Propagator) notifyProxy(playerId uuid.UUID) {
	via, ok := p.server.Session(playerId)
	if !ok || !via.Connected() {
		via = nil
		for _, s := range p.server.Sessions() {
			if s.Connected() {
				via = s
				break
			}
		}
	}
	if via == nil {
		p.logger.Warnw("no connected session to notify proxy of grant change", "playerId", playerId)
		return
	}

	if err := p.endpoint.Send(via, channel.GrantChange{PlayerId: playerId}); err != nil {
		p.logger.Errorw("failed to notify proxy of grant change", "playerId", playerId, "error", err)
		return
	}
	p.logger.Debugw("notified proxy of grant change", "playerId", playerId, "via", via.Username())
}
