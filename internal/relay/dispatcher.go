package relay

import (
	"context"

	"go.uber.org/zap"
	"permission-sync/internal/channel"
	"permission-sync/internal/hub"
	"permission-sync/internal/message"
	"permission-sync/internal/platform"
	"permission-sync/internal/repository/model"
	"permission-sync/internal/session"
)

// Subscriber is the inbound side of the broadcast hub.
type Subscriber interface {
	Subscribe(kind hub.Kind, handler hub.Handler)
}

// Dispatcher applies inbound notifications to the local session cache and
// platform sessions.
type Dispatcher struct {
	logger   *zap.SugaredLogger
	sessions *session.Cache
	server   platform.Server
}

func NewDispatcher(logger *zap.SugaredLogger, sessions *session.Cache, server platform.Server) *Dispatcher {
	return &Dispatcher{logger: logger, sessions: sessions, server: server}
}

func (d *Dispatcher) RegisterHub(s Subscriber) {
	s.Subscribe(hub.KindGrantChange, d.onHubGrantChange)
	s.Subscribe(hub.KindRankChange, d.onRankChange)
	s.Subscribe(hub.KindPlayerUpdate, d.onPlayerUpdate)
	s.Subscribe(hub.KindPrivateMessage, d.onHubPrivateMessage)
	s.Subscribe(hub.KindPunishExecute, d.onPunishExecute)
}

func (d *Dispatcher) RegisterChannel(e *channel.Endpoint) {
	e.OnGrantChange(d.onChannelGrantChange)
	e.OnPrivateMessage(d.onChannelPrivateMessage)
}

func (d *Dispatcher) onHubGrantChange(ctx context.Context, in hub.Inbound) {
	m := in.Message.(hub.GrantChange)
	if err := d.sessions.ReloadGrants(ctx, m.PlayerId, session.OriginHub); err != nil {
		d.logger.Errorw("failed to reload grants", "playerId", m.PlayerId, "from", in.ServerName, "error", err)
	}
}

func (d *Dispatcher) onRankChange(ctx context.Context, in hub.Inbound) {
	m := in.Message.(hub.RankChange)
	if err := d.sessions.RefreshRanks(ctx); err != nil {
		d.logger.Errorw("failed to refresh ranks", "rankId", m.RankId, "from", in.ServerName, "error", err)
		return
	}
	d.logger.Infow("refreshed ranks", "rankId", m.RankId, "from", in.ServerName)
}

func (d *Dispatcher) onPlayerUpdate(ctx context.Context, in hub.Inbound) {
	m := in.Message.(hub.PlayerUpdate)
	if err := d.sessions.ReloadPlayer(ctx, m.PlayerId); err != nil {
		d.logger.Errorw("failed to reload player", "playerId", m.PlayerId, "from", in.ServerName, "error", err)
	}
}

func (d *Dispatcher) onHubPrivateMessage(_ context.Context, in hub.Inbound) {
	m := in.Message.(hub.PrivateMessage)
	target, ok := d.server.SessionByUsername(m.TargetPlayer)
	if !ok || !target.Connected() {
		return
	}

	text := message.FormatIncoming(m.SenderName, m.Message)
	d.server.Schedule(func() {
		target.SendMessage(text)
	})
}

func (d *Dispatcher) onPunishExecute(_ context.Context, in hub.Inbound) {
	m := in.Message.(hub.PunishExecute)

	punishmentType, ok := model.ParsePunishmentType(m.PunishmentType)
	if !ok {
		d.logger.Warnw("unknown punishment type", "playerId", m.PlayerId, "type", m.PunishmentType)
		return
	}
	if !punishmentType.DisconnectsPlayer() {
		d.logger.Infow("punishment executed", "playerId", m.PlayerId, "type", punishmentType)
		return
	}

	target, ok := d.server.Session(m.PlayerId)
	if !ok || !target.Connected() {
		return
	}

	reason := punishmentType.DisconnectMessage(m.Reason)
	d.server.Schedule(func() {
		target.Disconnect(reason)
	})
	d.logger.Infow("disconnected punished player", "playerId", m.PlayerId, "type", punishmentType, "from", in.ServerName)
}

func (d *Dispatcher) onChannelGrantChange(ctx context.Context, from platform.Session, m channel.GrantChange) {
	if err := d.sessions.GrantsChanged(ctx, m.PlayerId, session.OriginChannel); err != nil {
		d.logger.Errorw("failed to reload grants", "playerId", m.PlayerId, "via", from.Username(), "error", err)
	}
}

func (d *Dispatcher) onChannelPrivateMessage(_ context.Context, from platform.Session, m channel.PrivateMessage) {
	d.server.Schedule(func() {
		from.SendMessage(m.FormattedMessage)
	})
}
