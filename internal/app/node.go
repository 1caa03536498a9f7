package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"permission-sync/internal/cache"
	"permission-sync/internal/channel"
	"permission-sync/internal/config"
	"permission-sync/internal/hub"
	"permission-sync/internal/kafka/notifier"
	"permission-sync/internal/message"
	"permission-sync/internal/platform"
	"permission-sync/internal/relay"
	"permission-sync/internal/repository"
	"permission-sync/internal/service"
	"permission-sync/internal/session"
)

// Node is a proxy or backend process: the caches, the hub connection and the
// point-to-point channel wired together.
type Node struct {
	logger *zap.SugaredLogger
	mode   config.Mode

	Server      *platform.Registry
	Ranks       *cache.RankCache
	Sessions    *session.Cache
	Hub         *hub.Client
	Channel     *channel.Endpoint
	Messages    *message.Manager
	Permissions *service.PermissionService
	// Messenger is only set on the proxy.
	Messenger *message.Messenger
}

func NewNode(logger *zap.SugaredLogger, cfg *config.Config, repo repository.Repository, notif notifier.Notifier) *Node {
	registry := platform.NewRegistry()
	ranks := cache.NewRankCache(logger, repo)

	hubClient := hub.NewClient(logger, hub.ClientConfig{
		URL:            cfg.Hub.URL,
		APIKey:         cfg.API.Key,
		ServerType:     string(cfg.Mode),
		ServerName:     cfg.ServerName,
		ReconnectDelay: cfg.Hub.ReconnectDelay,
	})

	role := channel.RoleBackend
	if cfg.Mode == config.ModeProxy {
		role = channel.RoleProxy
	}
	endpoint := channel.NewEndpoint(logger, cfg.ChannelName, role)

	propagator := relay.NewPropagator(logger, cfg.Mode, hubClient, endpoint, registry)
	sessions := session.NewCache(logger, repo, ranks, registry, propagator)

	dispatcher := relay.NewDispatcher(logger, sessions, registry)
	dispatcher.RegisterHub(hubClient)
	dispatcher.RegisterChannel(endpoint)

	n := &Node{
		logger:      logger,
		mode:        cfg.Mode,
		Server:      registry,
		Ranks:       ranks,
		Sessions:    sessions,
		Hub:         hubClient,
		Channel:     endpoint,
		Messages:    message.NewManager(cfg.ReplyTTL),
		Permissions: service.NewPermissionService(logger, repo, ranks, sessions, registry, hubClient, notif),
	}
	if cfg.Mode == config.ModeProxy {
		n.Messenger = message.NewMessenger(logger, registry, endpoint, n.Messages, sessions)
	}

	// Kicks and bans disconnect through the platform; the player's session
	// ends the same way as a regular quit.
	registry.OnDisconnect(func(s *platform.LocalSession, reason string) {
		go func() {
			if err := n.endSession(context.Background(), s.ID()); err != nil {
				logger.Errorw("failed to end session of disconnected player", "playerId", s.ID(), "error", err)
			}
		}()
	})
	return n
}

// Start loads the rank cache and keeps the hub connection open until ctx is
// cancelled.
func (n *Node) Start(ctx context.Context, wg *sync.WaitGroup) error {
	if err := n.Ranks.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load ranks: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		n.Hub.Run(ctx)
	}()
	return nil
}

// Connect attaches a player to this process and loads their session. The
// platform session is detached again when loading fails.
func (n *Node) Connect(ctx context.Context, id uuid.UUID, username string) (*platform.LocalSession, error) {
	local := n.Server.Connect(id, username)

	if _, err := n.Sessions.LoadSession(ctx, id, username); err != nil {
		n.Server.Remove(id)
		return nil, err
	}
	return local, nil
}

// Disconnect detaches a player that left this process and ends their
// session.
func (n *Node) Disconnect(ctx context.Context, id uuid.UUID) error {
	n.Server.Remove(id)
	return n.endSession(ctx, id)
}

func (n *Node) endSession(ctx context.Context, id uuid.UUID) error {
	n.Messages.Remove(id)
	return n.Sessions.EndSession(ctx, id)
}

// Receiver returns the handler the other end of a player's connection writes
// plugin data to.
func (n *Node) Receiver(ctx context.Context, local *platform.LocalSession) platform.DataHandler {
	return n.Channel.Receiver(ctx, local)
}

// Shutdown ends every cached session and waits for the store writes.
func (n *Node) Shutdown(ctx context.Context) error {
	return n.Sessions.ShutdownAll(ctx)
}

// Link connects the proxy and backend halves of one player connection so
// plugin data written on either side reaches the other.
func Link(ctx context.Context, proxy *Node, proxySide *platform.LocalSession, backend *Node, backendSide *platform.LocalSession) {
	proxySide.SetPeer(backend.Receiver(ctx, backendSide))
	backendSide.SetPeer(proxy.Receiver(ctx, proxySide))
}
