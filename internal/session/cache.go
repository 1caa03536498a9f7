package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"permission-sync/internal/cache"
	"permission-sync/internal/permission"
	"permission-sync/internal/platform"
	"permission-sync/internal/repository"
	"permission-sync/internal/repository/model"
)

// Origin identifies where a grant change notification came from.
type Origin int

const (
	// OriginLocal is a mutation made by this process.
	OriginLocal Origin = iota
	// OriginChannel is a notification received over a point-to-point channel.
	OriginChannel
	// OriginHub is a notification received from the broadcast hub.
	OriginHub
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginChannel:
		return "channel"
	case OriginHub:
		return "hub"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

var ErrSessionEnded = errors.New("session ended while loading")

// loadTicket is only read and written inside loading.Compute for its id.
type loadTicket struct {
	ended bool
}

// Propagator tells the rest of the network that a player's grants changed.
type Propagator interface {
	GrantChanged(ctx context.Context, playerId uuid.UUID, origin Origin)
}

// Cache holds the players attached to this process.
//
// Concurrent LoadSession calls for one id share a single load. Sequential
// loads overwrite each other, so the last completed load wins. Reloads only
// ever replace an existing entry and never recreate one that was removed in
// the meantime. An EndSession that arrives while the player is still loading
// wins: the load finishes offline and returns ErrSessionEnded.
type Cache struct {
	logger     *zap.SugaredLogger
	repo       repository.Repository
	ranks      *cache.RankCache
	applicator *permission.Applicator
	propagator Propagator

	players *xsync.MapOf[uuid.UUID, *Player]
	loads   singleflight.Group
	// loading tracks the in-flight load of each id so EndSession can
	// cancel it.
	loading *xsync.MapOf[uuid.UUID, *loadTicket]

	now func() time.Time
}

func NewCache(logger *zap.SugaredLogger, repo repository.Repository, ranks *cache.RankCache,
	server platform.Server, propagator Propagator) *Cache {

	c := &Cache{
		logger:     logger,
		repo:       repo,
		ranks:      ranks,
		propagator: propagator,
		players:    xsync.NewMapOf[uuid.UUID, *Player](),
		loading:    xsync.NewMapOf[uuid.UUID, *loadTicket](),
		now:        time.Now,
	}
	c.applicator = permission.NewApplicator(logger, server, c)
	return c
}

// LoadSession builds the player's cached state from the store, marks them
// online and applies their permissions.
func (c *Cache) LoadSession(ctx context.Context, id uuid.UUID, username string) (*Player, error) {
	v, err, _ := c.loads.Do(id.String(), func() (any, error) {
		return c.loadSession(ctx, id, username)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Player), nil
}

func (c *Cache) loadSession(ctx context.Context, id uuid.UUID, username string) (*Player, error) {
	ticket := &loadTicket{}
	c.loading.Store(id, ticket)
	defer c.loading.Compute(id, func(current *loadTicket, loaded bool) (*loadTicket, bool) {
		return current, !loaded || current == ticket
	})

	record, err := c.repo.GetPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	now := c.now()
	if record == nil {
		record = &model.Player{Id: id, FirstLogin: now}
		c.logger.Infow("creating new player", "playerId", id, "username", username)
	}
	record.Username = username
	record.Online = true
	record.LastLogin = now

	if err := c.repo.SavePlayer(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}

	grants, err := c.repo.GetActiveGrants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get grants: %w", err)
	}

	player := &Player{
		Player:       *record,
		Grants:       grants,
		SessionStart: now,
	}
	player.resolve(c.ranks.Get, now)

	if !c.storeLoaded(id, ticket, player) {
		c.logger.Infow("session ended while loading", "playerId", id, "username", username)
		if err := c.persistEnd(ctx, player); err != nil {
			c.logger.Errorw("failed to persist ended session", "playerId", id, "error", err)
		}
		return nil, ErrSessionEnded
	}
	c.applicator.Apply(id)

	c.logger.Infow("loaded session", "playerId", id, "username", username, "rank", player.RankId())
	return player, nil
}

// storeLoaded caches player unless an EndSession for id arrived since the
// load started.
func (c *Cache) storeLoaded(id uuid.UUID, ticket *loadTicket, player *Player) bool {
	stored := false
	c.loading.Compute(id, func(current *loadTicket, loaded bool) (*loadTicket, bool) {
		if loaded && current == ticket && !ticket.ended {
			c.players.Store(id, player)
			stored = true
		}
		return current, !loaded
	})
	return stored
}

// EndSession removes the player and persists their offline state, last seen
// time and the playtime of this session. A load in flight for id is
// cancelled. Unknown ids only log a warning.
func (c *Cache) EndSession(ctx context.Context, id uuid.UUID) error {
	loading := false
	c.loading.Compute(id, func(current *loadTicket, loaded bool) (*loadTicket, bool) {
		if loaded {
			current.ended = true
			loading = true
		}
		return current, !loaded
	})

	player, ok := c.players.LoadAndDelete(id)
	if !ok {
		if !loading {
			c.logger.Warnw("ending session of uncached player", "playerId", id)
		}
		return nil
	}
	return c.persistEnd(ctx, player)
}

// persistEnd writes the stored player row back with the offline flag, last
// seen time and accumulated playtime. The row is re-read first so changes
// made elsewhere during the session are kept.
func (c *Cache) persistEnd(ctx context.Context, player *Player) error {
	now := c.now()
	ticks := int64(now.Sub(player.SessionStart) / (time.Second / model.TicksPerSecond))

	record, err := c.repo.GetPlayer(ctx, player.Id)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if record == nil {
		snapshot := player.Player
		record = &snapshot
	}

	record.Online = false
	record.LastLogin = now
	if ticks > 0 {
		record.PlaytimeTicks += ticks
	}

	if err := c.repo.SavePlayer(ctx, record); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	c.logger.Infow("ended session", "playerId", player.Id, "playtimeTicks", ticks)
	return nil
}

// ReloadGrants re-fetches a cached player's grants, re-resolves their rank,
// re-applies permissions and propagates the change according to origin.
// Players not attached to this process are ignored.
func (c *Cache) ReloadGrants(ctx context.Context, id uuid.UUID, origin Origin) error {
	if _, ok := c.players.Load(id); !ok {
		return nil
	}

	grants, err := c.repo.GetActiveGrants(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get grants: %w", err)
	}

	now := c.now()
	if updated, ok := c.update(id, func(p *Player) {
		p.Grants = grants
		p.resolve(c.ranks.Get, now)
	}); ok {
		c.applicator.Apply(id)
		c.logger.Debugw("reloaded grants", "playerId", id, "origin", origin, "rank", updated.RankId())
	}

	c.propagate(ctx, id, origin)
	return nil
}

// GrantsChanged handles a grant change made by this process or reported
// over the point-to-point channel. Cached players are reloaded; for anyone
// else the change is only propagated.
func (c *Cache) GrantsChanged(ctx context.Context, id uuid.UUID, origin Origin) error {
	if _, ok := c.players.Load(id); ok {
		return c.ReloadGrants(ctx, id, origin)
	}
	c.propagate(ctx, id, origin)
	return nil
}

// ReloadPlayer re-fetches the stored player row of a cached player.
func (c *Cache) ReloadPlayer(ctx context.Context, id uuid.UUID) error {
	if _, ok := c.players.Load(id); !ok {
		return nil
	}

	record, err := c.repo.GetPlayer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if record == nil {
		return nil
	}

	now := c.now()
	if _, ok := c.update(id, func(p *Player) {
		p.Username = record.Username
		p.PlaytimeTicks = record.PlaytimeTicks
		p.AdditionalPermissions = record.AdditionalPermissions
		p.resolve(c.ranks.Get, now)
	}); ok {
		c.applicator.Apply(id)
	}
	return nil
}

// RefreshRanks reloads the rank cache and re-resolves every cached player
// from the grants it already holds.
func (c *Cache) RefreshRanks(ctx context.Context) error {
	if err := c.ranks.LoadAll(ctx); err != nil {
		return err
	}

	now := c.now()
	for _, id := range c.ids() {
		if _, ok := c.update(id, func(p *Player) {
			p.resolve(c.ranks.Get, now)
		}); ok {
			c.applicator.Apply(id)
		}
	}
	return nil
}

// update replaces a cached player with a modified copy. It reports false
// when the player is no longer cached.
func (c *Cache) update(id uuid.UUID, fn func(p *Player)) (*Player, bool) {
	updated := false
	v, _ := c.players.Compute(id, func(old *Player, loaded bool) (*Player, bool) {
		if !loaded {
			return nil, true
		}
		next := old.clone()
		fn(next)
		updated = true
		return next, false
	})
	return v, updated
}

func (c *Cache) propagate(ctx context.Context, id uuid.UUID, origin Origin) {
	if c.propagator == nil {
		return
	}
	c.propagator.GrantChanged(ctx, id, origin)
}

func (c *Cache) Get(id uuid.UUID) (*Player, bool) {
	return c.players.Load(id)
}

func (c *Cache) GetByUsername(username string) (*Player, bool) {
	var found *Player
	c.players.Range(func(_ uuid.UUID, p *Player) bool {
		if strings.EqualFold(p.Username, username) {
			found = p
			return false
		}
		return true
	})
	return found, found != nil
}

func (c *Cache) All() []*Player {
	out := make([]*Player, 0, c.players.Size())
	c.players.Range(func(_ uuid.UUID, p *Player) bool {
		out = append(out, p)
		return true
	})
	return out
}

func (c *Cache) Size() int {
	return c.players.Size()
}

func (c *Cache) HasPermission(id uuid.UUID, node string) bool {
	p, ok := c.players.Load(id)
	return ok && p.HasPermission(node)
}

// Permissions returns the effective permissions of a cached player.
func (c *Cache) Permissions(id uuid.UUID) (map[string]bool, bool) {
	p, ok := c.players.Load(id)
	if !ok {
		return nil, false
	}
	return p.Permissions, true
}

// DisplayName formats the player's name with their rank, falling back to
// the default rank.
func (c *Cache) DisplayName(id uuid.UUID) (string, bool) {
	p, ok := c.players.Load(id)
	if !ok {
		return "", false
	}
	rank := p.Rank
	if rank == nil {
		rank = c.ranks.Default()
	}
	return rank.FormatDisplayName(p.Username), true
}

// ShutdownAll ends every cached session concurrently and waits for all
// store writes to finish.
func (c *Cache) ShutdownAll(ctx context.Context) error {
	var g errgroup.Group
	for _, id := range c.ids() {
		id := id
		g.Go(func() error {
			return c.EndSession(ctx, id)
		})
	}
	return g.Wait()
}

func (c *Cache) ids() []uuid.UUID {
	ids := make([]uuid.UUID, 0, c.players.Size())
	c.players.Range(func(id uuid.UUID, _ *Player) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
