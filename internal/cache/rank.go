package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"permission-sync/internal/repository"
	"permission-sync/internal/repository/model"
)

type rankSnapshot struct {
	byId    map[string]*model.Rank
	ordered []*model.Rank
	def     *model.Rank
}

var emptySnapshot = &rankSnapshot{byId: map[string]*model.Rank{}}

// RankCache holds every rank definition. Readers always see a complete
// snapshot; LoadAll swaps in a new one only after it is fully built.
type RankCache struct {
	logger *zap.SugaredLogger
	repo   repository.Repository

	snapshot atomic.Pointer[rankSnapshot]
}

func NewRankCache(logger *zap.SugaredLogger, repo repository.Repository) *RankCache {
	c := &RankCache{logger: logger, repo: repo}
	c.snapshot.Store(emptySnapshot)
	return c
}

// LoadAll replaces the cached ranks with the store's current set. On failure
// the previous snapshot is kept.
func (c *RankCache) LoadAll(ctx context.Context) error {
	ranks, err := c.repo.GetAllRanks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ranks: %w", err)
	}

	next := &rankSnapshot{
		byId:    make(map[string]*model.Rank, len(ranks)),
		ordered: make([]*model.Rank, 0, len(ranks)),
	}
	for _, rank := range ranks {
		if rank == nil {
			continue
		}
		next.byId[rank.Id] = rank
		next.ordered = append(next.ordered, rank)
		if rank.IsDefault && next.def == nil {
			next.def = rank
		}
	}

	c.snapshot.Store(next)
	c.logger.Infow("loaded ranks", "count", len(next.ordered))
	return nil
}

// Get returns the rank with the given id or nil.
func (c *RankCache) Get(id string) *model.Rank {
	return c.snapshot.Load().byId[id]
}

func (c *RankCache) All() []*model.Rank {
	ordered := c.snapshot.Load().ordered
	out := make([]*model.Rank, len(ordered))
	copy(out, ordered)
	return out
}

func (c *RankCache) Default() *model.Rank {
	return c.snapshot.Load().def
}
