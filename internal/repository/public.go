package repository

import (
	"context"

	"github.com/google/uuid"
	"permission-sync/internal/repository/model"
)

// Repository is the record store. Single-entity lookups return nil, nil when
// the record does not exist.
type Repository interface {
	GetPlayer(ctx context.Context, playerId uuid.UUID) (*model.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error)
	SavePlayer(ctx context.Context, player *model.Player) error
	SetOnline(ctx context.Context, playerId uuid.UUID, online bool) error
	AddPlaytime(ctx context.Context, playerId uuid.UUID, ticks int64) error
	DeletePlayer(ctx context.Context, playerId uuid.UUID) error

	GetAllRanks(ctx context.Context) ([]*model.Rank, error)
	GetRank(ctx context.Context, rankId string) (*model.Rank, error)
	GetDefaultRank(ctx context.Context) (*model.Rank, error)
	SaveRank(ctx context.Context, rank *model.Rank) error
	DeleteRank(ctx context.Context, rankId string) error

	GetGrant(ctx context.Context, grantId int64) (*model.Grant, error)
	// GetActiveGrants returns the player's valid grants in store order.
	GetActiveGrants(ctx context.Context, playerId uuid.UUID) ([]*model.Grant, error)
	GetGrants(ctx context.Context, playerId uuid.UUID) ([]*model.Grant, error)
	SaveGrant(ctx context.Context, grant *model.Grant) error
	SetGrantActive(ctx context.Context, grantId int64, active bool) error
	DeleteGrant(ctx context.Context, grantId int64) error
	CleanupExpiredGrants(ctx context.Context) (int, error)

	GetActivePunishments(ctx context.Context, playerId uuid.UUID) ([]*model.Punishment, error)
	SavePunishment(ctx context.Context, punishment *model.Punishment) (*model.Punishment, error)
	ExecutePunishment(ctx context.Context, punishmentId int64) (*model.ExecuteResult, error)
}
