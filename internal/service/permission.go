package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"permission-sync/internal/cache"
	"permission-sync/internal/hub"
	"permission-sync/internal/kafka/notifier"
	"permission-sync/internal/platform"
	"permission-sync/internal/repository"
	"permission-sync/internal/repository/model"
	"permission-sync/internal/session"
)

var (
	ErrRankNotFound       = errors.New("rank not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGrantNotFound      = errors.New("grant not found")
	ErrInvalidPunishment  = errors.New("invalid punishment type")
	ErrPunishmentRejected = errors.New("punishment was not executed")
)

// Publisher is the outbound side of the broadcast hub.
type Publisher interface {
	Publish(msg hub.Message) bool
}

// PermissionService performs store mutations on behalf of this process and
// announces them to the rest of the network.
type PermissionService struct {
	logger    *zap.SugaredLogger
	repo      repository.Repository
	ranks     *cache.RankCache
	sessions  *session.Cache
	server    platform.Server
	publisher Publisher
	notif     notifier.Notifier

	now func() time.Time
}

func NewPermissionService(logger *zap.SugaredLogger, repo repository.Repository, ranks *cache.RankCache,
	sessions *session.Cache, server platform.Server, publisher Publisher, notif notifier.Notifier) *PermissionService {

	return &PermissionService{
		logger:    logger,
		repo:      repo,
		ranks:     ranks,
		sessions:  sessions,
		server:    server,
		publisher: publisher,
		notif:     notif,
		now:       time.Now,
	}
}

type CreateGrantRequest struct {
	PlayerId    uuid.UUID
	RankId      string
	GranterId   uuid.UUID
	GranterName string
	// Duration of zero makes the grant permanent.
	Duration time.Duration
	Reason   string
}

func (s *PermissionService) CreateGrant(ctx context.Context, req CreateGrantRequest) (*model.Grant, error) {
	if s.ranks.Get(req.RankId) == nil {
		return nil, ErrRankNotFound
	}

	player, err := s.repo.GetPlayer(ctx, req.PlayerId)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	now := s.now().UTC()
	grant := &model.Grant{
		PlayerId:    req.PlayerId,
		RankId:      req.RankId,
		GranterId:   req.GranterId,
		GranterName: req.GranterName,
		GrantedAt:   now,
		Reason:      req.Reason,
		Active:      true,
	}
	if req.Duration > 0 {
		expires := now.Add(req.Duration)
		grant.ExpiresAt = &expires
	}

	if err := s.repo.SaveGrant(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to save grant: %w", err)
	}

	s.grantChanged(ctx, grant, notifier.ChangeCreate)
	return grant, nil
}

// RevokeGrant marks a grant inactive. The grant record is kept.
func (s *PermissionService) RevokeGrant(ctx context.Context, grantId int64) (*model.Grant, error) {
	grant, err := s.getGrant(ctx, grantId)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetGrantActive(ctx, grantId, false); err != nil {
		return nil, fmt.Errorf("failed to revoke grant: %w", err)
	}
	grant.Active = false

	s.grantChanged(ctx, grant, notifier.ChangeRevoke)
	return grant, nil
}

func (s *PermissionService) DeleteGrant(ctx context.Context, grantId int64) error {
	grant, err := s.getGrant(ctx, grantId)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteGrant(ctx, grantId); err != nil {
		return fmt.Errorf("failed to delete grant: %w", err)
	}

	s.grantChanged(ctx, grant, notifier.ChangeDelete)
	return nil
}

func (s *PermissionService) ListGrants(ctx context.Context, playerId uuid.UUID) ([]*model.Grant, error) {
	grants, err := s.repo.GetGrants(ctx, playerId)
	if err != nil {
		return nil, fmt.Errorf("failed to get grants: %w", err)
	}
	return grants, nil
}

func (s *PermissionService) CleanupExpiredGrants(ctx context.Context) (int, error) {
	count, err := s.repo.CleanupExpiredGrants(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired grants: %w", err)
	}

	s.logger.Infow("cleaned up expired grants", "count", count)
	return count, nil
}

func (s *PermissionService) getGrant(ctx context.Context, grantId int64) (*model.Grant, error) {
	grant, err := s.repo.GetGrant(ctx, grantId)
	if err != nil {
		return nil, fmt.Errorf("failed to get grant: %w", err)
	}
	if grant == nil {
		return nil, ErrGrantNotFound
	}
	return grant, nil
}

// grantChanged reloads and propagates the change, then emits it on the
// change feed. The store write already succeeded, so failures are logged.
func (s *PermissionService) grantChanged(ctx context.Context, grant *model.Grant, changeType notifier.ChangeType) {
	if err := s.sessions.GrantsChanged(ctx, grant.PlayerId, session.OriginLocal); err != nil {
		s.logger.Errorw("failed to reload grants", "playerId", grant.PlayerId, "error", err)
	}

	if err := s.notif.GrantUpdate(ctx, grant, changeType); err != nil {
		s.logger.Errorw("error sending grant update notification", "grantId", grant.Id, "error", err)
	}
}

func (s *PermissionService) SaveRank(ctx context.Context, rank *model.Rank) error {
	changeType := notifier.ChangeUpdate
	if s.ranks.Get(rank.Id) == nil {
		changeType = notifier.ChangeCreate
	}

	if err := s.repo.SaveRank(ctx, rank); err != nil {
		return fmt.Errorf("failed to save rank: %w", err)
	}

	s.rankChanged(ctx, rank, changeType)
	return nil
}

func (s *PermissionService) DeleteRank(ctx context.Context, rankId string) error {
	rank := s.ranks.Get(rankId)
	if rank == nil {
		return ErrRankNotFound
	}

	if err := s.repo.DeleteRank(ctx, rankId); err != nil {
		return fmt.Errorf("failed to delete rank: %w", err)
	}

	s.rankChanged(ctx, rank, notifier.ChangeDelete)
	return nil
}

func (s *PermissionService) rankChanged(ctx context.Context, rank *model.Rank, changeType notifier.ChangeType) {
	if err := s.sessions.RefreshRanks(ctx); err != nil {
		s.logger.Errorw("failed to refresh ranks", "rankId", rank.Id, "error", err)
	}

	s.publisher.Publish(hub.RankChange{RankId: rank.Id})

	if err := s.notif.RankUpdate(ctx, rank, changeType); err != nil {
		s.logger.Errorw("error sending rank update notification", "rankId", rank.Id, "error", err)
	}
}

type PunishRequest struct {
	PlayerId       uuid.UUID
	PunishedById   uuid.UUID
	PunishedByName string
	Type           string
	Reason         string
	// Duration of zero makes the punishment permanent.
	Duration time.Duration
}

// Punish creates and executes a punishment. Disconnecting punishments are
// enforced on this process immediately and announced over the hub for the
// others.
func (s *PermissionService) Punish(ctx context.Context, req PunishRequest) (*model.Punishment, error) {
	punishmentType, ok := model.ParsePunishmentType(req.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPunishment, req.Type)
	}

	player, err := s.repo.GetPlayer(ctx, req.PlayerId)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	now := s.now().UTC()
	punishment := &model.Punishment{
		PlayerId:       req.PlayerId,
		PunishedById:   req.PunishedById,
		PunishedByName: req.PunishedByName,
		Type:           punishmentType,
		Reason:         req.Reason,
		CreatedAt:      now,
		Active:         true,
	}
	if req.Duration > 0 {
		seconds := int64(req.Duration / time.Second)
		expires := now.Add(req.Duration)
		punishment.DurationSeconds = &seconds
		punishment.ExpiresAt = &expires
	}

	created, err := s.repo.SavePunishment(ctx, punishment)
	if err != nil {
		return nil, fmt.Errorf("failed to save punishment: %w", err)
	}

	result, err := s.repo.ExecutePunishment(ctx, created.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to execute punishment: %w", err)
	}
	if !result.Success {
		return created, fmt.Errorf("%w: %s", ErrPunishmentRejected, result.Message)
	}
	created.Executed = true

	if punishmentType.DisconnectsPlayer() {
		if target, ok := s.server.Session(req.PlayerId); ok && target.Connected() {
			reason := punishmentType.DisconnectMessage(req.Reason)
			s.server.Schedule(func() {
				target.Disconnect(reason)
			})
		}
	}

	s.publisher.Publish(hub.PunishExecute{PlayerId: req.PlayerId, PunishmentType: string(punishmentType), Reason: req.Reason})

	if err := s.notif.PunishmentUpdate(ctx, created, notifier.ChangeCreate); err != nil {
		s.logger.Errorw("error sending punishment update notification", "punishmentId", created.Id, "error", err)
	}

	return created, nil
}

func (s *PermissionService) ActivePunishments(ctx context.Context, playerId uuid.UUID) ([]*model.Punishment, error) {
	punishments, err := s.repo.GetActivePunishments(ctx, playerId)
	if err != nil {
		return nil, fmt.Errorf("failed to get punishments: %w", err)
	}
	return punishments, nil
}
