package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"permission-sync/internal/config"
	"permission-sync/internal/repository/model"
)

const (
	apiKeyHeader = "X-API-Key"

	// isoLocalDateTime matches the zone-less timestamps the record store
	// produces. Fractional seconds are optional when parsing.
	isoLocalDateTime = "2006-01-02T15:04:05.999999999"
)

// APIError is returned for every record store response with status >= 400.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request %s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type apiRepository struct {
	logger  *zap.SugaredLogger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewAPIRepository(logger *zap.SugaredLogger, cfg config.APIConfig) Repository {
	return &apiRepository{
		logger:  logger,
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.Key,
	}
}

func (a *apiRepository) GetPlayer(ctx context.Context, playerId uuid.UUID) (*model.Player, error) {
	var dto playerDto
	found, err := a.getOne(ctx, "/players/"+playerId.String(), &dto)
	if err != nil || !found {
		return nil, err
	}
	return dto.toModel()
}

func (a *apiRepository) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	var dto playerDto
	found, err := a.getOne(ctx, "/players/username/"+url.PathEscape(username), &dto)
	if err != nil || !found {
		return nil, err
	}
	return dto.toModel()
}

func (a *apiRepository) SavePlayer(ctx context.Context, player *model.Player) error {
	return a.do(ctx, http.MethodPost, "/players", playerToDto(player), nil)
}

func (a *apiRepository) SetOnline(ctx context.Context, playerId uuid.UUID, online bool) error {
	body := map[string]bool{"isOnline": online}
	return a.do(ctx, http.MethodPut, "/players/"+playerId.String()+"/online", body, nil)
}

func (a *apiRepository) AddPlaytime(ctx context.Context, playerId uuid.UUID, ticks int64) error {
	body := map[string]int64{"ticks": ticks}
	return a.do(ctx, http.MethodPost, "/players/"+playerId.String()+"/playtime", body, nil)
}

func (a *apiRepository) DeletePlayer(ctx context.Context, playerId uuid.UUID) error {
	return a.do(ctx, http.MethodDelete, "/players/"+playerId.String(), nil, nil)
}

func (a *apiRepository) GetAllRanks(ctx context.Context) ([]*model.Rank, error) {
	var ranks []*model.Rank
	if err := a.do(ctx, http.MethodGet, "/ranks", nil, &ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}

func (a *apiRepository) GetRank(ctx context.Context, rankId string) (*model.Rank, error) {
	var rank model.Rank
	found, err := a.getOne(ctx, "/ranks/"+url.PathEscape(rankId), &rank)
	if err != nil || !found {
		return nil, err
	}
	return &rank, nil
}

func (a *apiRepository) GetDefaultRank(ctx context.Context) (*model.Rank, error) {
	var rank model.Rank
	found, err := a.getOne(ctx, "/ranks/default", &rank)
	if err != nil || !found {
		return nil, err
	}
	return &rank, nil
}

func (a *apiRepository) SaveRank(ctx context.Context, rank *model.Rank) error {
	return a.do(ctx, http.MethodPost, "/ranks", rank, nil)
}

func (a *apiRepository) DeleteRank(ctx context.Context, rankId string) error {
	return a.do(ctx, http.MethodDelete, "/ranks/"+url.PathEscape(rankId), nil, nil)
}

func (a *apiRepository) GetGrant(ctx context.Context, grantId int64) (*model.Grant, error) {
	var dto grantDto
	found, err := a.getOne(ctx, "/grants/"+strconv.FormatInt(grantId, 10), &dto)
	if err != nil || !found {
		return nil, err
	}
	return dto.toModel()
}

func (a *apiRepository) GetActiveGrants(ctx context.Context, playerId uuid.UUID) ([]*model.Grant, error) {
	return a.getGrants(ctx, "/grants/player/"+playerId.String()+"/active")
}

func (a *apiRepository) GetGrants(ctx context.Context, playerId uuid.UUID) ([]*model.Grant, error) {
	return a.getGrants(ctx, "/grants/player/"+playerId.String())
}

func (a *apiRepository) getGrants(ctx context.Context, path string) ([]*model.Grant, error) {
	var dtos []grantDto
	if err := a.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}

	grants := make([]*model.Grant, 0, len(dtos))
	for _, dto := range dtos {
		grant, err := dto.toModel()
		if err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	return grants, nil
}

func (a *apiRepository) SaveGrant(ctx context.Context, grant *model.Grant) error {
	return a.do(ctx, http.MethodPost, "/grants", grantToDto(grant), nil)
}

func (a *apiRepository) SetGrantActive(ctx context.Context, grantId int64, active bool) error {
	body := map[string]bool{"isActive": active}
	return a.do(ctx, http.MethodPut, "/grants/"+strconv.FormatInt(grantId, 10)+"/active", body, nil)
}

func (a *apiRepository) DeleteGrant(ctx context.Context, grantId int64) error {
	return a.do(ctx, http.MethodDelete, "/grants/"+strconv.FormatInt(grantId, 10), nil, nil)
}

func (a *apiRepository) CleanupExpiredGrants(ctx context.Context) (int, error) {
	var resp struct {
		CleanupCount int `json:"cleanupCount"`
	}
	if err := a.do(ctx, http.MethodPost, "/grants/cleanup-expired", nil, &resp); err != nil {
		return 0, err
	}
	return resp.CleanupCount, nil
}

func (a *apiRepository) GetActivePunishments(ctx context.Context, playerId uuid.UUID) ([]*model.Punishment, error) {
	var dtos []punishmentDto
	if err := a.do(ctx, http.MethodGet, "/punishments/player/"+playerId.String()+"/active", nil, &dtos); err != nil {
		return nil, err
	}

	punishments := make([]*model.Punishment, 0, len(dtos))
	for _, dto := range dtos {
		p, err := dto.toModel()
		if err != nil {
			return nil, err
		}
		punishments = append(punishments, p)
	}
	return punishments, nil
}

func (a *apiRepository) SavePunishment(ctx context.Context, punishment *model.Punishment) (*model.Punishment, error) {
	var created punishmentDto
	if err := a.do(ctx, http.MethodPost, "/punishments", punishmentToDto(punishment), &created); err != nil {
		return nil, err
	}
	return created.toModel()
}

func (a *apiRepository) ExecutePunishment(ctx context.Context, punishmentId int64) (*model.ExecuteResult, error) {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Kicked  *bool  `json:"kicked"`
	}
	path := "/punishments/" + strconv.FormatInt(punishmentId, 10) + "/execute"
	if err := a.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}

	return &model.ExecuteResult{
		Success: resp.Success,
		Message: resp.Message,
		Kicked:  resp.Kicked != nil && *resp.Kicked,
	}, nil
}

// getOne performs a single-entity GET. A 404 reports not found without error.
func (a *apiRepository) getOne(ctx context.Context, path string, out any) (bool, error) {
	err := a.do(ctx, http.MethodGet, path, nil, out)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *apiRepository) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, a.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("api request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	a.logger.Debugw("api request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}
	return nil
}

type playerDto struct {
	Uuid                  string   `json:"uuid"`
	Username              string   `json:"username"`
	PlaytimeTicks         *int64   `json:"playtimeTicks"`
	FirstLogin            *string  `json:"firstLogin"`
	LastLogin             *string  `json:"lastLogin"`
	IsOnline              *bool    `json:"isOnline"`
	AdditionalPermissions []string `json:"additionalPermissions"`
}

func (d *playerDto) toModel() (*model.Player, error) {
	id, err := uuid.Parse(d.Uuid)
	if err != nil {
		return nil, fmt.Errorf("invalid player uuid %q: %w", d.Uuid, err)
	}

	p := &model.Player{
		Id:                    id,
		Username:              d.Username,
		AdditionalPermissions: d.AdditionalPermissions,
	}
	if d.PlaytimeTicks != nil {
		p.PlaytimeTicks = *d.PlaytimeTicks
	}
	if d.IsOnline != nil {
		p.Online = *d.IsOnline
	}
	if p.FirstLogin, err = parseTime(d.FirstLogin); err != nil {
		return nil, err
	}
	if p.LastLogin, err = parseTime(d.LastLogin); err != nil {
		return nil, err
	}
	return p, nil
}

func playerToDto(p *model.Player) playerDto {
	return playerDto{
		Uuid:                  p.Id.String(),
		Username:              p.Username,
		PlaytimeTicks:         &p.PlaytimeTicks,
		FirstLogin:            formatTime(p.FirstLogin),
		LastLogin:             formatTime(p.LastLogin),
		IsOnline:              &p.Online,
		AdditionalPermissions: p.AdditionalPermissions,
	}
}

type grantDto struct {
	Id          *int64  `json:"id,omitempty"`
	PlayerUuid  string  `json:"playerUuid"`
	RankId      string  `json:"rankId"`
	GranterUuid string  `json:"granterUuid"`
	GranterName string  `json:"granterName"`
	GrantedAt   *string `json:"grantedAt"`
	ExpiresAt   *string `json:"expiresAt"`
	Reason      string  `json:"reason"`
	IsActive    *bool   `json:"isActive"`
}

func (d *grantDto) toModel() (*model.Grant, error) {
	playerId, err := uuid.Parse(d.PlayerUuid)
	if err != nil {
		return nil, fmt.Errorf("invalid grant player uuid %q: %w", d.PlayerUuid, err)
	}

	g := &model.Grant{
		PlayerId:    playerId,
		RankId:      d.RankId,
		GranterName: d.GranterName,
		Reason:      d.Reason,
		Active:      d.IsActive != nil && *d.IsActive,
	}
	if d.Id != nil {
		g.Id = *d.Id
	}
	if d.GranterUuid != "" {
		// console grants carry no usable granter id
		if granterId, err := uuid.Parse(d.GranterUuid); err == nil {
			g.GranterId = granterId
		}
	}
	if g.GrantedAt, err = parseTime(d.GrantedAt); err != nil {
		return nil, err
	}
	if d.ExpiresAt != nil {
		expiresAt, err := parseTime(d.ExpiresAt)
		if err != nil {
			return nil, err
		}
		g.ExpiresAt = &expiresAt
	}
	return g, nil
}

func grantToDto(g *model.Grant) grantDto {
	dto := grantDto{
		PlayerUuid:  g.PlayerId.String(),
		RankId:      g.RankId,
		GranterUuid: g.GranterId.String(),
		GranterName: g.GranterName,
		GrantedAt:   formatTime(g.GrantedAt),
		Reason:      g.Reason,
		IsActive:    &g.Active,
	}
	if g.Id > 0 {
		dto.Id = &g.Id
	}
	if g.ExpiresAt != nil {
		dto.ExpiresAt = formatTime(*g.ExpiresAt)
	}
	return dto
}

type punishmentDto struct {
	Id              *int64  `json:"id,omitempty"`
	PlayerUuid      string  `json:"playerUuid"`
	PunishedByUuid  string  `json:"punishedByUuid"`
	PunishedByName  string  `json:"punishedByName"`
	Type            string  `json:"type"`
	Reason          string  `json:"reason"`
	DurationSeconds *int64  `json:"durationSeconds"`
	CreatedAt       *string `json:"createdAt"`
	ExpiresAt       *string `json:"expiresAt"`
	IsActive        *bool   `json:"isActive"`
	Executed        *bool   `json:"executed"`
}

func (d *punishmentDto) toModel() (*model.Punishment, error) {
	playerId, err := uuid.Parse(d.PlayerUuid)
	if err != nil {
		return nil, fmt.Errorf("invalid punishment player uuid %q: %w", d.PlayerUuid, err)
	}
	punishmentType, ok := model.ParsePunishmentType(d.Type)
	if !ok {
		return nil, fmt.Errorf("unknown punishment type %q", d.Type)
	}

	p := &model.Punishment{
		PlayerId:        playerId,
		PunishedByName:  d.PunishedByName,
		Type:            punishmentType,
		Reason:          d.Reason,
		DurationSeconds: d.DurationSeconds,
		Active:          d.IsActive != nil && *d.IsActive,
		Executed:        d.Executed != nil && *d.Executed,
	}
	if d.Id != nil {
		p.Id = *d.Id
	}
	if punishedBy, err := uuid.Parse(d.PunishedByUuid); err == nil {
		p.PunishedById = punishedBy
	}
	if p.CreatedAt, err = parseTime(d.CreatedAt); err != nil {
		return nil, err
	}
	if d.ExpiresAt != nil {
		expiresAt, err := parseTime(d.ExpiresAt)
		if err != nil {
			return nil, err
		}
		p.ExpiresAt = &expiresAt
	}
	return p, nil
}

func punishmentToDto(p *model.Punishment) punishmentDto {
	dto := punishmentDto{
		PlayerUuid:      p.PlayerId.String(),
		PunishedByUuid:  p.PunishedById.String(),
		PunishedByName:  p.PunishedByName,
		Type:            string(p.Type),
		Reason:          p.Reason,
		DurationSeconds: p.DurationSeconds,
		CreatedAt:       formatTime(p.CreatedAt),
		IsActive:        &p.Active,
		Executed:        &p.Executed,
	}
	if p.Id > 0 {
		dto.Id = &p.Id
	}
	if p.ExpiresAt != nil {
		dto.ExpiresAt = formatTime(*p.ExpiresAt)
	}
	return dto
}

func parseTime(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(isoLocalDateTime, *s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", *s, err)
	}
	return t, nil
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(isoLocalDateTime)
	return &s
}
