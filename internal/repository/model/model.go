package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicksPerSecond is the game tick rate used for playtime accounting.
const TicksPerSecond = 20

type Rank struct {
	Id          string   `bson:"_id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	DisplayName string   `bson:"displayName" json:"displayName"`
	Prefix      string   `bson:"prefix" json:"prefix"`
	Suffix      string   `bson:"suffix" json:"suffix"`
	Priority    int      `bson:"priority" json:"priority"`
	IsDefault   bool     `bson:"isDefault" json:"isDefault"`
	Permissions []string `bson:"permissions" json:"permissions"`
}

// FormatDisplayName renders the username with the rank prefix, if any.
func (r *Rank) FormatDisplayName(username string) string {
	if r == nil || r.Prefix == "" {
		return username
	}
	return r.Prefix + " " + username
}

func (r *Rank) FormatChatName(username string) string {
	return r.FormatDisplayName(username) + "&7:"
}

// Player is the stored player row. The session view built on top of it
// lives in the session package.
type Player struct {
	Id                    uuid.UUID `bson:"_id"`
	Username              string    `bson:"username"`
	PlaytimeTicks         int64     `bson:"playtimeTicks"`
	FirstLogin            time.Time `bson:"firstLogin"`
	LastLogin             time.Time `bson:"lastLogin"`
	Online                bool      `bson:"online"`
	AdditionalPermissions []string  `bson:"additionalPermissions"`
}

type Grant struct {
	Id          int64      `bson:"_id"`
	PlayerId    uuid.UUID  `bson:"playerId"`
	RankId      string     `bson:"rankId"`
	GranterId   uuid.UUID  `bson:"granterId"`
	GranterName string     `bson:"granterName"`
	GrantedAt   time.Time  `bson:"grantedAt"`
	ExpiresAt   *time.Time `bson:"expiresAt"`
	Reason      string     `bson:"reason"`
	Active      bool       `bson:"active"`
}

func (g *Grant) IsPermanent() bool {
	return g.ExpiresAt == nil
}

func (g *Grant) IsExpired(now time.Time) bool {
	return g.ExpiresAt != nil && now.After(*g.ExpiresAt)
}

// IsValid reports whether the grant is currently in effect. Revocation and
// expiry are tracked independently and both must allow it.
func (g *Grant) IsValid(now time.Time) bool {
	return g.Active && !g.IsExpired(now)
}

// Remaining returns -1 for permanent grants, 0 once expired and the time
// left otherwise.
func (g *Grant) Remaining(now time.Time) time.Duration {
	if g.IsPermanent() {
		return -1
	}
	if g.IsExpired(now) {
		return 0
	}
	return g.ExpiresAt.Sub(now)
}

type PunishmentType string

const (
	PunishmentBan      PunishmentType = "BAN"
	PunishmentTempBan  PunishmentType = "TEMPBAN"
	PunishmentMute     PunishmentType = "MUTE"
	PunishmentTempMute PunishmentType = "TEMP_MUTE"
	PunishmentKick     PunishmentType = "KICK"
	PunishmentWarn     PunishmentType = "WARN"
)

func ParsePunishmentType(s string) (PunishmentType, bool) {
	t := PunishmentType(strings.ToUpper(s))
	switch t {
	case PunishmentBan, PunishmentTempBan, PunishmentMute, PunishmentTempMute, PunishmentKick, PunishmentWarn:
		return t, true
	}
	return "", false
}

// DisconnectsPlayer reports whether executing the punishment removes the
// player from the network.
func (t PunishmentType) DisconnectsPlayer() bool {
	return t == PunishmentBan || t == PunishmentTempBan || t == PunishmentKick
}

func (t PunishmentType) IsTemporary() bool {
	return t == PunishmentTempBan || t == PunishmentTempMute
}

// DisconnectMessage is shown to a player removed by a punishment of type t.
func (t PunishmentType) DisconnectMessage(reason string) string {
	var msg string
	switch t {
	case PunishmentBan:
		msg = "§cYou are permanently banned from this network."
	case PunishmentTempBan:
		msg = "§cYou are temporarily banned from this network."
	default:
		msg = "§cYou have been kicked from this network."
	}
	if reason != "" {
		msg += "\n§7Reason: §f" + reason
	}
	return msg
}

type Punishment struct {
	Id              int64          `bson:"_id"`
	PlayerId        uuid.UUID      `bson:"playerId"`
	PunishedById    uuid.UUID      `bson:"punishedById"`
	PunishedByName  string         `bson:"punishedByName"`
	Type            PunishmentType `bson:"type"`
	Reason          string         `bson:"reason"`
	DurationSeconds *int64         `bson:"durationSeconds"`
	CreatedAt       time.Time      `bson:"createdAt"`
	ExpiresAt       *time.Time     `bson:"expiresAt"`
	Active          bool           `bson:"active"`
	Executed        bool           `bson:"executed"`
}

func (p *Punishment) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

func (p *Punishment) IsValid(now time.Time) bool {
	return p.Active && !p.IsExpired(now)
}

type ExecuteResult struct {
	Success bool
	Message string
	Kicked  bool
}
