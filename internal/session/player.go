package session

import (
	"time"

	"permission-sync/internal/repository/model"
	"permission-sync/internal/resolver"
)

// Player is the cached view of a player attached to this process. Values
// stored in the cache are never modified; updates swap in a new copy.
type Player struct {
	model.Player

	Grants      []*model.Grant
	Rank        *model.Rank
	ActiveGrant *model.Grant
	// Permissions is the effective permission set computed from Rank and
	// AdditionalPermissions.
	Permissions  map[string]bool
	SessionStart time.Time
}

func (p *Player) HasPermission(node string) bool {
	return p.Permissions[node]
}

// RankId returns the id of the resolved rank, or "".
func (p *Player) RankId() string {
	if p.Rank == nil {
		return ""
	}
	return p.Rank.Id
}

func (p *Player) clone() *Player {
	next := *p
	return &next
}

// resolve recomputes the rank, active grant and permissions from the
// player's grants.
func (p *Player) resolve(lookup resolver.RankLookup, now time.Time) {
	p.Rank, p.ActiveGrant = resolver.Resolve(p.Grants, lookup, now)
	p.Permissions = resolver.Effective(p.Rank, p.AdditionalPermissions)
}
