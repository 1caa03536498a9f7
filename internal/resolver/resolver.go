// Package resolver picks a player's active rank and computes the permission
// set that results from it. Nothing in here performs I/O.
package resolver

import (
	"strings"
	"time"

	"permission-sync/internal/repository/model"
)

// RankLookup returns the rank with the given id, or nil.
type RankLookup func(id string) *model.Rank

// Resolve returns the rank of the first valid grant in list order together
// with that grant. Rank priority is not consulted, so a player holding
// several valid grants gets whichever the store returned first. When the
// grant references an unknown rank the grant is still returned with a nil
// rank.
func Resolve(grants []*model.Grant, lookup RankLookup, now time.Time) (*model.Rank, *model.Grant) {
	for _, grant := range grants {
		if grant == nil || !grant.IsValid(now) {
			continue
		}
		return lookup(grant.RankId), grant
	}
	return nil, nil
}

// ActiveRankID returns the rank id of the first valid grant, or "".
func ActiveRankID(grants []*model.Grant, now time.Time) string {
	for _, grant := range grants {
		if grant != nil && grant.IsValid(now) {
			return grant.RankId
		}
	}
	return ""
}

// Effective computes the permission map for a rank and a player's extra
// permissions. Each source is applied in turn, rank first: allows, then
// denies (a leading "-"). A later source overrides an earlier one, so an
// extra allow beats a rank deny, while a node both allowed and denied in the
// same source ends up denied.
func Effective(rank *model.Rank, extra []string) map[string]bool {
	perms := make(map[string]bool)
	if rank != nil {
		applySource(perms, rank.Permissions)
	}
	applySource(perms, extra)
	return perms
}

func applySource(perms map[string]bool, nodes []string) {
	for _, node := range nodes {
		if node == "" || strings.HasPrefix(node, "-") {
			continue
		}
		perms[node] = true
	}
	for _, node := range nodes {
		if denied, ok := strings.CutPrefix(node, "-"); ok && denied != "" {
			perms[denied] = false
		}
	}
}
