package notifier

import (
	"context"

	"permission-sync/internal/repository/model"
)

type ChangeType string

const (
	ChangeCreate ChangeType = "CREATE"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeRevoke ChangeType = "REVOKE"
	ChangeDelete ChangeType = "DELETE"
)

// Notifier publishes the change feed of store mutations made by this process.
type Notifier interface {
	GrantUpdate(ctx context.Context, grant *model.Grant, changeType ChangeType) error
	RankUpdate(ctx context.Context, rank *model.Rank, changeType ChangeType) error
	PunishmentUpdate(ctx context.Context, punishment *model.Punishment, changeType ChangeType) error
}

type noopNotifier struct{}

// NewNoopNotifier returns a Notifier that discards every event.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) GrantUpdate(context.Context, *model.Grant, ChangeType) error {
	return nil
}

func (noopNotifier) RankUpdate(context.Context, *model.Rank, ChangeType) error {
	return nil
}

func (noopNotifier) PunishmentUpdate(context.Context, *model.Punishment, ChangeType) error {
	return nil
}
