package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
	UpsertPlayers(ctx context.Context, items []Player) error
}
