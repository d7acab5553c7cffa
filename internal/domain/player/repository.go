package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetBySotaID(ctx context.Context, sotaID string) (Player, bool, error)
	ListBySotaIDs(ctx context.Context, sotaIDs []string) ([]Player, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Player, error)
	// UpsertFromFeed keys on SotaID and overwrites names and roles.
	UpsertFromFeed(ctx context.Context, items []Player) (int, error)
	// EnsureBySotaID returns the id of the player with the given SotaID,
	// creating it from item when unknown.
	EnsureBySotaID(ctx context.Context, item Player) (int64, bool, error)
	UpsertMemberships(ctx context.Context, items []Membership) (int, error)
	ListSeasonMemberships(ctx context.Context, seasonID int64) ([]Membership, error)
}
