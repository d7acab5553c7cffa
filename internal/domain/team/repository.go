package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]Team, error)
	ListBySotaIDs(ctx context.Context, sotaIDs []int64) ([]Team, error)
	// UpsertFromFeed keys on SotaID and returns the stored teams with ids.
	UpsertFromFeed(ctx context.Context, items []Team) ([]Team, error)
}
