package match

import (
	"context"
	"time"
)

// Repository exposes match persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	GetBySotaID(ctx context.Context, sotaID string) (Match, bool, error)
	ListBySeason(ctx context.Context, seasonID int64) ([]Match, error)
	ListFinished(ctx context.Context, filter FinishedFilter) ([]Match, error)
	ListByStatus(ctx context.Context, status Status) ([]Match, error)
	// ListByDateRange returns matches in status whose date falls in [from, to].
	ListByDateRange(ctx context.Context, from, to time.Time, status Status) ([]Match, error)
	// UpsertFromFeed keys on SotaID. Score and status of finished matches are
	// only overwritten when repair is set.
	UpsertFromFeed(ctx context.Context, items []Match, repair bool) (int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	MarkHasStats(ctx context.Context, id int64) error
	// UpdateLiveMetadata fills missing fields and reports whether anything changed.
	UpdateLiveMetadata(ctx context.Context, id int64, meta LiveMetadata) (bool, error)
}
