package standing

import "context"

type Repository interface {
	UpsertSeason(ctx context.Context, seasonID int64, rows []Row) (int, error)
	ListTeamIDs(ctx context.Context, seasonID int64) ([]int64, error)
}
