package season

import "context"

// Repository exposes tournament and season persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Season, bool, error)
	UpsertTournaments(ctx context.Context, items []Tournament) (int, error)
	// UpsertSeasons never touches SyncEnabled of existing rows.
	UpsertSeasons(ctx context.Context, items []Season) (int, error)
	SetSyncEnabled(ctx context.Context, id int64, enabled bool) error
	ListParticipantTeamIDs(ctx context.Context, seasonID int64) ([]int64, error)
	UpsertParticipants(ctx context.Context, seasonID int64, teamIDs []int64) (int, error)
}
