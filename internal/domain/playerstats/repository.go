package playerstats

import "context"

type Repository interface {
	UpsertSeasonStats(ctx context.Context, items []SeasonStats) (int, error)
	UpsertMatchStats(ctx context.Context, items []MatchStats) (int, error)
}
