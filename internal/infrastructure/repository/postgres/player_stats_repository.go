package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) UpsertSeasonStats(ctx context.Context, items []playerstats.SeasonStats) (int, error) {
	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, playerSeasonStatsInsertModel{
			PlayerID:      item.PlayerID,
			SeasonID:      item.SeasonID,
			TeamID:        nullInt64(item.TeamID),
			GamesPlayed:   item.GamesPlayed,
			GamesStarting: item.GamesStarting,
			MinutesPlayed: item.MinutesPlayed,
			Goals:         item.Goals,
			Assists:       item.Assists,
			OwnGoals:      item.OwnGoals,
			Shots:         item.Shots,
			ShotsOnGoal:   item.ShotsOnGoal,
			Passes:        item.Passes,
			PassRatio:     nullFloat(item.PassRatio),
			XG:            nullFloat(item.XG),
			YellowCards:   item.YellowCards,
			RedCards:      item.RedCards,
			ExtraStats:    encodeJSONMap(item.Extra),
		})
	}

	return upsertEach(ctx, r.db, "player season stats", "player_season_stats", models, `ON CONFLICT (player_id, season_id)
DO UPDATE SET
    team_id = COALESCE(EXCLUDED.team_id, player_season_stats.team_id),
    games_played = EXCLUDED.games_played,
    games_starting = EXCLUDED.games_starting,
    minutes_played = EXCLUDED.minutes_played,
    goals = EXCLUDED.goals,
    assists = EXCLUDED.assists,
    own_goals = EXCLUDED.own_goals,
    shots = EXCLUDED.shots,
    shots_on_goal = EXCLUDED.shots_on_goal,
    passes = EXCLUDED.passes,
    pass_ratio = EXCLUDED.pass_ratio,
    xg = EXCLUDED.xg,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    extra_stats = EXCLUDED.extra_stats,
    updated_at = NOW()`)
}

func (r *PlayerStatsRepository) UpsertMatchStats(ctx context.Context, items []playerstats.MatchStats) (int, error) {
	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, playerMatchStatsInsertModel{
			MatchID:       item.MatchID,
			PlayerID:      item.PlayerID,
			TeamID:        item.TeamID,
			MinutesPlayed: nullInt(item.MinutesPlayed),
			Started:       item.Started,
			Position:      item.Position,
			Shots:         item.Shots,
			ShotsOnGoal:   item.ShotsOnGoal,
			ShotsOffGoal:  item.ShotsOffGoal,
			Passes:        item.Passes,
			PassAccuracy:  nullFloat(item.PassAccuracy),
			Duels:         item.Duels,
			Tackles:       item.Tackles,
			Corners:       item.Corners,
			Offsides:      item.Offsides,
			Fouls:         item.Fouls,
			YellowCards:   item.YellowCards,
			RedCards:      item.RedCards,
			ExtraStats:    encodeJSONMap(item.Extra),
		})
	}

	return upsertEach(ctx, r.db, "match player stats", "match_player_stats", models, `ON CONFLICT (match_id, player_id)
DO UPDATE SET
    team_id = EXCLUDED.team_id,
    minutes_played = EXCLUDED.minutes_played,
    started = EXCLUDED.started,
    position = EXCLUDED.position,
    shots = EXCLUDED.shots,
    shots_on_goal = EXCLUDED.shots_on_goal,
    shots_off_goal = EXCLUDED.shots_off_goal,
    passes = EXCLUDED.passes,
    pass_accuracy = EXCLUDED.pass_accuracy,
    duels = EXCLUDED.duels,
    tackles = EXCLUDED.tackles,
    corners = EXCLUDED.corners,
    offsides = EXCLUDED.offsides,
    fouls = EXCLUDED.fouls,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    extra_stats = EXCLUDED.extra_stats,
    updated_at = NOW()`)
}
