package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/teamstats"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
)

type TeamStatsRepository struct {
	db *sqlx.DB
}

func NewTeamStatsRepository(db *sqlx.DB) *TeamStatsRepository {
	return &TeamStatsRepository{db: db}
}

func (r *TeamStatsRepository) UpsertSeasonStats(ctx context.Context, items []teamstats.SeasonStats) (int, error) {
	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, teamSeasonStatsInsertModel{
			TeamID:        item.TeamID,
			SeasonID:      item.SeasonID,
			GamesPlayed:   item.GamesPlayed,
			Wins:          item.Wins,
			Draws:         item.Draws,
			Losses:        item.Losses,
			Goals:         item.Goals,
			GoalsConceded: item.GoalsConceded,
			Points:        item.Points,
			XG:            nullFloat(item.XG),
			Shots:         item.Shots,
			ShotsOnGoal:   item.ShotsOnGoal,
			Possession:    nullFloat(item.Possession),
			Passes:        item.Passes,
			PassRatio:     nullFloat(item.PassRatio),
			Fouls:         item.Fouls,
			YellowCards:   item.YellowCards,
			RedCards:      item.RedCards,
			Corners:       item.Corners,
			Offsides:      item.Offsides,
			ExtraStats:    encodeJSONMap(item.Extra),
		})
	}

	return upsertEach(ctx, r.db, "team season stats", "team_season_stats", models, `ON CONFLICT (team_id, season_id)
DO UPDATE SET
    games_played = EXCLUDED.games_played,
    wins = EXCLUDED.wins,
    draws = EXCLUDED.draws,
    losses = EXCLUDED.losses,
    goals = EXCLUDED.goals,
    goals_conceded = EXCLUDED.goals_conceded,
    points = EXCLUDED.points,
    xg = EXCLUDED.xg,
    shots = EXCLUDED.shots,
    shots_on_goal = EXCLUDED.shots_on_goal,
    possession = EXCLUDED.possession,
    passes = EXCLUDED.passes,
    pass_ratio = EXCLUDED.pass_ratio,
    fouls = EXCLUDED.fouls,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    corners = EXCLUDED.corners,
    offsides = EXCLUDED.offsides,
    extra_stats = EXCLUDED.extra_stats,
    updated_at = NOW()`)
}

func (r *TeamStatsRepository) UpsertMatchStats(ctx context.Context, items []teamstats.MatchStats) (int, error) {
	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, teamMatchStatsInsertModel{
			MatchID:           item.MatchID,
			TeamID:            item.TeamID,
			Possession:        nullInt(item.Possession),
			PossessionPercent: nullFloat(item.PossessionPercent),
			Shots:             nullInt(item.Shots),
			ShotsOnGoal:       nullInt(item.ShotsOnGoal),
			ShotsOffGoal:      nullInt(item.ShotsOffGoal),
			Passes:            nullInt(item.Passes),
			PassAccuracy:      nullFloat(item.PassAccuracy),
			Fouls:             nullInt(item.Fouls),
			YellowCards:       nullInt(item.YellowCards),
			RedCards:          nullInt(item.RedCards),
			Corners:           nullInt(item.Corners),
			Offsides:          nullInt(item.Offsides),
			ExtraStats:        encodeJSONMap(item.Extra),
		})
	}

	return upsertEach(ctx, r.db, "match team stats", "match_team_stats", models, `ON CONFLICT (match_id, team_id)
DO UPDATE SET
    possession = EXCLUDED.possession,
    possession_percent = EXCLUDED.possession_percent,
    shots = EXCLUDED.shots,
    shots_on_goal = EXCLUDED.shots_on_goal,
    shots_off_goal = EXCLUDED.shots_off_goal,
    passes = EXCLUDED.passes,
    pass_accuracy = EXCLUDED.pass_accuracy,
    fouls = EXCLUDED.fouls,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    corners = EXCLUDED.corners,
    offsides = EXCLUDED.offsides,
    extra_stats = EXCLUDED.extra_stats,
    updated_at = NOW()`)
}

// upsertEach writes one statement per model inside a single transaction.
func upsertEach(ctx context.Context, db *sqlx.DB, label, table string, models []any, suffix string) (int, error) {
	if len(models) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert %s: %w", label, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, model := range models {
		query, args, err := qb.InsertModel(table, model, suffix)
		if err != nil {
			return 0, fmt.Errorf("build upsert %s query: %w", label, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert %s row=%d: %w", label, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert %s tx: %w", label, err)
	}
	return len(models), nil
}
