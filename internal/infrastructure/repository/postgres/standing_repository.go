package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/standing"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
)

type standingInsertModel struct {
	SeasonID       int64  `db:"season_id"`
	TeamID         int64  `db:"team_id"`
	Position       int    `db:"position"`
	GamesPlayed    int    `db:"games_played"`
	Wins           int    `db:"wins"`
	Draws          int    `db:"draws"`
	Losses         int    `db:"losses"`
	GoalsScored    int    `db:"goals_scored"`
	GoalsConceded  int    `db:"goals_conceded"`
	GoalDifference int    `db:"goal_difference"`
	Points         int    `db:"points"`
	Form           string `db:"form"`
}

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) UpsertSeason(ctx context.Context, seasonID int64, rows []standing.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert score table: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, row := range rows {
		model := standingInsertModel{
			SeasonID:       seasonID,
			TeamID:         row.TeamID,
			Position:       row.Position,
			GamesPlayed:    row.GamesPlayed,
			Wins:           row.Wins,
			Draws:          row.Draws,
			Losses:         row.Losses,
			GoalsScored:    row.GoalsScored,
			GoalsConceded:  row.GoalsConceded,
			GoalDifference: row.GoalDifference,
			Points:         row.Points,
			Form:           strings.TrimSpace(row.Form),
		}
		query, args, err := qb.InsertModel("score_table", model, `ON CONFLICT (season_id, team_id)
DO UPDATE SET
    position = EXCLUDED.position,
    games_played = EXCLUDED.games_played,
    wins = EXCLUDED.wins,
    draws = EXCLUDED.draws,
    losses = EXCLUDED.losses,
    goals_scored = EXCLUDED.goals_scored,
    goals_conceded = EXCLUDED.goals_conceded,
    goal_difference = EXCLUDED.goal_difference,
    points = EXCLUDED.points,
    form = EXCLUDED.form,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert score table row query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert score table row team_id=%d: %w", row.TeamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert score table tx: %w", err)
	}
	return len(rows), nil
}

func (r *StandingRepository) ListTeamIDs(ctx context.Context, seasonID int64) ([]int64, error) {
	query, args, err := qb.Select("team_id").From("score_table").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("position", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list score table teams query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list score table teams season_id=%d: %w", seasonID, err)
	}
	return ids, nil
}
