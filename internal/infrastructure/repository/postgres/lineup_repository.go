package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

func (r *LineupRepository) ListByMatch(ctx context.Context, matchID int64) ([]lineup.Entry, error) {
	query, args, err := qb.Select("*").From("match_lineups").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("team_id", "role", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match lineup query: %w", err)
	}

	var rows []lineupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match lineup match_id=%d: %w", matchID, err)
	}

	out := make([]lineup.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, lineup.Entry{
			MatchID:       row.MatchID,
			TeamID:        row.TeamID,
			PlayerID:      row.PlayerID,
			Role:          lineup.Role(row.Role),
			ShirtNumber:   intPtr(row.ShirtNumber),
			IsCaptain:     row.IsCaptain,
			Amplua:        lineup.Amplua(row.Amplua),
			FieldPosition: lineup.FieldPosition(row.FieldPosition),
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *LineupRepository) SaveMatchLineup(ctx context.Context, batch lineup.MatchLineupBatch) error {
	if batch.MatchID <= 0 {
		return fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save match lineup: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	matchQuery, matchArgs, err := qb.Update("matches").
		SetExpr("home_formation", "COALESCE(?::text, home_formation)", optionalText(batch.HomeFormation)).
		SetExpr("away_formation", "COALESCE(?::text, away_formation)", optionalText(batch.AwayFormation)).
		SetExpr("home_kit_color", "COALESCE(?::text, home_kit_color)", optionalText(batch.HomeKitColor)).
		SetExpr("away_kit_color", "COALESCE(?::text, away_kit_color)", optionalText(batch.AwayKitColor)).
		SetExpr("has_lineup", "has_lineup OR ?", batch.HasLineup).
		SetExpr("live_synced_at", "COALESCE(?::timestamptz, live_synced_at)", nullTime(batch.LiveSyncedAt)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", batch.MatchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match lineup metadata query: %w", err)
	}
	res, err := tx.ExecContext(ctx, matchQuery, matchArgs...)
	if err != nil {
		return fmt.Errorf("update match lineup metadata match_id=%d: %w", batch.MatchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: match_id=%d", usecase.ErrNotFound, batch.MatchID)
	}

	if models := lineupModels(batch); len(models) > 0 {
		query, args, err := qb.InsertModels("match_lineups", models, `ON CONFLICT (match_id, player_id)
DO UPDATE SET
    team_id = EXCLUDED.team_id,
    role = EXCLUDED.role,
    shirt_number = COALESCE(EXCLUDED.shirt_number, match_lineups.shirt_number),
    is_captain = EXCLUDED.is_captain,
    amplua = COALESCE(NULLIF(EXCLUDED.amplua, ''), match_lineups.amplua),
    field_position = COALESCE(NULLIF(EXCLUDED.field_position, ''), match_lineups.field_position),
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert match lineup query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert match lineup match_id=%d: %w", batch.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save match lineup tx: %w", err)
	}
	return nil
}

// lineupModels keeps the last entry per player.
func lineupModels(batch lineup.MatchLineupBatch) []any {
	index := make(map[int64]int, len(batch.Entries))
	models := make([]any, 0, len(batch.Entries))
	for _, entry := range batch.Entries {
		model := lineupTableModel{
			MatchID:       batch.MatchID,
			TeamID:        entry.TeamID,
			PlayerID:      entry.PlayerID,
			Role:          string(entry.Role),
			ShirtNumber:   nullInt(entry.ShirtNumber),
			IsCaptain:     entry.IsCaptain,
			Amplua:        string(entry.Amplua),
			FieldPosition: string(entry.FieldPosition),
		}
		if i, ok := index[entry.PlayerID]; ok {
			models[i] = model
			continue
		}
		index[entry.PlayerID] = len(models)
		models = append(models, model)
	}
	return models
}

func optionalText(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
