package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/season"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByID(ctx context.Context, id int64) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season id=%d: %w", id, err)
	}

	return season.Season{
		ID:           row.ID,
		TournamentID: row.TournamentID.Int64,
		Name:         row.Name,
		NameKZ:       row.NameKZ,
		NameEN:       row.NameEN,
		DateStart:    timePtr(row.DateStart),
		DateEnd:      timePtr(row.DateEnd),
		SyncEnabled:  row.SyncEnabled,
	}, true, nil
}

func (r *SeasonRepository) UpsertTournaments(ctx context.Context, items []season.Tournament) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert tournaments: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		model := tournamentInsertModel{
			ID:            item.ID,
			Name:          item.Name,
			NameKZ:        item.NameKZ,
			NameEN:        item.NameEN,
			CountryCode:   item.CountryCode,
			CountryName:   item.CountryName,
			CountryNameKZ: item.CountryNameKZ,
			CountryNameEN: item.CountryNameEN,
		}
		query, args, err := qb.InsertModel("tournaments", model, `ON CONFLICT (id)
DO UPDATE SET
    name = COALESCE(NULLIF(EXCLUDED.name, ''), tournaments.name),
    name_kz = COALESCE(NULLIF(EXCLUDED.name_kz, ''), tournaments.name_kz),
    name_en = COALESCE(NULLIF(EXCLUDED.name_en, ''), tournaments.name_en),
    country_code = COALESCE(NULLIF(EXCLUDED.country_code, ''), tournaments.country_code),
    country_name = COALESCE(NULLIF(EXCLUDED.country_name, ''), tournaments.country_name),
    country_name_kz = COALESCE(NULLIF(EXCLUDED.country_name_kz, ''), tournaments.country_name_kz),
    country_name_en = COALESCE(NULLIF(EXCLUDED.country_name_en, ''), tournaments.country_name_en),
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert tournament query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert tournament id=%d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert tournaments tx: %w", err)
	}
	return len(items), nil
}

// UpsertSeasons leaves sync_enabled out of both the insert and the update so
// new seasons start disabled and existing flags survive.
func (r *SeasonRepository) UpsertSeasons(ctx context.Context, items []season.Season) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert seasons: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		model := seasonTableModel{
			ID:           item.ID,
			TournamentID: nullPositiveInt64(item.TournamentID),
			Name:         item.Name,
			NameKZ:       item.NameKZ,
			NameEN:       item.NameEN,
			DateStart:    nullTime(item.DateStart),
			DateEnd:      nullTime(item.DateEnd),
		}
		query, args, err := qb.InsertModel("seasons", model, `ON CONFLICT (id)
DO UPDATE SET
    tournament_id = COALESCE(EXCLUDED.tournament_id, seasons.tournament_id),
    name = COALESCE(NULLIF(EXCLUDED.name, ''), seasons.name),
    name_kz = COALESCE(NULLIF(EXCLUDED.name_kz, ''), seasons.name_kz),
    name_en = COALESCE(NULLIF(EXCLUDED.name_en, ''), seasons.name_en),
    date_start = COALESCE(EXCLUDED.date_start, seasons.date_start),
    date_end = COALESCE(EXCLUDED.date_end, seasons.date_end),
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert season query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert season id=%d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert seasons tx: %w", err)
	}
	return len(items), nil
}

func (r *SeasonRepository) SetSyncEnabled(ctx context.Context, id int64, enabled bool) error {
	query, args, err := qb.Update("seasons").
		Set("sync_enabled", enabled).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set season sync query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set season sync id=%d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: season_id=%d", usecase.ErrNotFound, id)
	}
	return nil
}

func (r *SeasonRepository) ListParticipantTeamIDs(ctx context.Context, seasonID int64) ([]int64, error) {
	query, args, err := qb.Select("team_id").From("season_participants").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season participants query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list season participants season_id=%d: %w", seasonID, err)
	}
	return ids, nil
}

func (r *SeasonRepository) UpsertParticipants(ctx context.Context, seasonID int64, teamIDs []int64) (int, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}

	builder := qb.InsertInto("season_participants").Columns("season_id", "team_id")
	for _, teamID := range teamIDs {
		builder.Values(seasonID, teamID)
	}
	query, args, err := builder.Suffix("ON CONFLICT (season_id, team_id) DO NOTHING").ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build upsert season participants query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("upsert season participants season_id=%d: %w", seasonID, err)
	}
	return len(teamIDs), nil
}
