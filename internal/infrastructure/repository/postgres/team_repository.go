package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByIDs(ctx context.Context, ids []int64) ([]team.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, "get teams by ids", qb.InValues("id", ids))
}

func (r *TeamRepository) ListBySotaIDs(ctx context.Context, sotaIDs []int64) ([]team.Team, error) {
	if len(sotaIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, "list teams by sota ids", qb.InValues("sota_id", sotaIDs))
}

func (r *TeamRepository) list(ctx context.Context, op string, cond qb.Condition) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(cond).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) UpsertFromFeed(ctx context.Context, items []team.Team) ([]team.Team, error) {
	if len(items) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx upsert teams: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		model := teamTableModel{
			SotaID:  nullInt64(item.SotaID),
			Name:    item.Name,
			NameKZ:  item.NameKZ,
			NameEN:  item.NameEN,
			City:    item.City,
			CityKZ:  item.CityKZ,
			CityEN:  item.CityEN,
			LogoURL: item.LogoURL,
		}
		query, args, err := qb.InsertModel("teams", model, `ON CONFLICT (sota_id)
DO UPDATE SET
    name = COALESCE(NULLIF(EXCLUDED.name, ''), teams.name),
    name_kz = COALESCE(NULLIF(EXCLUDED.name_kz, ''), teams.name_kz),
    name_en = COALESCE(NULLIF(EXCLUDED.name_en, ''), teams.name_en),
    city = COALESCE(NULLIF(EXCLUDED.city, ''), teams.city),
    city_kz = COALESCE(NULLIF(EXCLUDED.city_kz, ''), teams.city_kz),
    city_en = COALESCE(NULLIF(EXCLUDED.city_en, ''), teams.city_en),
    logo_url = COALESCE(NULLIF(EXCLUDED.logo_url, ''), teams.logo_url),
    updated_at = NOW()
RETURNING *`)
		if err != nil {
			return nil, fmt.Errorf("build upsert team query: %w", err)
		}

		var row teamTableModel
		if err := tx.GetContext(ctx, &row, query, args...); err != nil {
			return nil, fmt.Errorf("upsert team name=%s: %w", item.Name, err)
		}
		out = append(out, teamFromRow(row))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert teams tx: %w", err)
	}
	return out, nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:        row.ID,
		SotaID:    int64Ptr(row.SotaID),
		Name:      row.Name,
		NameKZ:    row.NameKZ,
		NameEN:    row.NameEN,
		City:      row.City,
		CityKZ:    row.CityKZ,
		CityEN:    row.CityEN,
		LogoURL:   row.LogoURL,
		UpdatedAt: row.UpdatedAt,
	}
}
