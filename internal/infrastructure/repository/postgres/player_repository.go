package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/player"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

const playerUpsertSuffix = `ON CONFLICT (sota_id)
DO UPDATE SET
    first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), players.first_name),
    last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), players.last_name),
    first_name_kz = COALESCE(NULLIF(EXCLUDED.first_name_kz, ''), players.first_name_kz),
    last_name_kz = COALESCE(NULLIF(EXCLUDED.last_name_kz, ''), players.last_name_kz),
    first_name_en = COALESCE(NULLIF(EXCLUDED.first_name_en, ''), players.first_name_en),
    last_name_en = COALESCE(NULLIF(EXCLUDED.last_name_en, ''), players.last_name_en),
    birthday = COALESCE(EXCLUDED.birthday, players.birthday),
    player_type = COALESCE(NULLIF(EXCLUDED.player_type, ''), players.player_type),
    top_role = COALESCE(NULLIF(EXCLUDED.top_role, ''), players.top_role),
    top_role_en = COALESCE(NULLIF(EXCLUDED.top_role_en, ''), players.top_role_en),
    updated_at = NOW()`

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetBySotaID(ctx context.Context, sotaID string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("sota_id", strings.ToLower(sotaID))).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player by sota id query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player sota_id=%s: %w", sotaID, err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) ListBySotaIDs(ctx context.Context, sotaIDs []string) ([]player.Player, error) {
	if len(sotaIDs) == 0 {
		return nil, nil
	}
	normalized := make([]string, 0, len(sotaIDs))
	for _, id := range sotaIDs {
		normalized = append(normalized, strings.ToLower(id))
	}
	return r.list(ctx, "list players by sota ids", qb.InValues("sota_id", normalized))
}

func (r *PlayerRepository) ListByIDs(ctx context.Context, ids []int64) ([]player.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, "list players by ids", qb.InValues("id", ids))
}

func (r *PlayerRepository) list(ctx context.Context, op string, cond qb.Condition) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		Where(cond).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func (r *PlayerRepository) UpsertFromFeed(ctx context.Context, items []player.Player) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	count := 0
	for _, item := range items {
		if item.SotaID == "" {
			continue
		}
		query, args, err := qb.InsertModel("players", playerModel(item), playerUpsertSuffix)
		if err != nil {
			return 0, fmt.Errorf("build upsert player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert player sota_id=%s: %w", item.SotaID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert players tx: %w", err)
	}
	return count, nil
}

// EnsureBySotaID inserts the player when missing. The no-op update makes
// RETURNING yield the existing id, and xmax = 0 tells a fresh insert apart.
func (r *PlayerRepository) EnsureBySotaID(ctx context.Context, item player.Player) (int64, bool, error) {
	if item.SotaID == "" {
		return 0, false, fmt.Errorf("%w: player sota id is required", usecase.ErrInvalidInput)
	}

	query, args, err := qb.InsertModel("players", playerModel(item), `ON CONFLICT (sota_id)
DO UPDATE SET sota_id = EXCLUDED.sota_id
RETURNING id, (xmax = 0) AS inserted`)
	if err != nil {
		return 0, false, fmt.Errorf("build ensure player query: %w", err)
	}

	var row struct {
		ID       int64 `db:"id"`
		Inserted bool  `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return 0, false, fmt.Errorf("ensure player sota_id=%s: %w", item.SotaID, err)
	}
	return row.ID, row.Inserted, nil
}

func (r *PlayerRepository) UpsertMemberships(ctx context.Context, items []player.Membership) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	// A statement may not touch the same conflict key twice.
	type key struct{ player, team, season int64 }
	seen := make(map[key]struct{}, len(items))
	models := make([]any, 0, len(items))
	for _, item := range items {
		k := key{item.PlayerID, item.TeamID, item.SeasonID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		models = append(models, playerTeamTableModel{
			PlayerID: item.PlayerID,
			TeamID:   item.TeamID,
			SeasonID: item.SeasonID,
			Number:   nullInt(item.Number),
		})
	}
	query, args, err := qb.InsertModels("player_teams", models, `ON CONFLICT (player_id, team_id, season_id)
DO UPDATE SET
    number = COALESCE(EXCLUDED.number, player_teams.number),
    updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("build upsert player teams query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("upsert player teams: %w", err)
	}
	return len(items), nil
}

func (r *PlayerRepository) ListSeasonMemberships(ctx context.Context, seasonID int64) ([]player.Membership, error) {
	query, args, err := qb.Select("player_id", "team_id", "season_id", "number").From("player_teams").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("player_id", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season memberships query: %w", err)
	}

	var rows []playerTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list season memberships season_id=%d: %w", seasonID, err)
	}

	out := make([]player.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Membership{
			PlayerID: row.PlayerID,
			TeamID:   row.TeamID,
			SeasonID: row.SeasonID,
			Number:   intPtr(row.Number),
		})
	}
	return out, nil
}

func playerModel(item player.Player) playerTableModel {
	return playerTableModel{
		SotaID:      nullString(strings.ToLower(item.SotaID)),
		FirstName:   item.FirstName,
		LastName:    item.LastName,
		FirstNameKZ: item.FirstNameKZ,
		LastNameKZ:  item.LastNameKZ,
		FirstNameEN: item.FirstNameEN,
		LastNameEN:  item.LastNameEN,
		Birthday:    nullTime(item.Birthday),
		PlayerType:  item.PlayerType,
		TopRole:     item.TopRole,
		TopRoleEN:   item.TopRoleEN,
	}
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:          row.ID,
		SotaID:      row.SotaID.String,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		FirstNameKZ: row.FirstNameKZ,
		LastNameKZ:  row.LastNameKZ,
		FirstNameEN: row.FirstNameEN,
		LastNameEN:  row.LastNameEN,
		Birthday:    timePtr(row.Birthday),
		PlayerType:  row.PlayerType,
		TopRole:     row.TopRole,
		TopRoleEN:   row.TopRoleEN,
		UpdatedAt:   row.UpdatedAt,
	}
}
