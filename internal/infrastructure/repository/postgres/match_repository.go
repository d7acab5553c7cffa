package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

const dateLayout = "2006-01-02"

// matchUpsertSuffix freezes score and status of finished matches unless the
// repair flag (the %t verb) is set, and never moves a live match back to
// created.
const matchUpsertSuffix = `ON CONFLICT (sota_id)
DO UPDATE SET
    season_id = EXCLUDED.season_id,
    tour = EXCLUDED.tour,
    match_date = EXCLUDED.match_date,
    kickoff_time = COALESCE(NULLIF(EXCLUDED.kickoff_time, ''), matches.kickoff_time),
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    stadium = COALESCE(NULLIF(EXCLUDED.stadium, ''), matches.stadium),
    visitors = COALESCE(EXCLUDED.visitors, matches.visitors),
    has_stats = matches.has_stats OR EXCLUDED.has_stats,
    status = CASE
        WHEN matches.status = 'finished' AND NOT %[1]t THEN matches.status
        WHEN matches.status = 'live' AND EXCLUDED.status = 'created' THEN matches.status
        ELSE EXCLUDED.status
    END,
    home_score = CASE WHEN matches.status = 'finished' AND NOT %[1]t THEN matches.home_score ELSE EXCLUDED.home_score END,
    away_score = CASE WHEN matches.status = 'finished' AND NOT %[1]t THEN matches.away_score ELSE EXCLUDED.away_score END,
    updated_at = NOW()`

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.get(ctx, qb.Eq("id", id))
}

func (r *MatchRepository) GetBySotaID(ctx context.Context, sotaID string) (match.Match, bool, error) {
	return r.get(ctx, qb.Eq("sota_id", strings.ToLower(sotaID)))
}

func (r *MatchRepository) get(ctx context.Context, cond qb.Condition) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").Where(cond).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListBySeason(ctx context.Context, seasonID int64) ([]match.Match, error) {
	return r.list(ctx, "list matches by season", qb.Select("*").From("matches").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("match_date NULLS LAST", "id"))
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	return r.list(ctx, "list matches by status", qb.Select("*").From("matches").
		Where(qb.Eq("status", string(status))).
		OrderBy("match_date", "id"))
}

func (r *MatchRepository) ListByDateRange(ctx context.Context, from, to time.Time, status match.Status) ([]match.Match, error) {
	return r.list(ctx, "list matches by date range", qb.Select("*").From("matches").
		Where(
			qb.Eq("status", string(status)),
			qb.Gte("match_date", from.Format(dateLayout)),
			qb.Lte("match_date", to.Format(dateLayout)),
		).
		OrderBy("match_date", "kickoff_time", "id"))
}

func (r *MatchRepository) ListFinished(ctx context.Context, filter match.FinishedFilter) ([]match.Match, error) {
	conds := []qb.Condition{
		qb.Eq("status", string(match.StatusFinished)),
		qb.Gt("id", filter.AfterID),
	}
	switch {
	case len(filter.MatchIDs) > 0:
		conds = append(conds, qb.InValues("id", filter.MatchIDs))
	case filter.SeasonID != nil:
		conds = append(conds, qb.Eq("season_id", *filter.SeasonID))
	}

	builder := qb.Select("*").From("matches").Where(conds...).OrderBy("id")
	if filter.Limit > 0 {
		builder.Limit(filter.Limit)
	}
	return r.list(ctx, "list finished matches", builder)
}

func (r *MatchRepository) list(ctx context.Context, op string, builder *qb.SelectBuilder) ([]match.Match, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) UpsertFromFeed(ctx context.Context, items []match.Match, repair bool) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	suffix := fmt.Sprintf(matchUpsertSuffix, repair)
	for _, item := range items {
		if item.SotaID == "" {
			return 0, fmt.Errorf("%w: match sota id is required", usecase.ErrInvalidInput)
		}
		model := matchModel(item)
		query, args, err := qb.InsertModel("matches", model, suffix)
		if err != nil {
			return 0, fmt.Errorf("build upsert match query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert match sota_id=%s: %w", item.SotaID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert matches tx: %w", err)
	}
	return len(items), nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, id int64, status match.Status) error {
	return r.update(ctx, id, "update match status", qb.Update("matches").Set("status", string(status)))
}

func (r *MatchRepository) MarkHasStats(ctx context.Context, id int64) error {
	return r.update(ctx, id, "mark match has stats", qb.Update("matches").Set("has_stats", true))
}

func (r *MatchRepository) update(ctx context.Context, id int64, op string, builder *qb.UpdateBuilder) error {
	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build %s query: %w", op, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s id=%d: %w", op, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: match_id=%d", usecase.ErrNotFound, id)
	}
	return nil
}

func (r *MatchRepository) UpdateLiveMetadata(ctx context.Context, id int64, meta match.LiveMetadata) (bool, error) {
	if meta.IsEmpty() {
		return false, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx update live metadata: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current struct {
		HomeFormation string `db:"home_formation"`
		AwayFormation string `db:"away_formation"`
		Stadium       string `db:"stadium"`
		KickoffTime   string `db:"kickoff_time"`
	}
	selectQuery, selectArgs, err := qb.Select("home_formation", "away_formation", "stadium", "kickoff_time").
		From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build select live metadata query: %w", err)
	}
	if err := tx.GetContext(ctx, &current, selectQuery+" FOR UPDATE", selectArgs...); err != nil {
		if isNotFound(err) {
			return false, fmt.Errorf("%w: match_id=%d", usecase.ErrNotFound, id)
		}
		return false, fmt.Errorf("select live metadata id=%d: %w", id, err)
	}

	builder := qb.Update("matches")
	changed := false
	fill := func(column, stored, value string) {
		if stored == "" && value != "" {
			builder.Set(column, value)
			changed = true
		}
	}
	fill("home_formation", current.HomeFormation, meta.HomeFormation)
	fill("away_formation", current.AwayFormation, meta.AwayFormation)
	fill("stadium", current.Stadium, meta.Stadium)
	fill("kickoff_time", current.KickoffTime, meta.KickoffTime)
	if !changed {
		return false, nil
	}

	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update live metadata query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("update live metadata id=%d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit update live metadata tx: %w", err)
	}
	return true, nil
}

func matchModel(item match.Match) matchTableModel {
	model := matchTableModel{
		SotaID:        nullString(strings.ToLower(item.SotaID)),
		SeasonID:      item.SeasonID,
		Tour:          nullInt(item.Tour),
		KickoffTime:   item.KickoffTime,
		Status:        string(item.Status),
		HomeTeamID:    nullInt64(item.HomeTeamID),
		AwayTeamID:    nullInt64(item.AwayTeamID),
		HomeScore:     nullInt(item.HomeScore),
		AwayScore:     nullInt(item.AwayScore),
		HomeFormation: item.HomeFormation,
		AwayFormation: item.AwayFormation,
		HomeKitColor:  item.HomeKitColor,
		AwayKitColor:  item.AwayKitColor,
		HasLineup:     item.HasLineup,
		HasStats:      item.HasStats,
		Stadium:       item.Stadium,
		Visitors:      nullInt(item.Visitors),
		LiveSyncedAt:  nullTime(item.LiveSyncedAt),
	}
	if model.Status == "" {
		model.Status = string(match.StatusCreated)
	}
	if !item.Date.IsZero() {
		model.MatchDate.Time = item.Date
		model.MatchDate.Valid = true
	}
	return model
}

func matchFromRow(row matchTableModel) match.Match {
	out := match.Match{
		ID:            row.ID,
		SotaID:        row.SotaID.String,
		SeasonID:      row.SeasonID,
		Tour:          intPtr(row.Tour),
		KickoffTime:   row.KickoffTime,
		Status:        match.Status(row.Status),
		HomeTeamID:    int64Ptr(row.HomeTeamID),
		AwayTeamID:    int64Ptr(row.AwayTeamID),
		HomeScore:     intPtr(row.HomeScore),
		AwayScore:     intPtr(row.AwayScore),
		HomeFormation: row.HomeFormation,
		AwayFormation: row.AwayFormation,
		HomeKitColor:  row.HomeKitColor,
		AwayKitColor:  row.AwayKitColor,
		HasLineup:     row.HasLineup,
		HasStats:      row.HasStats,
		Stadium:       row.Stadium,
		Visitors:      intPtr(row.Visitors),
		LiveSyncedAt:  timePtr(row.LiveSyncedAt),
		UpdatedAt:     row.UpdatedAt,
	}
	if row.MatchDate.Valid {
		y, m, d := row.MatchDate.Time.Date()
		out.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return out
}
