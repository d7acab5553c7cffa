package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/official"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type personTableModel struct {
	ID        int64  `db:"id" insert:"-"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

type matchRefereeInsertModel struct {
	MatchID   int64  `db:"match_id"`
	RefereeID int64  `db:"referee_id"`
	Role      string `db:"role"`
}

type teamCoachInsertModel struct {
	TeamID   int64  `db:"team_id"`
	CoachID  int64  `db:"coach_id"`
	SeasonID int64  `db:"season_id"`
	Role     string `db:"role"`
}

type OfficialRepository struct {
	db *sqlx.DB
}

func NewOfficialRepository(db *sqlx.DB) *OfficialRepository {
	return &OfficialRepository{db: db}
}

func (r *OfficialRepository) ListReferees(ctx context.Context) ([]official.Referee, error) {
	query, args, err := qb.Select("id", "first_name", "last_name").From("referees").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list referees query: %w", err)
	}

	var rows []personTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list referees: %w", err)
	}

	out := make([]official.Referee, 0, len(rows))
	for _, row := range rows {
		out = append(out, official.Referee{ID: row.ID, FirstName: row.FirstName, LastName: row.LastName})
	}
	return out, nil
}

func (r *OfficialRepository) CreateReferee(ctx context.Context, item official.Referee) (int64, error) {
	query, args, err := qb.InsertModel("referees", personTableModel{
		FirstName: item.FirstName,
		LastName:  item.LastName,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build create referee query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: referee %s %s", usecase.ErrAlreadyExists, item.FirstName, item.LastName)
		}
		return 0, fmt.Errorf("create referee: %w", err)
	}
	return id, nil
}

func (r *OfficialRepository) UpsertMatchReferees(ctx context.Context, items []official.MatchReferee) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, matchRefereeInsertModel{
			MatchID:   item.MatchID,
			RefereeID: item.RefereeID,
			Role:      string(item.Role),
		})
	}
	query, args, err := qb.InsertModels("match_referees", models, "ON CONFLICT (match_id, referee_id, role) DO NOTHING")
	if err != nil {
		return 0, fmt.Errorf("build upsert match referees query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upsert match referees: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}
	return int(affected), nil
}

// EnsureCoach relies on the no-op update so RETURNING also yields existing ids.
func (r *OfficialRepository) EnsureCoach(ctx context.Context, firstName, lastName string) (int64, error) {
	query, args, err := qb.InsertModel("coaches", personTableModel{
		FirstName: firstName,
		LastName:  lastName,
	}, `ON CONFLICT (first_name, last_name)
DO UPDATE SET first_name = EXCLUDED.first_name
RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build ensure coach query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("ensure coach %s %s: %w", firstName, lastName, err)
	}
	return id, nil
}

func (r *OfficialRepository) UpsertTeamCoaches(ctx context.Context, items []official.TeamCoach) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, teamCoachInsertModel{
			TeamID:   item.TeamID,
			CoachID:  item.CoachID,
			SeasonID: item.SeasonID,
			Role:     string(item.Role),
		})
	}
	query, args, err := qb.InsertModels("team_coaches", models, "ON CONFLICT (team_id, coach_id, season_id, role) DO NOTHING")
	if err != nil {
		return 0, fmt.Errorf("build upsert team coaches query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upsert team coaches: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}
	return int(affected), nil
}
