package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/matchevent"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) ListByMatch(ctx context.Context, matchID int64) ([]matchevent.Event, error) {
	return listEvents(ctx, r.db, matchID)
}

// InsertBatch locks the match row so concurrent polls of the same match see
// each other's events before the signature check.
func (r *EventRepository) InsertBatch(ctx context.Context, matchID int64, events []matchevent.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx insert match events: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select("id").From("matches").Where(qb.Eq("id", matchID)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build lock match query: %w", err)
	}
	var lockedID int64
	if err := tx.GetContext(ctx, &lockedID, lockQuery+" FOR UPDATE", lockArgs...); err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: match_id=%d", usecase.ErrNotFound, matchID)
		}
		return 0, fmt.Errorf("lock match id=%d: %w", matchID, err)
	}

	existing, err := listEvents(ctx, tx, matchID)
	if err != nil {
		return 0, err
	}
	seen := matchevent.NewSignatureSet(existing)

	added := 0
	for _, e := range events {
		if seen.Contains(e) {
			continue
		}
		seen.Add(e)

		query, args, err := qb.InsertModel("match_events", eventModel(matchID, e), "ON CONFLICT DO NOTHING")
		if err != nil {
			return 0, fmt.Errorf("build insert match event query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert match event match_id=%d type=%s: %w", matchID, e.Type, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("read affected rows: %w", err)
		}
		added += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert match events tx: %w", err)
	}
	return added, nil
}

func listEvents(ctx context.Context, q sqlx.QueryerContext, matchID int64) ([]matchevent.Event, error) {
	query, args, err := qb.Select("*").From("match_events").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("half", "minute", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match events query: %w", err)
	}

	var rows []eventTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match events match_id=%d: %w", matchID, err)
	}

	out := make([]matchevent.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchevent.Event{
			ID:               row.ID,
			MatchID:          row.MatchID,
			Half:             row.Half,
			Minute:           row.Minute,
			Type:             matchevent.Type(row.EventType),
			TeamID:           int64Ptr(row.TeamID),
			TeamName:         row.TeamName,
			PlayerID:         int64Ptr(row.PlayerID),
			PlayerNumber:     intPtr(row.PlayerNumber),
			PlayerName:       row.PlayerName,
			Player2ID:        int64Ptr(row.Player2ID),
			Player2Number:    intPtr(row.Player2Number),
			Player2Name:      row.Player2Name,
			Player2TeamName:  row.Player2TeamName,
			AssistPlayerID:   int64Ptr(row.AssistPlayerID),
			AssistPlayerName: row.AssistPlayerName,
			CreatedAt:        row.CreatedAt,
		})
	}
	return out, nil
}

func eventModel(matchID int64, e matchevent.Event) eventTableModel {
	return eventTableModel{
		MatchID:          matchID,
		Half:             e.Half,
		Minute:           e.Minute,
		EventType:        string(e.Type),
		TeamID:           nullInt64(e.TeamID),
		TeamName:         e.TeamName,
		PlayerID:         nullInt64(e.PlayerID),
		PlayerNumber:     nullInt(e.PlayerNumber),
		PlayerName:       e.PlayerName,
		Player2ID:        nullInt64(e.Player2ID),
		Player2Number:    nullInt(e.Player2Number),
		Player2Name:      e.Player2Name,
		Player2TeamName:  e.Player2TeamName,
		AssistPlayerID:   nullInt64(e.AssistPlayerID),
		AssistPlayerName: e.AssistPlayerName,
	}
}
