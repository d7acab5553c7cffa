package postgres

import (
	"database/sql"
	"time"
)

type eventTableModel struct {
	ID               int64         `db:"id" insert:"-"`
	MatchID          int64         `db:"match_id"`
	Half             int           `db:"half"`
	Minute           int           `db:"minute"`
	EventType        string        `db:"event_type"`
	TeamID           sql.NullInt64 `db:"team_id"`
	TeamName         string        `db:"team_name"`
	PlayerID         sql.NullInt64 `db:"player_id"`
	PlayerNumber     sql.NullInt32 `db:"player_number"`
	PlayerName       string        `db:"player_name"`
	Player2ID        sql.NullInt64 `db:"player2_id"`
	Player2Number    sql.NullInt32 `db:"player2_number"`
	Player2Name      string        `db:"player2_name"`
	Player2TeamName  string        `db:"player2_team_name"`
	AssistPlayerID   sql.NullInt64 `db:"assist_player_id"`
	AssistPlayerName string        `db:"assist_player_name"`
	CreatedAt        time.Time     `db:"created_at" insert:"-"`
}
