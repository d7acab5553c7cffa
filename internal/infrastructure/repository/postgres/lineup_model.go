package postgres

import (
	"database/sql"
	"time"
)

type lineupTableModel struct {
	ID            int64         `db:"id" insert:"-"`
	MatchID       int64         `db:"match_id"`
	TeamID        int64         `db:"team_id"`
	PlayerID      int64         `db:"player_id"`
	Role          string        `db:"role"`
	ShirtNumber   sql.NullInt32 `db:"shirt_number"`
	IsCaptain     bool          `db:"is_captain"`
	Amplua        string        `db:"amplua"`
	FieldPosition string        `db:"field_position"`
	UpdatedAt     time.Time     `db:"updated_at" insert:"-"`
}
