package postgres

import (
	"database/sql"
	"time"
)

type playerTableModel struct {
	ID          int64          `db:"id" insert:"-"`
	SotaID      sql.NullString `db:"sota_id"`
	FirstName   string         `db:"first_name"`
	LastName    string         `db:"last_name"`
	FirstNameKZ string         `db:"first_name_kz"`
	LastNameKZ  string         `db:"last_name_kz"`
	FirstNameEN string         `db:"first_name_en"`
	LastNameEN  string         `db:"last_name_en"`
	Birthday    sql.NullTime   `db:"birthday"`
	PlayerType  string         `db:"player_type"`
	TopRole     string         `db:"top_role"`
	TopRoleEN   string         `db:"top_role_en"`
	CreatedAt   time.Time      `db:"created_at" insert:"-"`
	UpdatedAt   time.Time      `db:"updated_at" insert:"-"`
}

type playerTeamTableModel struct {
	PlayerID int64         `db:"player_id"`
	TeamID   int64         `db:"team_id"`
	SeasonID int64         `db:"season_id"`
	Number   sql.NullInt32 `db:"number"`
}
