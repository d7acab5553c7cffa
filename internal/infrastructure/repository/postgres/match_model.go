package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID            int64          `db:"id" insert:"-"`
	SotaID        sql.NullString `db:"sota_id"`
	SeasonID      int64          `db:"season_id"`
	Tour          sql.NullInt32  `db:"tour"`
	MatchDate     sql.NullTime   `db:"match_date"`
	KickoffTime   string         `db:"kickoff_time"`
	Status        string         `db:"status"`
	HomeTeamID    sql.NullInt64  `db:"home_team_id"`
	AwayTeamID    sql.NullInt64  `db:"away_team_id"`
	HomeScore     sql.NullInt32  `db:"home_score"`
	AwayScore     sql.NullInt32  `db:"away_score"`
	HomeFormation string         `db:"home_formation"`
	AwayFormation string         `db:"away_formation"`
	HomeKitColor  string         `db:"home_kit_color"`
	AwayKitColor  string         `db:"away_kit_color"`
	HasLineup     bool           `db:"has_lineup"`
	HasStats      bool           `db:"has_stats"`
	Stadium       string         `db:"stadium"`
	Visitors      sql.NullInt32  `db:"visitors"`
	LiveSyncedAt  sql.NullTime   `db:"live_synced_at"`
	CreatedAt     time.Time      `db:"created_at" insert:"-"`
	UpdatedAt     time.Time      `db:"updated_at" insert:"-"`
}
