package postgres

import (
	"database/sql"
	"time"
)

type tournamentInsertModel struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	NameKZ        string `db:"name_kz"`
	NameEN        string `db:"name_en"`
	CountryCode   string `db:"country_code"`
	CountryName   string `db:"country_name"`
	CountryNameKZ string `db:"country_name_kz"`
	CountryNameEN string `db:"country_name_en"`
}

type seasonTableModel struct {
	ID           int64         `db:"id"`
	TournamentID sql.NullInt64 `db:"tournament_id"`
	Name         string        `db:"name"`
	NameKZ       string        `db:"name_kz"`
	NameEN       string        `db:"name_en"`
	DateStart    sql.NullTime  `db:"date_start"`
	DateEnd      sql.NullTime  `db:"date_end"`
	SyncEnabled  bool          `db:"sync_enabled" insert:"-"`
	CreatedAt    time.Time     `db:"created_at" insert:"-"`
	UpdatedAt    time.Time     `db:"updated_at" insert:"-"`
}
