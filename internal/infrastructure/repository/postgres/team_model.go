package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID        int64         `db:"id" insert:"-"`
	SotaID    sql.NullInt64 `db:"sota_id"`
	Name      string        `db:"name"`
	NameKZ    string        `db:"name_kz"`
	NameEN    string        `db:"name_en"`
	City      string        `db:"city"`
	CityKZ    string        `db:"city_kz"`
	CityEN    string        `db:"city_en"`
	LogoURL   string        `db:"logo_url"`
	CreatedAt time.Time     `db:"created_at" insert:"-"`
	UpdatedAt time.Time     `db:"updated_at" insert:"-"`
}
