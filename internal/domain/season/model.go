package season

import "time"

type Tournament struct {
	ID            int64
	Name          string
	NameKZ        string
	NameEN        string
	CountryCode   string
	CountryName   string
	CountryNameKZ string
	CountryNameEN string
}

// Season is one edition of a tournament. SyncEnabled gates every sync job
// touching the season.
type Season struct {
	ID           int64
	TournamentID int64
	Name         string
	NameKZ       string
	NameEN       string
	DateStart    *time.Time
	DateEnd      *time.Time
	SyncEnabled  bool
}
