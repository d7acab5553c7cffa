package player

import (
	"strings"
	"time"
)

// Player is a canonical footballer with names in three locales.
type Player struct {
	ID          int64
	SotaID      string
	FirstName   string
	LastName    string
	FirstNameKZ string
	LastNameKZ  string
	FirstNameEN string
	LastNameEN  string
	Birthday    *time.Time
	PlayerType  string
	TopRole     string
	TopRoleEN   string
	UpdatedAt   time.Time
}

// NamePair is a (first, last) name in one locale.
type NamePair struct {
	First string
	Last  string
}

// NameVariants returns the non-empty name pairs in ru, kk, en order.
func (p Player) NameVariants() []NamePair {
	candidates := []NamePair{
		{First: p.FirstName, Last: p.LastName},
		{First: p.FirstNameKZ, Last: p.LastNameKZ},
		{First: p.FirstNameEN, Last: p.LastNameEN},
	}
	out := make([]NamePair, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.First) == "" && strings.TrimSpace(c.Last) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// HasName reports whether any locale matches first and last exactly.
func (p Player) HasName(first, last string) bool {
	for _, v := range p.NameVariants() {
		if v.First == first && v.Last == last {
			return true
		}
	}
	return false
}

// Membership links a player to a team for one season.
type Membership struct {
	PlayerID int64
	TeamID   int64
	SeasonID int64
	Number   *int
}
