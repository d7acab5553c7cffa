package team

import (
	"strings"
	"time"
)

// Team is a club with names in three locales.
type Team struct {
	ID        int64
	SotaID    *int64
	Name      string
	NameKZ    string
	NameEN    string
	City      string
	CityKZ    string
	CityEN    string
	LogoURL   string
	UpdatedAt time.Time
}

// NameVariants returns the non-empty names in ru, kk, en order.
func (t Team) NameVariants() []string {
	out := make([]string, 0, 3)
	for _, name := range []string{t.Name, t.NameKZ, t.NameEN} {
		if strings.TrimSpace(name) != "" {
			out = append(out, name)
		}
	}
	return out
}
