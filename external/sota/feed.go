package sota

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/riskibarqy/matchsync/internal/domain/official"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

var _ usecase.FeedProvider = (*Client)(nil)

func (c *Client) FetchTournaments(ctx context.Context, locale usecase.Locale) ([]usecase.ExternalTournament, error) {
	items, err := c.FetchList(ctx, locale, "/public/v1/tournaments/", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch tournaments locale=%s: %w", locale, err)
	}

	out := make([]usecase.ExternalTournament, 0, len(items))
	for _, item := range items {
		id := getInt64(item, "id")
		if id <= 0 {
			continue
		}
		out = append(out, usecase.ExternalTournament{
			ID:          id,
			Name:        getString(item, "name"),
			CountryCode: firstNonEmpty(getString(item, "country_code"), getString(asMap(item["country"]), "code")),
			CountryName: firstNonEmpty(getString(item, "country_name"), nameOf(item, "country")),
		})
	}
	return out, nil
}

func (c *Client) FetchSeasons(ctx context.Context, locale usecase.Locale) ([]usecase.ExternalSeason, error) {
	items, err := c.FetchList(ctx, locale, "/public/v1/seasons/", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch seasons locale=%s: %w", locale, err)
	}

	out := make([]usecase.ExternalSeason, 0, len(items))
	for _, item := range items {
		id := getInt64(item, "id")
		if id <= 0 {
			continue
		}
		out = append(out, usecase.ExternalSeason{
			ID:           id,
			TournamentID: idOf(item, "tournament_id", "tournament"),
			Name:         getString(item, "name"),
			DateStart:    parseDate(getString(item, "date_start")),
			DateEnd:      parseDate(getString(item, "date_end")),
		})
	}
	return out, nil
}

func (c *Client) FetchTeams(ctx context.Context, locale usecase.Locale, seasonID int64) ([]usecase.ExternalTeam, error) {
	items, err := c.FetchList(ctx, locale, "/public/v1/teams/", seasonQuery(seasonID))
	if err != nil {
		return nil, fmt.Errorf("fetch teams locale=%s season_id=%d: %w", locale, seasonID, err)
	}

	out := make([]usecase.ExternalTeam, 0, len(items))
	for _, item := range items {
		id := getInt64(item, "id")
		if id <= 0 {
			continue
		}
		out = append(out, usecase.ExternalTeam{
			ID:      id,
			Name:    getString(item, "name"),
			City:    nameOf(item, "city"),
			LogoURL: firstNonEmpty(getString(item, "logo"), getString(item, "logo_url")),
		})
	}
	return out, nil
}

func (c *Client) FetchPlayers(ctx context.Context, locale usecase.Locale, seasonID int64) ([]usecase.ExternalPlayer, error) {
	items, err := c.FetchList(ctx, locale, "/public/v1/players/", seasonQuery(seasonID))
	if err != nil {
		return nil, fmt.Errorf("fetch players locale=%s season_id=%d: %w", locale, seasonID, err)
	}

	out := make([]usecase.ExternalPlayer, 0, len(items))
	for _, item := range items {
		sotaID := getString(item, "id")
		if sotaID == "" {
			continue
		}
		out = append(out, usecase.ExternalPlayer{
			SotaID:      sotaID,
			FirstName:   getString(item, "first_name"),
			LastName:    getString(item, "last_name"),
			Birthday:    parseDate(getString(item, "birthday")),
			PlayerType:  getString(item, "type"),
			TopRole:     getString(item, "top_role"),
			CountryName: firstNonEmpty(getString(item, "country_name"), nameOf(item, "country")),
			TeamID:      idOf(item, "team_id", "team"),
			Number:      getIntPtr(item, "number"),
		})
	}
	return out, nil
}

func (c *Client) FetchGames(ctx context.Context, seasonID int64) ([]usecase.ExternalGame, error) {
	items, err := c.FetchList(ctx, usecase.LocaleRU, "/public/v1/games/", seasonQuery(seasonID))
	if err != nil {
		return nil, fmt.Errorf("fetch games season_id=%d: %w", seasonID, err)
	}

	out := make([]usecase.ExternalGame, 0, len(items))
	for _, item := range items {
		sotaID := getString(item, "id")
		date := parseDate(getString(item, "date"))
		if sotaID == "" || date == nil {
			continue
		}
		home := asMap(item["home_team"])
		away := asMap(item["away_team"])
		game := usecase.ExternalGame{
			SotaID:      sotaID,
			SeasonID:    idOf(item, "season_id", "season"),
			Tour:        getIntPtr(item, "tour"),
			Date:        *date,
			KickoffTime: getString(item, "time"),
			HomeTeamID:  idOf(item, "home_team", "home_team_id"),
			AwayTeamID:  idOf(item, "away_team", "away_team_id"),
			HomeScore:   getIntPtr(home, "score"),
			AwayScore:   getIntPtr(away, "score"),
			HasStats:    getBool(item, "has_stats"),
			Stadium:     nameOf(item, "stadium"),
			Visitors:    getIntPtr(item, "visitors"),
		}
		if game.SeasonID <= 0 {
			game.SeasonID = seasonID
		}
		out = append(out, game)
	}
	return out, nil
}

// FetchScoreTable reads the season table. Rows come in table order, which is
// the position.
func (c *Client) FetchScoreTable(ctx context.Context, seasonID int64) ([]usecase.ExternalStanding, error) {
	doc, err := c.fetchDocument(ctx, usecase.LocaleRU, fmt.Sprintf("/public/v1/seasons/%d/score_table/", seasonID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch score table season_id=%d: %w", seasonID, err)
	}
	rows, _ := nestedList(doc, "data.table", "table", "results", "data")
	return parseStandings(rows), nil
}

func parseStandings(rows []map[string]any) []usecase.ExternalStanding {
	out := make([]usecase.ExternalStanding, 0, len(rows))
	for i, row := range rows {
		teamID := idOf(row, "team_id", "team", "id")
		if teamID <= 0 {
			continue
		}
		scored, conceded := parseGoals(getString(row, "goals"))
		if v, ok := lookupInt64(row, "goals_scored"); ok {
			scored = int(v)
		}
		if v, ok := lookupInt64(row, "goals_conceded"); ok {
			conceded = int(v)
		}
		out = append(out, usecase.ExternalStanding{
			TeamID:         teamID,
			Position:       i + 1,
			GamesPlayed:    getIntAny(row, "matches", "games_played", "played"),
			Wins:           getIntAny(row, "wins", "won"),
			Draws:          getIntAny(row, "draws", "draw"),
			Losses:         getIntAny(row, "losses", "lost"),
			GoalsScored:    scored,
			GoalsConceded:  conceded,
			GoalDifference: getIntPtr(row, "goal_difference"),
			Points:         getInt(row, "points"),
			Form:           parseForm(row["form"]),
		})
	}
	return out
}

// parseGoals reads "scored:conceded".
func parseGoals(value string) (int, int) {
	left, right, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0
	}
	scored, _ := strconv.Atoi(strings.TrimSpace(left))
	conceded, _ := strconv.Atoi(strings.TrimSpace(right))
	return scored, conceded
}

// parseForm joins a list of results ("W", "D", "L") or keeps a string as is.
func parseForm(raw any) string {
	list, ok := raw.([]any)
	if !ok {
		return stringValue(raw)
	}
	var b strings.Builder
	for _, item := range list {
		if m := asMap(item); m != nil {
			b.WriteString(firstNonEmpty(getString(m, "result"), getString(m, "form")))
			continue
		}
		b.WriteString(stringValue(item))
	}
	return strings.ToUpper(b.String())
}

func (c *Client) FetchTeamSeasonStats(ctx context.Context, teamSotaID, seasonID int64) (usecase.ExternalStats, error) {
	path := fmt.Sprintf("/public/v2/teams/%d/season_stats/", teamSotaID)
	var env seasonStatsEnvelope
	if _, err := c.doJSON(ctx, usecase.LocaleRU, c.resourceURL(path, seasonQuery(seasonID)), &env); err != nil {
		return nil, fmt.Errorf("fetch team season stats team_id=%d season_id=%d: %w", teamSotaID, seasonID, err)
	}
	return statItems(env.Data.Stats), nil
}

func (c *Client) FetchPlayerSeasonStats(ctx context.Context, playerSotaID string, seasonID int64) (usecase.ExternalPlayerSeasonStats, error) {
	path := fmt.Sprintf("/public/v2/players/%s/season_stats/", url.PathEscape(playerSotaID))
	var env seasonStatsEnvelope
	if _, err := c.doJSON(ctx, usecase.LocaleRU, c.resourceURL(path, seasonQuery(seasonID)), &env); err != nil {
		return usecase.ExternalPlayerSeasonStats{}, fmt.Errorf("fetch player season stats player_id=%s season_id=%d: %w", playerSotaID, seasonID, err)
	}
	return usecase.ExternalPlayerSeasonStats{
		FirstName: env.Data.FirstName.String(),
		LastName:  env.Data.LastName.String(),
		Stats:     statItems(env.Data.Stats),
	}, nil
}

func statItems(items []statItem) usecase.ExternalStats {
	out := make(usecase.ExternalStats, len(items))
	for _, item := range items {
		key := strings.TrimSpace(item.Key)
		if key == "" {
			continue
		}
		out[key] = item.Value
	}
	return out
}

func (c *Client) FetchGameTeamStats(ctx context.Context, gameSotaID string) ([]usecase.ExternalGameTeamStats, error) {
	doc, err := c.fetchDocument(ctx, usecase.LocaleRU, fmt.Sprintf("/public/v1/games/%s/teams/", url.PathEscape(gameSotaID)), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch game team stats game_id=%s: %w", gameSotaID, err)
	}
	rows, _ := nestedList(doc, "data.teams", "teams", "results", "data")

	out := make([]usecase.ExternalGameTeamStats, 0, len(rows))
	for _, row := range rows {
		teamID := idOf(row, "id", "team_id")
		if teamID <= 0 {
			continue
		}
		out = append(out, usecase.ExternalGameTeamStats{
			TeamID: teamID,
			Name:   getString(row, "name"),
			Stats:  statsValue(row["stats"]),
		})
	}
	return out, nil
}

func (c *Client) FetchGamePlayerStats(ctx context.Context, gameSotaID string) ([]usecase.ExternalGamePlayerStats, error) {
	doc, err := c.fetchDocument(ctx, usecase.LocaleRU, fmt.Sprintf("/public/v1/games/%s/players/", url.PathEscape(gameSotaID)), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch game player stats game_id=%s: %w", gameSotaID, err)
	}
	rows, _ := nestedList(doc, "data.players", "players", "results", "data")

	out := make([]usecase.ExternalGamePlayerStats, 0, len(rows))
	for _, row := range rows {
		sotaID := getString(row, "id")
		if sotaID == "" {
			continue
		}
		out = append(out, usecase.ExternalGamePlayerStats{
			SotaID:        sotaID,
			FirstName:     getString(row, "first_name"),
			LastName:      getString(row, "last_name"),
			TeamID:        idOf(row, "team_id", "team"),
			TeamName:      nameOf(row, "team"),
			MinutesPlayed: getIntPtr(row, "minutes_played"),
			Started:       getBool(row, "started"),
			Position:      getString(row, "position"),
			Stats:         statsValue(row["stats"]),
		})
	}
	return out, nil
}

func (c *Client) FetchPreGameLineup(ctx context.Context, gameSotaID string) (usecase.ExternalPreGameLineup, error) {
	path := fmt.Sprintf("/public/v1/games/%s/pre_game_lineup/", url.PathEscape(gameSotaID))
	var env preGameLineupEnvelope
	if _, err := c.doJSON(ctx, usecase.LocaleRU, c.resourceURL(path, nil), &env); err != nil {
		return usecase.ExternalPreGameLineup{}, fmt.Errorf("fetch pre-game lineup game_id=%s: %w", gameSotaID, err)
	}
	if env.Data != nil {
		env = *env.Data
	}

	out := usecase.ExternalPreGameLineup{
		Referees: make(map[string]string, len(env.Referees)),
		Home:     mapPreGameTeam(env.HomeTeam),
		Away:     mapPreGameTeam(env.AwayTeam),
	}
	for role, name := range env.Referees {
		if name.String() != "" {
			out.Referees[role] = name.String()
		}
	}
	return out, nil
}

func mapPreGameTeam(src preGameTeam) usecase.ExternalPreGameTeam {
	out := usecase.ExternalPreGameTeam{
		Staff:       make(map[string]usecase.ExternalPerson, len(official.CoachRoleKeys)),
		Lineup:      mapPreGamePlayers(src.Lineup),
		Substitutes: mapPreGamePlayers(src.Substitutes),
	}
	staff := map[string]*preGamePerson{
		"coach":            src.Coach,
		"first_assistant":  src.FirstAssistant,
		"second_assistant": src.SecondAssistant,
	}
	for key, person := range staff {
		if person == nil {
			continue
		}
		p := usecase.ExternalPerson{FirstName: person.FirstName.String(), LastName: person.LastName.String()}
		if !p.IsZero() {
			out.Staff[key] = p
		}
	}
	return out
}

func mapPreGamePlayers(src []preGamePlayer) []usecase.ExternalPreGamePlayer {
	out := make([]usecase.ExternalPreGamePlayer, 0, len(src))
	for _, p := range src {
		out = append(out, usecase.ExternalPreGamePlayer{
			SotaID:    p.ID.String(),
			FirstName: p.FirstName.String(),
			LastName:  p.LastName.String(),
			Number:    p.Number.IntPtr(),
			IsGK:      bool(p.IsGK),
			IsCaptain: bool(p.IsCaptain),
		})
	}
	return out
}

func seasonQuery(seasonID int64) url.Values {
	if seasonID <= 0 {
		return nil
	}
	return url.Values{"season_id": []string{strconv.FormatInt(seasonID, 10)}}
}
