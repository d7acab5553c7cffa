package postgres

import "database/sql"

type teamSeasonStatsInsertModel struct {
	TeamID        int64           `db:"team_id"`
	SeasonID      int64           `db:"season_id"`
	GamesPlayed   int             `db:"games_played"`
	Wins          int             `db:"wins"`
	Draws         int             `db:"draws"`
	Losses        int             `db:"losses"`
	Goals         int             `db:"goals"`
	GoalsConceded int             `db:"goals_conceded"`
	Points        int             `db:"points"`
	XG            sql.NullFloat64 `db:"xg"`
	Shots         int             `db:"shots"`
	ShotsOnGoal   int             `db:"shots_on_goal"`
	Possession    sql.NullFloat64 `db:"possession"`
	Passes        int             `db:"passes"`
	PassRatio     sql.NullFloat64 `db:"pass_ratio"`
	Fouls         int             `db:"fouls"`
	YellowCards   int             `db:"yellow_cards"`
	RedCards      int             `db:"red_cards"`
	Corners       int             `db:"corners"`
	Offsides      int             `db:"offsides"`
	ExtraStats    string          `db:"extra_stats"`
}

type teamMatchStatsInsertModel struct {
	MatchID           int64           `db:"match_id"`
	TeamID            int64           `db:"team_id"`
	Possession        sql.NullInt32   `db:"possession"`
	PossessionPercent sql.NullFloat64 `db:"possession_percent"`
	Shots             sql.NullInt32   `db:"shots"`
	ShotsOnGoal       sql.NullInt32   `db:"shots_on_goal"`
	ShotsOffGoal      sql.NullInt32   `db:"shots_off_goal"`
	Passes            sql.NullInt32   `db:"passes"`
	PassAccuracy      sql.NullFloat64 `db:"pass_accuracy"`
	Fouls             sql.NullInt32   `db:"fouls"`
	YellowCards       sql.NullInt32   `db:"yellow_cards"`
	RedCards          sql.NullInt32   `db:"red_cards"`
	Corners           sql.NullInt32   `db:"corners"`
	Offsides          sql.NullInt32   `db:"offsides"`
	ExtraStats        string          `db:"extra_stats"`
}

type playerSeasonStatsInsertModel struct {
	PlayerID      int64           `db:"player_id"`
	SeasonID      int64           `db:"season_id"`
	TeamID        sql.NullInt64   `db:"team_id"`
	GamesPlayed   int             `db:"games_played"`
	GamesStarting int             `db:"games_starting"`
	MinutesPlayed int             `db:"minutes_played"`
	Goals         int             `db:"goals"`
	Assists       int             `db:"assists"`
	OwnGoals      int             `db:"own_goals"`
	Shots         int             `db:"shots"`
	ShotsOnGoal   int             `db:"shots_on_goal"`
	Passes        int             `db:"passes"`
	PassRatio     sql.NullFloat64 `db:"pass_ratio"`
	XG            sql.NullFloat64 `db:"xg"`
	YellowCards   int             `db:"yellow_cards"`
	RedCards      int             `db:"red_cards"`
	ExtraStats    string          `db:"extra_stats"`
}

type playerMatchStatsInsertModel struct {
	MatchID       int64           `db:"match_id"`
	PlayerID      int64           `db:"player_id"`
	TeamID        int64           `db:"team_id"`
	MinutesPlayed sql.NullInt32   `db:"minutes_played"`
	Started       bool            `db:"started"`
	Position      string          `db:"position"`
	Shots         int             `db:"shots"`
	ShotsOnGoal   int             `db:"shots_on_goal"`
	ShotsOffGoal  int             `db:"shots_off_goal"`
	Passes        int             `db:"passes"`
	PassAccuracy  sql.NullFloat64 `db:"pass_accuracy"`
	Duels         int             `db:"duels"`
	Tackles       int             `db:"tackles"`
	Corners       int             `db:"corners"`
	Offsides      int             `db:"offsides"`
	Fouls         int             `db:"fouls"`
	YellowCards   int             `db:"yellow_cards"`
	RedCards      int             `db:"red_cards"`
	ExtraStats    string          `db:"extra_stats"`
}
