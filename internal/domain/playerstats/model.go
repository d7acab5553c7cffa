package playerstats

// SeasonStats holds aggregated player numbers for one season.
type SeasonStats struct {
	PlayerID      int64
	SeasonID      int64
	TeamID        *int64
	GamesPlayed   int
	GamesStarting int
	MinutesPlayed int
	Goals         int
	Assists       int
	OwnGoals      int
	Shots         int
	ShotsOnGoal   int
	Passes        int
	PassRatio     *float64
	XG            *float64
	YellowCards   int
	RedCards      int
	Extra         map[string]any
}

// MatchStats holds one player's numbers for one match.
type MatchStats struct {
	MatchID       int64
	PlayerID      int64
	TeamID        int64
	MinutesPlayed *int
	Started       bool
	Position      string
	Shots         int
	ShotsOnGoal   int
	ShotsOffGoal  int
	Passes        int
	PassAccuracy  *float64
	Duels         int
	Tackles       int
	Corners       int
	Offsides      int
	Fouls         int
	YellowCards   int
	RedCards      int
	Extra         map[string]any
}
