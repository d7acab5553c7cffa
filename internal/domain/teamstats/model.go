package teamstats

// SeasonStats holds aggregated team numbers for one season. Values upstream
// reports beyond the known columns are kept in Extra.
type SeasonStats struct {
	TeamID        int64
	SeasonID      int64
	GamesPlayed   int
	Wins          int
	Draws         int
	Losses        int
	Goals         int
	GoalsConceded int
	Points        int
	XG            *float64
	Shots         int
	ShotsOnGoal   int
	Possession    *float64
	Passes        int
	PassRatio     *float64
	Fouls         int
	YellowCards   int
	RedCards      int
	Corners       int
	Offsides      int
	Extra         map[string]any
}

// MatchStats holds one team's numbers for one match.
type MatchStats struct {
	MatchID           int64
	TeamID            int64
	Possession        *int
	PossessionPercent *float64
	Shots             *int
	ShotsOnGoal       *int
	ShotsOffGoal      *int
	Passes            *int
	PassAccuracy      *float64
	Fouls             *int
	YellowCards       *int
	RedCards          *int
	Corners           *int
	Offsides          *int
	Extra             map[string]any
}
