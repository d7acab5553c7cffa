package standing

// Row is one line of a season league table.
type Row struct {
	SeasonID       int64
	TeamID         int64
	Position       int
	GamesPlayed    int
	Wins           int
	Draws          int
	Losses         int
	GoalsScored    int
	GoalsConceded  int
	GoalDifference int
	Points         int
	Form           string
}
