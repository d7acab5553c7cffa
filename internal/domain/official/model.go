package official

import "github.com/riskibarqy/matchsync/internal/platform/textnorm"

type RefereeRole string

const (
	RefereeMain            RefereeRole = "main"
	RefereeFirstAssistant  RefereeRole = "first_assistant"
	RefereeSecondAssistant RefereeRole = "second_assistant"
	RefereeFourth          RefereeRole = "fourth_referee"
	RefereeVARMain         RefereeRole = "var_main"
	RefereeVARAssistant    RefereeRole = "var_assistant"
	RefereeInspector       RefereeRole = "match_inspector"
)

var refereeRoleKeys = map[string]RefereeRole{
	"main":                 RefereeMain,
	"1st_assistant":        RefereeFirstAssistant,
	"2nd_assistant":        RefereeSecondAssistant,
	"4th_referee":          RefereeFourth,
	"video_assistant_main": RefereeVARMain,
	"video_assistant_1":    RefereeVARAssistant,
	"match_inspector":      RefereeInspector,
}

// RefereeRoleFromKey maps the pre-game lineup key of a referee.
func RefereeRoleFromKey(key string) (RefereeRole, bool) {
	role, ok := refereeRoleKeys[key]
	return role, ok
}

type CoachRole string

const (
	CoachHead      CoachRole = "head_coach"
	CoachAssistant CoachRole = "assistant"
)

var coachRoleKeys = map[string]CoachRole{
	"coach":            CoachHead,
	"first_assistant":  CoachAssistant,
	"second_assistant": CoachAssistant,
}

// CoachRoleKeys lists the pre-game lineup keys carrying coaches, in order.
var CoachRoleKeys = []string{"coach", "first_assistant", "second_assistant"}

func CoachRoleFromKey(key string) (CoachRole, bool) {
	role, ok := coachRoleKeys[key]
	return role, ok
}

type Referee struct {
	ID        int64
	FirstName string
	LastName  string
}

// SimilarTo compares names in both orders, tolerating up to two differing
// letters per name.
func (r Referee) SimilarTo(first, last string) bool {
	if textnorm.Similar(r.FirstName, first, 2) && textnorm.Similar(r.LastName, last, 2) {
		return true
	}
	return textnorm.Similar(r.FirstName, last, 2) && textnorm.Similar(r.LastName, first, 2)
}

type MatchReferee struct {
	MatchID   int64
	RefereeID int64
	Role      RefereeRole
}

type Coach struct {
	ID        int64
	FirstName string
	LastName  string
}

type TeamCoach struct {
	TeamID   int64
	CoachID  int64
	SeasonID int64
	Role     CoachRole
}
