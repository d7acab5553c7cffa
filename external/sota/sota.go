package sota

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type statItem struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type seasonStatsEnvelope struct {
	Data seasonStatsData `json:"data"`
}

type seasonStatsData struct {
	FirstName flexString `json:"first_name"`
	LastName  flexString `json:"last_name"`
	Stats     []statItem `json:"stats"`
}

type preGameLineupEnvelope struct {
	Referees map[string]flexString `json:"referees"`
	HomeTeam preGameTeam           `json:"home_team"`
	AwayTeam preGameTeam           `json:"away_team"`
	// Data wraps the whole document in some API versions.
	Data *preGameLineupEnvelope `json:"data"`
}

type preGameTeam struct {
	Coach           *preGamePerson  `json:"coach"`
	FirstAssistant  *preGamePerson  `json:"first_assistant"`
	SecondAssistant *preGamePerson  `json:"second_assistant"`
	Lineup          []preGamePlayer `json:"lineup"`
	Substitutes     []preGamePlayer `json:"substitutes"`
}

type preGamePerson struct {
	FirstName flexString `json:"first_name"`
	LastName  flexString `json:"last_name"`
}

type preGamePlayer struct {
	ID        flexString `json:"id"`
	FirstName flexString `json:"first_name"`
	LastName  flexString `json:"last_name"`
	Number    flexString `json:"number"`
	IsGK      flexBool   `json:"is_gk"`
	IsCaptain flexBool   `json:"is_captain"`
}

// flexString accepts a string, a number, null or a list whose first element
// is used.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = flexString(stringValue(raw))
	return nil
}

func (s flexString) String() string {
	return strings.TrimSpace(string(s))
}

func (s flexString) IntPtr() *int {
	n, err := strconv.Atoi(s.String())
	if err != nil {
		return nil
	}
	return &n
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = flexBool(boolValue(raw))
	return nil
}
