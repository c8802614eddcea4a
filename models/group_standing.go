package models

// GroupStanding is one row of a group table: a registration's running
// tally while the group stage is active. Invariants maintained by the
// standings updater: Played = Won+Drawn+Lost, Points = 3*Won + Drawn.
type GroupStanding struct {
	ID             int    `json:"id" db:"id"`
	TournamentID   int    `json:"tournament_id" db:"tournament_id"`
	GroupName      string `json:"group_name" db:"group_name"`
	RegistrationID int    `json:"registration_id" db:"registration_id"`
	TeamID         int    `json:"team_id" db:"team_id"`
	Played         int    `json:"played" db:"played"`
	Won            int    `json:"won" db:"won"`
	Drawn          int    `json:"drawn" db:"drawn"`
	Lost           int    `json:"lost" db:"lost"`
	GoalsFor       int    `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int    `json:"goals_against" db:"goals_against"`
	Points         int    `json:"points" db:"points"`

	TeamName string `json:"team_name,omitempty" db:"-"`
	Username string `json:"username,omitempty" db:"-"`
}
