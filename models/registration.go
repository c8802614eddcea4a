package models

import "time"

// Registration links one player to one team within one tournament.
// The (tournament, player) and (tournament, team) pairs are unique.
type Registration struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Joined for detail views.
	Username string `json:"username,omitempty" db:"-"`
	TeamName string `json:"team_name,omitempty" db:"-"`
}
