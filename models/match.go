package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MatchStage is either the group stage or one knockout round name.
type MatchStage string

const (
	StageGroup        MatchStage = "group"
	StageQuarterFinal MatchStage = "quarter-final"
	StageSemiFinal    MatchStage = "semi-final"
	StageFinal        MatchStage = "final"
)

// StageFromEntrantCount names the knockout round that a field of the
// given size plays: 2 -> final, 4 -> semi-final, 8 -> quarter-final,
// larger fields -> round-of-N.
func StageFromEntrantCount(entrants int) MatchStage {
	switch entrants {
	case 2:
		return StageFinal
	case 4:
		return StageSemiFinal
	case 8:
		return StageQuarterFinal
	default:
		return MatchStage(fmt.Sprintf("round-of-%d", entrants))
	}
}

// StageRank orders stages chronologically: group first, then knockout
// rounds from the largest field down to the final. Unknown stages sort
// last.
func StageRank(stage MatchStage) int {
	if stage == StageGroup {
		return 0
	}
	if n, ok := EntrantCount(stage); ok {
		return 1000 - n
	}
	return 1001
}

// EntrantCount is the inverse of StageFromEntrantCount.
func EntrantCount(stage MatchStage) (int, bool) {
	switch stage {
	case StageFinal:
		return 2, true
	case StageSemiFinal:
		return 4, true
	case StageQuarterFinal:
		return 8, true
	}
	return roundOfEntrants(stage)
}

func roundOfEntrants(stage MatchStage) (int, bool) {
	s := string(stage)
	if !strings.HasPrefix(s, "round-of-") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "round-of-"))
	if err != nil || n < 2 {
		return 0, false
	}
	return n, true
}

// Match is a single fixture. Group matches carry a group name; knockout
// matches carry a bracket slot (MatchOrder) plus the slot their winner
// advances to (NextStage/NextOrder/NextSide, nil for the final). Sides
// are nullable: a knockout placeholder has no participants until the
// previous round is resolved. Once Confirmed is set the score is
// locked.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Stage        MatchStage  `json:"stage" db:"stage"`
	GroupName    *string     `json:"group_name,omitempty" db:"group_name"`
	MatchOrder   *int        `json:"match_order,omitempty" db:"match_order"`
	NextStage    *MatchStage `json:"next_stage,omitempty" db:"next_stage"`
	NextOrder    *int        `json:"next_match_order,omitempty" db:"next_match_order"`
	NextSide     *int        `json:"next_side,omitempty" db:"next_side"`
	HomeRegID    *int        `json:"home_reg_id,omitempty" db:"home_reg_id"`
	AwayRegID    *int        `json:"away_reg_id,omitempty" db:"away_reg_id"`
	HomeTeamID   *int        `json:"home_team_id,omitempty" db:"home_team_id"`
	AwayTeamID   *int        `json:"away_team_id,omitempty" db:"away_team_id"`
	HomeScore    *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int        `json:"away_score,omitempty" db:"away_score"`
	Confirmed    bool        `json:"confirmed" db:"confirmed"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	// Joined for list views; a missing team degrades to a placeholder
	// label rather than failing the request.
	HomeTeamName string `json:"home_team_name,omitempty" db:"-"`
	AwayTeamName string `json:"away_team_name,omitempty" db:"-"`
	HomePlayer   string `json:"home_player,omitempty" db:"-"`
	AwayPlayer   string `json:"away_player,omitempty" db:"-"`
}

// WinnerSide reports which side won a scored match: 1 home, 2 away,
// 0 draw or unscored.
func (m *Match) WinnerSide() int {
	if m.HomeScore == nil || m.AwayScore == nil {
		return 0
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return 1
	case *m.HomeScore < *m.AwayScore:
		return 2
	}
	return 0
}
