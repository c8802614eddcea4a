package services

import "github.com/openfooty/bracket-system/models"

// applyMatchResult folds one confirmed group result into both
// participants' standing rows: goals and played always, then 3 points
// for a win, 1 each for a draw. Call exactly once per match; the
// confirmed latch on the match row is what guards against
// double-application.
func applyMatchResult(home, away *models.GroupStanding, homeScore, awayScore int) {
	home.Played++
	away.Played++
	home.GoalsFor += homeScore
	home.GoalsAgainst += awayScore
	away.GoalsFor += awayScore
	away.GoalsAgainst += homeScore

	switch {
	case homeScore > awayScore:
		home.Won++
		home.Points += 3
		away.Lost++
	case homeScore < awayScore:
		away.Won++
		away.Points += 3
		home.Lost++
	default:
		home.Drawn++
		away.Drawn++
		home.Points++
		away.Points++
	}
}
