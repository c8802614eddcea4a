package brackets

import (
	"errors"
	"math/rand"

	"github.com/openfooty/bracket-system/models"
)

var ErrGroupIncomplete = errors.New("every group needs at least two finishers to seed a knockout")

// KnockoutMatch is one generated bracket slot. Home/Away are nil for
// TBD placeholders awaiting the previous round's winners. NextStage,
// NextOrder and NextSide locate the slot this match's winner advances
// to; NextStage is empty for the final. With an odd round the feed can
// skip a stage, so resolution must follow these links rather than
// halve round names.
type KnockoutMatch struct {
	Stage models.MatchStage
	Order int
	Home  *Entrant
	Away  *Entrant

	NextStage models.MatchStage
	NextOrder int
	NextSide  int
}

// SeedFromStandings takes group standings already ranked within each
// group (points desc, goals-for desc) and seeds the knockout with the
// top two finishers per group. Pairing follows the cross-half mirror
// rule: the i-th group winner meets the runner-up of the mirror group,
// so group-mates cannot meet again before late rounds.
func SeedFromStandings(standings []*models.GroupStanding) ([]Entrant, error) {
	var winners, runnersUp []Entrant
	var currentGroup string
	rankInGroup := 0

	for _, s := range standings {
		if s.GroupName != currentGroup {
			currentGroup = s.GroupName
			rankInGroup = 0
		}
		rankInGroup++
		entrant := Entrant{RegistrationID: s.RegistrationID, TeamID: s.TeamID}
		switch rankInGroup {
		case 1:
			winners = append(winners, entrant)
		case 2:
			runnersUp = append(runnersUp, entrant)
		}
	}

	if len(winners) == 0 || len(winners) != len(runnersUp) {
		return nil, ErrGroupIncomplete
	}

	entrants := make([]Entrant, 0, 2*len(winners))
	for i, w := range winners {
		entrants = append(entrants, w, runnersUp[len(runnersUp)-1-i])
	}
	return entrants, nil
}

// ShuffleEntrants returns a uniformly shuffled copy for pure-knockout
// seeding. rng may be nil to use the shared global source.
func ShuffleEntrants(rng *rand.Rand, entrants []Entrant) []Entrant {
	shuffled := make([]Entrant, len(entrants))
	copy(shuffled, entrants)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}
	return shuffled
}

// BuildKnockout lays out a full single-elimination bracket from a
// seeded entrant order: consecutive entrants meet in round one, every
// later round is a TBD placeholder, match counts halve (rounding up)
// down to exactly one final. An odd entrant at the end of a round gets
// a bye and is written straight into its next-round slot. Fewer than
// two entrants produce no matches.
func BuildKnockout(entrants []Entrant) []KnockoutMatch {
	if len(entrants) < 2 {
		return nil
	}

	// A slot is either a seeded entrant or the pending winner of an
	// earlier match (source indexes into matches).
	type slot struct {
		entrant *Entrant
		source  int
	}

	current := make([]slot, len(entrants))
	for i := range entrants {
		e := entrants[i]
		current[i] = slot{entrant: &e, source: -1}
	}

	var matches []KnockoutMatch
	for len(current) > 1 {
		stage := models.StageFromEntrantCount(len(current) + len(current)%2)
		next := make([]slot, 0, (len(current)+1)/2)
		order := 0
		for i := 0; i+1 < len(current); i += 2 {
			order++
			home, away := current[i], current[i+1]
			if home.source >= 0 {
				matches[home.source].NextStage = stage
				matches[home.source].NextOrder = order
				matches[home.source].NextSide = 1
			}
			if away.source >= 0 {
				matches[away.source].NextStage = stage
				matches[away.source].NextOrder = order
				matches[away.source].NextSide = 2
			}
			matches = append(matches, KnockoutMatch{
				Stage: stage,
				Order: order,
				Home:  home.entrant,
				Away:  away.entrant,
			})
			next = append(next, slot{source: len(matches) - 1}) // winner TBD
		}
		if len(current)%2 == 1 {
			// The odd slot out sits the round and waits in the next one.
			// It may itself be a pending winner, so its feed link is
			// written only once it is paired.
			next = append(next, current[len(current)-1])
		}
		current = next
	}
	return matches
}
