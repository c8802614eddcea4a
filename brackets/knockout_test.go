package brackets

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfooty/bracket-system/models"
)

func standing(group string, regID, points, goalsFor int) *models.GroupStanding {
	return &models.GroupStanding{
		GroupName:      group,
		RegistrationID: regID,
		TeamID:         100 + regID,
		Points:         points,
		GoalsFor:       goalsFor,
	}
}

func TestSeedFromStandingsMirrorPairing(t *testing.T) {
	// Two groups, pre-ranked within each group: winner first.
	standings := []*models.GroupStanding{
		standing("A", 1, 9, 10),
		standing("A", 2, 6, 7),
		standing("A", 3, 3, 4),
		standing("B", 4, 7, 8),
		standing("B", 5, 5, 6),
		standing("B", 6, 1, 2),
	}

	entrants, err := SeedFromStandings(standings)
	require.NoError(t, err)
	require.Len(t, entrants, 4)

	// Winner of A meets runner-up of B, winner of B runner-up of A.
	assert.Equal(t, 1, entrants[0].RegistrationID)
	assert.Equal(t, 5, entrants[1].RegistrationID)
	assert.Equal(t, 4, entrants[2].RegistrationID)
	assert.Equal(t, 2, entrants[3].RegistrationID)
}

func TestSeedFromStandingsIncompleteGroup(t *testing.T) {
	standings := []*models.GroupStanding{
		standing("A", 1, 9, 10),
		standing("A", 2, 6, 7),
		standing("B", 3, 7, 8), // lone entrant, no runner-up
	}

	_, err := SeedFromStandings(standings)
	assert.ErrorIs(t, err, ErrGroupIncomplete)
}

func TestBuildKnockoutShapes(t *testing.T) {
	testCases := []struct {
		name         string
		entrants     int
		totalMatches int
		firstStage   models.MatchStage
	}{
		{"final only", 2, 1, models.StageFinal},
		{"four entrants", 4, 3, models.StageSemiFinal},
		{"eight entrants", 8, 7, models.StageQuarterFinal},
		{"sixteen entrants", 16, 15, models.MatchStage("round-of-16")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matches := BuildKnockout(makeEntrants(tc.entrants))
			require.Len(t, matches, tc.totalMatches)
			assert.Equal(t, tc.firstStage, matches[0].Stage)

			finals := 0
			for _, m := range matches {
				if m.Stage == models.StageFinal {
					finals++
				}
			}
			assert.Equal(t, 1, finals, "exactly one final")
		})
	}
}

func TestBuildKnockoutFirstRoundPairsConsecutiveSeeds(t *testing.T) {
	entrants := makeEntrants(8)
	matches := BuildKnockout(entrants)

	for i := 0; i < 4; i++ {
		m := matches[i]
		require.NotNil(t, m.Home)
		require.NotNil(t, m.Away)
		assert.Equal(t, entrants[2*i].RegistrationID, m.Home.RegistrationID)
		assert.Equal(t, entrants[2*i+1].RegistrationID, m.Away.RegistrationID)
		assert.Equal(t, i+1, m.Order)
	}

	// Later rounds are placeholders until resolution.
	for _, m := range matches[4:] {
		assert.Nil(t, m.Home)
		assert.Nil(t, m.Away)
	}
}

func TestBuildKnockoutByeAdvances(t *testing.T) {
	entrants := makeEntrants(3)
	matches := BuildKnockout(entrants)
	require.Len(t, matches, 2)

	// Seeds 1 and 2 play; seed 3 sits out and waits in the final.
	semi := matches[0]
	require.NotNil(t, semi.Home)
	require.NotNil(t, semi.Away)
	assert.Equal(t, models.StageFinal, semi.NextStage)
	assert.Equal(t, 1, semi.NextOrder)
	assert.Equal(t, 1, semi.NextSide)

	final := matches[1]
	assert.Equal(t, models.StageFinal, final.Stage)
	assert.Nil(t, final.Home)
	require.NotNil(t, final.Away)
	assert.Equal(t, entrants[2].RegistrationID, final.Away.RegistrationID)
	assert.Empty(t, final.NextStage)
}

func TestBuildKnockoutFeedCanSkipARound(t *testing.T) {
	// Six entrants: three first-round matches, but only one semi-final.
	// The odd match out feeds the final directly, into the slot a plain
	// halving of round names would never reach.
	matches := BuildKnockout(makeEntrants(6))
	require.Len(t, matches, 5)

	firstRound := matches[:3]
	semi := matches[3]
	final := matches[4]
	assert.Equal(t, models.MatchStage("round-of-6"), firstRound[0].Stage)
	assert.Equal(t, models.StageSemiFinal, semi.Stage)
	assert.Equal(t, models.StageFinal, final.Stage)

	assert.Equal(t, models.StageSemiFinal, firstRound[0].NextStage)
	assert.Equal(t, 1, firstRound[0].NextOrder)
	assert.Equal(t, 1, firstRound[0].NextSide)
	assert.Equal(t, models.StageSemiFinal, firstRound[1].NextStage)
	assert.Equal(t, 2, firstRound[1].NextSide)

	assert.Equal(t, models.StageFinal, firstRound[2].NextStage)
	assert.Equal(t, 1, firstRound[2].NextOrder)
	assert.Equal(t, 2, firstRound[2].NextSide)

	assert.Equal(t, models.StageFinal, semi.NextStage)
	assert.Equal(t, 1, semi.NextSide)
	assert.Empty(t, final.NextStage)
}

// playBracket resolves a generated bracket by following each match's
// feed link, with the lowest registration id winning every tie. It
// fails the test if any match is missing a participant when its round
// comes up, or if a feed link points at a slot that does not exist.
func playBracket(t *testing.T, matches []KnockoutMatch) Entrant {
	t.Helper()

	type slotKey struct {
		stage models.MatchStage
		order int
	}
	bracket := make(map[slotKey]*KnockoutMatch, len(matches))
	ordered := make([]*KnockoutMatch, len(matches))
	for i := range matches {
		m := &matches[i]
		bracket[slotKey{m.Stage, m.Order}] = m
		ordered[i] = m
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return models.StageRank(ordered[i].Stage) < models.StageRank(ordered[j].Stage)
	})

	var champion Entrant
	for _, m := range ordered {
		require.NotNil(t, m.Home, "stage %s match %d has no home side", m.Stage, m.Order)
		require.NotNil(t, m.Away, "stage %s match %d has no away side", m.Stage, m.Order)

		winner := m.Home
		if m.Away.RegistrationID < m.Home.RegistrationID {
			winner = m.Away
		}
		if m.NextStage == "" {
			require.Equal(t, models.StageFinal, m.Stage, "only the final may lack a feed link")
			champion = *winner
			continue
		}

		target, ok := bracket[slotKey{m.NextStage, m.NextOrder}]
		require.True(t, ok, "stage %s match %d feeds %s match %d, which was never created",
			m.Stage, m.Order, m.NextStage, m.NextOrder)
		switch m.NextSide {
		case 1:
			require.Nil(t, target.Home, "feed target slot is already taken")
			target.Home = winner
		case 2:
			require.Nil(t, target.Away, "feed target slot is already taken")
			target.Away = winner
		default:
			t.Fatalf("stage %s match %d has feed side %d", m.Stage, m.Order, m.NextSide)
		}
	}
	return champion
}

func TestBuildKnockoutUnevenFieldsResolveToChampion(t *testing.T) {
	for _, size := range []int{5, 6, 12} {
		t.Run(fmt.Sprintf("%d entrants", size), func(t *testing.T) {
			entrants := makeEntrants(size)
			matches := BuildKnockout(entrants)
			require.Len(t, matches, size-1, "single elimination plays one match per elimination")

			champion := playBracket(t, matches)
			assert.Equal(t, entrants[0].RegistrationID, champion.RegistrationID)
		})
	}
}

func TestBuildKnockoutTooFewEntrants(t *testing.T) {
	assert.Nil(t, BuildKnockout(nil))
	assert.Nil(t, BuildKnockout(makeEntrants(1)))
}

func TestBuildKnockoutPowerOfTwoFeedLinks(t *testing.T) {
	matches := BuildKnockout(makeEntrants(8))
	require.Len(t, matches, 7)

	// Quarter-finals 1 and 2 feed semi 1, 3 and 4 feed semi 2.
	testCases := []struct {
		order     int
		nextOrder int
		side      int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
	}
	for _, tc := range testCases {
		m := matches[tc.order-1]
		assert.Equal(t, models.StageSemiFinal, m.NextStage, "quarter-final %d", tc.order)
		assert.Equal(t, tc.nextOrder, m.NextOrder, "quarter-final %d", tc.order)
		assert.Equal(t, tc.side, m.NextSide, "quarter-final %d", tc.order)
	}
}
