package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfooty/bracket-system/brackets"
	"github.com/openfooty/bracket-system/models"
)

type groupFixture struct {
	svc         GroupService
	tournaments *fakeTournamentRepo
	regs        *fakeRegistrationRepo
	standings   *fakeStandingRepo
	matches     *fakeMatchRepo
}

func newGroupFixture() *groupFixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &groupFixture{
		tournaments: newFakeTournamentRepo(),
		regs:        newFakeRegistrationRepo(),
		standings:   newFakeStandingRepo(),
		matches:     newFakeMatchRepo(),
	}
	f.svc = NewGroupService(fakeTxManager{}, f.tournaments, f.regs, f.standings, f.matches, brackets.NewHub(logger), logger)
	return f
}

func (f *groupFixture) seedTournament(t *testing.T, entrants int) *models.Tournament {
	t.Helper()
	tournament := f.tournaments.add(&models.Tournament{
		Name: "cup", Capacity: 16,
		Format: models.FormatGroupKnockout, Status: models.StatusRegistration,
	})
	for i := 1; i <= entrants; i++ {
		require.NoError(t, f.regs.Create(context.Background(), nil, &models.Registration{
			TournamentID: tournament.ID, PlayerID: i, TeamID: 100 + i,
		}))
	}
	return tournament
}

func TestGenerateGroupsPartitionsField(t *testing.T) {
	f := newGroupFixture()
	tournament := f.seedTournament(t, 10)

	standings, err := f.svc.GenerateGroups(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, standings, 10)

	byGroup := make(map[string]int)
	for _, s := range standings {
		byGroup[s.GroupName]++
		assert.Zero(t, s.Played)
		assert.Zero(t, s.Points)
	}
	assert.Equal(t, map[string]int{"A": 4, "B": 4, "C": 2}, byGroup)

	// C(4,2)+C(4,2)+C(2,2) fixtures.
	matches, err := f.matches.ListByTournament(context.Background(), nil, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 13)
	for _, m := range matches {
		assert.Equal(t, models.StageGroup, m.Stage)
		assert.NotNil(t, m.GroupName)
		assert.False(t, m.Confirmed)
	}

	updated, err := f.tournaments.GetByID(context.Background(), nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusGroupStage, updated.Status)
	assert.NotNil(t, updated.StartedAt)
}

func TestGenerateGroupsIsDestructive(t *testing.T) {
	f := newGroupFixture()
	tournament := f.seedTournament(t, 8)

	first, err := f.svc.GenerateGroups(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, first, 8)

	second, err := f.svc.GenerateGroups(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, second, 8)

	// Old rows are gone, not accumulated.
	standings, err := f.standings.ListByTournament(context.Background(), nil, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, standings, 8)
	matches, err := f.matches.ListByTournament(context.Background(), nil, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 12)
}

func TestGenerateGroupsGuards(t *testing.T) {
	t.Run("too few registrations", func(t *testing.T) {
		f := newGroupFixture()
		tournament := f.seedTournament(t, 3)
		_, err := f.svc.GenerateGroups(context.Background(), tournament.ID)
		assert.ErrorIs(t, err, ErrNotEnoughRegistrations)
	})

	t.Run("field leaving a group of one", func(t *testing.T) {
		f := newGroupFixture()
		tournament := f.seedTournament(t, 9)
		_, err := f.svc.GenerateGroups(context.Background(), tournament.ID)
		assert.ErrorIs(t, err, ErrUnevenRegistrations)
	})

	t.Run("pure knockout format has no groups", func(t *testing.T) {
		f := newGroupFixture()
		tournament := f.tournaments.add(&models.Tournament{
			Name: "ko", Capacity: 8,
			Format: models.FormatKnockout, Status: models.StatusRegistration,
		})
		_, err := f.svc.GenerateGroups(context.Background(), tournament.ID)
		assert.ErrorIs(t, err, ErrTournamentInvalidFormat)
	})

	t.Run("knockout already drawn", func(t *testing.T) {
		f := newGroupFixture()
		tournament := f.seedTournament(t, 8)
		f.tournaments.tournaments[tournament.ID].Status = models.StatusKnockout
		_, err := f.svc.GenerateGroups(context.Background(), tournament.ID)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		f := newGroupFixture()
		_, err := f.svc.GenerateGroups(context.Background(), 42)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})
}
