package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfooty/bracket-system/models"
)

func TestMatchHistoryResults(t *testing.T) {
	players := newFakePlayerRepo()
	regs := newFakeRegistrationRepo()
	matches := newFakeMatchRepo()
	svc := NewPlayerService(players, regs, matches)

	player := &models.Player{Username: "dave", Whatsapp: "+3726000004"}
	require.NoError(t, players.Create(context.Background(), player))

	reg := &models.Registration{TournamentID: 1, PlayerID: player.ID, TeamID: 101}
	require.NoError(t, regs.Create(context.Background(), nil, reg))

	win := &models.Match{
		TournamentID: 1, Stage: models.StageGroup, GroupName: strp("A"),
		HomeRegID: &reg.ID, AwayRegID: intp(99),
		HomeScore: intp(2), AwayScore: intp(0), Confirmed: true,
	}
	lossAsAway := &models.Match{
		TournamentID: 1, Stage: models.StageGroup, GroupName: strp("A"),
		HomeRegID: intp(99), AwayRegID: &reg.ID,
		HomeScore: intp(3), AwayScore: intp(1), Confirmed: true,
	}
	draw := &models.Match{
		TournamentID: 1, Stage: models.StageGroup, GroupName: strp("A"),
		HomeRegID: &reg.ID, AwayRegID: intp(98),
		HomeScore: intp(1), AwayScore: intp(1), Confirmed: true,
	}
	scheduled := &models.Match{
		TournamentID: 1, Stage: models.StageGroup, GroupName: strp("A"),
		HomeRegID: &reg.ID, AwayRegID: intp(97),
	}
	require.NoError(t, matches.BatchCreate(context.Background(), nil,
		[]*models.Match{win, lossAsAway, draw, scheduled}))

	history, err := svc.MatchHistory(context.Background(), player.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)

	results := make(map[int]string)
	for _, record := range history {
		results[record.Match.ID] = record.Result
	}
	assert.Equal(t, "win", results[win.ID])
	assert.Equal(t, "loss", results[lossAsAway.ID])
	assert.Equal(t, "draw", results[draw.ID])
	assert.Equal(t, "pending", results[scheduled.ID])
}

func TestMatchHistoryUnknownPlayer(t *testing.T) {
	svc := NewPlayerService(newFakePlayerRepo(), newFakeRegistrationRepo(), newFakeMatchRepo())
	_, err := svc.MatchHistory(context.Background(), 7)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestMatchHistoryEmpty(t *testing.T) {
	players := newFakePlayerRepo()
	svc := NewPlayerService(players, newFakeRegistrationRepo(), newFakeMatchRepo())

	player := &models.Player{Username: "erin", Whatsapp: "+3726000005"}
	require.NoError(t, players.Create(context.Background(), player))

	history, err := svc.MatchHistory(context.Background(), player.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
