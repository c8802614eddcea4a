package services

import (
	"context"
	"sort"
	"time"

	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/repositories"
)

// fakeTxManager runs the callback directly; the fakes below are plain
// in-memory stores so there is nothing transactional to manage.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return t
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.add(t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range r.tournaments {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus, startedAt, completedAt *time.Time) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	if startedAt != nil {
		t.StartedAt = startedAt
	}
	if completedAt != nil {
		t.CompletedAt = completedAt
	}
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeRegistrationRepo struct {
	registrations []*models.Registration
	nextID        int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{nextID: 1}
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	for _, existing := range r.registrations {
		if existing.TournamentID != reg.TournamentID {
			continue
		}
		if existing.PlayerID == reg.PlayerID {
			return repositories.ErrRegistrationPlayerConflict
		}
		if existing.TeamID == reg.TeamID {
			return repositories.ErrRegistrationTeamConflict
		}
	}
	reg.ID = r.nextID
	r.nextID++
	reg.CreatedAt = time.Now()
	r.registrations = append(r.registrations, reg)
	return nil
}

func (r *fakeRegistrationRepo) DeleteByTournamentAndPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) error {
	for i, reg := range r.registrations {
		if reg.TournamentID == tournamentID && reg.PlayerID == playerID {
			r.registrations = append(r.registrations[:i], r.registrations[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRegistrationRepo) FindByTournamentAndPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) (*models.Registration, error) {
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID && reg.PlayerID == playerID {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) FindByTournamentAndTeam(ctx context.Context, exec repositories.SQLExecutor, tournamentID, teamID int) (*models.Registration, error) {
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID && reg.TeamID == teamID {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (r *fakeRegistrationRepo) ListByPlayer(ctx context.Context, playerID int) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range r.registrations {
		if reg.PlayerID == playerID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

type fakeStandingRepo struct {
	standings []*models.GroupStanding
	nextID    int
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{nextID: 1}
}

func (r *fakeStandingRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, standings []*models.GroupStanding) error {
	for _, s := range standings {
		s.ID = r.nextID
		r.nextID++
		r.standings = append(r.standings, s)
	}
	return nil
}

func (r *fakeStandingRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	kept := r.standings[:0]
	for _, s := range r.standings {
		if s.TournamentID != tournamentID {
			kept = append(kept, s)
		}
	}
	r.standings = kept
	return nil
}

func (r *fakeStandingRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.GroupStanding, error) {
	var out []*models.GroupStanding
	for _, s := range r.standings {
		if s.TournamentID == tournamentID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.GroupName != b.GroupName {
			return a.GroupName < b.GroupName
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.RegistrationID < b.RegistrationID
	})
	return out, nil
}

func (r *fakeStandingRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, tournamentID, registrationID int) (*models.GroupStanding, error) {
	for _, s := range r.standings {
		if s.TournamentID == tournamentID && s.RegistrationID == registrationID {
			return s, nil
		}
	}
	return nil, repositories.ErrGroupStandingNotFound
}

func (r *fakeStandingRepo) Update(ctx context.Context, exec repositories.SQLExecutor, standing *models.GroupStanding) error {
	for i, s := range r.standings {
		if s.ID == standing.ID {
			r.standings[i] = standing
			return nil
		}
	}
	return repositories.ErrGroupStandingNotFound
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	for _, m := range matches {
		m.ID = r.nextID
		r.nextID++
		m.CreatedAt = time.Now()
		r.matches[m.ID] = m
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, id int, homeScore, awayScore int) error {
	m, ok := r.matches[id]
	if !ok || m.Confirmed {
		return repositories.ErrMatchAlreadyConfirmed
	}
	m.HomeScore = &homeScore
	m.AwayScore = &awayScore
	return nil
}

func (r *fakeMatchRepo) Confirm(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	m, ok := r.matches[id]
	if !ok || m.Confirmed {
		return repositories.ErrMatchAlreadyConfirmed
	}
	m.Confirmed = true
	return nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, stage models.MatchStage) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Stage == stage {
			clone := *m
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := 0, 0
		if out[i].MatchOrder != nil {
			oi = *out[i].MatchOrder
		}
		if out[j].MatchOrder != nil {
			oj = *out[j].MatchOrder
		}
		if oi != oj {
			return oi < oj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) ListUnconfirmedScored(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupName *string) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID || m.Confirmed || m.HomeScore == nil || m.AwayScore == nil {
			continue
		}
		if groupName != nil && (m.GroupName == nil || *m.GroupName != *groupName) {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListByRegistrations(ctx context.Context, registrationIDs []int) ([]*models.Match, error) {
	wanted := make(map[int]bool, len(registrationIDs))
	for _, id := range registrationIDs {
		wanted[id] = true
	}
	var out []*models.Match
	for _, m := range r.matches {
		home := m.HomeRegID != nil && wanted[*m.HomeRegID]
		away := m.AwayRegID != nil && wanted[*m.AwayRegID]
		if home || away {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) DeleteGroupStage(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.matches {
		if m.TournamentID == tournamentID && m.Stage == models.StageGroup {
			delete(r.matches, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) DeleteKnockout(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.matches {
		if m.TournamentID == tournamentID && m.Stage != models.StageGroup {
			delete(r.matches, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) SetSlotSide(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, stage models.MatchStage, matchOrder, side int, regID, teamID int) error {
	for _, m := range r.matches {
		if m.TournamentID != tournamentID || m.Stage != stage || m.MatchOrder == nil || *m.MatchOrder != matchOrder {
			continue
		}
		if side == 1 {
			m.HomeRegID, m.HomeTeamID = &regID, &teamID
		} else {
			m.AwayRegID, m.AwayTeamID = &regID, &teamID
		}
		return nil
	}
	return repositories.ErrMatchNotFound
}

type fakePlayerRepo struct {
	players map[int]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]*models.Player), nextID: 1}
}

func (r *fakePlayerRepo) Create(ctx context.Context, p *models.Player) error {
	for _, existing := range r.players {
		if existing.Username == p.Username {
			return repositories.ErrPlayerUsernameConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	r.players[p.ID] = p
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakePlayerRepo) GetByUsername(ctx context.Context, username string) (*models.Player, error) {
	for _, p := range r.players {
		if p.Username == username {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range r.players {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
