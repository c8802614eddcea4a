package brackets

import (
	"errors"
	"fmt"
	"math/rand"
)

// DefaultGroupSize is the target size of each round-robin group.
const DefaultGroupSize = 4

var (
	ErrNotEnoughEntrants = errors.New("not enough entrants to allocate groups (minimum 4 required)")

	// ErrLoneGroup flags entrant counts that would strand one entrant in
	// a group of their own: such a group has no runner-up, so the
	// knockout could never be seeded.
	ErrLoneGroup = errors.New("entrant count would leave a group of one")
)

// Entrant is one seeded participant: a registration and the team it
// plays as.
type Entrant struct {
	RegistrationID int
	TeamID         int
}

type Group struct {
	Name     string
	Entrants []Entrant
}

// Fixture is one unordered pairing inside a group.
type Fixture struct {
	GroupName string
	Home      Entrant
	Away      Entrant
}

// GroupName yields A..Z for the first 26 groups, then A2..Z2, A3.. —
// enough for the 32 groups a 128-entrant tournament needs.
func GroupName(index int) string {
	letter := string(rune('A' + index%26))
	if index < 26 {
		return letter
	}
	return fmt.Sprintf("%s%d", letter, index/26+1)
}

// AllocateGroups shuffles the entrant pool uniformly and partitions it
// into contiguous chunks of groupSize. The trailing group may be
// smaller than groupSize but never a single entrant. At least
// DefaultGroupSize entrants are required to form a single full group;
// fewer is rejected outright.
//
// rng may be nil, in which case the shared global source is used.
func AllocateGroups(rng *rand.Rand, entrants []Entrant, groupSize int) ([]Group, error) {
	if groupSize < 2 {
		return nil, fmt.Errorf("invalid group size %d", groupSize)
	}
	if len(entrants) < DefaultGroupSize {
		return nil, ErrNotEnoughEntrants
	}
	if len(entrants)%groupSize == 1 {
		return nil, ErrLoneGroup
	}

	shuffled := make([]Entrant, len(entrants))
	copy(shuffled, entrants)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	groups := make([]Group, 0, (len(shuffled)+groupSize-1)/groupSize)
	for i := 0; i < len(shuffled); i += groupSize {
		end := i + groupSize
		if end > len(shuffled) {
			end = len(shuffled)
		}
		groups = append(groups, Group{
			Name:     GroupName(len(groups)),
			Entrants: shuffled[i:end],
		})
	}
	return groups, nil
}

// RoundRobinFixtures emits every unordered pairing of a group: C(n,2)
// fixtures for a group of n. Groups of one entrant yield none.
func RoundRobinFixtures(group Group) []Fixture {
	n := len(group.Entrants)
	fixtures := make([]Fixture, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			fixtures = append(fixtures, Fixture{
				GroupName: group.Name,
				Home:      group.Entrants[i],
				Away:      group.Entrants[j],
			})
		}
	}
	return fixtures
}
