package brackets

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEntrants(n int) []Entrant {
	entrants := make([]Entrant, n)
	for i := range entrants {
		entrants[i] = Entrant{RegistrationID: i + 1, TeamID: 100 + i}
	}
	return entrants
}

func TestGroupName(t *testing.T) {
	testCases := []struct {
		index    int
		expected string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "A2"},
		{27, "B2"},
		{52, "A3"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, GroupName(tc.index))
		})
	}
}

func TestAllocateGroupsPartition(t *testing.T) {
	testCases := []struct {
		name           string
		entrants       int
		expectedGroups int
		expectedSizes  []int
	}{
		{"exact multiple", 16, 4, []int{4, 4, 4, 4}},
		{"minimum field", 4, 1, []int{4}},
		{"trailing short group", 10, 3, []int{4, 4, 2}},
		{"trailing pair", 6, 2, []int{4, 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			groups, err := AllocateGroups(rng, makeEntrants(tc.entrants), DefaultGroupSize)
			require.NoError(t, err)
			require.Len(t, groups, tc.expectedGroups)

			seen := make(map[int]bool)
			for i, group := range groups {
				assert.Equal(t, GroupName(i), group.Name)
				assert.Len(t, group.Entrants, tc.expectedSizes[i])
				for _, e := range group.Entrants {
					assert.False(t, seen[e.RegistrationID], "registration %d allocated twice", e.RegistrationID)
					seen[e.RegistrationID] = true
				}
			}
			assert.Len(t, seen, tc.entrants, "every entrant must land in exactly one group")
		})
	}
}

func TestAllocateGroupsRejectsSmallField(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3} {
		t.Run(fmt.Sprintf("%d entrants", n), func(t *testing.T) {
			_, err := AllocateGroups(nil, makeEntrants(n), DefaultGroupSize)
			assert.ErrorIs(t, err, ErrNotEnoughEntrants)
		})
	}
}

func TestAllocateGroupsRejectsLoneGroup(t *testing.T) {
	// 4k+1 entrants would strand one entrant in a group of their own,
	// which can never qualify a runner-up for the knockout.
	for _, n := range []int{5, 9, 13} {
		t.Run(fmt.Sprintf("%d entrants", n), func(t *testing.T) {
			_, err := AllocateGroups(nil, makeEntrants(n), DefaultGroupSize)
			assert.ErrorIs(t, err, ErrLoneGroup)
		})
	}
}

func TestAllocateGroupsDoesNotMutateInput(t *testing.T) {
	entrants := makeEntrants(8)
	original := make([]Entrant, len(entrants))
	copy(original, entrants)

	_, err := AllocateGroups(rand.New(rand.NewSource(7)), entrants, DefaultGroupSize)
	require.NoError(t, err)
	assert.Equal(t, original, entrants)
}

func TestRoundRobinFixtures(t *testing.T) {
	testCases := []struct {
		name         string
		groupSize    int
		wantFixtures int
	}{
		{"full group of four", 4, 6},
		{"group of three", 3, 3},
		{"group of two", 2, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			group := Group{Name: "A", Entrants: makeEntrants(tc.groupSize)}
			fixtures := RoundRobinFixtures(group)
			require.Len(t, fixtures, tc.wantFixtures)

			// Every pair meets exactly once, never against itself.
			pairs := make(map[[2]int]bool)
			for _, f := range fixtures {
				assert.Equal(t, "A", f.GroupName)
				assert.NotEqual(t, f.Home.RegistrationID, f.Away.RegistrationID)
				a, b := f.Home.RegistrationID, f.Away.RegistrationID
				if a > b {
					a, b = b, a
				}
				key := [2]int{a, b}
				assert.False(t, pairs[key], "pair %v scheduled twice", key)
				pairs[key] = true
			}
		})
	}
}
