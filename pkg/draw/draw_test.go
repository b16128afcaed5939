package draw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mabar/app/models/place"
)

func TestPickEmptyCandidates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := Pick(nil, rng)
	assert.ErrorIs(t, err, ErrEmptyCandidates)

	_, err = Pick([]place.Place{}, rng)
	assert.ErrorIs(t, err, ErrEmptyCandidates)
}

func TestPickSingleCandidate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	only := place.Place{ID: "p1", Name: "Kopi Kenangan"}

	picked, err := Pick([]place.Place{only}, rng)
	require.NoError(t, err)
	assert.Equal(t, "p1", picked.ID)
}

func TestPickDeterministicWithSameSeed(t *testing.T) {
	candidates := []place.Place{
		{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"},
	}

	first := make([]string, 0, 10)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		p, err := Pick(candidates, rng)
		require.NoError(t, err)
		first = append(first, p.ID)
	}

	second := make([]string, 0, 10)
	rng = rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		p, err := Pick(candidates, rng)
		require.NoError(t, err)
		second = append(second, p.ID)
	}

	assert.Equal(t, first, second)
}

// 等概率抽取下，足够多次后每个候选都应被抽中过
func TestPickCoversAllCandidates(t *testing.T) {
	candidates := []place.Place{
		{ID: "p1"}, {ID: "p2"}, {ID: "p3"},
	}

	rng := rand.New(rand.NewSource(7))
	seen := make(map[string]int)
	for i := 0; i < 300; i++ {
		p, err := Pick(candidates, rng)
		require.NoError(t, err)
		seen[p.ID]++
	}

	for _, c := range candidates {
		assert.Greater(t, seen[c.ID], 0, "candidate %s never picked", c.ID)
	}
}
