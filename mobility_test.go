package dtnsim

import (
	"testing"

	"github.com/iti/rngstream"
	"github.com/stretchr/testify/require"
)

func TestCrowdMovementInitialPositionStaysInHomeArea(t *testing.T) {
	m := CreateCrowdMovement(400, 200, 1, 2)
	rng := rngstream.New("seed-a")
	pos := m.InitialPosition(rng)

	area := m.currentArea(pos)
	require.GreaterOrEqual(t, area, minCommunityArea)
	require.LessOrEqual(t, area, maxCommunityArea)
	require.Equal(t, m.homeArea, area)
}

func TestCrowdMovementNextPathStaysWithinBounds(t *testing.T) {
	m := CreateCrowdMovement(400, 200, 1, 2)
	rng := rngstream.New("seed-b")
	from := m.InitialPosition(rng)

	for i := 0; i < 50; i++ {
		dest, speed := m.NextPath(rng, from)
		require.GreaterOrEqual(t, dest.X, 0.0)
		require.LessOrEqual(t, dest.X, m.Width)
		require.GreaterOrEqual(t, dest.Y, 0.0)
		require.LessOrEqual(t, dest.Y, m.Height)
		require.GreaterOrEqual(t, speed, m.MinSpeed)
		require.LessOrEqual(t, speed, m.MaxSpeed)
		from = dest
	}
}

func TestRandIntnStaysInRange(t *testing.T) {
	rng := rngstream.New("seed-c")
	for i := 0; i < 200; i++ {
		v := randIntn(rng, 8)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 8)
	}
}
