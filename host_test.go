package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHostMoveReachesDestinationExactly(t *testing.T) {
	h := CreateHost(1, "h1", "g", 1000, CreateCrowdMovement(1000, 1000, 5, 5), "seed-move")
	h.X, h.Y = 0, 0
	h.pathDest = Coord{X: 10, Y: 0}
	h.pathSpeed = 5
	h.hasPath = true

	h.Move(2.0) // 5 m/s * 2s == 10m, exactly the leg length
	require.InDelta(t, 10.0, h.X, 1e-9)
	require.InDelta(t, 0.0, h.Y, 1e-9)
	require.False(t, h.hasPath)
}

func TestHostMovePartialLegLeavesPathActive(t *testing.T) {
	h := CreateHost(1, "h1", "g", 1000, CreateCrowdMovement(1000, 1000, 5, 5), "seed-move")
	h.X, h.Y = 0, 0
	h.pathDest = Coord{X: 10, Y: 0}
	h.pathSpeed = 5
	h.hasPath = true

	h.Move(1.0) // 5m of a 10m leg
	require.InDelta(t, 5.0, h.X, 1e-9)
	require.True(t, h.hasPath)
}

func TestHostAddInterfaceSetsOwner(t *testing.T) {
	h := CreateHost(1, "h1", "g", 1000, CreateCrowdMovement(100, 100, 1, 1), "seed")
	intrfc := CreateInterface(1, 50, 1000)
	h.AddInterface(intrfc)
	require.Same(t, h, intrfc.Host())
}
