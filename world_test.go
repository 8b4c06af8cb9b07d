package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newStationaryHost(addr int, x, y float64) *Host {
	h := CreateHost(addr, "h", "g", 10000, CreateCrowdMovement(100, 100, 0, 0), "seed")
	h.X, h.Y = x, y
	h.AddInterface(CreateInterface(addr, 10, 1000))
	h.Router = CreateEpidemicRouter()
	return h
}

func TestWorldConnectivityBringsUpAndTearsDownConnections(t *testing.T) {
	w := CreateWorld(1.0, 20, "seed")
	a := newStationaryHost(1, 0, 0)
	b := newStationaryHost(2, 5, 0) // within range 10
	w.AddHost(a)
	w.AddHost(b)
	w.InitRouters()

	w.step2Connectivity(nil)
	require.Len(t, w.up, 1)

	// move b out of range and recompute
	b.X = 1000
	w.grid.Place(b)
	w.step2Connectivity(nil)
	require.Len(t, w.up, 0)
}

func TestWorldInitRoutersPassesListeners(t *testing.T) {
	w := CreateWorld(1.0, 20, "seed")
	a := newStationaryHost(1, 0, 0)
	w.AddHost(a)

	stats := CreateMessageStatsReport()
	w.AddListener(stats)
	w.InitRouters()

	m := CreateMessage("m1", 1, 2, 100, 10, 0)
	require.True(t, a.Router.CreateNewMessage(nil, m))
	require.Equal(t, 0.0, stats.DeliveryRatio()) // not yet delivered
}
