package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageRemainingTTL(t *testing.T) {
	m := CreateMessage("m1", 1, 2, 1000, 10, 0) // 10 minute TTL
	require.InDelta(t, 10.0, m.RemainingTTL(0), 1e-9)
	require.InDelta(t, 5.0, m.RemainingTTL(300), 1e-9)
	require.False(t, m.Expired(300))
	require.True(t, m.Expired(601))
}

func TestMessageReplicateDivergesProperties(t *testing.T) {
	m := CreateMessage("m1", 1, 2, 1000, 10, 0)
	m.SetProperty("sprayandwait.copies", 4)

	cp := m.Replicate(3, 5)
	cp.SetProperty("sprayandwait.copies", 2)

	v, ok := m.IntProperty("sprayandwait.copies")
	require.True(t, ok)
	require.Equal(t, 4, v)

	v, ok = cp.IntProperty("sprayandwait.copies")
	require.True(t, ok)
	require.Equal(t, 2, v)

	require.Equal(t, []int{1, 3}, cp.HopPath)
	require.Equal(t, []int{1}, m.HopPath)
	require.Equal(t, 1, cp.HopCount())
}

func TestCreateMessagePanicsOnNonPositiveSize(t *testing.T) {
	require.Panics(t, func() {
		CreateMessage("bad", 1, 2, 0, 10, 0)
	})
}
