package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAddAndOccupancy(t *testing.T) {
	b := CreateBuffer(1000)
	m := CreateMessage("m1", 1, 2, 400, 10, 0)
	b.Add(m)
	require.Equal(t, int64(400), b.Occupancy())
	require.Equal(t, int64(600), b.FreeSpace())
	require.True(t, b.Has("m1"))
}

func TestBufferAddPanicsOnOverflow(t *testing.T) {
	b := CreateBuffer(100)
	m := CreateMessage("m1", 1, 2, 200, 10, 0)
	require.Panics(t, func() { b.Add(m) })
}

func TestBufferMakeRoomEvictsUntilSpaceFreed(t *testing.T) {
	b := CreateBuffer(100)
	b.Add(CreateMessage("old", 1, 2, 60, 10, 0))
	b.Add(CreateMessage("new", 1, 2, 30, 10, 1))

	var evicted []string
	ok := b.MakeRoom(50, FIFODropPolicy, func(m *Message) { evicted = append(evicted, m.ID) })
	require.True(t, ok)
	require.Equal(t, []string{"old"}, evicted)
	require.False(t, b.Has("old"))
	require.True(t, b.Has("new"))
}

func TestBufferExpireTTL(t *testing.T) {
	b := CreateBuffer(1000)
	b.Add(CreateMessage("stale", 1, 2, 100, 1, 0)) // 1 minute TTL
	b.Add(CreateMessage("fresh", 1, 2, 100, 60, 0))

	expired := b.ExpireTTL(120, nil) // 2 minutes elapsed
	require.Len(t, expired, 1)
	require.Equal(t, "stale", expired[0].ID)
	require.False(t, b.Has("stale"))
	require.True(t, b.Has("fresh"))
}

func TestBufferRemoveInvokesCallback(t *testing.T) {
	b := CreateBuffer(1000)
	b.Add(CreateMessage("m1", 1, 2, 100, 10, 0))

	var removed *Message
	got := b.Remove("m1", func(m *Message) { removed = m })
	require.NotNil(t, got)
	require.Same(t, got, removed)
	require.Nil(t, b.Remove("m1", nil))
}
