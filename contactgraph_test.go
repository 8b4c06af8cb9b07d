package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContactGraphHopDistance(t *testing.T) {
	cg := CreateContactGraph()
	cg.RecordContact(1, 2)
	cg.RecordContact(2, 3)

	d, ok := cg.HopDistance(1, 3)
	require.True(t, ok)
	require.Equal(t, 2, d)

	d, ok = cg.HopDistance(1, 2)
	require.True(t, ok)
	require.Equal(t, 1, d)
}

func TestContactGraphHopDistanceUnreachable(t *testing.T) {
	cg := CreateContactGraph()
	cg.RecordContact(1, 2)
	cg.RecordContact(3, 4)

	_, ok := cg.HopDistance(1, 4)
	require.False(t, ok)
}

func TestContactGraphDiameter(t *testing.T) {
	cg := CreateContactGraph()
	cg.RecordContact(1, 2)
	cg.RecordContact(2, 3)
	cg.RecordContact(3, 4)

	require.Equal(t, 3, cg.Diameter())
}
