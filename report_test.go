package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageStatsReportDeliveryAndOverheadRatio(t *testing.T) {
	r := CreateMessageStatsReport()
	h := &Host{Addr: 1, Name: "h1"}

	m1 := CreateMessage("m1", 1, 2, 100, 10, 0)
	m1.HopPath = []int{1, 3, 2}
	r.NewMessage(h, m1)
	r.MessageDropped(h, m1, true) // one relay before delivery
	r.MessageDelivered(h, m1)

	m2 := CreateMessage("m2", 1, 2, 100, 10, 0)
	r.NewMessage(h, m2)
	r.MessageDropped(h, m2, false) // never delivered, dropped at origin

	require.InDelta(t, 0.5, r.DeliveryRatio(), 1e-9)
	require.InDelta(t, 0.0, r.OverheadRatio(), 1e-9) // 1 relay, 1 delivered -> (1-1)/1

	mean, _ := r.HopCountStats()
	require.InDelta(t, 2.0, mean, 1e-9)
}

func TestGlobalPopularityReportTopN(t *testing.T) {
	r := CreateGlobalPopularityReport()
	a := &Host{Addr: 1, Name: "a"}
	b := &Host{Addr: 2, Name: "b"}
	c := &Host{Addr: 3, Name: "c"}

	r.NoteContact(a, b)
	r.NoteContact(a, c)
	r.NoteContact(a, b)

	top := r.TopN(1)
	require.Len(t, top, 1)
	require.Contains(t, top[0], "a")
}

func TestCommunityReportMeanCommunitySize(t *testing.T) {
	r := CreateCommunityReport()
	require.Equal(t, 0.0, r.MeanCommunitySize())

	h := &Host{Addr: 1, Name: "h1"}
	h.Router = CreateBubbleRapRouter(CreateSimpleCommunity(1), CreateCentrality(SWindow, 60, 1), CreateCentrality(SWindow, 60, 1))
	h.Router.Init(RouterInit{Host: h, AllHosts: []*Host{h}, HostGroup: map[int]string{1: "g"}})

	r.Sample(h, []int{2, 3, 4})
	require.Equal(t, 3.0, r.MeanCommunitySize())
}
