package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func twoConnectedHosts(t *testing.T, ra, rb Router) (*Host, *Host, *Connection) {
	t.Helper()
	a := CreateHost(1, "a", "g", 100000, CreateCrowdMovement(100, 100, 1, 1), "seed-a")
	b := CreateHost(2, "b", "g", 100000, CreateCrowdMovement(100, 100, 1, 1), "seed-b")
	a.AddInterface(CreateInterface(1, 50, 1000))
	b.AddInterface(CreateInterface(2, 50, 1000))
	a.Router, b.Router = ra, rb

	w := CreateWorld(1.0, 100, "seed-w")
	w.AddHost(a)
	w.AddHost(b)
	w.InitRouters()

	conn := CreateConnection("c1", a.Interfaces[0], b.Interfaces[0])
	return a, b, conn
}

func TestEpidemicRouterStartTransferAndDelivery(t *testing.T) {
	a, b, conn := twoConnectedHosts(t, CreateEpidemicRouter(), CreateEpidemicRouter())

	m := CreateMessage("m1", a.Addr, b.Addr, 100, 10, 0)
	require.True(t, a.Router.CreateNewMessage(nil, m))

	rc := a.Router.StartTransfer(nil, m, conn)
	require.Equal(t, RcvOK, rc)
	require.True(t, a.Router.IsSending(m.ID))

	outbound := conn.Msg
	require.NotSame(t, m, outbound) // epidemic replicates, never hands over its own pointer
	require.Equal(t, []int{a.Addr}, m.HopPath)
	require.Equal(t, []int{a.Addr, b.Addr}, outbound.HopPath)

	// drive the transfer to completion
	for !conn.Advance(1.0) {
	}
	conn.FinishTransfer()

	a.Router.TransferDone(nil, conn, outbound)
	rc = b.Router.ReceiveMessage(nil, outbound, a.Addr)
	require.Equal(t, RcvOK, rc)
	require.Equal(t, 1, b.Router.DeliveredCount())
	require.Equal(t, 1, a.Router.RelayedCount())
}

func TestEpidemicRouterRefusesPeerThatAlreadyHasMessage(t *testing.T) {
	a, b, conn := twoConnectedHosts(t, CreateEpidemicRouter(), CreateEpidemicRouter())

	m := CreateMessage("m1", a.Addr, b.Addr, 100, 10, 0)
	require.True(t, a.Router.CreateNewMessage(nil, m))
	require.True(t, b.Router.CreateNewMessage(nil, m.Replicate(b.Addr, 0)))

	rc := a.Router.StartTransfer(nil, m, conn)
	require.Equal(t, DeniedOld, rc)
}

func TestSprayAndWaitBinarySplitsCopiesOnTransfer(t *testing.T) {
	a, _, conn := twoConnectedHosts(t,
		CreateSprayAndWaitRouter(4, SprayAndWaitBinary),
		CreateSprayAndWaitRouter(4, SprayAndWaitBinary))

	m := CreateMessage("m1", a.Addr, 99, 100, 10, 0)
	require.True(t, a.Router.CreateNewMessage(nil, m))

	rc := a.Router.StartTransfer(nil, m, conn)
	require.Equal(t, RcvOK, rc)

	remaining, ok := m.IntProperty("sprayandwait.copies")
	require.True(t, ok)
	require.Equal(t, 2, remaining) // binary split of 4 keeps half

	require.NotNil(t, conn.Msg)
	outboundCopies, ok := conn.Msg.IntProperty("sprayandwait.copies")
	require.True(t, ok)
	require.Equal(t, 2, outboundCopies)
}

func TestSprayAndWaitRouterPanicsOnNonPositiveCopies(t *testing.T) {
	require.Panics(t, func() {
		CreateSprayAndWaitRouter(0, SprayAndWaitBinary)
	})
}

func TestProphetTransitiveUpdateUsesDirectPredictability(t *testing.T) {
	a := CreateHost(1, "a", "g", 100000, CreateCrowdMovement(100, 100, 1, 1), "seed-a")
	b := CreateHost(2, "b", "g", 100000, CreateCrowdMovement(100, 100, 1, 1), "seed-b")
	c := CreateHost(3, "c", "g", 100000, CreateCrowdMovement(100, 100, 1, 1), "seed-c")

	ra := CreateProphetRouter(ForwardGRTR, QueueFIFO)
	rb := CreateProphetRouter(ForwardGRTR, QueueFIFO)
	rc := CreateProphetRouter(ForwardGRTR, QueueFIFO)
	a.Router, b.Router, c.Router = ra, rb, rc
	ra.Init(RouterInit{Host: a})
	rb.Init(RouterInit{Host: b})
	rc.Init(RouterInit{Host: c})

	rb.onContact(c, 0) // b meets c directly: P(b,c) = pInit
	require.InDelta(t, prophetPInit, rb.predictabilityOf(c.Addr), 1e-9)

	ra.onContact(b, 0) // a meets b directly, then transitively updates P(a,c)
	pAB := ra.predictabilityOf(b.Addr)
	require.InDelta(t, prophetPInit, pAB, 1e-9)

	wantPAC := 0 + (1-0)*pAB*prophetPInit*ra.Beta
	require.Greater(t, wantPAC, 0.0)
	require.InDelta(t, wantPAC, ra.predictabilityOf(c.Addr), 1e-9)
}

func TestProphetMOPRAccumulatesReceiverPredictability(t *testing.T) {
	a, b, conn := twoConnectedHosts(t,
		CreateProphetRouter(ForwardGRTR, QueueMOPR),
		CreateProphetRouter(ForwardGRTR, QueueMOPR))
	pa := a.Router.(*ProphetRouter)
	pb := b.Router.(*ProphetRouter)

	pa.pred[99] = 0.1
	pb.pred[99] = 0.6

	m := CreateMessage("m1", a.Addr, 99, 100, 10, 0)
	require.True(t, a.Router.CreateNewMessage(nil, m))
	fv0, _ := m.FloatProperty(prophetFavorableProp)
	require.Equal(t, 0.0, fv0)

	rc := a.Router.StartTransfer(nil, m, conn)
	require.Equal(t, RcvOK, rc)

	a.Router.TransferDone(nil, conn, conn.Msg)

	own := pa.Buffer().Get(m.ID)
	fv, ok := own.FloatProperty(prophetFavorableProp)
	require.True(t, ok)
	require.InDelta(t, 0.6, fv, 1e-9)
}

func TestProphetPREPRejectsPeerBelowPreviousPredictability(t *testing.T) {
	a, b, conn := twoConnectedHosts(t,
		CreateProphetRouter(ForwardPREP, QueueFIFO),
		CreateProphetRouter(ForwardPREP, QueueFIFO))
	pa := a.Router.(*ProphetRouter)
	pb := b.Router.(*ProphetRouter)

	pa.pred[99] = 0.5
	relay := CreateMessage("relay1", 50, 99, 100, 10, 0)
	rc := a.Router.ReceiveMessage(nil, relay, 50)
	require.Equal(t, RcvOK, rc)
	require.InDelta(t, 0.5, pa.preP[99], 1e-9)

	// a's predictability toward 99 has since aged down, and b's beats
	// it, but not a's own recorded high-water mark at receipt time.
	pa.pred[99] = 0.1
	pb.pred[99] = 0.3

	m := CreateMessage("m2", 50, 99, 100, 10, 0)
	require.True(t, a.Router.CreateNewMessage(nil, m))
	rc = a.Router.StartTransfer(nil, m, conn)
	require.Equal(t, DeniedPolicy, rc)
}
