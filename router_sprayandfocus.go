package dtnsim

// router_sprayandfocus.go implements Spray-and-Focus: identical spray
// phase to Spray-and-Wait (halve copies on each hop), but once a holder
// is down to a single copy it enters the focus phase, forwarding to
// whichever peer encountered the destination more recently, and
// deleting its own copy once it does so. Grounded on
// SprayAndFocusRouter.java.

import "github.com/iti/evt/evtm"

const (
	sprayAndFocusCopiesProp = "sprayandfocus.copies"
)

// SprayAndFocusRouter implements the spray/focus two-phase strategy.
type SprayAndFocusRouter struct {
	RouterBase

	InitialCopies int

	// lastEncounter records, for every host this router's host has ever
	// been in contact with, the simulated time of the most recent
	// contact -- the "timer" SprayAndFocusRouter.java keeps per host to
	// drive focus-phase forwarding decisions.
	lastEncounter map[int]float64
}

// CreateSprayAndFocusRouter is a constructor.
func CreateSprayAndFocusRouter(initialCopies int) *SprayAndFocusRouter {
	if initialCopies < 1 {
		panic("spray-and-focus initial copy count must be >= 1")
	}
	return &SprayAndFocusRouter{
		InitialCopies: initialCopies,
		lastEncounter: make(map[int]float64),
	}
}

func (r *SprayAndFocusRouter) Init(ri RouterInit) {
	r.InitRouterBase(ri.Host, ri.Listeners)
}

// SprayAndFocusPeerView is the optional peer-view interface exposing
// encounter-time bookkeeping (design note 9a).
type SprayAndFocusPeerView interface {
	LastEncounterWith(host int) (float64, bool)
}

func (r *SprayAndFocusRouter) LastEncounterWith(host int) (float64, bool) {
	t, ok := r.lastEncounter[host]
	return t, ok
}

func (r *SprayAndFocusRouter) ChangedConnection(conn *Connection, up bool) {
	if !up {
		return
	}
	peer := conn.OtherHost(r.host)
	if peer != nil {
		r.lastEncounter[peer.Addr] = r.host.world.Clock.Seconds()
	}
}

func (r *SprayAndFocusRouter) copiesOf(m *Message) int {
	if n, ok := m.IntProperty(sprayAndFocusCopiesProp); ok {
		return n
	}
	return r.InitialCopies
}

func (r *SprayAndFocusRouter) CreateNewMessage(evtMgr *evtm.EventManager, m *Message) bool {
	m.SetProperty(sprayAndFocusCopiesProp, r.InitialCopies)
	return r.RouterBase.CreateNewMessage(evtMgr, m)
}

func (r *SprayAndFocusRouter) StartTransfer(evtMgr *evtm.EventManager, m *Message, conn *Connection) ResultCode {
	if !conn.IsIdle() {
		return TryLaterBusy
	}
	peer := conn.OtherHost(r.host)
	if peer == nil {
		return DeniedUnreachable
	}
	if peer.Router.Buffer().Has(m.ID) {
		return DeniedOld
	}
	if m.To == peer.Addr {
		outbound := m.Replicate(peer.Addr, r.host.world.Clock.Seconds())
		outbound.SetProperty(sprayAndFocusCopiesProp, 0)
		r.MarkSending(outbound.ID)
		conn.StartTransfer(outbound)
		return RcvOK
	}

	copies := r.copiesOf(m)
	if copies > 1 {
		give := copies / 2
		keep := copies - give
		outbound := m.Replicate(peer.Addr, r.host.world.Clock.Seconds())
		outbound.SetProperty(sprayAndFocusCopiesProp, give)
		m.SetProperty(sprayAndFocusCopiesProp, keep)
		r.MarkSending(outbound.ID)
		conn.StartTransfer(outbound)
		return RcvOK
	}

	// focus phase: single copy, forward only if peer saw the
	// destination more recently than we did.
	peerView, ok := peer.Router.(SprayAndFocusPeerView)
	if !ok {
		return DeniedPolicy // peer-view incompatible: silently skip (§7)
	}
	myTime, myOK := r.LastEncounterWith(m.To)
	peerTime, peerOK := peerView.LastEncounterWith(m.To)
	if !peerOK || (myOK && peerTime <= myTime) {
		return DeniedPolicy
	}
	outbound := m.Replicate(peer.Addr, r.host.world.Clock.Seconds())
	outbound.SetProperty(sprayAndFocusCopiesProp, 1)
	r.MarkSending(outbound.ID)
	conn.StartTransfer(outbound)
	return RcvOK
}

func (r *SprayAndFocusRouter) TransferDone(evtMgr *evtm.EventManager, conn *Connection, m *Message) {
	r.MarkSent(m.ID)
	if m.To != r.host.Addr {
		r.recordRelay()
	}
	// focus-phase forward: this holder's single copy just moved on, so
	// its own copy is deleted (SprayAndFocusRouter.java: "delete local
	// copy after a focus-phase forward").
	if local := r.buf.Get(m.ID); local != nil && r.copiesOf(local) <= 1 {
		r.buf.Remove(m.ID, nil)
	}
}

func (r *SprayAndFocusRouter) Update(evtMgr *evtm.EventManager) {
	for _, intrfc := range r.host.Interfaces {
		for _, conn := range intrfc.Connections() {
			if !conn.IsUp() || !conn.IsIdle() {
				continue
			}
			for _, m := range r.buf.Messages() {
				if r.StartTransfer(evtMgr, m, conn) == RcvOK {
					break
				}
			}
		}
	}
}
