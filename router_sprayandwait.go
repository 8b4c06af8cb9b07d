package dtnsim

// router_sprayandwait.go implements Spray-and-Wait: each message starts
// with L copies; while a holder has more than one copy it sprays half
// to any peer lacking the message (binary mode) or one at a time
// (standard mode); once down to a single copy it only forwards directly
// to the destination. Grounded on SprayAndWaitRouter.java.

import "github.com/iti/evt/evtm"

const sprayAndWaitCopiesProp = "sprayandwait.copies"

// SprayAndWaitMode selects how copies are split on a spray.
type SprayAndWaitMode int

const (
	// SprayAndWaitBinary halves the copy count on every spray
	// (floor(n/2) to the peer, ceil(n/2) kept), the default mode.
	SprayAndWaitBinary SprayAndWaitMode = iota
	// SprayAndWaitStandard gives the peer exactly one copy per spray.
	SprayAndWaitStandard
)

// SprayAndWaitRouter is a RouterBase strategy implementing the spray
// (n>1 copies) and wait (n==1, direct-delivery-only) phases.
type SprayAndWaitRouter struct {
	RouterBase
	InitialCopies int
	Mode          SprayAndWaitMode
}

// CreateSprayAndWaitRouter is a constructor. initialCopies must be >=1.
func CreateSprayAndWaitRouter(initialCopies int, mode SprayAndWaitMode) *SprayAndWaitRouter {
	if initialCopies < 1 {
		panic("spray-and-wait initial copy count must be >= 1")
	}
	return &SprayAndWaitRouter{InitialCopies: initialCopies, Mode: mode}
}

func (r *SprayAndWaitRouter) Init(ri RouterInit) {
	r.InitRouterBase(ri.Host, ri.Listeners)
}

func (r *SprayAndWaitRouter) ChangedConnection(conn *Connection, up bool) {}

func (r *SprayAndWaitRouter) copiesOf(m *Message) int {
	if n, ok := m.IntProperty(sprayAndWaitCopiesProp); ok {
		return n
	}
	return r.InitialCopies
}

// CreateNewMessage stamps a freshly originated message with its initial
// copy budget before admitting it to the buffer.
func (r *SprayAndWaitRouter) CreateNewMessage(evtMgr *evtm.EventManager, m *Message) bool {
	m.SetProperty(sprayAndWaitCopiesProp, r.InitialCopies)
	return r.RouterBase.CreateNewMessage(evtMgr, m)
}

func (r *SprayAndWaitRouter) StartTransfer(evtMgr *evtm.EventManager, m *Message, conn *Connection) ResultCode {
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
	copies := r.copiesOf(m)
	if copies <= 1 && m.To != peer.Addr {
		// wait phase: a single remaining copy only moves on direct
		// delivery to the destination.
		return DeniedPolicy
	}

	var keep, give int
	if copies <= 1 {
		keep, give = 0, 1
	} else if r.Mode == SprayAndWaitStandard {
		keep, give = copies-1, 1
	} else {
		give = copies / 2
		keep = copies - give
	}

	outbound := m.Replicate(peer.Addr, r.host.world.Clock.Seconds())
	outbound.SetProperty(sprayAndWaitCopiesProp, give)
	m.SetProperty(sprayAndWaitCopiesProp, keep)

	r.MarkSending(outbound.ID)
	conn.StartTransfer(outbound)
	return RcvOK
}

func (r *SprayAndWaitRouter) TransferDone(evtMgr *evtm.EventManager, conn *Connection, m *Message) {
	r.MarkSent(m.ID)
	if m.To != r.host.Addr {
		r.recordRelay()
	}
	if r.copiesOf(r.buf.Get(m.ID)) == 0 {
		r.buf.Remove(m.ID, nil)
	}
}

// Update offers messages to idle connections, preferring direct
// delivery to the destination first (§4.3).
func (r *SprayAndWaitRouter) Update(evtMgr *evtm.EventManager) {
	for _, intrfc := range r.host.Interfaces {
		for _, conn := range intrfc.Connections() {
			if !conn.IsUp() || !conn.IsIdle() {
				continue
			}
			r.tryConnection(evtMgr, conn)
		}
	}
}

func (r *SprayAndWaitRouter) tryConnection(evtMgr *evtm.EventManager, conn *Connection) {
	peer := conn.OtherHost(r.host)
	if peer == nil {
		return
	}
	for _, m := range r.buf.Messages() {
		if m.To == peer.Addr {
			if r.StartTransfer(evtMgr, m, conn) == RcvOK {
				return
			}
		}
	}
	for _, m := range r.buf.Messages() {
		if m.To == peer.Addr {
			continue
		}
		if r.StartTransfer(evtMgr, m, conn) == RcvOK {
			return
		}
	}
}
