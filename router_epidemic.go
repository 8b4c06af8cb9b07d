package dtnsim

// router_epidemic.go implements flooding replication: every message not
// already held by a peer is offered to it (§4.6 Epidemic), grounded on
// EpidemicRouter.java, whose entire forwarding decision is "does the
// peer already have it."

import "github.com/iti/evt/evtm"

// EpidemicRouter floods messages to every peer that doesn't already
// have them.
type EpidemicRouter struct {
	RouterBase
}

// CreateEpidemicRouter is a constructor.
func CreateEpidemicRouter() *EpidemicRouter {
	return &EpidemicRouter{}
}

func (r *EpidemicRouter) Init(ri RouterInit) {
	r.InitRouterBase(ri.Host, ri.Listeners)
}

func (r *EpidemicRouter) ChangedConnection(conn *Connection, up bool) {}

func (r *EpidemicRouter) StartTransfer(evtMgr *evtm.EventManager, m *Message, conn *Connection) ResultCode {
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
	outbound := m.Replicate(peer.Addr, r.host.world.Clock.Seconds())
	r.MarkSending(outbound.ID)
	conn.StartTransfer(outbound)
	return RcvOK
}

func (r *EpidemicRouter) TransferDone(evtMgr *evtm.EventManager, conn *Connection, m *Message) {
	r.MarkSent(m.ID)
	if m.To != r.host.Addr {
		r.recordRelay()
	}
}

// Update offers every buffered message to every idle, up connection
// whose peer doesn't have it yet (§4.3, §4.6).
func (r *EpidemicRouter) Update(evtMgr *evtm.EventManager) {
	for _, intrfc := range r.host.Interfaces {
		for _, conn := range intrfc.Connections() {
			if !conn.IsUp() || !conn.IsIdle() {
				continue
			}
			peer := conn.OtherHost(r.host)
			if peer == nil {
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
