package dtnsim

// router_bubblerap.go implements Bubble Rap: messages "bubble up"
// through high-global-centrality hosts until they reach a host in the
// destination's community, then "bubble up" again through
// high-local-centrality hosts within that community. Grounded on
// BubbleRapRouter.java.

import "github.com/iti/evt/evtm"

// BubbleRapRouter routes by community membership plus global/local
// centrality comparison.
type BubbleRapRouter struct {
	RouterBase

	community  CommunityDetector
	global     *Centrality
	local      *Centrality
}

// CreateBubbleRapRouter is a constructor. community, global and local
// are supplied by the caller so scenario configuration controls which
// community scheme and window type are in effect.
func CreateBubbleRapRouter(community CommunityDetector, global, local *Centrality) *BubbleRapRouter {
	return &BubbleRapRouter{community: community, global: global, local: local}
}

func (r *BubbleRapRouter) Init(ri RouterInit) {
	r.InitRouterBase(ri.Host, ri.Listeners)
}

// BubbleRapPeerView is the optional peer-view interface other
// BubbleRapRouters expose so a host can read a peer's community
// membership and centrality without violating per-host ownership
// (design note 9a).
type BubbleRapPeerView interface {
	InCommunity(peer int) bool
	GlobalCentrality() float64
	LocalCentrality() float64
}

func (r *BubbleRapRouter) InCommunity(peer int) bool      { return r.community.InCommunity(peer) }
func (r *BubbleRapRouter) GlobalCentrality() float64      { return r.global.Value() }
func (r *BubbleRapRouter) LocalCentrality() float64       { return r.local.Value() }

func (r *BubbleRapRouter) ChangedConnection(conn *Connection, up bool) {
	if !up {
		return
	}
	peer := conn.OtherHost(r.host)
	if peer == nil {
		return
	}
	now := r.host.world.Clock.Seconds()
	r.global.NoteContact(peer.Addr, now)
	r.community.NoteContact(peer.Addr, now)
	if r.community.InCommunity(peer.Addr) {
		r.local.NoteContact(peer.Addr, now)
	}
}

// shouldForward implements the two-phase bubble rule: outside the
// destination's community, forward to any peer with higher global
// centrality; once in the destination's community, forward to any peer
// with higher local centrality. Direct delivery always wins.
func (r *BubbleRapRouter) shouldForward(m *Message, peer *Host) bool {
	if m.To == peer.Addr {
		return true
	}
	peerView, ok := peer.Router.(BubbleRapPeerView)
	if !ok {
		return false // peer-view incompatible: silently skip (§7)
	}
	destInMyCommunity := r.community.InCommunity(m.To)
	destInPeerCommunity := peerView.InCommunity(m.To)

	if destInPeerCommunity && !destInMyCommunity {
		return true
	}
	if destInMyCommunity {
		if !destInPeerCommunity {
			return false
		}
		return peerView.LocalCentrality() > r.LocalCentrality()
	}
	return peerView.GlobalCentrality() > r.GlobalCentrality()
}

func (r *BubbleRapRouter) StartTransfer(evtMgr *evtm.EventManager, m *Message, conn *Connection) ResultCode {
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
	if !r.shouldForward(m, peer) {
		return DeniedPolicy
	}
	outbound := m.Replicate(peer.Addr, r.host.world.Clock.Seconds())
	r.MarkSending(outbound.ID)
	conn.StartTransfer(outbound)
	return RcvOK
}

func (r *BubbleRapRouter) TransferDone(evtMgr *evtm.EventManager, conn *Connection, m *Message) {
	r.MarkSent(m.ID)
	if m.To != r.host.Addr {
		r.recordRelay()
	}
}

func (r *BubbleRapRouter) Update(evtMgr *evtm.EventManager) {
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
