package dtnsim

// router_simbet.go implements SimBet: forwarding decisions weigh
// Jaccard similarity between a host's and its destination's contact
// sets against betweenness centrality (how often a host sits between
// other pairs of hosts); betweenness is decayed on every new contact,
// similarity is not. Grounded on SimBetRouter.java.

import "github.com/iti/evt/evtm"

const simBetDecay = 0.99 // per-contact decay applied to betweenness, SimBetRouter.java default

// SimBetRouter routes on a weighted combination of similarity to the
// destination and betweenness centrality.
type SimBetRouter struct {
	RouterBase

	contactSet   map[int]bool
	betweenness  float64

	SimilarityWeight  float64
	BetweennessWeight float64
}

// CreateSimBetRouter is a constructor.
func CreateSimBetRouter() *SimBetRouter {
	return &SimBetRouter{
		contactSet:        make(map[int]bool),
		SimilarityWeight:  0.5,
		BetweennessWeight: 0.5,
	}
}

func (r *SimBetRouter) Init(ri RouterInit) {
	r.InitRouterBase(ri.Host, ri.Listeners)
}

// SimBetPeerView is the optional peer-view interface exposing a
// router's contact set and betweenness (design note 9a).
type SimBetPeerView interface {
	ContactSet() map[int]bool
	Betweenness() float64
}

func (r *SimBetRouter) ContactSet() map[int]bool { return r.contactSet }
func (r *SimBetRouter) Betweenness() float64     { return r.betweenness }

func (r *SimBetRouter) ChangedConnection(conn *Connection, up bool) {
	if !up {
		return
	}
	peer := conn.OtherHost(r.host)
	if peer == nil {
		return
	}
	r.contactSet[peer.Addr] = true
	r.betweenness *= simBetDecay

	peerView, ok := peer.Router.(SimBetPeerView)
	if !ok {
		return
	}
	// this host sits "between" every pair (peer, x) where x is in
	// peer's contact set but not in this host's own, per
	// SimBetRouter.java's betweenness-as-count-of-bridged-pairs.
	for other := range peerView.ContactSet() {
		if other != r.host.Addr && !r.contactSet[other] {
			r.betweenness++
		}
	}
}

// jaccard computes |A n B| / |A u B| between two contact sets.
func jaccard(a, b map[int]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	seen := make(map[int]bool, len(a)+len(b))
	for p := range a {
		seen[p] = true
		if b[p] {
			inter++
		}
	}
	for p := range b {
		seen[p] = true
	}
	if len(seen) == 0 {
		return 0
	}
	return float64(inter) / float64(len(seen))
}

func (r *SimBetRouter) shouldForward(m *Message, peer *Host) bool {
	if m.To == peer.Addr {
		return true
	}
	peerView, ok := peer.Router.(SimBetPeerView)
	if !ok {
		return false
	}
	destContacts, ok := m.Property(simBetDestContactsProp)
	var destSet map[int]bool
	if ok {
		destSet, _ = destContacts.(map[int]bool)
	}
	if destSet == nil {
		destSet = map[int]bool{m.To: true}
	}
	mySim := jaccard(r.contactSet, destSet)
	peerSim := jaccard(peerView.ContactSet(), destSet)
	myScore := r.SimilarityWeight*mySim + r.BetweennessWeight*r.betweenness
	peerScore := r.SimilarityWeight*peerSim + r.BetweennessWeight*peerView.Betweenness()
	return peerScore > myScore
}

const simBetDestContactsProp = "simbet.destcontacts"

func (r *SimBetRouter) StartTransfer(evtMgr *evtm.EventManager, m *Message, conn *Connection) ResultCode {
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

func (r *SimBetRouter) TransferDone(evtMgr *evtm.EventManager, conn *Connection, m *Message) {
	r.MarkSent(m.ID)
	if m.To != r.host.Addr {
		r.recordRelay()
	}
}

func (r *SimBetRouter) Update(evtMgr *evtm.EventManager) {
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
