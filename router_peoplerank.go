package dtnsim

// router_peoplerank.go implements PeopleRank: a PageRank-style social
// rank computed over a static group-membership graph, where a message
// is forwarded to any peer with strictly higher rank (or the
// destination itself). Grounded on PeopleRankRouter.java.

import "github.com/iti/evt/evtm"

const peopleRankDamping = 0.8 // damping factor d in PeR_i = (1-d) + d * sum_j(PeR_j / degree(j))

// PeopleRankRouter routes by comparing a damped social rank computed
// once at Init from the World-scoped host-group table (design note 9:
// "Global static maps" replaced by a table built once after host
// construction and handed to every router at Init).
type PeopleRankRouter struct {
	RouterBase

	rank float64
}

// CreatePeopleRankRouter is a constructor.
func CreatePeopleRankRouter() *PeopleRankRouter {
	return &PeopleRankRouter{}
}

func (r *PeopleRankRouter) Init(ri RouterInit) {
	r.InitRouterBase(ri.Host, ri.Listeners)
	r.rank = computePeopleRank(ri.Host.Addr, ri.AllHosts, ri.HostGroup)
}

// socialNeighbors returns every other host sharing this host's group,
// the "social neighbor" relation PeopleRankRouter.java derives from
// shared community/group membership.
func socialNeighbors(addr int, allHosts []*Host, hostGroup map[int]string) []int {
	group := hostGroup[addr]
	var out []int
	for _, h := range allHosts {
		if h.Addr != addr && hostGroup[h.Addr] == group {
			out = append(out, h.Addr)
		}
	}
	return out
}

// computePeopleRank runs the damped rank recursion
// PeR_i = (1-d) + d * sum_j(PeR_j / degree(j)) to a fixed number of
// iterations over the social-neighbor graph, per PeopleRankRouter.java.
func computePeopleRank(addr int, allHosts []*Host, hostGroup map[int]string) float64 {
	degree := make(map[int]int, len(allHosts))
	neighbors := make(map[int][]int, len(allHosts))
	for _, h := range allHosts {
		n := socialNeighbors(h.Addr, allHosts, hostGroup)
		neighbors[h.Addr] = n
		degree[h.Addr] = len(n)
	}
	rank := make(map[int]float64, len(allHosts))
	for _, h := range allHosts {
		rank[h.Addr] = 1.0
	}
	const iterations = 20
	for iter := 0; iter < iterations; iter++ {
		next := make(map[int]float64, len(allHosts))
		for _, h := range allHosts {
			sum := 0.0
			for _, n := range neighbors[h.Addr] {
				if degree[n] > 0 {
					sum += rank[n] / float64(degree[n])
				}
			}
			next[h.Addr] = (1 - peopleRankDamping) + peopleRankDamping*sum
		}
		rank = next
	}
	return rank[addr]
}

// PeopleRankPeerView is the optional peer-view interface exposing a
// computed rank (design note 9a).
type PeopleRankPeerView interface {
	Rank() float64
}

func (r *PeopleRankRouter) Rank() float64 { return r.rank }

func (r *PeopleRankRouter) ChangedConnection(conn *Connection, up bool) {}

func (r *PeopleRankRouter) shouldForward(m *Message, peer *Host) bool {
	if m.To == peer.Addr {
		return true
	}
	peerView, ok := peer.Router.(PeopleRankPeerView)
	if !ok {
		return false
	}
	return peerView.Rank() > r.rank
}

func (r *PeopleRankRouter) StartTransfer(evtMgr *evtm.EventManager, m *Message, conn *Connection) ResultCode {
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

func (r *PeopleRankRouter) TransferDone(evtMgr *evtm.EventManager, conn *Connection, m *Message) {
	r.MarkSent(m.ID)
	if m.To != r.host.Addr {
		r.recordRelay()
	}
}

func (r *PeopleRankRouter) Update(evtMgr *evtm.EventManager) {
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
