package dtnsim

// router_prophet.go implements the PRoPHET family: delivery
// predictabilities that age over time and propagate transitively on
// contact, four forwarding strategies (GRTR, GRTR_SORT, GRTR_MAX,
// COIN), and five queueing (drop-victim) policies (FIFO, MOFO, MOPR,
// SHLI, LEPR). Grounded on ProphetV3Router.java's constants and update
// rules; §4.6 Supplemented features adds the PREP and Random forwarding
// variants described there but dropped from the distilled spec.

import (
	"math"
	"sort"

	"github.com/iti/rngstream"

	"github.com/iti/evt/evtm"
)

const (
	prophetPInit       = 0.75
	prophetDefaultBeta = 0.25
	prophetGamma       = 0.98
	prophetSecondsInTimeUnit = 30.0 // gamma is defined per this many seconds, per ProphetV3Router.java
)

// ForwardStrategy selects which PRoPHET forwarding rule decides whether
// to send a message across a given connection.
type ForwardStrategy int

const (
	ForwardGRTR ForwardStrategy = iota
	ForwardGRTRSort
	ForwardGRTRMax
	ForwardCOIN
	ForwardPREP
	ForwardRandom
)

// QueuePolicy selects which drop-victim rule the buffer uses when space
// is needed.
type QueuePolicy int

const (
	QueueFIFO QueuePolicy = iota
	QueueMOFO
	QueueMOPR
	QueueSHLI
	QueueLEPR
)

const (
	prophetForwardCountProp = "prophet.fwdcount"
	prophetFavorableProp    = "prophet.mopr"
)

// ProphetRouter implements the PRoPHET family of probabilistic routing
// strategies.
type ProphetRouter struct {
	RouterBase

	Forward ForwardStrategy
	Queue   QueuePolicy
	Beta    float64

	pred         map[int]float64 // peer address -> delivery predictability
	lastAgedTick float64         // simulated seconds predictabilities were last aged
	preP         map[int]float64 // destination -> P_self(dest) recorded on the latest receipt of a message for dest, for ForwardPREP

	coinStream *rngstream.RngStream
}

// CreateProphetRouter is a constructor.
func CreateProphetRouter(fwd ForwardStrategy, queue QueuePolicy) *ProphetRouter {
	return &ProphetRouter{
		Forward: fwd,
		Queue:   queue,
		Beta:    prophetDefaultBeta,
		pred:    make(map[int]float64),
		preP:    make(map[int]float64),
	}
}

func (r *ProphetRouter) Init(ri RouterInit) {
	switch r.Queue {
	case QueueMOFO:
		r.DropPolicy = r.mofoDropPolicy
	case QueueMOPR:
		r.DropPolicy = r.moprDropPolicy
	case QueueSHLI:
		r.DropPolicy = r.shliDropPolicy
	case QueueLEPR:
		r.DropPolicy = r.leprDropPolicy
	default:
		r.DropPolicy = FIFODropPolicy
	}
	r.InitRouterBase(ri.Host, ri.Listeners)
	if r.Forward == ForwardCOIN || r.Forward == ForwardRandom {
		r.coinStream = ri.NamedStream("prophet.coin")
	}
}

// predictabilityOf returns this host's delivery predictability for
// peer, defaulting to 0 if there has been no prior contact.
func (r *ProphetRouter) predictabilityOf(peer int) float64 {
	return r.pred[peer]
}

// ProphetPredictability is the optional peer-view interface other
// strategies type-assert against to read a host's PRoPHET state,
// following design note 9a's cross-host peer-view pattern. Peers that
// don't implement it (running a different strategy) are silently
// skipped.
type ProphetPredictability interface {
	PredictabilityFor(dest int) float64
}

func (r *ProphetRouter) PredictabilityFor(dest int) float64 {
	return r.predictabilityOf(dest)
}

// age applies exponential decay to every predictability entry for the
// elapsed time since the last aging pass, lazily, per ProphetV3Router.java's
// lastAgeUpdate/ageDeliveryPreds. Only onContact calls it; queries such
// as predictabilityOf and PredictabilityFor read the stored values
// without aging them first.
func (r *ProphetRouter) age(now float64) {
	elapsed := now - r.lastAgedTick
	if elapsed <= 0 {
		return
	}
	units := elapsed / prophetSecondsInTimeUnit
	mult := math.Pow(prophetGamma, units)
	for peer, p := range r.pred {
		r.pred[peer] = p * mult
	}
	r.lastAgedTick = now
}

// onContact updates r's predictability for peer on direct contact, and
// transitively updates predictabilities for peer's other known contacts
// via peer's own PRoPHET state if it exposes one (§9a peer-view).
func (r *ProphetRouter) onContact(peer *Host, now float64) {
	r.age(now)
	old := r.pred[peer.Addr]
	r.pred[peer.Addr] = old + (1-old)*prophetPInit

	peerRouter, ok := peer.Router.(*ProphetRouter)
	if !ok {
		return // peer-view incompatible: silently skip (§7)
	}
	peerRouter.age(now)
	for dest, peerP := range peerRouter.pred {
		if dest == r.host.Addr {
			continue
		}
		own := r.pred[dest]
		viaPeer := r.pred[peer.Addr]
		r.pred[dest] = own + (1-own)*viaPeer*peerP*r.Beta
	}
}

func (r *ProphetRouter) ChangedConnection(conn *Connection, up bool) {
	if !up {
		return
	}
	peer := conn.OtherHost(r.host)
	if peer != nil {
		r.onContact(peer, r.host.world.Clock.Seconds())
	}
}

func (r *ProphetRouter) CreateNewMessage(evtMgr *evtm.EventManager, m *Message) bool {
	m.SetProperty(prophetForwardCountProp, 0)
	m.SetProperty(prophetFavorableProp, 0.0)
	return r.RouterBase.CreateNewMessage(evtMgr, m)
}

// ReceiveMessage records this host's current predictability for m's
// destination as preP[dest] (ForwardPREP's reference point), per
// ProphetPrepRouter.messageTransferred, before admitting the message
// via the base semantics.
func (r *ProphetRouter) ReceiveMessage(evtMgr *evtm.EventManager, m *Message, from int) ResultCode {
	if r.Forward == ForwardPREP && m.To != r.host.Addr {
		r.preP[m.To] = r.predictabilityOf(m.To)
	}
	return r.RouterBase.ReceiveMessage(evtMgr, m, from)
}

// shouldForward applies the configured ForwardStrategy to decide
// whether m should move from r's host to peer across conn.
func (r *ProphetRouter) shouldForward(m *Message, peer *Host) bool {
	if m.To == peer.Addr {
		return true
	}
	peerRouter, ok := peer.Router.(*ProphetRouter)
	if !ok {
		return false // peer-view incompatible: no basis to forward (§7)
	}
	switch r.Forward {
	case ForwardGRTR, ForwardGRTRSort:
		return peerRouter.predictabilityOf(m.To) > r.predictabilityOf(m.To)
	case ForwardGRTRMax:
		// Update has already skipped any peer that is not the highest
		// (or tied highest) among this tick's up connections for at
		// least one buffered destination (isBestPeerFor); here each
		// message only needs the peer to beat our own predictability.
		return peerRouter.predictabilityOf(m.To) > r.predictabilityOf(m.To)
	case ForwardPREP:
		peerP := peerRouter.predictabilityOf(m.To)
		if peerP <= r.predictabilityOf(m.To) {
			return false
		}
		if prevP, ok := r.preP[m.To]; ok && peerP < prevP {
			return false
		}
		return true
	case ForwardCOIN:
		return r.coinStream.RandU01() < 0.5
	case ForwardRandom:
		return r.coinStream.RandU01() < 0.5
	default:
		return false
	}
}

func (r *ProphetRouter) StartTransfer(evtMgr *evtm.EventManager, m *Message, conn *Connection) ResultCode {
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
	if n, ok := m.IntProperty(prophetForwardCountProp); ok {
		m.SetProperty(prophetForwardCountProp, n+1)
	}
	r.MarkSending(outbound.ID)
	conn.StartTransfer(outbound)
	return RcvOK
}

func (r *ProphetRouter) TransferDone(evtMgr *evtm.EventManager, conn *Connection, m *Message) {
	r.MarkSent(m.ID)
	if m.To != r.host.Addr {
		r.recordRelay()
	}
	// MOPR (§4.6): add the receiving peer's predictability for m's
	// destination to this host's own retained copy's favorable-points
	// total, so moprDropPolicy can distinguish well-forwarded copies.
	if peer := conn.OtherHost(r.host); peer != nil {
		if peerRouter, ok := peer.Router.(*ProphetRouter); ok {
			if own := r.buf.Get(m.ID); own != nil {
				fv, _ := own.FloatProperty(prophetFavorableProp)
				own.SetProperty(prophetFavorableProp, fv+peerRouter.predictabilityOf(m.To))
			}
		}
	}
}

// Update sprays candidates across idle connections in the order the
// configured strategy prefers (§4.6: GRTR_SORT orders by descending
// predictability delta).
func (r *ProphetRouter) Update(evtMgr *evtm.EventManager) {
	upConns := r.upConnections()
	for _, conn := range upConns {
		if !conn.IsIdle() {
			continue
		}
		peer := conn.OtherHost(r.host)
		if peer == nil {
			continue
		}
		candidates := r.buf.Messages()
		if r.Forward == ForwardGRTRSort {
			if peerRouter, ok := peer.Router.(*ProphetRouter); ok {
				sort.Slice(candidates, func(i, j int) bool {
					di := peerRouter.predictabilityOf(candidates[i].To) - r.predictabilityOf(candidates[i].To)
					dj := peerRouter.predictabilityOf(candidates[j].To) - r.predictabilityOf(candidates[j].To)
					return di > dj
				})
			}
		}
		if r.Forward == ForwardGRTRMax && !r.isBestPeerFor(peer, upConns) {
			continue
		}
		for _, m := range candidates {
			if r.StartTransfer(evtMgr, m, conn) == RcvOK {
				break
			}
		}
	}
}

// upConnections gathers every currently-up connection across all of
// this host's interfaces.
func (r *ProphetRouter) upConnections() []*Connection {
	var out []*Connection
	for _, intrfc := range r.host.Interfaces {
		for _, conn := range intrfc.Connections() {
			if conn.IsUp() {
				out = append(out, conn)
			}
		}
	}
	return out
}

// isBestPeerFor reports whether peer's predictability for at least one
// buffered destination is the highest among every peer reachable via
// upConns this tick, the GRTR_MAX forwarding rule's "best relay" test.
func (r *ProphetRouter) isBestPeerFor(peer *Host, upConns []*Connection) bool {
	peerRouter, ok := peer.Router.(*ProphetRouter)
	if !ok {
		return false
	}
	for _, m := range r.buf.Messages() {
		best := peerRouter.predictabilityOf(m.To)
		isBest := true
		for _, conn := range upConns {
			other := conn.OtherHost(r.host)
			if other == nil || other == peer {
				continue
			}
			if otherRouter, ok := other.Router.(*ProphetRouter); ok {
				if otherRouter.predictabilityOf(m.To) > best {
					isBest = false
					break
				}
			}
		}
		if isBest {
			return true
		}
	}
	return false
}

// ---- queueing (drop victim) policies, §4.6 ----

func (r *ProphetRouter) mofoDropPolicy(candidates []*Message) *Message {
	var victim *Message
	var most int = -1
	for _, m := range candidates {
		n, _ := m.IntProperty(prophetForwardCountProp)
		if n > most {
			most, victim = n, m
		}
	}
	return victim
}

func (r *ProphetRouter) moprDropPolicy(candidates []*Message) *Message {
	var victim *Message
	var lowest = 2.0
	for _, m := range candidates {
		fv, ok := m.FloatProperty(prophetFavorableProp)
		if !ok {
			fv = 1.0
		}
		if fv < lowest {
			lowest, victim = fv, m
		}
	}
	if victim == nil {
		return FIFODropPolicy(candidates)
	}
	return victim
}

func (r *ProphetRouter) shliDropPolicy(candidates []*Message) *Message {
	var victim *Message
	now := r.host.world.Clock.Seconds()
	shortest := 1e18
	for _, m := range candidates {
		remaining := m.RemainingTTL(now)
		if remaining < shortest {
			shortest, victim = remaining, m
		}
	}
	return victim
}

func (r *ProphetRouter) leprDropPolicy(candidates []*Message) *Message {
	var victim *Message
	lowest := 2.0
	for _, m := range candidates {
		p := r.predictabilityOf(m.To)
		if p < lowest {
			lowest, victim = p, m
		}
	}
	return victim
}
