package dtnsim

// router.go defines the Router abstraction shared by every routing
// strategy (§4.3, §9 design notes). Strategies are tagged variants
// implementing this interface; RouterBase centralizes the FIFO queue,
// drop policy, delivery bookkeeping, and TTL expiry that every strategy
// shares, favoring small structs with explicit methods over deep
// inheritance.

import (
	"fmt"

	"github.com/iti/evt/evtm"
	"github.com/iti/rngstream"
	log "github.com/sirupsen/logrus"
)

// ResultCode is returned by receiveMessage/startTransfer attempts (§4.2).
type ResultCode int

const (
	RcvOK ResultCode = iota
	DeniedOld
	DeniedPolicy
	TryLaterBusy
	DeniedNoSpace
	DeniedUnreachable
	DeniedTTLExpired
)

func (r ResultCode) String() string {
	switch r {
	case RcvOK:
		return "RCV_OK"
	case DeniedOld:
		return "DENIED_OLD"
	case DeniedPolicy:
		return "DENIED_POLICY"
	case TryLaterBusy:
		return "TRY_LATER_BUSY"
	case DeniedNoSpace:
		return "DENIED_NO_SPACE"
	case DeniedUnreachable:
		return "DENIED_UNREACHABLE"
	case DeniedTTLExpired:
		return "DENIED_TTL_EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// RouterInit bundles the World-scoped, read-only tables a router needs
// at construction time. Per design note 9 ("Global static maps"), this
// replaces process-wide static maps (PeopleRank's host->group table)
// with a table built once by the World after host construction and
// handed to every router at init, rather than a package-level global.
type RouterInit struct {
	Host        *Host
	AllHosts    []*Host                                 // every host in the world, stable order
	HostGroup   map[int]string                          // host address -> group prefix
	NamedStream func(name string) *rngstream.RngStream   // named sub-stream factory (§5)
	TraceMgr    *TraceManager
	Listeners   []DeliveryListener // registered with the World via AddListener
}

// Router is the behavior every routing strategy implements.
type Router interface {
	// Init completes construction with World-scoped context. Called once
	// per host after every host in the World exists.
	Init(ri RouterInit)

	// Host returns the host this router instance belongs to.
	Host() *Host

	// Update is invoked once per tick for this router's host, after
	// connection state changes for the tick are visible (§4.1 step 4).
	Update(evtMgr *evtm.EventManager)

	// ChangedConnection notifies the router that a Connection involving
	// its host just came up or went down.
	ChangedConnection(conn *Connection, up bool)

	// StartTransfer attempts to begin sending m over conn to whichever
	// endpoint is not this router's host. Returns a ResultCode.
	StartTransfer(evtMgr *evtm.EventManager, m *Message, conn *Connection) ResultCode

	// ReceiveMessage is called on the receiving side when a transfer
	// completes. from is the sending host's address.
	ReceiveMessage(evtMgr *evtm.EventManager, m *Message, from int) ResultCode

	// TransferDone is called on the sending side when a transfer it
	// started completes successfully.
	TransferDone(evtMgr *evtm.EventManager, conn *Connection, m *Message)

	// CreateNewMessage injects a freshly created message into this
	// router's own buffer (§4.3 createNewMessage).
	CreateNewMessage(evtMgr *evtm.EventManager, m *Message) bool

	// NextMessageToRemove chooses a drop-policy victim from this
	// router's buffer, optionally excluding the message currently being
	// sent (§4.3 drop policy).
	NextMessageToRemove(excludeSending bool) *Message

	// Buffer exposes this router's message buffer for buffer-occupancy
	// invariant checks and reporting.
	Buffer() *Buffer

	// DeliveredCount and RelayedCount back the MessageStatsReport (§6).
	DeliveredCount() int
	RelayedCount() int

	// IsSending reports whether a message is the payload of a transfer
	// this router's host currently has outbound, letting World tell
	// sender from receiver when a transfer completes.
	IsSending(id string) bool

	// ExpireTTL drops every buffered message whose TTL has elapsed.
	ExpireTTL(now float64)
}

// DeliveryListener is notified when a message is delivered to its
// destination or dropped from a buffer (§4.3).
type DeliveryListener interface {
	MessageDelivered(host *Host, m *Message)
	MessageDropped(host *Host, m *Message, relayed bool)
	NewMessage(host *Host, m *Message)
}

// RouterBase implements the behavior common to every strategy: FIFO
// send-queue ordering, buffer occupancy, TTL expiry, idempotent
// delivery, and the "prefer sending to the destination" shortcut
// (§4.3 exchangeDeliverableMessages). Strategies embed RouterBase and
// override Update/StartTransfer/etc. as needed.
type RouterBase struct {
	host       *Host
	buf        *Buffer
	delivered  map[string]bool
	deliveredN int
	relayedN   int
	sending    map[string]bool // message IDs currently outbound on some connection
	listeners  []DeliveryListener
	DropPolicy DropPolicy // victim-selection policy; defaults to FIFO-oldest
}

// DropPolicy selects which buffered message to evict next when space is
// needed. candidates excludes any message protected by the caller.
type DropPolicy func(candidates []*Message) *Message

// FIFODropPolicy evicts the message with the oldest ReceiveTime, the
// universal Router-base fallback (§4.6 queueing policy FIFO; also the
// base-router default for strategies that do not specify one).
func FIFODropPolicy(candidates []*Message) *Message {
	var victim *Message
	for _, m := range candidates {
		if victim == nil || m.ReceiveTime < victim.ReceiveTime {
			victim = m
		}
	}
	return victim
}

// InitRouterBase wires a RouterBase to its host's buffer. Strategies
// call this from their own Init.
func (rb *RouterBase) InitRouterBase(host *Host, listeners []DeliveryListener) {
	rb.host = host
	rb.buf = host.Buffer
	rb.delivered = make(map[string]bool)
	rb.sending = make(map[string]bool)
	rb.listeners = listeners
	if rb.DropPolicy == nil {
		rb.DropPolicy = FIFODropPolicy
	}
}

func (rb *RouterBase) Host() *Host    { return rb.host }
func (rb *RouterBase) Buffer() *Buffer { return rb.buf }
func (rb *RouterBase) DeliveredCount() int { return rb.deliveredN }
func (rb *RouterBase) RelayedCount() int   { return rb.relayedN }

// IsDelivered reports whether this holder has already delivered (and
// thus discarded) the message with the given ID (§8 invariant 3).
func (rb *RouterBase) IsDelivered(id string) bool {
	return rb.delivered[id]
}

// IsSending reports whether a message is currently the payload of an
// outbound transfer from this host.
func (rb *RouterBase) IsSending(id string) bool {
	return rb.sending[id]
}

func (rb *RouterBase) notifyDelivered(m *Message) {
	for _, l := range rb.listeners {
		l.MessageDelivered(rb.host, m)
	}
}

func (rb *RouterBase) notifyDropped(m *Message, relayed bool) {
	for _, l := range rb.listeners {
		l.MessageDropped(rb.host, m, relayed)
	}
}

func (rb *RouterBase) notifyNew(m *Message) {
	for _, l := range rb.listeners {
		l.NewMessage(rb.host, m)
	}
}

// CreateNewMessage is the base-router implementation of §4.3's
// createNewMessage: the host's own originated message is admitted to
// its own buffer unconditionally (subject to space), tagged and
// announced to listeners.
func (rb *RouterBase) CreateNewMessage(evtMgr *evtm.EventManager, m *Message) bool {
	if !rb.makeRoomFor(m.Size, "") {
		log.WithFields(log.Fields{"host": rb.host.Addr, "msg": m.ID}).
			Warn("dropped newly created message: no buffer space")
		return false
	}
	rb.buf.Add(m)
	rb.notifyNew(m)
	return true
}

// makeRoomFor runs the drop policy until needed bytes are free,
// excluding excludeID (typically the message about to be admitted, or
// the message currently being sent) from eviction candidates. Per
// §4.3, the message being actively sent is the last resort, never the
// first choice: messages marked as sending are left out of the
// candidates and offered to the DropPolicy only when nothing else
// remains.
func (rb *RouterBase) makeRoomFor(size int64, excludeID string) bool {
	if size > rb.buf.Capacity() {
		return false
	}
	ok := rb.buf.MakeRoom(size, func(candidates []*Message) *Message {
		filtered := candidates[:0:0]
		for _, c := range candidates {
			if c.ID == excludeID || rb.sending[c.ID] {
				continue
			}
			filtered = append(filtered, c)
		}
		if len(filtered) == 0 {
			// last resort: allow evicting a message being sent if nothing
			// else is available (§4.3).
			for _, c := range candidates {
				if c.ID != excludeID {
					filtered = append(filtered, c)
				}
			}
		}
		if len(filtered) == 0 {
			return nil
		}
		return rb.DropPolicy(filtered)
	}, func(victim *Message) {
		rb.notifyDropped(victim, rb.relayedSince(victim))
		delete(rb.sending, victim.ID)
	})
	return ok
}

// relayedSince is a hook point for strategies that track whether a
// dropped message had been relayed by this host; RouterBase has no
// such bookkeeping itself, so it reports false.
func (rb *RouterBase) relayedSince(m *Message) bool { return false }

// ReceiveMessage implements the base semantics of §4.2/§4.3: reject
// stale re-deliveries, make room via the drop policy, admit the
// message, and deliver immediately if this host is the destination.
func (rb *RouterBase) ReceiveMessage(evtMgr *evtm.EventManager, m *Message, from int) ResultCode {
	if rb.delivered[m.ID] {
		return DeniedOld
	}
	if rb.buf.Has(m.ID) {
		return DeniedOld
	}
	if m.Expired(rb.host.world.Clock.Seconds()) {
		return DeniedTTLExpired
	}
	if !rb.makeRoomFor(m.Size, m.ID) {
		return DeniedNoSpace
	}
	rb.buf.Add(m)
	if m.To == rb.host.Addr {
		rb.deliverLocally(m)
	}
	return RcvOK
}

func (rb *RouterBase) deliverLocally(m *Message) {
	if rb.delivered[m.ID] {
		return
	}
	rb.delivered[m.ID] = true
	rb.deliveredN++
	rb.buf.Remove(m.ID, nil)
	rb.notifyDelivered(m)
}

// ExpireTTL drops every message in this router's buffer whose TTL has
// elapsed, as RouterBase's share of each tick's Update (§4.3 TTL expiry).
func (rb *RouterBase) ExpireTTL(now float64) {
	rb.buf.ExpireTTL(now, func(m *Message) {
		rb.notifyDropped(m, rb.relayedSince(m))
	})
}

// ExchangeDeliverableMessages implements §4.3's shared fast path: among
// the host's current connections, send any buffered message directly
// to its destination if that destination is the peer on the connection.
// Returns true if a transfer was started.
func (rb *RouterBase) ExchangeDeliverableMessages(evtMgr *evtm.EventManager, conns []*Connection, tryStart func(m *Message, conn *Connection) ResultCode) bool {
	for _, conn := range conns {
		if !conn.IsUp() || conn.Msg != nil {
			continue
		}
		peer := conn.OtherHost(rb.host)
		if peer == nil {
			continue
		}
		for _, m := range rb.buf.Messages() {
			if m.To != peer.Addr {
				continue
			}
			if tryStart(m, conn) == RcvOK {
				return true
			}
		}
	}
	return false
}

// MarkSending/MarkSent bracket an in-flight transfer so makeRoomFor can
// protect (or, as a last resort, evict) the message currently outbound.
func (rb *RouterBase) MarkSending(id string)  { rb.sending[id] = true }
func (rb *RouterBase) MarkSent(id string)     { delete(rb.sending, id) }

// NextMessageToRemove is the base-router drop-policy entry point
// (§4.3): pick a victim, excluding the in-flight message unless
// excludeSending is false or no other candidate exists.
func (rb *RouterBase) NextMessageToRemove(excludeSending bool) *Message {
	candidates := rb.buf.Messages()
	if excludeSending {
		filtered := candidates[:0:0]
		for _, m := range candidates {
			if !rb.sending[m.ID] {
				filtered = append(filtered, m)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return rb.DropPolicy(candidates)
}

// recordRelay increments the relayed counter; strategies call this from
// TransferDone when forwarding (not originating or delivering) a message.
func (rb *RouterBase) recordRelay() { rb.relayedN++ }

// errUnreachable builds the error describing a host that cannot be
// reached with the current Connection state.
func errUnreachable(host int) error {
	return fmt.Errorf("host %d unreachable on this connection", host)
}
