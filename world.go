package dtnsim

// world.go holds the World type: the simulation's single owner of all
// Hosts, the driver of the per-tick update loop (§4.1), and the source
// of the global Clock every other component reads. The tick loop is a
// self-rescheduling evtm.EventHandlerFunction, the same pattern used
// by scheduler.go's GenScheduler and events.go's generators: each
// firing does its work, then reschedules itself at
// Clock.UpdateInterval() in the future, rather than a bespoke
// for-loop driving its own clock.

import (
	"sort"

	"github.com/google/uuid"
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"github.com/iti/rngstream"
)

// World owns every Host and drives the simulation (§3 Ownership: "The
// World exclusively owns all Hosts").
type World struct {
	Clock *Clock
	Hosts []*Host
	grid  *Grid

	hostsByAddr map[int]*Host
	hostGroup   map[int]string

	// up holds, per unordered interface pair, the Connection currently
	// tracking that pair's up/down state across ticks.
	up map[[2]int]*Connection

	listeners []DeliveryListener

	topStream   *rngstream.RngStream
	namedStream map[string]*rngstream.RngStream

	TraceMgr   *TraceManager
	Contacts   *ContactGraph
	Popularity *GlobalPopularityReport // optional; nil unless the scenario enables it
}

// CreateWorld is a constructor. cellSize should be cellSizeMult times
// the scenario's largest transmit range (§4.1).
func CreateWorld(updateInterval, cellSize float64, seed string) *World {
	return &World{
		Clock:       CreateClock(updateInterval),
		grid:        CreateGrid(cellSize),
		hostsByAddr: make(map[int]*Host),
		hostGroup:   make(map[int]string),
		up:          make(map[[2]int]*Connection),
		topStream:   rngstream.New(seed),
		namedStream: make(map[string]*rngstream.RngStream),
		TraceMgr:    CreateTraceManager(),
		Contacts:    CreateContactGraph(),
	}
}

// NamedStream returns (creating if needed) a reproducible sub-stream of
// the world's top-level seed, per §5's random-number discipline: named
// sub-streams off a single top-level seed for things like COIN
// forwarding decisions and PRoPHET's Random variant.
func (w *World) NamedStream(name string) *rngstream.RngStream {
	if s, ok := w.namedStream[name]; ok {
		return s
	}
	s := rngstream.New(name)
	w.namedStream[name] = s
	return s
}

// AddHost registers a host with the world and places it on the grid.
func (w *World) AddHost(h *Host) {
	h.world = w
	w.Hosts = append(w.Hosts, h)
	w.hostsByAddr[h.Addr] = h
	w.hostGroup[h.Addr] = h.Group
	w.grid.Place(h)
}

// Host looks a host up by address.
func (w *World) Host(addr int) *Host {
	return w.hostsByAddr[addr]
}

// AddListener registers a DeliveryListener that will be handed to every
// router at Init time.
func (w *World) AddListener(l DeliveryListener) {
	w.listeners = append(w.listeners, l)
}

// InitRouters calls Init on every host's router with a populated
// RouterInit, after all hosts have been added (design note 9: "World-
// scoped read-only tables ... built once after host construction").
func (w *World) InitRouters() {
	for _, h := range w.Hosts {
		h.Router.Init(RouterInit{
			Host:        h,
			AllHosts:    w.Hosts,
			HostGroup:   w.hostGroup,
			NamedStream: w.NamedStream,
			TraceMgr:    w.TraceMgr,
			Listeners:   w.listeners,
		})
	}
}

// Start schedules the first tick and hands control to evtMgr.
func (w *World) Start(evtMgr *evtm.EventManager) {
	evtMgr.Schedule(w, nil, worldTick, vrtime.SecondsToTime(0.0))
}

// worldTick is the self-rescheduling per-tick handler implementing
// §4.1's ordered steps: advance mobility and re-bucket hosts in the
// grid, recompute connectivity, advance in-flight transfers, let
// routers act, expire messages whose TTL has elapsed, then advance the
// clock.
func worldTick(evtMgr *evtm.EventManager, context any, data any) any {
	w := context.(*World)
	dt := w.Clock.UpdateInterval()

	w.step1Mobility(dt)
	w.step2Connectivity(evtMgr)
	w.step3Transfers(evtMgr)
	w.step4RouterUpdate(evtMgr)
	w.step5ExpireTTL()

	w.Clock.Advance()
	evtMgr.Schedule(w, nil, worldTick, vrtime.SecondsToTime(dt))
	return nil
}

// step1Mobility advances every host's position and re-buckets it in the
// grid (§4.1 step 1-2).
func (w *World) step1Mobility(dt float64) {
	for _, h := range w.Hosts {
		h.Move(dt)
		w.grid.Place(h)
	}
}

// step2Connectivity recomputes which interface pairs are in range,
// bringing up new Connections and tearing down ones that dropped out of
// range (§4.1 step 3). Hosts are visited in address order so Connection
// IDs and the order in which ChangedConnection fires are deterministic
// across runs given the same input, per §5.
func (w *World) step2Connectivity(evtMgr *evtm.EventManager) {
	sorted := make([]*Host, len(w.Hosts))
	copy(sorted, w.Hosts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Addr < sorted[j].Addr })

	seen := make(map[[2]int]bool)
	for _, h := range sorted {
		neighbors := w.grid.Neighbors(h)
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].Addr < neighbors[j].Addr })
		for _, peer := range neighbors {
			if peer.Addr <= h.Addr {
				continue
			}
			for _, a := range h.Interfaces {
				for _, b := range peer.Interfaces {
					pairKey := [2]int{a.ID, b.ID}
					seen[pairKey] = true
					inRange := a.InRange(b) && b.InRange(a)
					existing, up := w.up[pairKey]
					switch {
					case inRange && !up:
						conn := CreateConnection(uuid.NewString(), a, b)
						w.up[pairKey] = conn
						w.Contacts.RecordContact(h.Addr, peer.Addr)
						if w.Popularity != nil {
							w.Popularity.NoteContact(h, peer)
						}
						h.Router.ChangedConnection(conn, true)
						peer.Router.ChangedConnection(conn, true)
					case !inRange && up:
						existing.TearDown()
						delete(w.up, pairKey)
						h.Router.ChangedConnection(existing, false)
						peer.Router.ChangedConnection(existing, false)
					}
				}
			}
		}
	}
	// anything still up but whose pair wasn't revisited this tick (grid
	// cell moved enough that a and b are no longer even grid-adjacent)
	// is clearly out of range now.
	for pairKey, conn := range w.up {
		if seen[pairKey] {
			continue
		}
		conn.TearDown()
		delete(w.up, pairKey)
		conn.A.host.Router.ChangedConnection(conn, false)
		conn.B.host.Router.ChangedConnection(conn, false)
	}
}

// step3Transfers advances every in-flight transfer and hands completed
// ones to the receiving router (§4.2).
func (w *World) step3Transfers(evtMgr *evtm.EventManager) {
	for _, conn := range w.up {
		if !conn.IsUp() || conn.IsIdle() {
			continue
		}
		dt := w.Clock.UpdateInterval()
		if conn.Advance(dt) {
			m := conn.Msg
			a, b := conn.A.host, conn.B.host
			var sender, receiver *Host
			if a.Router.IsSending(m.ID) {
				sender, receiver = a, b
			} else {
				sender, receiver = b, a
			}
			conn.FinishTransfer()
			sender.Router.TransferDone(evtMgr, conn, m)
			receiver.Router.ReceiveMessage(evtMgr, m, sender.Addr)
		}
	}
}

// step4RouterUpdate lets every router drive forwarding decisions across
// its currently-up connections (§4.3).
func (w *World) step4RouterUpdate(evtMgr *evtm.EventManager) {
	for _, h := range w.Hosts {
		h.Router.Update(evtMgr)
	}
}

// step5ExpireTTL drops messages whose TTL has elapsed from every
// router's buffer (§4.2 DeniedTTLExpired semantics applied proactively,
// not just on receive).
func (w *World) step5ExpireTTL() {
	now := w.Clock.Seconds()
	for _, h := range w.Hosts {
		h.Router.ExpireTTL(now)
	}
}
