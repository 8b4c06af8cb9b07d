package dtnsim

// events.go drives message origination: a periodic generator for one
// source host (interarrival time drawn from that host's own rng stream,
// per §5's per-host RNG discipline) and a trace-replay source that injects
// messages at pre-recorded times instead of sampling them, using the
// same self-rescheduling event pattern as world.go's tick loop.

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// MessageEventGenerator periodically originates messages from
// SourceHost addressed to a uniformly chosen other host in DestGroup.
type MessageEventGenerator struct {
	World      *World
	SourceHost *Host
	DestGroup  string

	MeanInterarrival float64 // seconds
	MsgSize          int64   // bytes
	TTLMinutes       float64

	gen *GenScheduler
}

// CreateMessageEventGenerator is a constructor. genSlots bounds how
// many in-flight generation operations this host's application layer
// may run concurrently (GenScheduler, scheduler.go).
func CreateMessageEventGenerator(w *World, src *Host, destGroup string, meanInterarrival float64, msgSize int64, ttlMinutes float64, genSlots int) *MessageEventGenerator {
	return &MessageEventGenerator{
		World:            w,
		SourceHost:       src,
		DestGroup:        destGroup,
		MeanInterarrival: meanInterarrival,
		MsgSize:          msgSize,
		TTLMinutes:       ttlMinutes,
		gen:              CreateGenScheduler(genSlots),
	}
}

// Start schedules the first arrival.
func (g *MessageEventGenerator) Start(evtMgr *evtm.EventManager) {
	evtMgr.Schedule(g, nil, messageGenArrival, vrtime.SecondsToTime(g.nextInterarrival()))
}

// nextInterarrival draws an exponential interarrival time from the
// source host's own RNG stream, preserving per-host reproducibility
// (§5).
func (g *MessageEventGenerator) nextInterarrival() float64 {
	u := g.SourceHost.Rng().RandU01()
	if u <= 0 {
		u = 1e-12
	}
	return -math.Log(u) * g.MeanInterarrival
}

func (g *MessageEventGenerator) pickDestination() *Host {
	candidates := make([]*Host, 0)
	for _, h := range g.World.Hosts {
		if h.Group == g.DestGroup && h.Addr != g.SourceHost.Addr {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	idx := int(g.SourceHost.Rng().RandU01() * float64(len(candidates)))
	if idx >= len(candidates) {
		idx = len(candidates) - 1
	}
	return candidates[idx]
}

// messageGenArrival fires on every generation interval: it runs the
// generation operation through the GenScheduler (modeling bounded
// app-layer throughput) and reschedules the next arrival.
func messageGenArrival(evtMgr *evtm.EventManager, context any, data any) any {
	g := context.(*MessageEventGenerator)

	dest := g.pickDestination()
	if dest != nil {
		assembleTime := float64(g.MsgSize) / 1e7 // crude assembly-time model: 10MB/s app layer
		g.gen.Schedule(evtMgr, assembleTime, assembleTime, g, dest, messageGenComplete)
	}

	evtMgr.Schedule(g, nil, messageGenArrival, vrtime.SecondsToTime(g.nextInterarrival()))
	return nil
}

func messageGenComplete(evtMgr *evtm.EventManager, context any, data any) any {
	g := context.(*MessageEventGenerator)
	dest := data.(*Host)

	id := uuid.NewString()
	now := g.World.Clock.Seconds()
	m := CreateMessage(id, g.SourceHost.Addr, dest.Addr, g.MsgSize, g.TTLMinutes, now)
	if g.SourceHost.Router.CreateNewMessage(evtMgr, m) {
		AddMessageTrace(g.World.TraceMgr, g.World.Clock.Time(), m, g.SourceHost.Addr, "created")
	}
	return nil
}

// TracedArrival is one pre-recorded message origination: at TimeSeconds,
// From originates a message to To.
type TracedArrival struct {
	TimeSeconds float64
	From, To    int
	Size        int64
	TTLMinutes  float64
}

// ExternalEventSource replays a fixed sequence of TracedArrivals
// instead of sampling interarrival times, letting a scenario reproduce
// an externally recorded traffic trace (§9 Supplemented feature). It
// replays message originations only; it issues no connect or disconnect
// events, so contacts still come from the World's geometric
// connectivity.
type ExternalEventSource struct {
	World    *World
	Arrivals []TracedArrival
	next     int
}

// CreateExternalEventSource is a constructor. Arrivals must be sorted
// by TimeSeconds ascending.
func CreateExternalEventSource(w *World, arrivals []TracedArrival) *ExternalEventSource {
	return &ExternalEventSource{World: w, Arrivals: arrivals}
}

// Start schedules the first traced arrival, if any.
func (es *ExternalEventSource) Start(evtMgr *evtm.EventManager) {
	es.scheduleNext(evtMgr)
}

func (es *ExternalEventSource) scheduleNext(evtMgr *evtm.EventManager) {
	if es.next >= len(es.Arrivals) {
		return
	}
	arrival := es.Arrivals[es.next]
	delay := arrival.TimeSeconds - es.World.Clock.Seconds()
	if delay < 0 {
		delay = 0
	}
	evtMgr.Schedule(es, arrival, externalArrival, vrtime.SecondsToTime(delay))
}

func externalArrival(evtMgr *evtm.EventManager, context any, data any) any {
	es := context.(*ExternalEventSource)
	arrival := data.(TracedArrival)
	es.next++

	src := es.World.Host(arrival.From)
	if src != nil {
		id := fmt.Sprintf("ext.%d.%d", arrival.From, es.next)
		m := CreateMessage(id, arrival.From, arrival.To, arrival.Size, arrival.TTLMinutes, es.World.Clock.Seconds())
		if src.Router.CreateNewMessage(evtMgr, m) {
			AddMessageTrace(es.World.TraceMgr, es.World.Clock.Time(), m, arrival.From, "created")
		}
	}
	es.scheduleNext(evtMgr)
	return nil
}
