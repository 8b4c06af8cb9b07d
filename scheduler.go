package dtnsim

// scheduler.go implements a timeslice/FCFS-waiting-queue scheduler
// (container/heap over residual service requirements) that throttles
// how many message-generation operations a host's application layer
// can have in flight at once. Used by events.go's periodic message
// generator.

import (
	"container/heap"
	"math"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// GenTask describes one pending message-generation operation: the
// simulated time it takes the application layer to assemble a message
// of a given size before CreateNewMessage is called.
type GenTask struct {
	req          float64 // required service, seconds
	ts           float64 // timeslice, seconds
	completeFunc evtm.EventHandlerFunction
	context      any
	Msg          any
}

func createGenTask(req, ts float64, msg any, context any, complete evtm.EventHandlerFunction) *GenTask {
	return &GenTask{req: req, ts: ts, Msg: msg, context: context, completeFunc: complete}
}

// genTaskHeap is a min-priority heap on residual service requirements.
type genTaskHeap []*GenTask

func (h genTaskHeap) Len() int           { return len(h) }
func (h genTaskHeap) Less(i, j int) bool { return h[i].req < h[j].req }
func (h genTaskHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *genTaskHeap) Push(x any) { *h = append(*h, x.(*GenTask)) }

func (h *genTaskHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// GenScheduler bounds the number of concurrent message-generation
// operations a host's application layer runs, queueing the rest FCFS,
// modeling a host's bounded app-layer throughput.
type GenScheduler struct {
	slots     int
	waiting   []*GenTask
	inservice genTaskHeap
}

// CreateGenScheduler is a constructor. slots is the number of
// message-generation operations that may run concurrently.
func CreateGenScheduler(slots int) *GenScheduler {
	if slots < 1 {
		panic("GenScheduler requires at least one concurrent slot")
	}
	gs := &GenScheduler{slots: slots}
	heap.Init(&gs.inservice)
	return gs
}

// Schedule admits a generation task into service, or queues it if every
// slot is occupied. Returns true if the completion event was scheduled
// immediately (the task finished within its first timeslice).
func (gs *GenScheduler) Schedule(evtMgr *evtm.EventManager, req, ts float64,
	context any, msg any, complete evtm.EventHandlerFunction) bool {
	task := createGenTask(req, ts, msg, context, complete)
	return gs.joinQueue(evtMgr, task)
}

func (gs *GenScheduler) joinQueue(evtMgr *evtm.EventManager, task *GenTask) bool {
	if gs.slots <= len(gs.inservice) {
		gs.waiting = append(gs.waiting, task)
		return false
	}

	execute := task.ts
	finished := false
	if task.req <= task.ts {
		execute = task.req
		finished = true
	}
	evtMgr.Schedule(gs, finished, genTimesliceComplete, vrtime.SecondsToTime(execute))
	if finished {
		evtMgr.Schedule(task.context, task.Msg, task.completeFunc, vrtime.SecondsToTime(task.req))
	}
	task.req = math.Max(task.req-task.ts, 0.0)
	heap.Push(&gs.inservice, task)
	return finished
}

func genTimesliceComplete(evtMgr *evtm.EventManager, context any, data any) any {
	gs := context.(*GenScheduler)
	finished := data.(bool)

	taskAny := heap.Pop(&gs.inservice)
	task := taskAny.(*GenTask)

	if len(gs.waiting) > 0 {
		next := gs.waiting[0]
		gs.waiting = gs.waiting[1:]
		gs.joinQueue(evtMgr, next)
	}

	if finished {
		return nil
	}
	gs.joinQueue(evtMgr, task)
	return nil
}
