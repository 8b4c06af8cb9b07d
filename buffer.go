package dtnsim

// buffer.go holds the per-host finite message buffer: FIFO bookkeeping,
// occupancy accounting, and policy-driven eviction (§3 Buffer, §4.3).

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Buffer is a bounded collection of Message instances held by one Host.
// The sum of held message sizes never exceeds capacity after any Add
// (§8 invariant 1).
type Buffer struct {
	capacity  int64
	occupancy int64
	messages  map[string]*Message
	order     []string // insertion order, oldest first, for FIFO default
}

// CreateBuffer is a constructor.
func CreateBuffer(capacity int64) *Buffer {
	if capacity <= 0 {
		panic("buffer capacity must be positive")
	}
	return &Buffer{
		capacity: capacity,
		messages: make(map[string]*Message),
	}
}

// Capacity returns the buffer's total byte capacity.
func (b *Buffer) Capacity() int64 {
	return b.capacity
}

// Occupancy returns the sum of held message sizes.
func (b *Buffer) Occupancy() int64 {
	return b.occupancy
}

// Has reports whether the buffer holds a message with the given ID.
func (b *Buffer) Has(id string) bool {
	_, present := b.messages[id]
	return present
}

// Get returns the held message with the given ID, or nil.
func (b *Buffer) Get(id string) *Message {
	return b.messages[id]
}

// Messages returns the buffer's held messages in FIFO (insertion) order.
// The caller must not mutate the returned slice's backing array beyond
// reading it.
func (b *Buffer) Messages() []*Message {
	out := make([]*Message, 0, len(b.order))
	for _, id := range b.order {
		if m, present := b.messages[id]; present {
			out = append(out, m)
		}
	}
	return out
}

// FreeSpace returns the number of bytes still available.
func (b *Buffer) FreeSpace() int64 {
	return b.capacity - b.occupancy
}

// Add inserts a message, assuming the caller already verified (via
// MakeRoom or otherwise) that sufficient space exists. It panics if the
// insertion would violate the occupancy invariant, since that signals
// a bug in the caller rather than a recoverable condition (§7 Invariant
// violation).
func (b *Buffer) Add(m *Message) {
	if b.Has(m.ID) {
		panic(fmt.Errorf("message %s already present in buffer", m.ID))
	}
	if b.occupancy+m.Size > b.capacity {
		panic(fmt.Errorf("buffer overflow: adding %s (%d bytes) to occupancy %d/%d",
			m.ID, m.Size, b.occupancy, b.capacity))
	}
	b.messages[m.ID] = m
	b.order = append(b.order, m.ID)
	b.occupancy += m.Size
}

// Remove deletes a message from the buffer and returns it (nil if
// absent). onRemove, if non-nil, is invoked with the removed message
// before it is discarded, letting a router purge auxiliary per-message
// state (MOFO forwarding counts, MOPR favorable points, etc.) that
// tracks buffer contents (§9 Supplemented feature: deleteMessage cleanup).
func (b *Buffer) Remove(id string, onRemove func(*Message)) *Message {
	m, present := b.messages[id]
	if !present {
		return nil
	}
	delete(b.messages, id)
	b.occupancy -= m.Size
	if idx := slices.Index(b.order, id); idx >= 0 {
		b.order = slices.Delete(b.order, idx, idx+1)
	}
	if onRemove != nil {
		onRemove(m)
	}
	return m
}

// MakeRoom evicts messages, chosen by selectVictim, until at least
// needed bytes are free or no further victim is offered. selectVictim
// is called repeatedly with the current candidate set (excluding any
// message a caller wants protected, typically the message currently
// being sent) and should return the message to evict next, or nil when
// it has nothing left to offer. onEvict is invoked for every evicted
// message (drop accounting, listener notification). MakeRoom returns
// true if, afterward, at least needed bytes are free.
func (b *Buffer) MakeRoom(needed int64, selectVictim func(candidates []*Message) *Message, onEvict func(*Message)) bool {
	for b.FreeSpace() < needed {
		victim := selectVictim(b.Messages())
		if victim == nil {
			return false
		}
		b.Remove(victim.ID, onEvict)
	}
	return true
}

// ExpireTTL removes and returns every message whose remaining TTL is at
// or below zero at the given simulated time (§3 Message invariant: TTL
// expiry applies to every buffer, not only the one performing an update).
func (b *Buffer) ExpireTTL(nowSeconds float64, onExpire func(*Message)) []*Message {
	var expired []*Message
	for _, id := range append([]string{}, b.order...) {
		m := b.messages[id]
		if m != nil && m.Expired(nowSeconds) {
			expired = append(expired, m)
			b.Remove(id, onExpire)
		}
	}
	return expired
}
