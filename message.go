package dtnsim

// message.go holds the Message type: identity, TTL accounting, the
// strategy-qualified property bag, and the hop path invariant (§3, §8.6).

import (
	"fmt"
)

// Message is the unit DTN hosts store and forward. Its identity (ID)
// is shared across every buffer that holds a copy of it; each buffer
// holds its own *Message instance (see Replicate), so that per-holder
// mutable state (e.g. SprayAndWait.copies) can diverge between holders
// while the logical message is considered one shared entity.
type Message struct {
	ID   string
	From int // host address of the message's source
	To   int // host address of the message's destination

	Size int64 // payload size in bytes

	initialTTL  float64 // minutes, as configured at creation
	createdAt   float64 // simulated seconds at creation
	ReceiveTime float64 // simulated seconds this holder received it

	props map[string]any

	// HopPath is the list of host addresses this message instance has
	// passed through, oldest first. It is strictly increasing in length
	// and never repeats a host (§8.6).
	HopPath []int
}

// CreateMessage is a constructor. ttlMinutes is the message's initial
// time-to-live; now is the simulated creation time in seconds.
func CreateMessage(id string, from, to int, size int64, ttlMinutes float64, now float64) *Message {
	if size <= 0 {
		panic(fmt.Errorf("message %s has non-positive size %d", id, size))
	}
	return &Message{
		ID:          id,
		From:        from,
		To:          to,
		Size:        size,
		initialTTL:  ttlMinutes,
		createdAt:   now,
		ReceiveTime: now,
		props:       make(map[string]any),
		HopPath:     []int{from},
	}
}

// RemainingTTL returns the message's remaining time-to-live in minutes,
// given the current simulated time in seconds.
func (m *Message) RemainingTTL(nowSeconds float64) float64 {
	elapsedMinutes := (nowSeconds - m.createdAt) / 60.0
	return m.initialTTL - elapsedMinutes
}

// Expired reports whether the message's remaining TTL is at or below
// zero at the given simulated time (§3 Message invariant).
func (m *Message) Expired(nowSeconds float64) bool {
	return m.RemainingTTL(nowSeconds) <= 0
}

// Property returns a strategy-qualified property (e.g. "SprayAndWait.copies")
// and whether it was present.
func (m *Message) Property(key string) (any, bool) {
	v, ok := m.props[key]
	return v, ok
}

// SetProperty installs or overwrites a strategy-qualified property.
func (m *Message) SetProperty(key string, value any) {
	m.props[key] = value
}

// IntProperty is a convenience accessor for integer-valued properties,
// returning (0, false) if absent or of the wrong type.
func (m *Message) IntProperty(key string) (int, bool) {
	v, ok := m.props[key]
	if !ok {
		return 0, false
	}
	iv, ok := v.(int)
	return iv, ok
}

// FloatProperty is a convenience accessor for float64-valued properties.
func (m *Message) FloatProperty(key string) (float64, bool) {
	v, ok := m.props[key]
	if !ok {
		return 0, false
	}
	fv, ok := v.(float64)
	return fv, ok
}

// Replicate returns a new *Message instance sharing this message's
// identity, source, destination, size and TTL origin, but with its own
// copy of the property bag and hop path, extended with holder as the
// newest hop. Routers call this when a copy of a message passes to a
// new holder, so that per-holder properties (forwarding counts, spray
// copy counts) evolve independently per §3's Message invariant.
func (m *Message) Replicate(holder int, now float64) *Message {
	cp := &Message{
		ID:          m.ID,
		From:        m.From,
		To:          m.To,
		Size:        m.Size,
		initialTTL:  m.initialTTL,
		createdAt:   m.createdAt,
		ReceiveTime: now,
		props:       make(map[string]any, len(m.props)),
		HopPath:     append(append([]int{}, m.HopPath...), holder),
	}
	for k, v := range m.props {
		cp.props[k] = v
	}
	return cp
}

// HopCount is the number of hops (transfers) this message instance has
// made, i.e. len(HopPath)-1.
func (m *Message) HopCount() int {
	return len(m.HopPath) - 1
}
