package dtnsim

// connection.go holds the Connection state machine: up/down lifecycle
// and the single in-flight transfer per connection (§3 Connection, §4.2).

import "math"

// ConnState is one of the Connection lifecycle states named in §4.2.
type ConnState int

const (
	ConnUpIdle ConnState = iota
	ConnUpTransferring
	ConnDown
)

// Connection is a symmetric link between two interfaces on distinct
// hosts. At most one message is in flight per Connection at any instant
// (§3 invariant).
type Connection struct {
	ID string // unique per contact, assigned by World at creation

	A, B *Interface

	State ConnState

	Msg              *Message
	bytesTransferred float64
	speed            float64 // bytes/second, min of the two endpoints' speeds
}

// CreateConnection is a constructor; the connection starts up-idle.
func CreateConnection(id string, a, b *Interface) *Connection {
	c := &Connection{ID: id, A: a, B: b, State: ConnUpIdle}
	a.addConnection(b.ID, c)
	b.addConnection(a.ID, c)
	return c
}

// IsUp reports whether the connection is not torn down.
func (c *Connection) IsUp() bool {
	return c.State != ConnDown
}

// OtherHost returns the host at the far end of the connection from h,
// or nil if h is not one of this connection's endpoints.
func (c *Connection) OtherHost(h *Host) *Host {
	switch {
	case c.A.host == h:
		return c.B.host
	case c.B.host == h:
		return c.A.host
	default:
		return nil
	}
}

// OtherInterface is the Interface analog of OtherHost.
func (c *Connection) OtherInterface(intrfc *Interface) *Interface {
	switch intrfc {
	case c.A:
		return c.B
	case c.B:
		return c.A
	default:
		return nil
	}
}

// StartTransfer begins carrying m across the connection, assuming the
// caller (a Router) has already verified the receiver will accept it.
// It panics if a transfer is already in flight, since at most one
// message may be in flight per connection (§3 invariant) and callers
// are expected to check IsIdle first.
func (c *Connection) StartTransfer(m *Message) {
	if c.Msg != nil {
		panic("connection already has a message in flight")
	}
	c.Msg = m
	c.bytesTransferred = 0
	c.speed = math.Min(c.A.TransmitSpeed, c.B.TransmitSpeed)
	c.State = ConnUpTransferring
}

// IsIdle reports whether the connection is up and has no in-flight
// transfer.
func (c *Connection) IsIdle() bool {
	return c.State == ConnUpIdle
}

// Advance accrues dtSeconds*speed bytes onto the in-flight transfer and
// reports whether it has now completed (§4.2).
func (c *Connection) Advance(dtSeconds float64) (completed bool) {
	if c.State != ConnUpTransferring {
		return false
	}
	c.bytesTransferred += dtSeconds * c.speed
	if c.bytesTransferred >= float64(c.Msg.Size) {
		return true
	}
	return false
}

// FinishTransfer clears the in-flight message, returning the connection
// to up-idle (called after a completed transfer is delivered, or its
// result processed).
func (c *Connection) FinishTransfer() {
	c.Msg = nil
	c.bytesTransferred = 0
	c.speed = 0
	c.State = ConnUpIdle
}

// Abort tears the in-flight transfer down without delivering it; used
// when endpoints leave range mid-transfer (§4.2: "abort transfer;
// message not delivered; sender not charged with a forwarding").
func (c *Connection) Abort() {
	c.Msg = nil
	c.bytesTransferred = 0
	c.speed = 0
}

// TearDown marks the connection down and detaches it from both
// interfaces' connection tables.
func (c *Connection) TearDown() {
	if c.State == ConnUpTransferring {
		c.Abort()
	}
	c.State = ConnDown
	c.A.removeConnection(c.B.ID)
	c.B.removeConnection(c.A.ID)
}
