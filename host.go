package dtnsim

// host.go holds the Host type: stable address, display name, location,
// interfaces, buffer, and router (§3 Host).

import (
	"fmt"
	"math"

	"github.com/iti/rngstream"
)

// Host is a mobile DTN node. The World exclusively owns all Hosts; a
// Host exclusively owns its Interfaces, Buffer, and Router (§3 Ownership).
type Host struct {
	Addr  int    // stable integer address, unique within the World
	Name  string // display name: "<GroupPrefix><GroupIndex>"
	Group string // group prefix this host belongs to

	X, Y float64 // current location, meters

	Interfaces []*Interface
	Buffer     *Buffer
	Router     Router

	mobility MobilityModel
	rng      *rngstream.RngStream

	// pathDest/pathSpeed hold the current mobility leg, consumed by Move.
	pathDest  Coord
	pathSpeed float64
	hasPath   bool

	world *World
}

// Coord is a 2D location in meters.
type Coord struct {
	X, Y float64
}

// CreateHost is a constructor. bufferSize is in bytes.
func CreateHost(addr int, name, group string, bufferSize int64, mobility MobilityModel, rngSeed string) *Host {
	h := &Host{
		Addr:     addr,
		Name:     name,
		Group:    group,
		Buffer:   CreateBuffer(bufferSize),
		mobility: mobility,
		rng:      rngstream.New(rngSeed),
	}
	start := mobility.InitialPosition(h.rng)
	h.X, h.Y = start.X, start.Y
	return h
}

// AddInterface attaches an interface to this host.
func (h *Host) AddInterface(intrfc *Interface) {
	intrfc.host = h
	h.Interfaces = append(h.Interfaces, intrfc)
}

// Location returns the host's current position.
func (h *Host) Location() Coord {
	return Coord{X: h.X, Y: h.Y}
}

// Rng returns this host's private RNG stream, used for mobility and by
// routers that need per-host randomness (§5 Random-number discipline).
func (h *Host) Rng() *rngstream.RngStream {
	return h.rng
}

// Move advances the host's position by at most dtSeconds of travel
// along its current mobility leg, requesting a new leg from the
// mobility model when the current one completes (§4.1 step 2). This is
// the engine's side of the mobility contract named in §1's Out-of-scope
// list: the mobility model supplies "initial position" and "next path",
// and Move consumes them tick by tick.
func (h *Host) Move(dtSeconds float64) {
	for dtSeconds > 0 {
		if !h.hasPath {
			dest, speed := h.mobility.NextPath(h.rng, h.Location())
			h.pathDest = dest
			h.pathSpeed = speed
			h.hasPath = true
		}
		dx := h.pathDest.X - h.X
		dy := h.pathDest.Y - h.Y
		dist := distance(dx, dy)
		if dist < 1e-9 {
			h.hasPath = false
			return
		}
		travel := h.pathSpeed * dtSeconds
		if travel >= dist {
			h.X, h.Y = h.pathDest.X, h.pathDest.Y
			consumed := dist / h.pathSpeed
			dtSeconds -= consumed
			h.hasPath = false
			continue
		}
		frac := travel / dist
		h.X += dx * frac
		h.Y += dy * frac
		return
	}
}

func distance(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

func (h *Host) String() string {
	return fmt.Sprintf("%s(#%d)", h.Name, h.Addr)
}
