package dtnsim

// mobility.go defines the mobility contract named in §1's Out-of-scope
// list ("underlying mobility models beyond their contract: initial
// position, next path") and supplies one concrete implementation,
// CrowdMovement, so the engine is runnable without an external mobility
// package. CrowdMovement implements the 1..8-community/9th-gathering-
// place variant that spec.md §9 calls out as the Open Question's
// resolved choice, grounded directly on original_source/src/movement/CrowdMovementV2.java.

import (
	"math"

	"github.com/iti/rngstream"
)

// MobilityModel is the contract every movement model must satisfy.
// World and Host depend on nothing more than this.
type MobilityModel interface {
	// InitialPosition returns a host's starting location.
	InitialPosition(rng *rngstream.RngStream) Coord
	// NextPath returns the next waypoint a host at `from` should travel
	// to, and the speed (meters/second) at which to travel there.
	NextPath(rng *rngstream.RngStream, from Coord) (dest Coord, speed float64)
}

// RandomWaypoint is the simplest mobility model satisfying the
// contract: hosts pick a uniformly random destination within the world
// bounds and a uniformly random speed within [minSpeed, maxSpeed].
type RandomWaypoint struct {
	Width, Height      float64
	MinSpeed, MaxSpeed float64
}

func (m *RandomWaypoint) InitialPosition(rng *rngstream.RngStream) Coord {
	return Coord{X: rng.RandU01() * m.Width, Y: rng.RandU01() * m.Height}
}

func (m *RandomWaypoint) NextPath(rng *rngstream.RngStream, from Coord) (Coord, float64) {
	dest := Coord{X: rng.RandU01() * m.Width, Y: rng.RandU01() * m.Height}
	speed := m.MinSpeed + rng.RandU01()*(m.MaxSpeed-m.MinSpeed)
	return dest, speed
}

// CrowdMovement places hosts in one of 8 community areas (1..8) plus a
// shared 9th gathering-place area, moving probabilistically between a
// host's home area, the gathering place, and other communities — the
// variant spec.md §9 adopts to resolve the original's ambiguity between
// competing CrowdMovementV2 indexing schemes.
type CrowdMovement struct {
	Width, Height      float64
	MinSpeed, MaxSpeed float64

	// AreaGrid arranges the 8 community areas in a gridCols x gridRows
	// tiling of [0,Width]x[0,Height]; the gathering place is a fixed
	// region at the center of the world.
	gridCols, gridRows int

	homeArea int // -1 until InitialPosition assigns one; not resettable per-instance
}

const (
	gatheringPlaceArea = 9
	minCommunityArea   = 1
	maxCommunityArea   = 8
	numCommunityAreas  = maxCommunityArea - minCommunityArea + 1

	probHomeToGathering = 0.8
	probAwayToHome      = 0.9
)

// CreateCrowdMovement is a constructor.
func CreateCrowdMovement(width, height, minSpeed, maxSpeed float64) *CrowdMovement {
	return &CrowdMovement{
		Width: width, Height: height,
		MinSpeed: minSpeed, MaxSpeed: maxSpeed,
		gridCols: 4, gridRows: 2,
		homeArea: -1,
	}
}

func (m *CrowdMovement) areaBounds(area int) (x0, y0, x1, y1 float64) {
	if area == gatheringPlaceArea {
		cx, cy := m.Width/2, m.Height/2
		r := math.Min(m.Width, m.Height) * 0.08
		return cx - r, cy - r, cx + r, cy + r
	}
	idx := area - minCommunityArea
	col := idx % m.gridCols
	row := idx / m.gridCols
	cellW := m.Width / float64(m.gridCols)
	cellH := m.Height / float64(m.gridRows)
	return float64(col) * cellW, float64(row) * cellH, float64(col+1) * cellW, float64(row+1) * cellH
}

func (m *CrowdMovement) coordInArea(rng *rngstream.RngStream, area int) Coord {
	x0, y0, x1, y1 := m.areaBounds(area)
	return Coord{X: x0 + rng.RandU01()*(x1-x0), Y: y0 + rng.RandU01()*(y1-y0)}
}

func (m *CrowdMovement) currentArea(c Coord) int {
	gx0, gy0, gx1, gy1 := m.areaBounds(gatheringPlaceArea)
	if c.X >= gx0 && c.X <= gx1 && c.Y >= gy0 && c.Y <= gy1 {
		return gatheringPlaceArea
	}
	cellW := m.Width / float64(m.gridCols)
	cellH := m.Height / float64(m.gridRows)
	col := int(c.X / cellW)
	row := int(c.Y / cellH)
	if col >= m.gridCols {
		col = m.gridCols - 1
	}
	if row >= m.gridRows {
		row = m.gridRows - 1
	}
	return minCommunityArea + row*m.gridCols + col
}

// InitialPosition assigns this CrowdMovement instance's home area (each
// Host should own its own *CrowdMovement, mirroring the original's
// per-host homeArea field) and places the host there.
func (m *CrowdMovement) InitialPosition(rng *rngstream.RngStream) Coord {
	if m.homeArea == -1 {
		m.homeArea = minCommunityArea + randIntn(rng, numCommunityAreas)
	}
	return m.coordInArea(rng, m.homeArea)
}

// randIntn draws a uniform integer in [0, n) from rng's RandU01, the
// only RngStream primitive used anywhere in this package.
func randIntn(rng *rngstream.RngStream, n int) int {
	v := int(rng.RandU01() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// NextPath implements Table 1 of the reference paper, as grounded in
// CrowdMovementV2.chooseNextArea: from home, usually go to the
// gathering place; from elsewhere, usually go home; otherwise pick
// another community area at random.
func (m *CrowdMovement) NextPath(rng *rngstream.RngStream, from Coord) (Coord, float64) {
	current := m.currentArea(from)
	var next int
	if current == m.homeArea {
		if rng.RandU01() < probHomeToGathering {
			next = gatheringPlaceArea
		} else {
			next = m.randomOtherCommunity(rng)
		}
	} else {
		if rng.RandU01() < probAwayToHome {
			next = m.homeArea
		} else {
			next = m.randomOtherCommunity(rng)
		}
	}
	dest := m.coordInArea(rng, next)
	speed := m.MinSpeed + rng.RandU01()*(m.MaxSpeed-m.MinSpeed)
	return dest, speed
}

func (m *CrowdMovement) randomOtherCommunity(rng *rngstream.RngStream) int {
	if m.homeArea < minCommunityArea {
		return minCommunityArea + randIntn(rng, numCommunityAreas)
	}
	area := minCommunityArea + randIntn(rng, numCommunityAreas-1)
	if area >= m.homeArea {
		area++
	}
	return area
}
