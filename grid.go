package dtnsim

// grid.go implements the uniform-grid bucketing optimization contract
// named in §4.1: neighbor search is sub-O(N²) by keying buckets with
// cellSizeMult × maxTransmitRange, so each host examines only hosts in
// its own and adjacent cells. No geometry/spatial-index library fits
// this, so it's a small hand-written map-keyed lookup structure (see
// DESIGN.md) rather than a third-party dependency.

import "math"

type cellKey struct{ cx, cy int }

// Grid buckets hosts by position for sub-quadratic neighbor queries.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]*Host
	cellOf   map[int]cellKey // host address -> current cell, to support removal
}

// CreateGrid is a constructor. cellSize should be cellSizeMult times the
// largest transmit range in the scenario (§4.1).
func CreateGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		panic("grid cell size must be positive")
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*Host),
		cellOf:   make(map[int]cellKey),
	}
}

func (g *Grid) keyFor(x, y float64) cellKey {
	return cellKey{cx: int(floorDiv(x, g.cellSize)), cy: int(floorDiv(y, g.cellSize))}
}

func floorDiv(v, size float64) float64 {
	return math.Floor(v / size)
}

// Place inserts or relocates a host in the grid according to its
// current position. Called once per host per tick after mobility runs.
func (g *Grid) Place(h *Host) {
	newKey := g.keyFor(h.X, h.Y)
	if oldKey, present := g.cellOf[h.Addr]; present {
		if oldKey == newKey {
			return
		}
		g.removeFromCell(oldKey, h)
	}
	g.cells[newKey] = append(g.cells[newKey], h)
	g.cellOf[h.Addr] = newKey
}

func (g *Grid) removeFromCell(key cellKey, h *Host) {
	bucket := g.cells[key]
	for idx, other := range bucket {
		if other == h {
			bucket[idx] = bucket[len(bucket)-1]
			g.cells[key] = bucket[:len(bucket)-1]
			break
		}
	}
}

// Neighbors returns every host in h's own cell and the 8 adjacent
// cells, excluding h itself.
func (g *Grid) Neighbors(h *Host) []*Host {
	center := g.cellOf[h.Addr]
	var out []*Host
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			key := cellKey{cx: center.cx + dx, cy: center.cy + dy}
			for _, other := range g.cells[key] {
				if other != h {
					out = append(out, other)
				}
			}
		}
	}
	return out
}
