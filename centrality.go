package dtnsim

// centrality.go implements Bubble Rap's centrality estimators: global
// centrality (how connected a host is in the network at large) and
// local centrality (how connected it is within its own community),
// each computable over an S-window (simple count of distinct contacts)
// or a C-window (cumulative unique-contact count across a sliding set
// of recent windows). Grounded on BubbleRapRouter.java's centrality
// family.

// CentralityWindow selects which windowing scheme a Centrality
// estimator uses.
type CentralityWindow int

const (
	// SWindow counts distinct contacts seen in the current window only.
	SWindow CentralityWindow = iota
	// CWindow accumulates the union of distinct contacts across the
	// last windowCount windows.
	CWindow
)

// Centrality estimates a host's connectivity, either network-wide
// (global) or restricted to its own community (local).
type Centrality struct {
	window      CentralityWindow
	windowSecs  float64
	windowCount int // number of windows retained for CWindow

	current    map[int]bool
	history    []map[int]bool // oldest first, retained windows for CWindow
	windowEnd  float64
}

// CreateCentrality is a constructor. windowSecs is the length of one
// window in simulated seconds; windowCount only matters for CWindow.
func CreateCentrality(window CentralityWindow, windowSecs float64, windowCount int) *Centrality {
	if windowCount < 1 {
		windowCount = 1
	}
	return &Centrality{
		window:      window,
		windowSecs:  windowSecs,
		windowCount: windowCount,
		current:     make(map[int]bool),
	}
}

// NoteContact records a contact with peer at simulated time now,
// rolling the window over if it has elapsed.
func (c *Centrality) NoteContact(peer int, now float64) {
	c.rollIfElapsed(now)
	c.current[peer] = true
}

func (c *Centrality) rollIfElapsed(now float64) {
	if c.windowEnd == 0 {
		c.windowEnd = now + c.windowSecs
		return
	}
	for now >= c.windowEnd {
		c.history = append(c.history, c.current)
		if len(c.history) > c.windowCount {
			c.history = c.history[len(c.history)-c.windowCount:]
		}
		c.current = make(map[int]bool)
		c.windowEnd += c.windowSecs
	}
}

// Value returns the current centrality estimate: the number of
// distinct contacts in the active window (SWindow), or the size of the
// union of contacts across every retained window plus the active one
// (CWindow).
func (c *Centrality) Value() float64 {
	if c.window == SWindow {
		return float64(len(c.current))
	}
	union := make(map[int]bool)
	for _, w := range c.history {
		for p := range w {
			union[p] = true
		}
	}
	for p := range c.current {
		union[p] = true
	}
	return float64(len(union))
}
