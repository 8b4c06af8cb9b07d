package dtnsim

import "github.com/iti/evt/vrtime"

// Clock holds the monotonic simulated time of a World, expressed both
// as an evt/vrtime.Time (for scheduling) and as an integer tick index
// derived from the configured step size.
type Clock struct {
	updateInterval float64 // seconds per tick
	tick           int64
	now            vrtime.Time
}

// CreateClock is a constructor.
func CreateClock(updateInterval float64) *Clock {
	if updateInterval <= 0 {
		panic("updateInterval must be positive")
	}
	return &Clock{updateInterval: updateInterval}
}

// Seconds returns the current simulated time in seconds.
func (c *Clock) Seconds() float64 {
	return c.now.Seconds()
}

// Tick returns the current integer tick index.
func (c *Clock) Tick() int64 {
	return c.tick
}

// Time returns the current simulated time as a vrtime.Time.
func (c *Clock) Time() vrtime.Time {
	return c.now
}

// Advance moves the clock forward by exactly one updateInterval and
// returns the new simulated time.
func (c *Clock) Advance() vrtime.Time {
	c.tick++
	c.now = vrtime.SecondsToTime(float64(c.tick) * c.updateInterval)
	return c.now
}

// UpdateInterval returns the configured per-tick step size, in seconds.
func (c *Clock) UpdateInterval() float64 {
	return c.updateInterval
}
