package core

import "time"

// Clock measures elapsed time in seconds. The zero value is a stopped clock.
type Clock struct {
	now       func() time.Time
	startTime time.Time
	lastTime  time.Time
	elapsed   float64
	running   bool
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockWithSource builds a clock driven by now. Used by tests to step time.
func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = c.now().Sub(c.startTime).Seconds()
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.lastTime = c.startTime
	c.elapsed = 0
	c.running = true
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// Delta returns the seconds since the previous call to Delta (or since Start).
// A stopped clock reports zero.
func (c *Clock) Delta() float64 {
	if !c.running {
		return 0
	}
	t := c.now()
	d := t.Sub(c.lastTime).Seconds()
	c.lastTime = t
	return d
}

// Now returns the current time of the clock's source.
func (c *Clock) Now() time.Time {
	return c.now()
}
