package classroom

import (
	"fmt"
	"time"
)

// StartingNow is displayed once the countdown reaches zero, until the
// session status actually flips to live.
const StartingNow = "STARTING NOW"

// Countdown tracks the time remaining until the scheduled start. Display is
// recomputed on a 1-second tick by the engine; negative remainders are
// clamped so the UI can never show a negative time.
type Countdown struct {
	clock  Clock
	target time.Time
	fired  bool
}

func NewCountdown(clock Clock, target time.Time) *Countdown {
	return &Countdown{clock: clock, target: target}
}

// Tick returns the display string and whether this tick crossed zero. The
// crossing reports true exactly once no matter how often Tick runs
// afterwards.
func (c *Countdown) Tick() (display string, startedNow bool) {
	remaining := c.target.Sub(c.clock.Now())
	if remaining <= 0 {
		startedNow = !c.fired
		c.fired = true
		return StartingNow, startedNow
	}
	return formatRemaining(remaining), false
}

func formatRemaining(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
