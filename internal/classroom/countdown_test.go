package classroom

import (
	"strings"
	"testing"
	"time"
)

func TestCountdownFormat(t *testing.T) {
	clock := newFakeClock()

	tests := []struct {
		remaining time.Duration
		want      string
	}{
		{2*time.Hour + 3*time.Minute + 4*time.Second, "2h 3m 4s"},
		{59 * time.Minute, "59m 0s"},
		{time.Second, "0m 1s"},
	}
	for _, tt := range tests {
		c := NewCountdown(clock, clock.Now().Add(tt.remaining))
		got, startedNow := c.Tick()
		if got != tt.want {
			t.Errorf("Tick() at %v = %q, want %q", tt.remaining, got, tt.want)
		}
		if startedNow {
			t.Errorf("Tick() at %v reported start", tt.remaining)
		}
	}
}

func TestCountdownFiresExactlyOnce(t *testing.T) {
	clock := newFakeClock()
	c := NewCountdown(clock, clock.Now().Add(2*time.Second))

	if _, startedNow := c.Tick(); startedNow {
		t.Fatal("fired before the target")
	}

	clock.Advance(3 * time.Second)
	display, startedNow := c.Tick()
	if display != StartingNow {
		t.Errorf("display = %q, want %q", display, StartingNow)
	}
	if !startedNow {
		t.Error("crossing the target must report the start")
	}

	// Further ticks keep the display but never re-report the crossing.
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		display, startedNow = c.Tick()
		if display != StartingNow || startedNow {
			t.Fatalf("tick %d after target: display=%q startedNow=%t", i, display, startedNow)
		}
	}
}

func TestCountdownNeverShowsNegative(t *testing.T) {
	clock := newFakeClock()
	// Target already in the past when the view loads.
	c := NewCountdown(clock, clock.Now().Add(-time.Hour))

	display, startedNow := c.Tick()
	if display != StartingNow {
		t.Errorf("display = %q, want %q", display, StartingNow)
	}
	if !startedNow {
		t.Error("a past target still crosses on the first tick")
	}
	if strings.Contains(display, "-") {
		t.Errorf("display %q contains a negative component", display)
	}
}
