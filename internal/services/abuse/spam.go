package abuse

import (
	"time"

	"github.com/drawblin/drawblin/internal/dependencies/clock"
)

// Spam classification thresholds
const (
	instantGap   = 300 * time.Millisecond // gap at or under this is instant spam
	slowGap      = 500 * time.Millisecond // gap in (instant, slow] is slow spam
	rateWindow   = 4 * time.Second        // trailing window for rate spam
	rateLimit    = 6                      // messages within rateWindow to qualify
	burstTrigger = 3                      // consecutive instant messages for the first warning
	quietReset   = 5 * time.Second        // quiet time that resets the warning counter
	maxWarnings  = 3                      // warnings issued before a kick
)

// Verdict is the outcome of recording one message
type Verdict struct {
	Warn     bool // a new warning should be shown
	Warnings int  // warning count after this message
	Kick     bool // the sender must be kicked, with no further warning
}

// SpamDetector tracks one connection's message timing and escalates
// through the warning ladder.
type SpamDetector struct {
	clock clock.Clock

	recent   []time.Time // timestamps within the trailing rate window
	lastMsg  time.Time
	lastSpam time.Time
	burst    int // consecutive instant-gap messages, including the first
	warnings int
}

// NewSpamDetector creates a detector for a single connection
func NewSpamDetector(clk clock.Clock) *SpamDetector {
	return &SpamDetector{clock: clk}
}

// Warnings returns the current warning count
func (d *SpamDetector) Warnings() int {
	return d.warnings
}

// Record registers a message and returns the resulting verdict
func (d *SpamDetector) Record() Verdict {
	now := d.clock.Now()

	// A quiet spell forgives prior warnings
	if !d.lastSpam.IsZero() && now.Sub(d.lastSpam) >= quietReset {
		d.warnings = 0
	}

	gap := time.Duration(-1)
	if !d.lastMsg.IsZero() {
		gap = now.Sub(d.lastMsg)
	}
	d.lastMsg = now

	instant := gap >= 0 && gap <= instantGap
	slow := gap > instantGap && gap <= slowGap

	if instant {
		d.burst++
	} else {
		d.burst = 1
	}

	// Trailing-window rate check
	d.recent = append(d.recent, now)
	cutoff := now.Add(-rateWindow)
	for len(d.recent) > 0 && d.recent[0].Before(cutoff) {
		d.recent = d.recent[1:]
	}
	rated := len(d.recent) >= rateLimit

	qualifying := instant || slow || rated
	if !qualifying {
		return Verdict{Warnings: d.warnings}
	}
	d.lastSpam = now

	if d.warnings == 0 {
		if d.burst >= burstTrigger || rated {
			d.warnings = 1
			return Verdict{Warn: true, Warnings: 1}
		}
		return Verdict{Warnings: 0}
	}

	// Past the first warning, any instant or slow message escalates
	if !instant && !slow {
		return Verdict{Warnings: d.warnings}
	}
	if d.warnings >= maxWarnings {
		return Verdict{Warnings: d.warnings, Kick: true}
	}
	d.warnings++
	return Verdict{Warn: true, Warnings: d.warnings}
}
