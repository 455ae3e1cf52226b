package main

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"golang.org/x/time/rate"
)

// progressReporter prints render progress.  On a terminal it redraws one
// line; otherwise it logs at most once per logInterval.
type progressReporter struct {
	out         io.Writer
	interactive bool
	limiter     *rate.Limiter
}

func newProgressReporter(out io.Writer, interactive bool, logInterval time.Duration) *progressReporter {
	limit := rate.Every(logInterval)
	if interactive {
		limit = rate.Limit(10)
	}
	return &progressReporter{
		out:         out,
		interactive: interactive,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

func (p *progressReporter) Update(cur, tot int) {
	if cur < tot && !p.limiter.Allow() {
		return
	}

	pct := 100
	if tot > 0 {
		pct = 100 * cur / tot
	}

	if p.interactive {
		fmt.Fprintf(p.out, "\r%d/%d %d%%", cur, tot, pct)
		return
	}
	glog.Infof("Progress: %d/%d samples (%d%%)", cur, tot, pct)
}

// Done ends the progress line.
func (p *progressReporter) Done() {
	if p.interactive {
		fmt.Fprintf(p.out, "\n")
	}
}
