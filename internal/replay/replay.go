// Package replay drives recorded frame sequences through a fresh detection
// session so thresholds can be checked against real motion.
package replay

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/rep"
	"github.com/Kkkiiiirran/FitFlow/internal/session"
	"github.com/Kkkiiiirran/FitFlow/internal/trace"
)

// FrameInterval spaces frames that carry no capture time.
const FrameInterval = time.Second / 30

// Summary is the outcome of one replay.
type Summary struct {
	Exercise    string      `json:"exercise"`
	Frames      int         `json:"frames"`
	Invisible   int         `json:"invisible"`
	Transitions int         `json:"transitions"`
	Count       int         `json:"count"`
	Seconds     int         `json:"seconds"`
	Final       rep.Result  `json:"final"`
	DurationMs  int64       `json:"duration_ms"`
	Rows        []trace.Row `json:"rows,omitempty"`
}

// Option configures a replay.
type Option func(*options)

type options struct {
	logger *log.Entry
	start  time.Time
}

// WithLogger sets the log entry handed to the replayed session.
func WithLogger(entry *log.Entry) Option {
	return func(o *options) {
		o.logger = entry
	}
}

// WithStart sets the synthetic time of the first frame when frames carry no
// capture time.
func WithStart(t time.Time) Option {
	return func(o *options) {
		o.start = t
	}
}

// Run replays frames for exerciseID and returns the summary. Capture times
// recorded on the frames are honored; frames without one advance a synthetic
// clock by FrameInterval.
func Run(ctx context.Context, reg *exercise.Registry, exerciseID string, frames []*pose.Frame, opts ...Option) (Summary, error) {
	o := options{
		logger: log.NewEntry(log.StandardLogger()),
		start:  time.Unix(0, 0).UTC(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	clock := o.start
	s, err := session.New(reg, exerciseID,
		session.WithLogger(o.logger.WithField("replay", true)),
		session.WithClock(func() time.Time { return clock }),
	)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "Can't replay %d frames", len(frames))
	}
	defer s.Stop()

	sum := Summary{
		Exercise: exerciseID,
		Rows:     make([]trace.Row, 0, len(frames)),
	}

	var first, last time.Time
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return Summary{}, errors.Wrapf(err, "replay interrupted at frame %d", i)
		}

		now := clock
		if f != nil && !f.CapturedAt.IsZero() {
			now = f.CapturedAt
		}
		if i == 0 {
			first = now
		}
		last = now

		res := s.ProcessFrame(f)
		clock = now.Add(FrameInterval)

		sum.Frames++
		if !res.Visible {
			sum.Invisible++
		}
		if res.StageChanged {
			sum.Transitions++
		}
		sum.Rows = append(sum.Rows, trace.NewRow(i, exerciseID, now.Sub(first), res))
	}

	sum.Final = s.Snapshot()
	sum.Count = sum.Final.Count
	sum.Seconds = sum.Final.Seconds
	sum.DurationMs = last.Sub(first).Milliseconds()

	return sum, nil
}
