// Package session binds an exercise profile and its state machine to a
// stream of pose frames.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/rep"
	"github.com/Kkkiiiirran/FitFlow/internal/smoothing"
)

// Listener observes every processed frame. OnResult is called synchronously
// on the goroutine driving the session and must not block.
type Listener interface {
	OnResult(sessionID string, res rep.Result)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(sessionID string, res rep.Result)

// OnResult calls f.
func (f ListenerFunc) OnResult(sessionID string, res rep.Result) {
	f(sessionID, res)
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source used for frames without a capture time.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithLogger sets the base log entry.
func WithLogger(entry *log.Entry) Option {
	return func(s *Session) {
		s.log = entry
	}
}

// WithListener registers a listener.
func WithListener(l Listener) Option {
	return func(s *Session) {
		s.listeners = append(s.listeners, l)
	}
}

// Session drives one exercise over a frame stream.
type Session struct {
	mu sync.Mutex

	id        string
	profile   exercise.Profile
	machine   rep.Machine
	filter    *smoothing.PositionFilter
	clock     func() time.Time
	log       *log.Entry
	listeners []Listener

	stopped bool
	visible bool
}

// New creates a session for exerciseID. An unknown identifier is returned as
// an error wrapping exercise.ErrUnknownExercise and no session is created.
func New(reg *exercise.Registry, exerciseID string, opts ...Option) (*Session, error) {
	p, err := reg.Lookup(exerciseID)
	if err != nil {
		return nil, errors.Wrap(err, "Can't start session")
	}

	m, err := rep.New(p)
	if err != nil {
		return nil, errors.Wrap(err, "Can't start session")
	}

	s := &Session{
		id:      uuid.New().String(),
		profile: p,
		machine: m,
		clock:   time.Now,
		log:     log.NewEntry(log.StandardLogger()),
		visible: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if p.PositionFilter {
		s.filter = smoothing.NewPositionFilter(1)
	}
	s.log = s.log.WithFields(log.Fields{
		"session":  s.id,
		"exercise": p.ID,
	})

	s.log.Info("session started")
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Exercise returns the exercise identifier.
func (s *Session) Exercise() string {
	return s.profile.ID
}

// Profile returns the profile the session was created with.
func (s *Session) Profile() exercise.Profile {
	return s.profile
}

// ProcessFrame runs one frame through the state machine and notifies
// listeners. It never fails: frames without usable landmarks produce a
// result with Visible=false and unchanged state. A stopped session ignores
// frames and returns its final snapshot.
func (s *Session) ProcessFrame(f *pose.Frame) rep.Result {
	s.mu.Lock()
	if s.stopped {
		res := s.machine.Snapshot()
		s.mu.Unlock()
		return res
	}

	now := s.clock()
	if f != nil && !f.CapturedAt.IsZero() {
		now = f.CapturedAt
	}

	if s.filter != nil && f != nil {
		filtered, err := s.filter.Apply(f, s.profile.MinVisibility)
		if err != nil {
			s.log.WithError(err).Warn("position filter failed, using raw landmarks")
		} else {
			f = filtered
		}
	}

	res := s.machine.Step(f, now)
	s.trace(res)

	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l.OnResult(s.id, res)
	}
	return res
}

func (s *Session) trace(res rep.Result) {
	if res.Visible != s.visible {
		s.visible = res.Visible
		if res.Visible {
			s.log.Debug("subject back in view")
		} else {
			s.log.Debug("subject not fully visible")
		}
	}
	if res.Counted {
		s.log.WithField("count", res.Count).Debug("rep counted")
	}
	if res.StageChanged {
		s.log.WithFields(log.Fields{
			"stage":   res.Stage,
			"seconds": res.Seconds,
		}).Debug("stage changed")
	}
}

// Snapshot returns the latest result without advancing.
func (s *Session) Snapshot() rep.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Snapshot()
}

// Reset returns the session to the profile's initial state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.machine.Reset()
	if s.filter != nil {
		s.filter.Reset()
	}
	s.visible = true
	s.log.Info("session reset")
}

// Stop ends the session. It is safe to call more than once.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	s.listeners = nil
	final := s.machine.Snapshot()
	s.log.WithFields(log.Fields{
		"count":   final.Count,
		"seconds": final.Seconds,
	}).Info("session stopped")
}

// Stopped reports whether Stop was called.
func (s *Session) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
