package app

import (
	"sync"
	"time"

	"github.com/Kkkiiiirran/FitFlow/internal/motivation"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/rep"
	"github.com/Kkkiiiirran/FitFlow/internal/session"
)

// Tracker is a detection session together with its coach and metrics.
type Tracker struct {
	session *session.Session
	coach   *motivation.Coach
	app     *App
	once    sync.Once
}

// NewTracker starts a session for exerciseID. Milestone messages go to
// publish. Extra options are applied after the built-in listeners.
func (a *App) NewTracker(exerciseID string, publish func(motivation.Message), opts ...session.Option) (*Tracker, error) {
	p, err := a.registry.Lookup(exerciseID)
	if err != nil {
		return nil, err
	}

	coach := motivation.NewCoach(motivation.Config{
		Exercise:  p.ID,
		Kind:      p.Kind,
		Pool:      a.pool(p.ID),
		Generator: a.Generator(),
		Publish:   publish,
		Timeout:   a.config.GeneratorTimeout,
	})

	all := []session.Option{session.WithListener(coach)}
	if m := a.config.Metrics; m != nil {
		all = append(all, session.WithListener(m.SessionListener(p.ID)))
	}
	all = append(all, opts...)

	s, err := session.New(a.registry, p.ID, all...)
	if err != nil {
		coach.Close()
		return nil, err
	}
	if m := a.config.Metrics; m != nil {
		m.SessionStarted()
	}

	return &Tracker{session: s, coach: coach, app: a}, nil
}

// pool returns the message pool shared by every session of exerciseID, so
// generated messages outlive the session that asked for them.
func (a *App) pool(exerciseID string) *motivation.Pool {
	a.poolsMu.Lock()
	defer a.poolsMu.Unlock()

	p, ok := a.pools[exerciseID]
	if !ok {
		p = motivation.NewPool(motivation.DefaultMessages...)
		a.pools[exerciseID] = p
	}
	return p
}

// Session returns the underlying session.
func (t *Tracker) Session() *session.Session {
	return t.session
}

// Process runs one frame through the session and records its duration.
func (t *Tracker) Process(f *pose.Frame) rep.Result {
	start := time.Now()
	res := t.session.ProcessFrame(f)
	if m := t.app.config.Metrics; m != nil {
		m.ObserveFrame(time.Since(start))
	}
	return res
}

// Close stops the session and waits for pending message generation.
func (t *Tracker) Close() {
	t.once.Do(func() {
		t.session.Stop()
		t.coach.Close()
		if m := t.app.config.Metrics; m != nil {
			m.SessionEnded()
		}
	})
}
