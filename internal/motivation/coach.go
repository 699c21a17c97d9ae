package motivation

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/rep"
)

// DefaultTimeout bounds a single generator call.
const DefaultTimeout = 5 * time.Second

// Prompt describes the milestone a message is generated for.
type Prompt struct {
	Exercise string
	Value    int
	Unit     string
}

// Generator produces a fresh message for a milestone.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Message is published when a session reaches a milestone.
type Message struct {
	SessionID string `json:"session_id"`
	Exercise  string `json:"exercise"`
	Value     int    `json:"value"`
	Unit      string `json:"unit"`
	Text      string `json:"text"`
}

// Config configures a Coach.
type Config struct {
	Exercise string
	Kind     exercise.Kind
	Pool     *Pool
	// Generator is optional; without it only the pool answers.
	Generator Generator
	// Publish receives milestone messages on the frame goroutine and must not block.
	Publish func(Message)
	Timeout time.Duration
}

// Coach is a session listener that publishes a pool message on every
// milestone and asks the generator for a new one in the background.
type Coach struct {
	exercise  string
	unit      string
	pool      *Pool
	generator Generator
	publish   func(Message)
	timeout   time.Duration

	mu   sync.Mutex
	last map[string]int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoach creates a coach for one exercise.
func NewCoach(cfg Config) *Coach {
	if cfg.Pool == nil {
		cfg.Pool = NewPool(DefaultMessages...)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Publish == nil {
		cfg.Publish = func(Message) {}
	}
	unit := "reps"
	if cfg.Kind == exercise.KindHold {
		unit = "seconds"
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coach{
		exercise:  cfg.Exercise,
		unit:      unit,
		pool:      cfg.Pool,
		generator: cfg.Generator,
		publish:   cfg.Publish,
		timeout:   cfg.Timeout,
		last:      make(map[string]int),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// OnResult publishes a message when the session value moves onto a milestone.
func (c *Coach) OnResult(sessionID string, res rep.Result) {
	v := res.Value()

	c.mu.Lock()
	changed := v != c.last[sessionID]
	c.last[sessionID] = v
	c.mu.Unlock()

	if !changed || !IsMilestone(v) {
		return
	}

	c.publish(Message{
		SessionID: sessionID,
		Exercise:  c.exercise,
		Value:     v,
		Unit:      c.unit,
		Text:      c.pool.Pick(),
	})

	if c.generator == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Err() != nil {
		return
	}
	c.wg.Add(1)
	go c.refill(Prompt{Exercise: c.exercise, Value: v, Unit: c.unit})
}

func (c *Coach) refill(p Prompt) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	text, err := c.generator.Generate(ctx, p)
	if err != nil {
		log.WithError(err).WithField("exercise", p.Exercise).Warn("motivation generator failed")
		return
	}
	c.pool.Add(text)
}

// Close cancels pending generator calls and waits for them to return.
func (c *Coach) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}
