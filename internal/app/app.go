// Package app wires the camera, the pose estimator and a detection session
// into the desktop exercise tracker.
package app

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/capture"
	"github.com/Kkkiiiirran/FitFlow/internal/detector"
	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/metrics"
	"github.com/Kkkiiiirran/FitFlow/internal/motivation"
	"github.com/Kkkiiiirran/FitFlow/internal/plugin"
	"github.com/Kkkiiiirran/FitFlow/internal/rep"
	"github.com/Kkkiiiirran/FitFlow/internal/store"
)

// Pipeline constants.
const (
	// AbsentFrames is the number of consecutive frames without a person
	// after which the estimator only runs on camera motion.
	AbsentFrames = 45
	// DefaultWakeThreshold is the changed pixel percentage that wakes the estimator.
	DefaultWakeThreshold = 1.0
	// DefaultExercise is tracked until another one is selected.
	DefaultExercise = exercise.BicepCurl
)

// Config holds configuration options for the application.
type Config struct {
	Registry         *exercise.Registry
	Store            *store.Store
	Metrics          *metrics.Manager
	PluginDir        string
	GeneratorPlugin  string
	GeneratorTimeout time.Duration
	CameraID         int
	WakeThreshold    float64
}

// Update is delivered to subscribers after every processed frame and for
// every motivation message.
type Update struct {
	Exercise string
	Result   rep.Result
	Message  *motivation.Message
}

// App tracks one exercise from the local camera.
type App struct {
	config     Config
	registry   *exercise.Registry
	camera     capture.Camera
	wake       *capture.WakeGate
	detector   detector.Detector
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	genMu     sync.RWMutex
	generator motivation.Generator

	mu       sync.RWMutex
	enabled  bool
	exercise string
	tracker  *Tracker
	recorder *recorder
	stopCh   chan struct{}
	done     chan struct{}

	poolsMu sync.Mutex
	pools   map[string]*motivation.Pool

	subMu       sync.Mutex
	subscribers map[int]func(Update)
	nextSub     int
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Registry == nil {
		config.Registry = exercise.NewRegistry()
	}
	if config.WakeThreshold <= 0 {
		config.WakeThreshold = DefaultWakeThreshold
	}
	if config.GeneratorTimeout <= 0 {
		config.GeneratorTimeout = motivation.DefaultTimeout
	}

	a := &App{
		config:      config,
		registry:    config.Registry,
		camera:      capture.NewCamera(config.CameraID),
		wake:        capture.NewWakeGate(config.WakeThreshold),
		pluginMgr:   plugin.NewManager(config.PluginDir),
		pluginExec:  plugin.NewExecutor(config.GeneratorTimeout),
		exercise:    DefaultExercise,
		pools:       make(map[string]*motivation.Pool),
		subscribers: make(map[int]func(Update)),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Info("using MediaPipe pose detection")
	} else {
		log.WithError(err).Warn("MediaPipe not available, using mock detector")
		a.detector = detector.NewMockDetector()
	}

	return a
}

// Registry returns the exercise registry.
func (a *App) Registry() *exercise.Registry {
	return a.registry
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Metrics returns the metrics manager, which may be nil.
func (a *App) Metrics() *metrics.Manager {
	return a.config.Metrics
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetEnabled enables or disables detection without closing the camera.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// DiscoverPlugins scans the plugin directory and picks the message generator:
// the configured plugin, or else the first one offering the motivate action.
func (a *App) DiscoverPlugins() error {
	if err := a.pluginMgr.Discover(); err != nil {
		return err
	}

	var (
		p   *plugin.Plugin
		err error
	)
	if a.config.GeneratorPlugin != "" {
		p, err = a.pluginMgr.Get(a.config.GeneratorPlugin)
	} else {
		p, err = a.pluginMgr.FindByAction(plugin.ActionMotivate)
	}
	if errors.Is(err, plugin.ErrPluginNotFound) {
		log.Info("no motivation plugin found, using built-in messages")
		return nil
	}
	if err != nil {
		return err
	}
	if !p.Manifest.Supports(plugin.ActionMotivate) {
		log.WithField("plugin", p.Manifest.Name).Warn("plugin does not support the motivate action")
		return nil
	}

	a.genMu.Lock()
	a.generator = motivation.NewPluginGenerator(a.pluginExec, p)
	a.genMu.Unlock()
	log.WithField("plugin", p.Manifest.Name).Info("motivation plugin loaded")
	return nil
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Generator returns the message generator, or nil when none is configured.
func (a *App) Generator() motivation.Generator {
	a.genMu.RLock()
	defer a.genMu.RUnlock()
	return a.generator
}

// LoadSettings applies stored profile overrides and restores the last
// selected exercise.
func (a *App) LoadSettings() error {
	s := a.config.Store
	if s == nil {
		return nil
	}

	overrides, err := s.Profiles().List()
	if err != nil {
		return err
	}
	if err := a.registry.ApplyOverrides(overrides); err != nil {
		return err
	}

	id, err := s.Settings().Get(store.SettingExercise)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := a.registry.Lookup(id); err != nil {
		log.WithField("exercise", id).Warn("stored exercise is unknown, keeping default")
		return nil
	}

	a.mu.Lock()
	a.exercise = id
	a.mu.Unlock()
	log.WithFields(log.Fields{"exercise": id, "overrides": len(overrides)}).Info("settings loaded")
	return nil
}

// Exercise returns the selected exercise.
func (a *App) Exercise() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.exercise
}

// SelectExercise switches the tracked exercise. A running pipeline starts a
// fresh session for it.
func (a *App) SelectExercise(id string) error {
	if _, err := a.registry.Lookup(id); err != nil {
		return err
	}

	a.mu.Lock()
	if a.exercise == id {
		a.mu.Unlock()
		return nil
	}
	a.exercise = id

	var old *Tracker
	if a.stopCh != nil {
		t, err := a.NewTracker(id, a.publish)
		if err != nil {
			a.mu.Unlock()
			return err
		}
		old, a.tracker = a.tracker, t
	}
	a.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if s := a.config.Store; s != nil {
		if err := s.Settings().Set(store.SettingExercise, id); err != nil {
			log.WithError(err).Warn("failed to persist exercise selection")
		}
	}
	log.WithField("exercise", id).Info("exercise selected")
	return nil
}

// Snapshot returns the selected exercise and the latest result of the
// running session. The result is zero when the pipeline is stopped.
func (a *App) Snapshot() (string, rep.Result) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.tracker == nil {
		return a.exercise, rep.Result{}
	}
	return a.exercise, a.tracker.Session().Snapshot()
}

// Reset restarts counting in the running session.
func (a *App) Reset() {
	a.mu.RLock()
	t := a.tracker
	a.mu.RUnlock()
	if t != nil {
		t.Session().Reset()
	}
}

// Subscribe registers fn for pipeline updates. fn runs on the pipeline
// goroutine and must not block. The returned function unsubscribes.
func (a *App) Subscribe(fn func(Update)) func() {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	id := a.nextSub
	a.nextSub++
	a.subscribers[id] = fn

	return func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		delete(a.subscribers, id)
	}
}

func (a *App) notify(u Update) {
	a.subMu.Lock()
	subs := make([]func(Update), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	a.subMu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}

func (a *App) publish(msg motivation.Message) {
	log.WithFields(log.Fields{
		"exercise": msg.Exercise,
		"value":    msg.Value,
	}).Info(msg.Text)
	a.notify(Update{Exercise: msg.Exercise, Message: &msg})
}

// Start opens the camera and begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	t, err := a.NewTracker(a.exercise, a.publish)
	if err != nil {
		a.camera.Close()
		return err
	}
	a.tracker = t

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	log.WithField("exercise", a.exercise).Info("detection pipeline started")
	return nil
}

// Done returns a channel closed when the pipeline goroutine exits, or nil
// when the pipeline was never started.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	done := a.done
	a.mu.Unlock()

	<-done

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.recorder != nil {
		if err := a.recorder.flush(); err != nil {
			log.WithError(err).Warn("failed to save recorded frames")
		}
		a.recorder = nil
	}
	if a.tracker != nil {
		a.tracker.Close()
		a.tracker = nil
	}
	if err := a.camera.Close(); err != nil {
		log.WithError(err).Warn("error closing camera")
	}
	a.wake.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.WithError(err).Warn("error closing detector")
		}
	}

	log.Info("detection pipeline stopped")
}
