// Package metrics exposes Prometheus instruments for the detection pipeline.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Kkkiiiirran/FitFlow/internal/rep"
)

type Manager struct {
	// counters
	CounterFrames      *prometheus.CounterVec
	CounterReps        *prometheus.CounterVec
	CounterHoldSeconds *prometheus.CounterVec

	// gauges
	GaugeSessions prometheus.Gauge

	// histograms
	HistFrameDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("fitflow", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitflow", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterFrames := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_processed_total",
		Help:      "The total number of processed pose frames",
	}, []string{"exercise", "visible"})
	counterReps := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reps_total",
		Help:      "The total number of counted repetitions",
	}, []string{"exercise"})
	counterHoldSeconds := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "hold_seconds_total",
		Help:      "The total number of accrued hold seconds",
	}, []string{"exercise"})

	gaugeSessions := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_active",
		Help:      "Current number of running detection sessions",
	})

	histFrameDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.00001, 0.000025, 0.00005, 0.0001, 0.00025,
				0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1,
			},
			Name: "frame_process_duration_seconds",
			Help: "Duration of processing a single frame in seconds",
		},
	)

	return &Manager{
		CounterFrames:      counterFrames,
		CounterReps:        counterReps,
		CounterHoldSeconds: counterHoldSeconds,
		GaugeSessions:      gaugeSessions,
		HistFrameDuration:  histFrameDuration,
	}
}

// SessionStarted counts a new running session.
func (m *Manager) SessionStarted() {
	m.GaugeSessions.Inc()
}

// SessionEnded removes a running session.
func (m *Manager) SessionEnded() {
	m.GaugeSessions.Dec()
}

// ObserveFrame records how long one frame took to process.
func (m *Manager) ObserveFrame(d time.Duration) {
	m.HistFrameDuration.Observe(d.Seconds())
}

// SessionListener returns a listener recording the results of one session
// of exercise.
func (m *Manager) SessionListener(exercise string) *Listener {
	return &Listener{
		frames: map[bool]prometheus.Counter{
			true:  m.CounterFrames.WithLabelValues(exercise, strconv.FormatBool(true)),
			false: m.CounterFrames.WithLabelValues(exercise, strconv.FormatBool(false)),
		},
		reps:        m.CounterReps.WithLabelValues(exercise),
		holdSeconds: m.CounterHoldSeconds.WithLabelValues(exercise),
	}
}

// Listener feeds session results into the counters.
type Listener struct {
	frames      map[bool]prometheus.Counter
	reps        prometheus.Counter
	holdSeconds prometheus.Counter

	mu      sync.Mutex
	seconds int
}

// OnResult records one processed frame.
func (l *Listener) OnResult(_ string, res rep.Result) {
	l.frames[res.Visible].Inc()
	if res.Counted {
		l.reps.Inc()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if res.Seconds > l.seconds {
		l.holdSeconds.Add(float64(res.Seconds - l.seconds))
	}
	l.seconds = res.Seconds
}
