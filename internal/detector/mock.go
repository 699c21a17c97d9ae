package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It returns queued frames in order and keeps repeating the last one.
type MockDetector struct {
	mu     sync.Mutex
	frames []*pose.Frame
	next   int
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrames sets the frames returned by successive Detect calls.
func (m *MockDetector) SetFrames(frames ...*pose.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued frame or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*pose.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.frames) == 0 {
		return nil, nil
	}

	f := m.frames[m.next]
	if m.next < len(m.frames)-1 {
		m.next++
	}
	return f.Clone(), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
