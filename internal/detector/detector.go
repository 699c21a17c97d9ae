// Package detector turns camera frames into body pose landmarks.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Detector defines the interface for pose estimation implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of the most
	// prominent person. Returns nil if nobody is detected.
	Detect(frame *gocv.Mat) (*pose.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ModelComplexity selects the pose model: 0 lite, 1 full, 2 heavy.
	ModelComplexity int

	// IdleTimeout stops the estimator process after this long without frames.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		ModelComplexity: 1,
		IdleTimeout:     30 * time.Second,
	}
}
