package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurSize is the Gaussian kernel applied before differencing.
	blurSize = 21
	// pixelThreshold is the grey level change that marks a pixel as changed.
	pixelThreshold = 25
)

// WakeGate decides whether a frame is worth sending to the pose estimator
// while nobody is tracked. It compares each frame with the previous one and
// opens when the changed share of pixels exceeds the threshold percentage.
type WakeGate struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
	mu        sync.Mutex
}

// NewWakeGate creates a gate opening above threshold percent changed pixels.
func NewWakeGate(threshold float64) *WakeGate {
	return &WakeGate{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Open reports whether frame differs enough from the previous frame, and
// the changed percentage. The first frame after a reset only primes the gate.
func (g *WakeGate) Open(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := grayBlur(frame)
	defer blurred.Close()

	if !g.primed {
		blurred.CopyTo(&g.prev)
		g.primed = true
		return false, 0
	}

	changed := changedPercent(blurred, g.prev)
	blurred.CopyTo(&g.prev)

	return changed > g.threshold, changed
}

func grayBlur(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)
	return blurred
}

func changedPercent(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, pixelThreshold, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100.0
}

// Reset forgets the previous frame.
func (g *WakeGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

// Close releases the stored frame. The gate stays usable.
func (g *WakeGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

func (g *WakeGate) release() {
	if !g.prev.Empty() {
		g.prev.Close()
		g.prev = gocv.NewMat()
	}
	g.primed = false
}
