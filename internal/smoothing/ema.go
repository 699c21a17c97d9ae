// Package smoothing suppresses single-frame jitter from the pose estimator.
package smoothing

// EMA is an exponential moving average over a scalar signal.
// Before the first observation it reports a neutral value.
type EMA struct {
	alpha       float64
	neutral     float64
	value       float64
	initialized bool
}

// NewEMA creates a filter with smoothing coefficient alpha in (0, 1].
// Higher alpha tracks the raw signal faster but passes more noise; 1 disables smoothing.
func NewEMA(alpha, neutral float64) *EMA {
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	return &EMA{
		alpha:   alpha,
		neutral: neutral,
	}
}

// Update folds a raw observation into the running value and returns it.
// The first observation seeds the filter.
func (e *EMA) Update(raw float64) float64 {
	if !e.initialized {
		e.value = raw
		e.initialized = true
		return e.value
	}
	e.value = e.alpha*raw + (1-e.alpha)*e.value
	return e.value
}

// Value returns the current smoothed value, or the neutral value if nothing was observed yet.
func (e *EMA) Value() float64 {
	if !e.initialized {
		return e.neutral
	}
	return e.value
}

// Reset forgets all observations.
func (e *EMA) Reset() {
	e.value = 0
	e.initialized = false
}
