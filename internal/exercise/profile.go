// Package exercise holds the immutable exercise profiles that parameterize repetition detection.
package exercise

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// ErrInvalidProfile is returned when a profile or override fails validation.
var ErrInvalidProfile = errors.New("invalid profile")

// Kind selects the state machine variant driven by a profile.
type Kind string

const (
	// KindThreshold counts discrete repetitions with a hysteresis counter.
	KindThreshold Kind = "threshold"
	// KindHold times an isometric hold.
	KindHold Kind = "hold"
)

// Signal selects the per-side scalar computed from a frame.
type Signal string

const (
	// SignalAngle is the interior angle at Joints[1] between Joints[0] and Joints[2].
	SignalAngle Signal = "angle"
	// SignalLift is how far Joints[0] sits above Joints[1], in normalized image units.
	SignalLift Signal = "lift"
	// SignalPosture is the composite plank predicate; it has no scalar thresholds.
	SignalPosture Signal = "posture"
)

// Combine is the policy merging left and right side signals.
type Combine string

const (
	CombineMax           Combine = "max"
	CombineMin           Combine = "min"
	CombineAverage       Combine = "average"
	CombinePreferVisible Combine = "prefer-visible"
)

// HoldParams configures the hold timer.
type HoldParams struct {
	// TorsoRatio is k in |dx| > |dy|*k for the shoulder-hip line.
	TorsoRatio float64
	// LegRatio is the same test for the knee-ankle line.
	LegRatio float64
	// Stabilize is how long the posture must hold before time accrues.
	Stabilize time.Duration
	// Tick is the accrual unit.
	Tick time.Duration
	// OcclusionGrace is the longest full occlusion a hold survives.
	OcclusionGrace time.Duration
}

// Profile is the immutable configuration of one exercise.
type Profile struct {
	ID   string
	Name string
	Kind Kind

	Signal  Signal
	Joints  []pose.Joint
	Sides   []pose.Side
	Combine Combine

	// Rest and Active are the hysteresis thresholds. When Active < Rest the
	// counter fires on a falling signal, otherwise on a rising one.
	Rest   float64
	Active float64
	// ActiveMax bounds a rising crossing from above; zero disables it.
	ActiveMax float64
	// SwingThreshold withholds the displayed stage while the two sides differ
	// by more than this; zero disables it.
	SwingThreshold float64

	Alpha    float64
	Neutral  float64
	Cooldown int

	MinVisibility  float64
	PositionFilter bool

	RestStage    string
	ActiveStage  string
	InitialStage string

	Hold HoldParams
}

// Falling reports whether a repetition is counted on a decreasing signal.
func (p Profile) Falling() bool {
	return p.Active < p.Rest
}

// RestReached reports whether the signal is past the rest threshold.
func (p Profile) RestReached(v float64) bool {
	if p.Falling() {
		return v > p.Rest
	}
	return v < p.Rest
}

// ActiveReached reports whether the signal is past the active threshold.
func (p Profile) ActiveReached(v float64) bool {
	if p.Falling() {
		return v < p.Active
	}
	if p.ActiveMax != 0 && v >= p.ActiveMax {
		return false
	}
	return v > p.Active
}

// Validate checks the profile for internally inconsistent parameters.
func (p Profile) Validate() error {
	if p.ID == "" {
		return errors.Wrap(ErrInvalidProfile, "empty id")
	}
	if p.MinVisibility < 0 || p.MinVisibility > 1 {
		return errors.Wrapf(ErrInvalidProfile, "%s: min visibility %v outside [0,1]", p.ID, p.MinVisibility)
	}
	if len(p.Sides) == 0 {
		return errors.Wrapf(ErrInvalidProfile, "%s: no sides", p.ID)
	}
	if p.RestStage == "" || p.ActiveStage == "" {
		return errors.Wrapf(ErrInvalidProfile, "%s: missing stage labels", p.ID)
	}

	switch p.Kind {
	case KindThreshold:
		return p.validateThreshold()
	case KindHold:
		return p.validateHold()
	default:
		return errors.Wrapf(ErrInvalidProfile, "%s: unknown kind %q", p.ID, p.Kind)
	}
}

func (p Profile) validateThreshold() error {
	switch p.Signal {
	case SignalAngle:
		if len(p.Joints) != 3 {
			return errors.Wrapf(ErrInvalidProfile, "%s: angle signal needs 3 joints, got %d", p.ID, len(p.Joints))
		}
	case SignalLift:
		if len(p.Joints) != 2 {
			return errors.Wrapf(ErrInvalidProfile, "%s: lift signal needs 2 joints, got %d", p.ID, len(p.Joints))
		}
	default:
		return errors.Wrapf(ErrInvalidProfile, "%s: signal %q cannot drive a counter", p.ID, p.Signal)
	}

	switch p.Combine {
	case CombineMax, CombineMin, CombineAverage, CombinePreferVisible:
	default:
		return errors.Wrapf(ErrInvalidProfile, "%s: unknown combine policy %q", p.ID, p.Combine)
	}

	if p.Rest == p.Active {
		return errors.Wrapf(ErrInvalidProfile, "%s: rest and active thresholds must differ", p.ID)
	}
	if p.ActiveMax != 0 && (p.Falling() || p.ActiveMax <= p.Active) {
		return errors.Wrapf(ErrInvalidProfile, "%s: active max %v must bound a rising active threshold %v", p.ID, p.ActiveMax, p.Active)
	}
	if p.Alpha <= 0 || p.Alpha > 1 {
		return errors.Wrapf(ErrInvalidProfile, "%s: alpha %v outside (0,1]", p.ID, p.Alpha)
	}
	if p.Cooldown < 0 {
		return errors.Wrapf(ErrInvalidProfile, "%s: negative cooldown", p.ID)
	}
	if p.SwingThreshold < 0 {
		return errors.Wrapf(ErrInvalidProfile, "%s: negative swing threshold", p.ID)
	}
	if p.InitialStage != p.RestStage && p.InitialStage != p.ActiveStage {
		return errors.Wrapf(ErrInvalidProfile, "%s: initial stage %q is neither %q nor %q", p.ID, p.InitialStage, p.RestStage, p.ActiveStage)
	}
	return nil
}

func (p Profile) validateHold() error {
	h := p.Hold
	if h.TorsoRatio <= 0 || h.LegRatio <= 0 {
		return errors.Wrapf(ErrInvalidProfile, "%s: posture ratios must be positive", p.ID)
	}
	if h.Stabilize < 0 || h.Tick <= 0 || h.OcclusionGrace < 0 {
		return errors.Wrapf(ErrInvalidProfile, "%s: invalid hold timing", p.ID)
	}
	return nil
}

// clone copies the slices so callers cannot mutate a registered profile.
func (p Profile) clone() Profile {
	p.Joints = append([]pose.Joint(nil), p.Joints...)
	p.Sides = append([]pose.Side(nil), p.Sides...)
	return p
}
