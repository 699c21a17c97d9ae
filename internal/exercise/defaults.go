package exercise

import (
	"time"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Exercise identifiers.
const (
	BicepCurl     = "bicep-curl"
	Squats        = "squats"
	ShoulderPress = "shoulder-press"
	LateralRaise  = "lateral-raise"
	Lunges        = "lunges"
	Crunches      = "crunches"
	Plank         = "plank"
)

// Stage labels.
const (
	StageUp         = "Up"
	StageDown       = "Down"
	StageHolding    = "Holding"
	StageNotHolding = "Not Holding"
)

var bothSides = []pose.Side{pose.Left, pose.Right}

// Defaults returns the built-in profiles. Thresholds are tuned starting points
// and are expected to be revisited against recorded motion.
func Defaults() []Profile {
	return []Profile{
		{
			ID:            BicepCurl,
			Name:          "Bicep Curl",
			Kind:          KindThreshold,
			Signal:        SignalAngle,
			Joints:        []pose.Joint{pose.Shoulder, pose.Elbow, pose.Wrist},
			Sides:         bothSides,
			Combine:       CombinePreferVisible,
			Rest:          160,
			Active:        40,
			Alpha:         1,
			Neutral:       180,
			Cooldown:      0,
			MinVisibility: 0.6,
			RestStage:     StageDown,
			ActiveStage:   StageUp,
			InitialStage:  StageDown,
		},
		{
			ID:            Squats,
			Name:          "Squats",
			Kind:          KindThreshold,
			Signal:        SignalAngle,
			Joints:        []pose.Joint{pose.Hip, pose.Knee, pose.Ankle},
			Sides:         bothSides,
			Combine:       CombinePreferVisible,
			Rest:          160,
			Active:        90,
			Alpha:         1,
			Neutral:       180,
			Cooldown:      0,
			MinVisibility: 0.6,
			RestStage:     StageUp,
			ActiveStage:   StageDown,
			InitialStage:  StageUp,
		},
		{
			ID:     ShoulderPress,
			Name:   "Shoulder Press",
			Kind:   KindThreshold,
			Signal: SignalLift,
			Joints: []pose.Joint{pose.Elbow, pose.Shoulder},
			Sides:  bothSides,
			// Both elbows must clear the shoulders, so the lower side decides.
			Combine:       CombineMin,
			Rest:          0,
			Active:        0.03,
			Alpha:         1,
			Neutral:       0,
			Cooldown:      10,
			MinVisibility: 0.6,
			RestStage:     StageDown,
			ActiveStage:   StageUp,
			InitialStage:  StageDown,
		},
		{
			ID:             LateralRaise,
			Name:           "Lateral Raise",
			Kind:           KindThreshold,
			Signal:         SignalAngle,
			Joints:         []pose.Joint{pose.Hip, pose.Shoulder, pose.Elbow},
			Sides:          bothSides,
			Combine:        CombineMax,
			Rest:           65,
			Active:         85,
			ActiveMax:      125,
			SwingThreshold: 65,
			Alpha:          0.5,
			Neutral:        0,
			Cooldown:       12,
			MinVisibility:  0.6,
			RestStage:      StageDown,
			ActiveStage:    StageUp,
			InitialStage:   StageDown,
		},
		{
			ID:            Lunges,
			Name:          "Lunges",
			Kind:          KindThreshold,
			Signal:        SignalAngle,
			Joints:        []pose.Joint{pose.Hip, pose.Knee, pose.Ankle},
			Sides:         bothSides,
			Combine:       CombineMin,
			Rest:          160,
			Active:        100,
			Alpha:         0.5,
			Neutral:       180,
			Cooldown:      12,
			MinVisibility: 0.6,
			RestStage:     StageUp,
			ActiveStage:   StageDown,
			InitialStage:  StageUp,
		},
		{
			ID:            Crunches,
			Name:          "Crunches",
			Kind:          KindThreshold,
			Signal:        SignalAngle,
			Joints:        []pose.Joint{pose.Shoulder, pose.Hip, pose.Knee},
			Sides:         bothSides,
			Combine:       CombineAverage,
			Rest:          160,
			Active:        110,
			Alpha:         0.25,
			Neutral:       180,
			Cooldown:      10,
			MinVisibility: 0.5,
			RestStage:     StageDown,
			ActiveStage:   StageUp,
			InitialStage:  StageDown,
		},
		{
			ID:            Plank,
			Name:          "Plank",
			Kind:          KindHold,
			Signal:        SignalPosture,
			Sides:         bothSides,
			MinVisibility: 0.55,
			RestStage:     StageNotHolding,
			ActiveStage:   StageHolding,
			InitialStage:  StageNotHolding,
			Hold: HoldParams{
				TorsoRatio:     1.2,
				LegRatio:       0.6,
				Stabilize:      700 * time.Millisecond,
				Tick:           time.Second,
				OcclusionGrace: time.Second,
			},
		},
	}
}
