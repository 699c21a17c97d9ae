// Package pose provides body landmark types and the visibility gate used by exercise detection.
package pose

import "time"

// LandmarkID identifies a tracked body point.
type LandmarkID int

// Body landmark indices following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           LandmarkID = 0
	LeftEyeInner   LandmarkID = 1
	LeftEye        LandmarkID = 2
	LeftEyeOuter   LandmarkID = 3
	RightEyeInner  LandmarkID = 4
	RightEye       LandmarkID = 5
	RightEyeOuter  LandmarkID = 6
	LeftEar        LandmarkID = 7
	RightEar       LandmarkID = 8
	MouthLeft      LandmarkID = 9
	MouthRight     LandmarkID = 10
	LeftShoulder   LandmarkID = 11
	RightShoulder  LandmarkID = 12
	LeftElbow      LandmarkID = 13
	RightElbow     LandmarkID = 14
	LeftWrist      LandmarkID = 15
	RightWrist     LandmarkID = 16
	LeftPinky      LandmarkID = 17
	RightPinky     LandmarkID = 18
	LeftIndex      LandmarkID = 19
	RightIndex     LandmarkID = 20
	LeftThumb      LandmarkID = 21
	RightThumb     LandmarkID = 22
	LeftHip        LandmarkID = 23
	RightHip       LandmarkID = 24
	LeftKnee       LandmarkID = 25
	RightKnee      LandmarkID = 26
	LeftAnkle      LandmarkID = 27
	RightAnkle     LandmarkID = 28
	LeftHeel       LandmarkID = 29
	RightHeel      LandmarkID = 30
	LeftFootIndex  LandmarkID = 31
	RightFootIndex LandmarkID = 32
	NumLandmarks              = 33
)

// Valid reports whether the ID is inside the pose model's landmark range.
func (id LandmarkID) Valid() bool {
	return id >= 0 && id < NumLandmarks
}

// Point3D represents a point in normalized image coordinates.
// X and Y are in [0,1] when inside the frame; Z is relative depth and is
// ignored by the angle computations.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmark is a single tracked body point with the estimator's confidence.
type Landmark struct {
	Point3D
	Visibility float64 `json:"visibility"`
}

// Frame is one synchronized set of landmarks for one time step.
// A landmark missing from Points was not reported by the estimator.
type Frame struct {
	Points     map[LandmarkID]Landmark
	CapturedAt time.Time
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{Points: make(map[LandmarkID]Landmark, NumLandmarks)}
}

// Set stores a landmark, ignoring IDs outside the pose model.
func (f *Frame) Set(id LandmarkID, lm Landmark) {
	if !id.Valid() {
		return
	}
	if f.Points == nil {
		f.Points = make(map[LandmarkID]Landmark, NumLandmarks)
	}
	f.Points[id] = lm
}

// Get returns the landmark for id and whether it was reported.
func (f *Frame) Get(id LandmarkID) (Landmark, bool) {
	if f == nil || f.Points == nil {
		return Landmark{}, false
	}
	lm, ok := f.Points[id]
	return lm, ok
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	c := &Frame{
		Points:     make(map[LandmarkID]Landmark, len(f.Points)),
		CapturedAt: f.CapturedAt,
	}
	for id, lm := range f.Points {
		c.Points[id] = lm
	}
	return c
}

// Side selects the left or right half of the body.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Joint is a side-independent body joint.
type Joint int

const (
	Shoulder Joint = iota
	Elbow
	Wrist
	Hip
	Knee
	Ankle
)

var leftJoints = [...]LandmarkID{
	Shoulder: LeftShoulder,
	Elbow:    LeftElbow,
	Wrist:    LeftWrist,
	Hip:      LeftHip,
	Knee:     LeftKnee,
	Ankle:    LeftAnkle,
}

var jointNames = [...]string{
	Shoulder: "shoulder",
	Elbow:    "elbow",
	Wrist:    "wrist",
	Hip:      "hip",
	Knee:     "knee",
	Ankle:    "ankle",
}

// On resolves the joint to a landmark on the given side.
// Right-side landmarks directly follow their left counterparts in the
// MediaPipe numbering.
func (j Joint) On(s Side) LandmarkID {
	id := leftJoints[j]
	if s == Right {
		id++
	}
	return id
}

func (j Joint) String() string {
	if j < 0 || int(j) >= len(jointNames) {
		return "unknown"
	}
	return jointNames[j]
}

// ParseJoint returns the joint with the given name.
func ParseJoint(name string) (Joint, bool) {
	for j, n := range jointNames {
		if n == name {
			return Joint(j), true
		}
	}
	return 0, false
}
