package pose

// IsUsable reports whether a landmark can feed detection this frame: its
// visibility must exceed minConfidence and its normalized coordinates must lie
// inside the image. Estimators pin occluded points outside [0,1], so those are
// rejected even when their visibility is high.
func IsUsable(lm Landmark, minConfidence float64) bool {
	return lm.Visibility > minConfidence &&
		lm.X >= 0 && lm.X <= 1 &&
		lm.Y >= 0 && lm.Y <= 1
}

// Usable returns the landmark for id if it was reported and passes the gate.
func (f *Frame) Usable(id LandmarkID, minConfidence float64) (Landmark, bool) {
	lm, ok := f.Get(id)
	if !ok || !IsUsable(lm, minConfidence) {
		return Landmark{}, false
	}
	return lm, true
}

// AllUsable reports whether every listed landmark passes the gate.
func (f *Frame) AllUsable(minConfidence float64, ids ...LandmarkID) bool {
	for _, id := range ids {
		if _, ok := f.Usable(id, minConfidence); !ok {
			return false
		}
	}
	return true
}

// AnyUsable reports whether at least one listed landmark passes the gate.
func (f *Frame) AnyUsable(minConfidence float64, ids ...LandmarkID) bool {
	for _, id := range ids {
		if _, ok := f.Usable(id, minConfidence); ok {
			return true
		}
	}
	return false
}

// SideUsable reports whether all joints on one side pass the gate.
func (f *Frame) SideUsable(s Side, minConfidence float64, joints ...Joint) bool {
	for _, j := range joints {
		if _, ok := f.Usable(j.On(s), minConfidence); !ok {
			return false
		}
	}
	return true
}

// MeanVisibility averages the visibility of the joints on one side.
// Missing landmarks count as zero.
func (f *Frame) MeanVisibility(s Side, joints ...Joint) float64 {
	if len(joints) == 0 {
		return 0
	}
	var sum float64
	for _, j := range joints {
		if lm, ok := f.Get(j.On(s)); ok {
			sum += lm.Visibility
		}
	}
	return sum / float64(len(joints))
}
