package pose

import (
	"encoding/json"
	"sort"
	"time"
)

// wireFrame is the JSON form of a frame exchanged with the pose service,
// WebSocket clients and stored recordings.
type wireFrame struct {
	CapturedAtMs int64          `json:"captured_at_ms,omitempty"`
	Landmarks    []wireLandmark `json:"landmarks"`
}

type wireLandmark struct {
	ID         int      `json:"id"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// MarshalJSON encodes the frame with landmarks ordered by ID.
func (f Frame) MarshalJSON() ([]byte, error) {
	w := wireFrame{Landmarks: make([]wireLandmark, 0, len(f.Points))}
	if !f.CapturedAt.IsZero() {
		w.CapturedAtMs = f.CapturedAt.UnixMilli()
	}

	for id, lm := range f.Points {
		vis := lm.Visibility
		w.Landmarks = append(w.Landmarks, wireLandmark{
			ID:         int(id),
			X:          lm.X,
			Y:          lm.Y,
			Z:          lm.Z,
			Visibility: &vis,
		})
	}
	sort.Slice(w.Landmarks, func(i, j int) bool {
		return w.Landmarks[i].ID < w.Landmarks[j].ID
	})

	return json.Marshal(w)
}

// UnmarshalJSON decodes a frame. Landmarks with IDs outside the pose model are
// dropped and a landmark without a visibility score is taken as fully visible.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	f.Points = make(map[LandmarkID]Landmark, len(w.Landmarks))
	f.CapturedAt = time.Time{}
	if w.CapturedAtMs > 0 {
		f.CapturedAt = time.UnixMilli(w.CapturedAtMs)
	}

	for _, l := range w.Landmarks {
		vis := 1.0
		if l.Visibility != nil {
			vis = *l.Visibility
		}
		f.Set(LandmarkID(l.ID), Landmark{
			Point3D:    Point3D{X: l.X, Y: l.Y, Z: l.Z},
			Visibility: vis,
		})
	}
	return nil
}
