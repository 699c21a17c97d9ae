// Package api provides HTTP API handlers for exercise profiles and recordings.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type holdResponse struct {
	TorsoRatio       float64 `json:"torso_ratio"`
	LegRatio         float64 `json:"leg_ratio"`
	StabilizeMs      int64   `json:"stabilize_ms"`
	TickMs           int64   `json:"tick_ms"`
	OcclusionGraceMs int64   `json:"occlusion_grace_ms"`
}

type profileResponse struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Kind           string        `json:"kind"`
	Signal         string        `json:"signal"`
	Joints         []string      `json:"joints,omitempty"`
	Sides          []string      `json:"sides"`
	Combine        string        `json:"combine,omitempty"`
	Rest           float64       `json:"rest"`
	Active         float64       `json:"active"`
	ActiveMax      float64       `json:"active_max,omitempty"`
	SwingThreshold float64       `json:"swing_threshold,omitempty"`
	Alpha          float64       `json:"alpha,omitempty"`
	Cooldown       int           `json:"cooldown"`
	MinVisibility  float64       `json:"min_visibility"`
	PositionFilter bool          `json:"position_filter"`
	RestStage      string        `json:"rest_stage"`
	ActiveStage    string        `json:"active_stage"`
	InitialStage   string        `json:"initial_stage"`
	Hold           *holdResponse `json:"hold,omitempty"`
}

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}

// toProfileResponse converts an exercise.Profile to a profileResponse.
func toProfileResponse(p exercise.Profile) profileResponse {
	resp := profileResponse{
		ID:             p.ID,
		Name:           p.Name,
		Kind:           string(p.Kind),
		Signal:         string(p.Signal),
		Sides:          make([]string, 0, len(p.Sides)),
		Combine:        string(p.Combine),
		Rest:           p.Rest,
		Active:         p.Active,
		ActiveMax:      p.ActiveMax,
		SwingThreshold: p.SwingThreshold,
		Alpha:          p.Alpha,
		Cooldown:       p.Cooldown,
		MinVisibility:  p.MinVisibility,
		PositionFilter: p.PositionFilter,
		RestStage:      p.RestStage,
		ActiveStage:    p.ActiveStage,
		InitialStage:   p.InitialStage,
	}
	for _, j := range p.Joints {
		resp.Joints = append(resp.Joints, j.String())
	}
	for _, s := range p.Sides {
		resp.Sides = append(resp.Sides, s.String())
	}
	if p.Kind == exercise.KindHold {
		resp.Hold = &holdResponse{
			TorsoRatio:       p.Hold.TorsoRatio,
			LegRatio:         p.Hold.LegRatio,
			StabilizeMs:      ms(p.Hold.Stabilize),
			TickMs:           ms(p.Hold.Tick),
			OcclusionGraceMs: ms(p.Hold.OcclusionGrace),
		}
	}
	return resp
}
