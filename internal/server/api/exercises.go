package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
)

// ExerciseHandler serves the effective exercise profiles.
type ExerciseHandler struct {
	registry *exercise.Registry
}

// NewExerciseHandler creates a new ExerciseHandler backed by reg.
func NewExerciseHandler(reg *exercise.Registry) *ExerciseHandler {
	return &ExerciseHandler{registry: reg}
}

type listExercisesResponse struct {
	Exercises []profileResponse `json:"exercises"`
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/exercises or /api/exercises/{id}
func (h *ExerciseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/exercises")
	id = strings.TrimPrefix(id, "/")

	if id == "" {
		h.list(w, r)
		return
	}
	h.get(w, r, id)
}

func (h *ExerciseHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles := h.registry.Profiles()

	response := listExercisesResponse{
		Exercises: make([]profileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		response.Exercises = append(response.Exercises, toProfileResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ExerciseHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.registry.Lookup(id)
	if err != nil {
		if errors.Is(err, exercise.ErrUnknownExercise) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get exercise")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}
