package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/store"
)

// ProfileHandler handles per-exercise profile overrides. Overrides are
// validated by the registry and, when a store is configured, persisted.
type ProfileHandler struct {
	registry *exercise.Registry
	store    *store.Store
}

// NewProfileHandler creates a new ProfileHandler. s may be nil.
func NewProfileHandler(reg *exercise.Registry, s *store.Store) *ProfileHandler {
	return &ProfileHandler{registry: reg, store: s}
}

type profileOverrideResponse struct {
	Profile  profileResponse   `json:"profile"`
	Override exercise.Override `json:"override"`
}

type listOverridesResponse struct {
	Overrides map[string]exercise.Override `json:"overrides"`
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/profiles or /api/profiles/{id}
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	id = strings.TrimPrefix(id, "/")

	if id == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/profiles and returns the stored overrides.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	overrides := map[string]exercise.Override{}
	if h.store != nil {
		var err error
		overrides, err = h.store.Profiles().List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list overrides")
			return
		}
	}

	writeJSON(w, http.StatusOK, listOverridesResponse{Overrides: overrides})
}

// get handles GET /api/profiles/{id} and returns the effective profile with
// its stored override.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.registry.Lookup(id)
	if err != nil {
		if errors.Is(err, exercise.ErrUnknownExercise) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var o exercise.Override
	if h.store != nil {
		o, err = h.store.Profiles().Get(id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "Failed to get override")
			return
		}
	}

	writeJSON(w, http.StatusOK, profileOverrideResponse{Profile: toProfileResponse(p), Override: o})
}

// update handles PUT /api/profiles/{id}. The body replaces any previous
// override for the exercise; an empty body object restores the default.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var o exercise.Override
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.registry.Override(id, o)
	if err != nil {
		switch {
		case errors.Is(err, exercise.ErrUnknownExercise):
			writeError(w, http.StatusNotFound, "Exercise not found")
		case errors.Is(err, exercise.ErrInvalidProfile):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to apply override")
		}
		return
	}

	if h.store != nil {
		// An empty override leaves nothing worth keeping.
		if o.IsZero() {
			err = h.store.Profiles().Delete(id)
			if errors.Is(err, store.ErrNotFound) {
				err = nil
			}
		} else {
			err = h.store.Profiles().Upsert(id, o)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save override")
			return
		}
	}

	log.WithField("exercise", id).Info("profile override saved")
	writeJSON(w, http.StatusOK, profileOverrideResponse{Profile: toProfileResponse(p), Override: o})
}

// delete handles DELETE /api/profiles/{id} and restores the built-in profile.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.registry.Restore(id); err != nil {
		if errors.Is(err, exercise.ErrUnknownExercise) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to restore profile")
		return
	}

	if h.store != nil {
		if err := h.store.Profiles().Delete(id); err != nil && !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "Failed to delete override")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
