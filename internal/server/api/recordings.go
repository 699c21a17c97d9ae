package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/replay"
	"github.com/Kkkiiiirran/FitFlow/internal/store"
	"github.com/Kkkiiiirran/FitFlow/internal/trace"
)

// RecordingHandler handles recorded frame sequences and their replays.
type RecordingHandler struct {
	store    *store.Store
	registry *exercise.Registry
}

// NewRecordingHandler creates a new RecordingHandler.
func NewRecordingHandler(s *store.Store, reg *exercise.Registry) *RecordingHandler {
	return &RecordingHandler{store: s, registry: reg}
}

type createRecordingRequest struct {
	ExerciseID string `json:"exercise_id"`
	Name       string `json:"name"`
}

type appendFramesRequest struct {
	Frames []*pose.Frame `json:"frames"`
}

type appendFramesResponse struct {
	Frames int `json:"frames"`
}

type recordingResponse struct {
	ID         string `json:"id"`
	ExerciseID string `json:"exercise_id"`
	Name       string `json:"name"`
	Frames     int    `json:"frames"`
	CreatedAt  string `json:"created_at"`
}

type listRecordingsResponse struct {
	Recordings []recordingResponse `json:"recordings"`
}

func toRecordingResponse(rec *store.Recording) recordingResponse {
	return recordingResponse{
		ID:         rec.ID,
		ExerciseID: rec.ExerciseID,
		Name:       rec.Name,
		Frames:     rec.Frames,
		CreatedAt:  rec.CreatedAt.Format(timeFormat),
	}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/recordings, /api/recordings/{id} and
// /api/recordings/{id}/{frames,replay,trace.parquet}
func (h *RecordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/recordings")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch parts[1] {
	case "frames":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.appendFrames(w, r, id)
	case "replay":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.replay(w, r, id)
	case "trace.parquet":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.trace(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// list handles GET /api/recordings.
func (h *RecordingHandler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.Recordings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recordings")
		return
	}

	response := listRecordingsResponse{
		Recordings: make([]recordingResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		response.Recordings = append(response.Recordings, toRecordingResponse(rec))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/recordings and creates an empty recording.
func (h *RecordingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ExerciseID == "" {
		writeError(w, http.StatusBadRequest, "exercise_id is required")
		return
	}
	if _, err := h.registry.Lookup(req.ExerciseID); err != nil {
		writeError(w, http.StatusBadRequest, "Unknown exercise")
		return
	}

	rec := &store.Recording{ExerciseID: req.ExerciseID, Name: req.Name}
	if err := h.store.Recordings().Create(rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create recording")
		return
	}

	writeJSON(w, http.StatusCreated, toRecordingResponse(rec))
}

// get handles GET /api/recordings/{id}.
func (h *RecordingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, ok := h.lookup(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toRecordingResponse(rec))
}

// delete handles DELETE /api/recordings/{id}.
func (h *RecordingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Recordings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete recording")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// appendFrames handles POST /api/recordings/{id}/frames.
func (h *RecordingHandler) appendFrames(w http.ResponseWriter, r *http.Request, id string) {
	var req appendFramesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Frames) == 0 {
		writeError(w, http.StatusBadRequest, "At least one frame is required")
		return
	}

	n, err := h.store.Recordings().AppendFrames(id, req.Frames)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save frames")
		return
	}

	writeJSON(w, http.StatusCreated, appendFramesResponse{Frames: n})
}

// replay handles POST /api/recordings/{id}/replay. Per-frame rows are only
// included with ?rows=true.
func (h *RecordingHandler) replay(w http.ResponseWriter, r *http.Request, id string) {
	sum, ok := h.run(w, r, id)
	if !ok {
		return
	}

	if rows, _ := strconv.ParseBool(r.URL.Query().Get("rows")); !rows {
		sum.Rows = nil
	}
	writeJSON(w, http.StatusOK, sum)
}

// trace handles GET /api/recordings/{id}/trace.parquet.
func (h *RecordingHandler) trace(w http.ResponseWriter, r *http.Request, id string) {
	sum, ok := h.run(w, r, id)
	if !ok {
		return
	}

	data, err := trace.WriteParquet(sum.Rows)
	if err != nil {
		log.WithError(err).WithField("recording", id).Error("failed to encode trace")
		writeError(w, http.StatusInternalServerError, "Failed to encode trace")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".parquet"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// run replays a stored recording through a fresh session.
func (h *RecordingHandler) run(w http.ResponseWriter, r *http.Request, id string) (replay.Summary, bool) {
	rec, ok := h.lookup(w, id)
	if !ok {
		return replay.Summary{}, false
	}

	frames, err := h.store.Recordings().Frames(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load frames")
		return replay.Summary{}, false
	}

	sum, err := replay.Run(r.Context(), h.registry, rec.ExerciseID, frames,
		replay.WithLogger(log.WithField("recording", id)),
	)
	if err != nil {
		if errors.Is(err, exercise.ErrUnknownExercise) {
			writeError(w, http.StatusConflict, "Recording exercise is no longer known")
			return replay.Summary{}, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to replay recording")
		return replay.Summary{}, false
	}
	return sum, true
}

func (h *RecordingHandler) lookup(w http.ResponseWriter, id string) (*store.Recording, bool) {
	rec, err := h.store.Recordings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get recording")
		return nil, false
	}
	return rec, true
}
