package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/zeusync/downhill/internal/core/models"
	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/system"
)

// TerrainResponse is the body of GET /terrain.
type TerrainResponse struct {
	Version  uint64    `json:"version"`
	Points   int       `json:"points"`
	Vertices []float32 `json:"vertices"`
}

// RiderResponse is the body of GET /rider.
type RiderResponse struct {
	Tick     uint64            `json:"tick"`
	Grounded bool              `json:"grounded"`
	Rider    models.RiderState `json:"rider"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"tick":    s.source.Latest().Tick,
		"clients": s.ClientCount(),
	})
}

func (s *Server) handleTerrain(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Latest()
	etag := terrainETag(snap.TerrainVersion)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, TerrainResponse{
		Version:  snap.TerrainVersion,
		Points:   snap.Points,
		Vertices: snap.Vertices,
	})
}

func (s *Server) handleRider(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Latest()
	writeJSON(w, http.StatusOK, RiderResponse{Tick: snap.Tick, Grounded: snap.Grounded, Rider: snap.Rider})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd system.Command
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, int64(s.config.MaxMessageSize)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidMessage, err))
		return
	}

	if err := s.source.Submit(cmd); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, system.ErrCommandQueueFull) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Debug("command rejected", log.String("type", string(cmd.Type)), log.Error(err))
		writeError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func terrainETag(version uint64) string {
	return fmt.Sprintf(`"%016x"`, version)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
