package api

import (
	"net/http"

	"github.com/meur/tierrank/internal/models"
)

// handleGetBoard returns every lane with its ordered items
func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.store.Board(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// handleReorder commits a full drag-and-drop ordering
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req models.Reorder
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.store.ApplyReorder(r.Context(), req.Assignments); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// handleRecompute renumbers positions densely
func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.RecomputePositions(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"items": n})
}

// handleCheck reports ordering invariant violations
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.Check(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
