package api

import (
	"net/http"

	"github.com/meur/tierrank/internal/models"
)

// handleListTiers returns all tiers ordered by rank
func (s *Server) handleListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := s.store.ListTiers(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tiers)
}

// handleGetTier returns a single tier by name
func (s *Server) handleGetTier(w http.ResponseWriter, r *http.Request) {
	tier, err := s.store.GetTier(r.Context(), nameParam(r))
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tier)
}

// handleCreateTier creates a tier ranked after the existing ones
func (s *Server) handleCreateTier(w http.ResponseWriter, r *http.Request) {
	var req models.TierCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tier, err := s.store.CreateTier(r.Context(), req.Name, req.Color)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tier)
}

// handleUpdateTier renames or recolors a tier
func (s *Server) handleUpdateTier(w http.ResponseWriter, r *http.Request) {
	var req models.TierUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	changed, err := s.store.UpdateTier(r.Context(), nameParam(r), req.Name, req.Color)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"changed": changed})
}

// handleDeleteTier deletes a tier by name
func (s *Server) handleDeleteTier(w http.ResponseWriter, r *http.Request) {
	changed, err := s.store.DeleteTier(r.Context(), nameParam(r))
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"changed": changed})
}

// handleMoveTier swaps a tier with its neighbour; moved=false means it was
// already at the top or bottom
func (s *Server) handleMoveTier(w http.ResponseWriter, r *http.Request) {
	var req models.TierMove
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	moved, err := s.store.MoveTier(r.Context(), nameParam(r), req.Direction)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}
