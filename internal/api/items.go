package api

import (
	"net/http"

	"github.com/meur/tierrank/internal/models"
)

// handleListItems returns all items ordered by position
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListItems(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":       items,
		"total_count": len(items),
	})
}

// handleGetItem returns a single item by name
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetItem(r.Context(), nameParam(r))
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// handleCreateItem adds an item at the end of its lane
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req models.ItemCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.store.CreateItem(r.Context(), req.Name, req.Tier)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// handleAssignItem moves an item to the end of another lane
func (s *Server) handleAssignItem(w http.ResponseWriter, r *http.Request) {
	var req models.ItemAssign
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.store.AssignItem(r.Context(), nameParam(r), req.Tier)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// handleDeleteItem deletes an item by name
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	changed, err := s.store.DeleteItem(r.Context(), nameParam(r))
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"changed": changed})
}
