package http

import (
	"net/http"

	"tally/internal/core"
)

type namedRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req namedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.categories.Create(r.Context(), req.Name, caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Category created successfully",
		"data":    category,
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	categories, err := s.categories.List(r.Context(), caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req namedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.categories.Update(r.Context(), r.PathValue("id"), caller.AccountID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Category updated successfully",
		"data":    category,
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	if err := s.categories.Delete(r.Context(), r.PathValue("id"), caller.AccountID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}
