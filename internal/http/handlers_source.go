package http

import (
	"net/http"

	"tally/internal/core"
)

func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
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

	source, err := s.sources.Create(r.Context(), req.Name, caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Source created successfully",
		"data":    source,
	})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	sources, err := s.sources.List(r.Context(), caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
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

	source, err := s.sources.Update(r.Context(), r.PathValue("id"), caller.AccountID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Source updated successfully",
		"data":    source,
	})
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	if err := s.sources.Delete(r.Context(), r.PathValue("id"), caller.AccountID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Source deleted successfully"})
}
