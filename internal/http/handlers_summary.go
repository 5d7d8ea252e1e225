package http

import (
	"net/http"

	"tally/internal/core"
)

// rangeFrom reads the ?type= query parameter. Absent or unrecognized values
// fall back to today, never an error.
func rangeFrom(r *http.Request) core.DateRange {
	return core.ParseDateRange(r.URL.Query().Get("type"))
}

func (s *Server) handleCombinedSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	summary, err := s.summaries.Combined(r.Context(), caller.AccountID, rangeFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	summary, err := s.summaries.ExpenseSummary(r.Context(), caller.AccountID, rangeFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleIncomeSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	summary, err := s.summaries.IncomeSummary(r.Context(), caller.AccountID, rangeFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
