package http

import (
	"net/http"
	"time"

	"tally/internal/core"
)

type createIncomeRequest struct {
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	SourceID    string     `json:"source_id"`
}

type updateIncomeRequest struct {
	Amount      *core.Money `json:"amount"`
	Description *string     `json:"description"`
	Date        *time.Time  `json:"date"`
	SourceID    *string     `json:"source_id"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req createIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	income := core.Income{
		Amount:      req.Amount,
		Description: req.Description,
		SourceID:    req.SourceID,
	}
	if req.Date != nil {
		income.Date = *req.Date
	}

	created, err := s.incomes.Create(r.Context(), income, caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Income created successfully",
		"data":    created,
	})
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	incomes, err := s.incomes.List(r.Context(), caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, incomes)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req updateIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.incomes.Update(r.Context(), r.PathValue("id"), caller.AccountID, ledgerPatch(req.Amount, req.Description, req.Date, req.SourceID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Income updated successfully",
		"data":    updated,
	})
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	if err := s.incomes.Delete(r.Context(), r.PathValue("id"), caller.AccountID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Income deleted successfully"})
}
