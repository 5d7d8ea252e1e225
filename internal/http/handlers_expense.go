package http

import (
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

type createExpenseRequest struct {
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	CategoryID  string     `json:"category_id"`
}

type updateExpenseRequest struct {
	Amount      *core.Money `json:"amount"`
	Description *string     `json:"description"`
	Date        *time.Time  `json:"date"`
	CategoryID  *string     `json:"category_id"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	expense := core.Expense{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}

	created, err := s.expenses.Create(r.Context(), expense, caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Expense created successfully",
		"data":    created,
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	expenses, err := s.expenses.List(r.Context(), caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.expenses.Update(r.Context(), r.PathValue("id"), caller.AccountID, ledgerPatch(req.Amount, req.Description, req.Date, req.CategoryID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Expense updated successfully",
		"data":    updated,
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	if err := s.expenses.Delete(r.Context(), r.PathValue("id"), caller.AccountID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// ledgerPatch converts the optional wire fields to a storage patch.
func ledgerPatch(amount *core.Money, description *string, date *time.Time, referenceID *string) storage.LedgerPatch {
	patch := storage.LedgerPatch{
		Description: description,
		Date:        date,
		ReferenceID: referenceID,
	}
	if amount != nil {
		patch.AmountCents = &amount.Cents
	}
	return patch
}
