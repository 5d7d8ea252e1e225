package http

import (
	"net/http"

	"tally/internal/core"
	"tally/internal/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateAccountRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Username, req.Email, req.Password, core.Role(req.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully",
		"data":    account,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, token, err := s.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"account":      account,
	})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	accounts, err := s.accounts.List(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	account, err := s.accounts.Get(r.Context(), r.PathValue("id"), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := services.UpdateAccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := core.Role(*req.Role)
		input.Role = &role
	}

	account, err := s.accounts.Update(r.Context(), r.PathValue("id"), caller, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Account updated successfully",
		"data":    account,
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	if err := s.accounts.Delete(r.Context(), r.PathValue("id"), caller); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}
