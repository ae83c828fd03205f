package http

import (
	"net/http"

	"moneymanager/internal/api"
	"moneymanager/internal/log"
)

type accountPatch struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := s.ledger.Accounts()
	out := make([]api.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, api.AccountFrom(a))
	}
	writeOK(w, out)
}

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	writeOK(w, api.AmountOf(s.ledger.TotalBalance()))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.ledger.Account(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	writeOK(w, api.AccountFrom(a))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var body api.Account
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	d := body.Draft()
	d.Name = sanitizeInput(d.Name)

	a, err := s.ledger.AddAccount(r.Context(), d)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	s.invalidateDashboard(r)
	writeMessage(w, http.StatusCreated, "Account created successfully", api.AccountFrom(a))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var body accountPatch
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	a, err := s.ledger.UpdateAccount(r.Context(), r.PathValue("id"), sanitizeInput(body.Name), body.Color)
	if err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	s.invalidateDashboard(r)
	writeMessage(w, http.StatusOK, "Account updated successfully", api.AccountFrom(a))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, log.OpDelete)
		return
	}
	s.invalidateDashboard(r)
	writeMessage[any](w, http.StatusOK, "Account deleted successfully", nil)
}
