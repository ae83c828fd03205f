package http

import (
	"fmt"
	"net/http"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

func (s *Server) transactionDTO(t core.Transaction) api.Transaction {
	return api.TransactionFrom(t, s.ledger.CanEdit(t.CreatedAt))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := api.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), log.OpList)
		return
	}
	list := s.ledger.FilteredTransactions(f)
	out := make([]api.Transaction, 0, len(list))
	for _, t := range list {
		out = append(out, s.transactionDTO(t))
	}
	writeOK(w, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.Transaction(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	writeOK(w, s.transactionDTO(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body api.Transaction
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	d, err := body.Draft()
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	d.Description = sanitizeInput(d.Description)

	t, err := s.ledger.AddTransaction(r.Context(), d)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	s.invalidateDashboard(r)
	writeMessage(w, http.StatusCreated, "Transaction created successfully", s.transactionDTO(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var body api.TransactionPatch
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	u, err := body.Update()
	if err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	if u.Description != nil {
		desc := sanitizeInput(*u.Description)
		u.Description = &desc
	}

	t, err := s.ledger.UpdateTransaction(r.Context(), r.PathValue("id"), u)
	if err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	s.invalidateDashboard(r)
	writeMessage(w, http.StatusOK, "Transaction updated successfully", s.transactionDTO(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, log.OpDelete)
		return
	}
	s.invalidateDashboard(r)
	writeMessage[any](w, http.StatusOK, "Transaction deleted successfully", nil)
}
