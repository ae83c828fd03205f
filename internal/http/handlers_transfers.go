package http

import (
	"net/http"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

func transferDTOs(list []core.Transfer) []api.Transfer {
	out := make([]api.Transfer, 0, len(list))
	for _, t := range list {
		out = append(out, api.TransferFrom(t))
	}
	return out
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	writeOK(w, transferDTOs(s.ledger.Transfers()))
}

func (s *Server) handleTransfersByDateRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r, true)
	if err != nil {
		writeError(w, r, err, log.OpList)
		return
	}
	writeOK(w, transferDTOs(s.ledger.TransfersBetween(start, end)))
}

func (s *Server) handleGetTransfer(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.Transfer(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	writeOK(w, api.TransferFrom(t))
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var body api.Transfer
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, log.OpTransfer)
		return
	}
	d := body.Draft()
	d.Description = sanitizeInput(d.Description)

	t, err := s.ledger.AddTransfer(r.Context(), d)
	if err != nil {
		writeError(w, r, err, log.OpTransfer)
		return
	}
	s.invalidateDashboard(r)
	writeMessage(w, http.StatusCreated, "Transfer created successfully", api.TransferFrom(t))
}

func (s *Server) handleDeleteTransfer(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransfer(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, log.OpDelete)
		return
	}
	s.invalidateDashboard(r)
	writeMessage[any](w, http.StatusOK, "Transfer deleted successfully", nil)
}
