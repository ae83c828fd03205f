package http

import (
	"net/http"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

func categoryDTOs(list []core.Category) []api.Category {
	out := make([]api.Category, 0, len(list))
	for _, c := range list {
		out = append(out, api.CategoryFrom(c))
	}
	return out
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeOK(w, categoryDTOs(s.ledger.Categories()))
}

func (s *Server) handleCategoriesByType(w http.ResponseWriter, r *http.Request) {
	t, err := core.ParseTransactionType(r.PathValue("type"))
	if err != nil {
		writeError(w, r, err, log.OpList)
		return
	}
	writeOK(w, categoryDTOs(s.ledger.CategoriesByType(t)))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.ledger.Category(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	writeOK(w, api.CategoryFrom(c))
}

// Categories are fixed at construction time.
func (s *Server) handleCategoryWrite(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	writeJSON(w, http.StatusMethodNotAllowed, api.Fail("Categories are read-only"))
}
