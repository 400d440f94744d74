package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"receber/internal/core"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	snap := s.ledger.Snapshot()
	if snap.People == nil {
		snap.People = []core.Person{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, struct {
		*core.Snapshot
		Revision int64 `json:"revision"`
	}{snap, s.ledger.Revision()})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	current := s.ledger.CurrentMonth()
	month, ok := monthParam(w, r, current)
	if !ok {
		return
	}
	person := r.URL.Query().Get("person")

	// Summaries are pure over (revision, month, person), so the revision in
	// the key invalidates naturally on every mutation.
	key := fmt.Sprintf("%d|%s|%s", s.ledger.Revision(), month, person)
	if cached, ok := s.summaries.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs := s.ledger.Snapshot().Transactions
	if person != "" {
		txs = core.FilterTransactions(txs, core.Filter{PersonID: person})
	}
	summary := core.Summarize(txs, month, current)
	s.summaries.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	month, ok := monthParam(w, r, s.ledger.CurrentMonth())
	if !ok {
		return
	}
	months := s.projectionMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 36 {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 36")
			return
		}
		months = n
	}
	snap := s.ledger.Snapshot()
	out := core.Project(snap.Transactions, r.URL.Query().Get("person"), month, months)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	month, ok := monthParam(w, r, s.ledger.CurrentMonth())
	if !ok {
		return
	}
	out := core.OpenByPerson(s.ledger.Snapshot(), month)
	if out == nil {
		out = []core.PersonTotal{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	month, ok := monthParam(w, r, s.ledger.CurrentMonth())
	if !ok {
		return
	}
	snap := s.ledger.Snapshot()
	txs := core.FilterTransactions(snap.Transactions, core.Filter{
		PersonID: r.URL.Query().Get("person"),
		Month:    month,
		Query:    r.URL.Query().Get("q"),
	})
	core.SortForExport(txs)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "contas-"+month.String()+".csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Data", "Pessoa", "Descrição", "Parcela", "Valor", "Status"})
	for _, row := range core.ExportRows(snap, txs) {
		_ = cw.Write([]string{row.Date, row.Person, row.Description, row.Installment, row.Amount, row.Status})
	}
	cw.Flush()
}

type themeResponse struct {
	Dark bool `json:"dark"`
}

// handleTheme reads and writes the standalone theme flag. It lives beside
// the ledger data but has its own lifecycle, so it goes straight to the
// store rather than through the ledger.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dark, err := s.themes.LoadTheme(r.Context())
		if err != nil {
			dark = false
		}
		writeJSON(w, http.StatusOK, themeResponse{Dark: dark})
	case http.MethodPut:
		var req themeResponse
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.themes.SaveTheme(r.Context(), req.Dark); err != nil {
			writeError(w, http.StatusInternalServerError, "could not save theme")
			return
		}
		writeJSON(w, http.StatusOK, req)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}
