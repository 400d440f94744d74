package http

import (
	"net/http"
	"strings"

	"receber/internal/core"
	"receber/internal/services"
)

type chargeRequest struct {
	PersonID           string         `json:"personId"`
	Description        string         `json:"description"`
	Amount             core.Money     `json:"amount"`
	Kind               core.Kind      `json:"type"`
	Date               string         `json:"date"`
	DueYM              core.YearMonth `json:"dueYm"`
	CurrentInstallment int            `json:"currentInstallment"`
	TotalInstallments  int            `json:"totalInstallments"`
	AutoGenerateFuture *bool          `json:"autoGenerateFuture"`
}

type patchRequest struct {
	Amount            *core.Money     `json:"amount"`
	Description       *string         `json:"description"`
	TotalInstallments *int            `json:"totalInstallments"`
	DueYM             *core.YearMonth `json:"dueYm"`
	InstallmentNumber *int            `json:"installmentNumber"`
	Date              *string         `json:"date"`
}

func (p patchRequest) toPatch() services.Patch {
	return services.Patch{
		Amount:            p.Amount,
		Description:       p.Description,
		TotalInstallments: p.TotalInstallments,
		DueYM:             p.DueYM,
		InstallmentNumber: p.InstallmentNumber,
		Date:              p.Date,
	}
}

type statusRequest struct {
	Status core.Status `json:"status"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleList(w, r)
	case http.MethodPost:
		s.handleCreateCharge(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Snapshot()
	f := core.Filter{
		PersonID: r.URL.Query().Get("person"),
		Query:    r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		ym, err := core.ParseYearMonth(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
			return
		}
		f.Month = ym
	}
	txs := core.FilterTransactions(snap.Transactions, f)
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateCharge(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DueYM.IsZero() {
		writeError(w, http.StatusUnprocessableEntity, "missing due month")
		return
	}

	autoGenerate := true
	if req.AutoGenerateFuture != nil {
		autoGenerate = *req.AutoGenerateFuture
	}
	if req.Kind != core.KindInstallment {
		autoGenerate = false
	}

	created, err := s.ledger.AddCharge(r.Context(), services.ChargeRequest{
		PersonID:           req.PersonID,
		Description:        req.Description,
		Amount:             req.Amount,
		Kind:               req.Kind,
		Date:               req.Date,
		DueYM:              req.DueYM,
		CurrentInstallment: req.CurrentInstallment,
		TotalInstallments:  req.TotalInstallments,
	}, autoGenerate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown person")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case sub == "status":
		s.handleStatus(w, r, id)
	case sub != "":
		writeError(w, http.StatusNotFound, "not found")
	case r.Method == http.MethodPatch:
		s.handleCascade(w, r, id)
	case r.Method == http.MethodDelete:
		if !s.ledger.Delete(r.Context(), id) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "PATCH, DELETE")
	}
}

// handleCascade applies a series-wide edit. The ledger treats an unknown id
// as a no-op; the API answers 404 so clients can tell.
func (s *Server) handleCascade(w http.ResponseWriter, r *http.Request, id string) {
	var req patchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.ledger.Cascade(r.Context(), id, req.toPatch()) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Snapshot().Transactions)
}

// handleStatus toggles a single record between open and paid without
// touching the rest of its series.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "status must be open or paid")
		return
	}
	status := req.Status
	if !s.ledger.Update(r.Context(), id, services.Patch{Status: &status}) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
