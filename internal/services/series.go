package services

import (
	"strings"

	"receber/internal/core"
	"receber/internal/idgen"
)

// ChargeRequest describes a new charge to be expanded into transaction
// records. For installment charges, CurrentInstallment is the 1-based
// position being entered (a series can be joined mid-way, e.g. "4 of 6").
type ChargeRequest struct {
	PersonID           string
	Description        string
	Amount             core.Money
	Kind               core.Kind
	Date               string // YYYY-MM-DD, defaults to today
	DueYM              core.YearMonth
	CurrentInstallment int
	TotalInstallments  int
	Status             core.Status // defaults to open
}

func (r *ChargeRequest) normalize(today string) {
	r.Description = strings.TrimSpace(r.Description)
	if !r.Kind.Valid() {
		r.Kind = core.KindOneShot
	}
	if !r.Status.Valid() {
		r.Status = core.StatusOpen
	}
	if r.Date == "" {
		r.Date = today
	}
	if r.Amount.Cents < 0 {
		r.Amount = core.Money{}
	}
}

// resolveSeriesID finds the series a new installment belongs to, or mints a
// fresh identifier. The match key is person + exact description + derived
// start month; amount is deliberately not part of the key, so a later
// installment added with a drifted amount still joins its series.
func resolveSeriesID(txs []core.Transaction, personID, description string, start core.YearMonth, ids idgen.Generator) string {
	for _, t := range txs {
		if t.Kind != core.KindInstallment || t.Installment == nil || t.Installment.SeriesID == "" {
			continue
		}
		if t.PersonID != personID || t.Description != description {
			continue
		}
		if core.SeriesStart(t.DueYM, t.Installment.Number) == start {
			return t.Installment.SeriesID
		}
	}
	return ids.NewID()
}

// expandCharge turns a charge request into the concrete records to append.
// One-shot charges yield a single record. Installment charges yield either
// the current installment alone, or the current plus all future ones when
// autoGenerateFuture is set, numbered current..total with consecutive due
// months. Existing transactions are only read, never modified.
func expandCharge(txs []core.Transaction, req ChargeRequest, autoGenerateFuture bool, ids idgen.Generator, today string) []core.Transaction {
	req.normalize(today)

	if req.Kind != core.KindInstallment {
		return []core.Transaction{{
			ID:          ids.NewID(),
			PersonID:    req.PersonID,
			Description: req.Description,
			Amount:      req.Amount,
			Kind:        core.KindOneShot,
			Date:        req.Date,
			DueYM:       req.DueYM,
			Status:      req.Status,
		}}
	}

	current := req.CurrentInstallment
	if current < 1 {
		current = 1
	}
	// The total can never be below the installment being entered.
	total := req.TotalInstallments
	if total < current {
		total = current
	}
	start := core.SeriesStart(req.DueYM, current)
	seriesID := resolveSeriesID(txs, req.PersonID, req.Description, start, ids)

	last := total
	if !autoGenerateFuture {
		last = current
	}
	out := make([]core.Transaction, 0, last-current+1)
	for num := current; num <= last; num++ {
		out = append(out, core.Transaction{
			ID:          ids.NewID(),
			PersonID:    req.PersonID,
			Description: req.Description,
			Amount:      req.Amount,
			Kind:        core.KindInstallment,
			Date:        req.Date,
			DueYM:       start.Add(num - 1),
			Status:      req.Status,
			Installment: &core.Installment{
				SeriesID: seriesID,
				Number:   num,
				Total:    total,
			},
		})
	}
	return out
}
