package services

import (
	"receber/internal/core"
	"receber/internal/idgen"
)

// Patch is a partial edit. Nil fields are left untouched. Status is only
// honored by plain updates; a cascade never changes any member's status, so
// paid history survives amount and count edits.
type Patch struct {
	Amount            *core.Money
	Description       *string
	TotalInstallments *int
	DueYM             *core.YearMonth
	InstallmentNumber *int
	Date              *string
	Status            *core.Status
}

// merge applies the patch to a single record. The kind is never changed;
// installment-position fields only apply to installment records.
func (p Patch) merge(t *core.Transaction) {
	if p.Amount != nil {
		t.Amount = *p.Amount
		if t.Amount.Cents < 0 {
			t.Amount = core.Money{}
		}
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueYM != nil && !p.DueYM.IsZero() {
		t.DueYM = *p.DueYM
	}
	if p.Date != nil && *p.Date != "" {
		t.Date = *p.Date
	}
	if p.Status != nil && p.Status.Valid() {
		t.Status = *p.Status
	}
	if t.Installment != nil {
		if p.InstallmentNumber != nil && *p.InstallmentNumber >= 1 {
			t.Installment.Number = *p.InstallmentNumber
		}
		if p.TotalInstallments != nil && *p.TotalInstallments >= 1 {
			t.Installment.Total = *p.TotalInstallments
			if t.Installment.Number > t.Installment.Total {
				t.Installment.Number = t.Installment.Total
			}
		}
	}
}

// cascade propagates an edit from one series member to the whole series:
// truncate members beyond the new total, broadcast the shared fields
// (total, amount, description) to every member, and backfill missing
// installments up to the new total. Members keep their own due month,
// position and status through truncate/broadcast. A target that is not part
// of a series just gets the patch merged; an unknown id is a no-op.
func cascade(snap *core.Snapshot, id string, patch Patch, ids idgen.Generator, today string) bool {
	idx := snap.FindTransaction(id)
	if idx < 0 {
		return false
	}
	src := snap.Transactions[idx].Clone() // pre-patch values anchor the series

	if src.Kind != core.KindInstallment || src.Installment == nil || src.Installment.SeriesID == "" {
		patch.merge(&snap.Transactions[idx])
		return true
	}

	seriesID := src.Installment.SeriesID
	anchorStart := core.SeriesStart(src.DueYM, src.Installment.Number)

	newTotal := 0
	if patch.TotalInstallments != nil {
		newTotal = *patch.TotalInstallments
	} else {
		for _, t := range snap.Transactions {
			if t.InSeries(seriesID) && t.Installment.Number > newTotal {
				newTotal = t.Installment.Number
			}
		}
	}
	if newTotal < 1 {
		newTotal = 1
	}

	// Truncate: drop members numbered beyond the new total.
	kept := snap.Transactions[:0]
	for _, t := range snap.Transactions {
		if t.InSeries(seriesID) && t.Installment.Number > newTotal {
			continue
		}
		kept = append(kept, t)
	}
	snap.Transactions = kept

	// Broadcast the shared fields to every remaining member.
	afterMax := 0
	for i := range snap.Transactions {
		t := &snap.Transactions[i]
		if !t.InSeries(seriesID) {
			continue
		}
		t.Installment.Total = newTotal
		if patch.Amount != nil {
			t.Amount = *patch.Amount
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if t.Installment.Number > afterMax {
			afterMax = t.Installment.Number
		}
	}

	// Backfill installments afterMax+1..newTotal as fresh open records.
	description := src.Description
	if patch.Description != nil {
		description = *patch.Description
	}
	amount := src.Amount
	if patch.Amount != nil {
		amount = *patch.Amount
	}
	date := src.Date
	if date == "" {
		date = today
	}
	for num := afterMax + 1; num <= newTotal; num++ {
		snap.Transactions = append(snap.Transactions, core.Transaction{
			ID:          ids.NewID(),
			PersonID:    src.PersonID,
			Description: description,
			Amount:      amount,
			Kind:        core.KindInstallment,
			Date:        date,
			DueYM:       anchorStart.Add(num - 1),
			Status:      core.StatusOpen,
			Installment: &core.Installment{
				SeriesID: seriesID,
				Number:   num,
				Total:    newTotal,
			},
		})
	}
	return true
}
