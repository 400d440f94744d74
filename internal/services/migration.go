package services

import (
	"fmt"

	"receber/internal/core"
	"receber/internal/idgen"
)

// AssignSeriesIDs is the one-time legacy migration run at load: installment
// records that predate series identifiers are grouped by
// (person, description, amount, derived start month) and every group gets one
// freshly minted series id. Records that already carry a series id, and
// one-shot records, pass through untouched, which makes the pass idempotent.
func AssignSeriesIDs(snap *core.Snapshot, ids idgen.Generator) bool {
	changed := false
	keyToSeries := make(map[string]string)
	for i := range snap.Transactions {
		t := &snap.Transactions[i]
		if t.Kind != core.KindInstallment || t.Installment == nil {
			continue
		}
		if t.Installment.SeriesID != "" || t.Installment.Number < 1 || t.DueYM.IsZero() {
			continue
		}
		start := core.SeriesStart(t.DueYM, t.Installment.Number)
		key := fmt.Sprintf("%s|%s|%d|%s", t.PersonID, t.Description, t.Amount.Cents, start)
		sid, ok := keyToSeries[key]
		if !ok {
			sid = ids.NewID()
			keyToSeries[key] = sid
		}
		t.Installment.SeriesID = sid
		changed = true
	}
	return changed
}
