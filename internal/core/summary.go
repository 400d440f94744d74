package core

import (
	"sort"
	"strings"
)

// MonthSummary aggregates a single month plus the surrounding context a
// dashboard card row needs: overdue is relative to the current month, not
// the selected one; future counts open charges due after the selected month.
type MonthSummary struct {
	Month      YearMonth `json:"month"`
	Open       Money     `json:"open"`
	Paid       Money     `json:"paid"`
	Overdue    Money     `json:"overdue"`
	FutureOpen Money     `json:"futureOpen"`
}

// MonthTotals is one bar of the projection chart.
type MonthTotals struct {
	Month YearMonth `json:"month"`
	Open  Money     `json:"open"`
	Paid  Money     `json:"paid"`
}

// PersonTotal is one slice of the per-person open-balance breakdown.
type PersonTotal struct {
	PersonID string `json:"personId"`
	Name     string `json:"name"`
	Open     Money  `json:"open"`
}

// ExportRow is one line of the tabular export consumed by the CSV endpoint
// and the spreadsheet sync worker.
type ExportRow struct {
	Date        string
	Person      string
	Description string
	Installment string
	Amount      string
	Status      string
}

// Filter narrows a transaction listing. Zero values mean "no constraint";
// Query matches case-insensitively against description, kind and status.
type Filter struct {
	PersonID string
	Month    YearMonth
	Query    string
}

func (f Filter) Match(t Transaction) bool {
	if f.PersonID != "" && t.PersonID != f.PersonID {
		return false
	}
	if !f.Month.IsZero() && t.DueYM != f.Month {
		return false
	}
	if f.Query != "" {
		haystack := strings.ToLower(t.Description + " " + string(t.Kind) + " " + string(t.Status))
		if !strings.Contains(haystack, strings.ToLower(f.Query)) {
			return false
		}
	}
	return true
}

// FilterTransactions returns the transactions matching f, in stored order.
func FilterTransactions(txs []Transaction, f Filter) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Summarize computes the dashboard totals for the selected month.
// current anchors the overdue bucket (charges due before it and still open).
func Summarize(txs []Transaction, month, current YearMonth) MonthSummary {
	out := MonthSummary{Month: month}
	for _, t := range txs {
		switch {
		case t.DueYM == month:
			if t.Status == StatusPaid {
				out.Paid = out.Paid.Add(t.Amount)
			} else {
				out.Open = out.Open.Add(t.Amount)
			}
		case t.DueYM.After(month):
			if t.Status != StatusPaid {
				out.FutureOpen = out.FutureOpen.Add(t.Amount)
			}
		}
		if t.DueYM.Before(current) && t.Status != StatusPaid {
			out.Overdue = out.Overdue.Add(t.Amount)
		}
	}
	return out
}

// Project computes open/paid totals for months consecutive months starting
// at from, optionally restricted to one person. months below 1 yield nil.
func Project(txs []Transaction, personID string, from YearMonth, months int) []MonthTotals {
	if months < 1 {
		return nil
	}
	out := make([]MonthTotals, months)
	for i := range out {
		out[i].Month = from.Add(i)
	}
	for _, t := range txs {
		if personID != "" && t.PersonID != personID {
			continue
		}
		offset := (t.DueYM.Year*12 + int(t.DueYM.Month)) - (from.Year*12 + int(from.Month))
		if offset < 0 || offset >= months {
			continue
		}
		if t.Status == StatusPaid {
			out[offset].Paid = out[offset].Paid.Add(t.Amount)
		} else {
			out[offset].Open = out[offset].Open.Add(t.Amount)
		}
	}
	return out
}

// OpenByPerson breaks the month's open balance down per person, largest
// first, ties by name for a stable order.
func OpenByPerson(s *Snapshot, month YearMonth) []PersonTotal {
	totals := make(map[string]Money)
	for _, t := range s.Transactions {
		if t.DueYM != month || t.Status == StatusPaid {
			continue
		}
		totals[t.PersonID] = totals[t.PersonID].Add(t.Amount)
	}
	out := make([]PersonTotal, 0, len(totals))
	for pid, amount := range totals {
		out = append(out, PersonTotal{PersonID: pid, Name: s.PersonName(pid), Open: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Open.Cents != out[j].Open.Cents {
			return out[i].Open.Cents > out[j].Open.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ExportRows renders the given transactions into export lines, resolving
// person names against the snapshot. Formatting only; no state is touched.
func ExportRows(s *Snapshot, txs []Transaction) []ExportRow {
	out := make([]ExportRow, len(txs))
	for i, t := range txs {
		out[i] = ExportRow{
			Date:        t.Date,
			Person:      s.PersonName(t.PersonID),
			Description: t.Description,
			Installment: t.InstallmentLabel(),
			Amount:      t.Amount.BRL(),
			Status:      t.StatusLabel(),
		}
	}
	return out
}

// SortForExport orders transactions by due month, then installment position,
// then date, giving exports a deterministic layout.
func SortForExport(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if c := txs[i].DueYM.Compare(txs[j].DueYM); c != 0 {
			return c < 0
		}
		ni, nj := 0, 0
		if txs[i].Installment != nil {
			ni = txs[i].Installment.Number
		}
		if txs[j].Installment != nil {
			nj = txs[j].Installment.Number
		}
		if ni != nj {
			return ni < nj
		}
		return txs[i].Date < txs[j].Date
	})
}
