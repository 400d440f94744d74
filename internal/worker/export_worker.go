// Package worker mirrors the ledger into the spreadsheet export whenever a
// change message arrives.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"receber/internal/amqp"
	"receber/internal/core"
	"receber/internal/sheets"
	"receber/internal/store"
)

var exportHeader = []any{"Data", "Pessoa", "Descrição", "Parcela", "Valor", "Status"}

// ExportWorker rebuilds the full export from the store on every change.
// Messages carry no payload, so a lost or duplicated delivery only costs an
// extra rewrite.
type ExportWorker struct {
	store store.Store
	rows  sheets.RowWriter
}

func NewExportWorker(st store.Store, rows sheets.RowWriter) *ExportWorker {
	return &ExportWorker{store: st, rows: rows}
}

// HandleChange processes one ledger-change message.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	slog.InfoContext(ctx, "Processing ledger change", "revision", msg.Revision)
	return w.Export(ctx)
}

// Export rewrites the export sheet from the current snapshot.
func (w *ExportWorker) Export(ctx context.Context) error {
	snap, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		snap = &core.Snapshot{}
	}

	txs := make([]core.Transaction, len(snap.Transactions))
	for i, t := range snap.Transactions {
		txs[i] = t.Clone()
	}
	core.SortForExport(txs)

	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, exportHeader)
	for _, r := range core.ExportRows(snap, txs) {
		rows = append(rows, []any{r.Date, r.Person, r.Description, r.Installment, r.Amount, r.Status})
	}

	if err := w.rows.ReplaceRows(ctx, rows); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	slog.InfoContext(ctx, "Export written", "rows", len(rows)-1)
	return nil
}
