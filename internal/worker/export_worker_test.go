package worker

import (
	"context"
	"errors"
	"testing"

	"receber/internal/amqp"
	"receber/internal/core"
	"receber/internal/store/memory"
)

type fakeRowWriter struct {
	rows [][]any
	err  error
}

func (f *fakeRowWriter) ReplaceRows(_ context.Context, rows [][]any) error {
	if f.err != nil {
		return f.err
	}
	f.rows = rows
	return nil
}

func seededStore() *memory.Store {
	st := memory.New()
	st.Seed(&core.Snapshot{
		People: []core.Person{{ID: "p1", Name: "Ana"}},
		Transactions: []core.Transaction{
			{
				ID: "t2", PersonID: "p1", Description: "Notebook",
				Amount: core.Money{Cents: 20000}, Kind: core.KindInstallment,
				Date: "2024-01-10", DueYM: core.YM(2024, 2), Status: core.StatusOpen,
				Installment: &core.Installment{SeriesID: "s1", Number: 2, Total: 3},
			},
			{
				ID: "t1", PersonID: "p1", Description: "Conserto",
				Amount: core.Money{Cents: 5000}, Kind: core.KindOneShot,
				Date: "2024-01-05", DueYM: core.YM(2024, 1), Status: core.StatusPaid,
			},
		},
	})
	return st
}

func TestExportWritesHeaderAndSortedRows(t *testing.T) {
	writer := &fakeRowWriter{}
	w := NewExportWorker(seededStore(), writer)

	if err := w.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if len(writer.rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(writer.rows))
	}
	header := writer.rows[0]
	want := []any{"Data", "Pessoa", "Descrição", "Parcela", "Valor", "Status"}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("header[%d] = %v, want %v", i, header[i], want[i])
		}
	}

	// Sorted by due month: the January one-shot comes first.
	first := writer.rows[1]
	if first[2] != "Conserto" || first[3] != "À vista" || first[5] != "Pago" {
		t.Errorf("first row = %v", first)
	}
	second := writer.rows[2]
	if second[3] != "2/3" || second[4] != "R$ 200,00" {
		t.Errorf("second row = %v", second)
	}
}

func TestExportEmptyStoreWritesHeaderOnly(t *testing.T) {
	writer := &fakeRowWriter{}
	w := NewExportWorker(memory.New(), writer)

	if err := w.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(writer.rows) != 1 {
		t.Errorf("rows = %d, want header only", len(writer.rows))
	}
}

func TestHandleChangeExports(t *testing.T) {
	writer := &fakeRowWriter{}
	w := NewExportWorker(seededStore(), writer)

	msg := amqp.NewLedgerChangeMessage(7)
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("HandleChange: %v", err)
	}
	if len(writer.rows) == 0 {
		t.Error("no rows written")
	}
}

func TestExportSurfacesWriterErrors(t *testing.T) {
	writer := &fakeRowWriter{err: errors.New("quota exceeded")}
	w := NewExportWorker(seededStore(), writer)

	if err := w.Export(context.Background()); err == nil {
		t.Error("expected writer error to propagate")
	}
}
