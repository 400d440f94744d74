// Package storage is the SQLite persistence backend. The ledger writes full
// snapshots; Save replaces the entire collection inside one transaction so
// readers never observe a partial state.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"receber/internal/core"
	"receber/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func New(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the full snapshot. Empty tables yield an empty snapshot; nil is
// only returned when the database has never been written at all.
func (r *SQLiteRepository) Load(ctx context.Context) (*core.Snapshot, error) {
	snap := &core.Snapshot{}

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM people ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p core.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		snap.People = append(snap.People, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}

	txRows, err := r.db.QueryContext(ctx, `
		SELECT id, person_id, description, amount_cents, kind, date, due_ym,
		       status, installment_number, total_installments, series_id
		FROM transactions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var (
			t      core.Transaction
			dueYM  string
			number sql.NullInt64
			total  sql.NullInt64
			series sql.NullString
		)
		if err := txRows.Scan(&t.ID, &t.PersonID, &t.Description, &t.Amount.Cents,
			&t.Kind, &t.Date, &dueYM, &t.Status, &number, &total, &series); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		ym, err := core.ParseYearMonth(dueYM)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.DueYM = ym
		if t.Kind == core.KindInstallment && number.Valid {
			t.Installment = &core.Installment{
				SeriesID: series.String,
				Number:   int(number.Int64),
				Total:    int(total.Int64),
			}
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	if err := txRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return snap, nil
}

// Save replaces the persisted collection with the given snapshot.
func (r *SQLiteRepository) Save(ctx context.Context, snap *core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM people`); err != nil {
		return fmt.Errorf("clear people: %w", err)
	}

	for _, p := range snap.People {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO people (id, name) VALUES (?, ?)`, p.ID, p.Name); err != nil {
			return fmt.Errorf("insert person %s: %w", p.ID, err)
		}
	}
	for _, t := range snap.Transactions {
		var number, total, series any
		if t.Installment != nil {
			number = t.Installment.Number
			total = t.Installment.Total
			if t.Installment.SeriesID != "" {
				series = t.Installment.SeriesID
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions
				(id, person_id, description, amount_cents, kind, date, due_ym,
				 status, installment_number, total_installments, series_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.PersonID, t.Description, t.Amount.Cents, string(t.Kind),
			t.Date, t.DueYM.String(), string(t.Status), number, total, series); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadTheme(ctx context.Context) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, store.ThemeKey).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load theme: %w", err)
	}
	dark, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil
	}
	return dark, nil
}

func (r *SQLiteRepository) SaveTheme(ctx context.Context, dark bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		store.ThemeKey, strconv.FormatBool(dark))
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
