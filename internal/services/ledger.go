// Package services implements the ledger: the single logical writer that
// owns the in-memory snapshot, expands charges into installment series,
// cascades series edits and writes every new state through to the store.
package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"receber/internal/core"
	"receber/internal/idgen"
	"receber/internal/store"
)

// EventPublisher notifies external consumers (the export worker) that the
// ledger changed. Publishing is fire-and-forget: failures are logged, never
// surfaced to the caller.
type EventPublisher interface {
	PublishLedgerChange(ctx context.Context, revision int64) error
}

// Ledger is the application state container. Every operation reads the
// current snapshot, computes the next one, swaps it under the mutex and
// persists the whole collection write-through, so no other writer can
// interleave within one operation.
type Ledger struct {
	mu       sync.Mutex
	snap     *core.Snapshot
	revision int64

	store  store.Store
	ids    idgen.Generator
	events EventPublisher
	now    func() time.Time
}

// Options carries the optional collaborators of a Ledger.
type Options struct {
	Events EventPublisher
	Now    func() time.Time
}

// NewLedger loads the stored snapshot (an absent or unreadable store yields
// an empty ledger) and runs the legacy series-id migration, persisting once
// if it changed anything.
func NewLedger(ctx context.Context, st store.Store, ids idgen.Generator, opts Options) (*Ledger, error) {
	snap, err := st.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Could not load snapshot, starting empty", "error", err)
		snap = nil
	}
	if snap == nil {
		snap = &core.Snapshot{}
	}
	l := &Ledger{
		snap:   snap,
		store:  st,
		ids:    ids,
		events: opts.Events,
		now:    opts.Now,
	}
	if l.now == nil {
		l.now = time.Now
	}
	if AssignSeriesIDs(snap, ids) {
		slog.InfoContext(ctx, "Assigned series ids to legacy installments")
		l.persist(ctx)
	}
	return l, nil
}

// Snapshot returns a deep copy of the current state for read-only use.
func (l *Ledger) Snapshot() *core.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.Clone()
}

// Revision returns a counter bumped on every mutation since startup.
func (l *Ledger) Revision() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revision
}

// AddPerson registers a new person. Blank names are rejected.
func (l *Ledger) AddPerson(ctx context.Context, name string) (core.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Person{}, core.ErrEmptyName
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p := core.Person{ID: l.ids.NewID(), Name: name}
	l.snap.People = append(l.snap.People, p)
	l.persist(ctx)
	return p, nil
}

// RenamePerson updates display text. Unknown ids and blank names are no-ops.
func (l *Ledger) RenamePerson(ctx context.Context, id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.snap.FindPerson(id)
	if i < 0 {
		return false
	}
	l.snap.People[i].Name = name
	l.persist(ctx)
	return true
}

// RemovePerson deletes the person and, irreversibly, every transaction
// referencing them. The confirmation step lives at the caller's boundary.
func (l *Ledger) RemovePerson(ctx context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.snap.FindPerson(id)
	if i < 0 {
		return false
	}
	l.snap.People = append(l.snap.People[:i], l.snap.People[i+1:]...)
	kept := l.snap.Transactions[:0]
	for _, t := range l.snap.Transactions {
		if t.PersonID != id {
			kept = append(kept, t)
		}
	}
	l.snap.Transactions = kept
	l.persist(ctx)
	return true
}

// AddCharge expands a charge request into transaction records and appends
// them. The returned slice is the set of records created, in order.
func (l *Ledger) AddCharge(ctx context.Context, req ChargeRequest, autoGenerateFuture bool) ([]core.Transaction, error) {
	if strings.TrimSpace(req.PersonID) == "" {
		return nil, core.ErrUnknownPerson
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snap.FindPerson(req.PersonID) < 0 {
		return nil, core.ErrUnknownPerson
	}
	entries := expandCharge(l.snap.Transactions, req, autoGenerateFuture, l.ids, l.today())
	l.snap.Transactions = append(l.snap.Transactions, entries...)
	l.persist(ctx)
	out := make([]core.Transaction, len(entries))
	for i, t := range entries {
		out[i] = t.Clone()
	}
	return out, nil
}

// Update merges a patch into one record without touching the rest of its
// series. This is how status toggles are applied. Unknown ids are no-ops.
func (l *Ledger) Update(ctx context.Context, id string, patch Patch) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.snap.FindTransaction(id)
	if i < 0 {
		return false
	}
	patch.merge(&l.snap.Transactions[i])
	l.persist(ctx)
	return true
}

// Cascade applies a series-wide edit anchored at the given transaction.
// An unknown id is a silent no-op, reported as false.
func (l *Ledger) Cascade(ctx context.Context, id string, patch Patch) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !cascade(l.snap, id, patch, l.ids, l.today()) {
		return false
	}
	l.persist(ctx)
	return true
}

// Delete removes a single transaction.
func (l *Ledger) Delete(ctx context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.snap.FindTransaction(id)
	if i < 0 {
		return false
	}
	l.snap.Transactions = append(l.snap.Transactions[:i], l.snap.Transactions[i+1:]...)
	l.persist(ctx)
	return true
}

// CurrentMonth returns the month the ledger's clock is in; summaries use it
// to anchor the overdue bucket.
func (l *Ledger) CurrentMonth() core.YearMonth {
	return core.YearMonthOf(l.now())
}

func (l *Ledger) today() string {
	return l.now().Format("2006-01-02")
}

// persist writes the full collection through to the store and publishes a
// change event. Both are fire-and-forget: a failed write is logged and the
// in-memory state stays authoritative. Callers hold l.mu.
func (l *Ledger) persist(ctx context.Context) {
	l.revision++
	if err := l.store.Save(ctx, l.snap); err != nil {
		slog.ErrorContext(ctx, "Failed to persist snapshot",
			"revision", l.revision, "error", err)
	}
	if l.events != nil {
		if err := l.events.PublishLedgerChange(ctx, l.revision); err != nil {
			slog.WarnContext(ctx, "Failed to publish ledger change",
				"revision", l.revision, "error", err)
		}
	}
}
