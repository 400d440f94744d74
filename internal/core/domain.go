package core

import (
	"errors"
	"fmt"
)

const (
	StatusOpen Status = "open"
	StatusPaid Status = "paid"

	KindOneShot     Kind = "one-shot"
	KindInstallment Kind = "installment"
)

type (
	// Status tells whether a charge has been settled.
	Status string

	// Kind distinguishes single-payment charges from installment series.
	Kind string

	// Person is someone who owes (or is owed) money. Identity is the ID;
	// the name is mutable display text.
	Person struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Installment carries the fields that only exist for installment
	// charges: the series the record belongs to and its 1-based position.
	Installment struct {
		SeriesID string `json:"seriesId,omitempty"`
		Number   int    `json:"installmentNumber"`
		Total    int    `json:"totalInstallments"`
	}

	// Transaction is one charge occurrence: a one-shot payment or a single
	// installment of a series. Installment is nil exactly when Kind is
	// KindOneShot.
	Transaction struct {
		ID          string       `json:"id"`
		PersonID    string       `json:"personId"`
		Description string       `json:"description"`
		Amount      Money        `json:"amount"`
		Kind        Kind         `json:"type"`
		Date        string       `json:"date"` // calendar date, YYYY-MM-DD
		DueYM       YearMonth    `json:"dueYm"`
		Status      Status       `json:"status"`
		Installment *Installment `json:"installment,omitempty"`
	}

	// Snapshot is the full persisted state: the primary record of the store.
	Snapshot struct {
		People       []Person      `json:"people"`
		Transactions []Transaction `json:"transactions"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty person name")
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownPerson    = errors.New("unknown person")
	ErrInvalidKind      = errors.New("invalid charge kind")
)

func (k Kind) Valid() bool {
	return k == KindOneShot || k == KindInstallment
}

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusPaid
}

// SeriesStart derives the series start month for an installment record.
// For one-shot records it is simply the due month.
func (t Transaction) SeriesStart() YearMonth {
	n := 1
	if t.Installment != nil {
		n = t.Installment.Number
	}
	return SeriesStart(t.DueYM, n)
}

// InSeries reports whether the transaction belongs to the given series.
func (t Transaction) InSeries(seriesID string) bool {
	return t.Installment != nil && seriesID != "" && t.Installment.SeriesID == seriesID
}

// InstallmentLabel renders the position column of listings and exports:
// "2/6" for installments, "À vista" for one-shot charges.
func (t Transaction) InstallmentLabel() string {
	if t.Kind == KindInstallment && t.Installment != nil {
		return fmt.Sprintf("%d/%d", t.Installment.Number, t.Installment.Total)
	}
	return "À vista"
}

// StatusLabel renders the status column: "Pago" or "Em aberto".
func (t Transaction) StatusLabel() string {
	if t.Status == StatusPaid {
		return "Pago"
	}
	return "Em aberto"
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.PersonID == "" {
		return ErrUnknownPerson
	}
	if t.DueYM.IsZero() {
		return errors.New("missing due month")
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if t.Kind == KindInstallment {
		if t.Installment == nil {
			return errors.New("installment charge without installment fields")
		}
		if t.Installment.Number < 1 || t.Installment.Number > t.Installment.Total {
			return errors.New("installment number out of range")
		}
	} else if t.Installment != nil {
		return errors.New("one-shot charge with installment fields")
	}
	return nil
}

// Clone returns a deep copy; Installment values are never shared.
func (t Transaction) Clone() Transaction {
	out := t
	if t.Installment != nil {
		inst := *t.Installment
		out.Installment = &inst
	}
	return out
}

// Clone deep-copies the snapshot so callers can read without holding locks.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		People:       make([]Person, len(s.People)),
		Transactions: make([]Transaction, len(s.Transactions)),
	}
	copy(out.People, s.People)
	for i, t := range s.Transactions {
		out.Transactions[i] = t.Clone()
	}
	return out
}

// FindTransaction returns the index of the transaction with the given id,
// or -1 when absent.
func (s *Snapshot) FindTransaction(id string) int {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// FindPerson returns the index of the person with the given id, or -1.
func (s *Snapshot) FindPerson(id string) int {
	for i := range s.People {
		if s.People[i].ID == id {
			return i
		}
	}
	return -1
}

// PersonName resolves a person id to a display name, "-" when unknown.
func (s *Snapshot) PersonName(id string) string {
	if i := s.FindPerson(id); i >= 0 {
		return s.People[i].Name
	}
	return "-"
}
