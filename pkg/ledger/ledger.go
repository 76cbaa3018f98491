// Package ledger is the edit surface over the persisted loan collection.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kmehta/loantrack/pkg/models"
	"github.com/kmehta/loantrack/pkg/stats"
	"github.com/kmehta/loantrack/pkg/store"
)

var ErrLoanNotFound = errors.New("loan not found")

// Ledger applies user edits to the loan collection. Every edit loads the
// current snapshot, builds a fresh collection value, and writes the whole
// thing back; nothing is mutated in place. Edits are serialized one at a
// time behind the mutex.
type Ledger struct {
	mu      sync.Mutex
	storage store.Storage
	log     *logrus.Logger
}

// NewLedger creates a Ledger over the given Storage implementation.
func NewLedger(s store.Storage, log *logrus.Logger) *Ledger {
	return &Ledger{storage: s, log: log}
}

// AddLoan validates the input and appends a new loan to the collection.
func (l *Ledger) AddLoan(name string, totalAmount, monthlyEMI decimal.Decimal, tenureMonths int, startMonth models.YearMonth) (models.Loan, error) {
	loan, err := models.NewLoan(name, totalAmount, monthlyEMI, tenureMonths, startMonth)
	if err != nil {
		return models.Loan{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	loans, err := l.storage.LoadLoans()
	if err != nil {
		return models.Loan{}, fmt.Errorf("failed to load loans: %w", err)
	}

	next := make([]models.Loan, 0, len(loans)+1)
	next = append(next, loans...)
	next = append(next, loan)

	if err := l.storage.SaveLoans(next); err != nil {
		return models.Loan{}, fmt.Errorf("failed to save loans: %w", err)
	}

	l.log.WithFields(logrus.Fields{"loan_id": loan.ID, "name": loan.Name}).Info("loan added")
	return loan, nil
}

// AddPayment records a payment against the selected loan. If the payment
// closes the loan, the completion stamp is set now; the stamp is never
// removed afterwards.
func (l *Ledger) AddPayment(loanID uuid.UUID, amount decimal.Decimal, date models.YearMonth, note string) (models.Loan, error) {
	payment, err := models.NewPayment(amount, date, note)
	if err != nil {
		return models.Loan{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	loans, err := l.storage.LoadLoans()
	if err != nil {
		return models.Loan{}, fmt.Errorf("failed to load loans: %w", err)
	}

	var updated models.Loan
	found := false
	next := make([]models.Loan, len(loans))
	for i, loan := range loans {
		if loan.ID == loanID {
			loan = loan.WithPayment(payment)
			if stats.Compute(loan).Completed {
				loan = loan.WithCompletedAt(time.Now())
			}
			updated = loan
			found = true
		}
		next[i] = loan
	}
	if !found {
		return models.Loan{}, ErrLoanNotFound
	}

	if err := l.storage.SaveLoans(next); err != nil {
		return models.Loan{}, fmt.Errorf("failed to save loans: %w", err)
	}

	l.log.WithFields(logrus.Fields{"loan_id": loanID, "payment_id": payment.ID}).Info("payment recorded")
	return updated, nil
}

// DeleteLoan removes a loan and its payment history from the collection.
// Confirmation is the caller's job; the ledger deletes unconditionally.
func (l *Ledger) DeleteLoan(loanID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	loans, err := l.storage.LoadLoans()
	if err != nil {
		return fmt.Errorf("failed to load loans: %w", err)
	}

	next := make([]models.Loan, 0, len(loans))
	for _, loan := range loans {
		if loan.ID != loanID {
			next = append(next, loan)
		}
	}
	if len(next) == len(loans) {
		return ErrLoanNotFound
	}

	if err := l.storage.SaveLoans(next); err != nil {
		return fmt.Errorf("failed to save loans: %w", err)
	}

	l.log.WithField("loan_id", loanID).Info("loan deleted")
	return nil
}

// Loans returns the current collection snapshot in stored order.
func (l *Ledger) Loans() ([]models.Loan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.storage.LoadLoans()
}

// Loan returns a single loan by ID.
func (l *Ledger) Loan(loanID uuid.UUID) (models.Loan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	loans, err := l.storage.LoadLoans()
	if err != nil {
		return models.Loan{}, fmt.Errorf("failed to load loans: %w", err)
	}
	for _, loan := range loans {
		if loan.ID == loanID {
			return loan, nil
		}
	}
	return models.Loan{}, ErrLoanNotFound
}

// StampCompletions walks the collection and stamps loans that compute as
// complete but carry no stamp yet, e.g. snapshots written by builds that
// predate stamping. Existing stamps are left alone even when a loan no
// longer computes as complete.
func (l *Ledger) StampCompletions() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	loans, err := l.storage.LoadLoans()
	if err != nil {
		return fmt.Errorf("failed to load loans: %w", err)
	}

	changed := false
	next := make([]models.Loan, len(loans))
	for i, loan := range loans {
		if loan.CompletedAt == nil && stats.Compute(loan).Completed {
			loan = loan.WithCompletedAt(time.Now())
			changed = true
			l.log.WithField("loan_id", loan.ID).Info("stamped loan complete")
		}
		next[i] = loan
	}
	if !changed {
		return nil
	}

	if err := l.storage.SaveLoans(next); err != nil {
		return fmt.Errorf("failed to save loans: %w", err)
	}
	return nil
}
