package store

import (
	"github.com/kmehta/loantrack/pkg/models"
)

// Storage persists the full loan collection as a single snapshot. LoadLoans
// returns loans in the order they were saved; a missing or unreadable
// snapshot yields an empty collection, never an error. SaveLoans replaces
// the snapshot wholesale; there are no partial writes.
type Storage interface {
	LoadLoans() ([]models.Loan, error)
	SaveLoans(loans []models.Loan) error

	Close() error
}
