package stats

import (
	"github.com/shopspring/decimal"

	"github.com/kmehta/loantrack/pkg/models"
)

// Summary is the portfolio-level view across every loan.
type Summary struct {
	TotalBorrowed  decimal.Decimal `json:"total_borrowed"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	ActiveCount    int             `json:"active_count"`
	CompletedCount int             `json:"completed_count"`
}

// Aggregate sums per-loan stats across the collection. TotalRemaining is the
// sum of per-loan remainders, each already floored at zero, so it can exceed
// TotalBorrowed minus TotalPaid when individual loans are overpaid. Every
// loan lands in exactly one of the two count buckets.
func Aggregate(loans []models.Loan) Summary {
	sum := Summary{
		TotalBorrowed:  decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
	}

	for _, loan := range loans {
		st := Compute(loan)
		sum.TotalBorrowed = sum.TotalBorrowed.Add(st.Total)
		sum.TotalPaid = sum.TotalPaid.Add(st.Paid)
		sum.TotalRemaining = sum.TotalRemaining.Add(st.Remaining)
		if st.Completed {
			sum.CompletedCount++
		} else {
			sum.ActiveCount++
		}
	}
	return sum
}
