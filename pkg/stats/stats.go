// Package stats derives financial status from loan records. Every function
// here is pure: same input, same output, no storage access, no errors.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/kmehta/loantrack/pkg/models"
)

// LoanStats is the derived financial status of a single loan.
type LoanStats struct {
	Total           decimal.Decimal `json:"total"`
	EMI             decimal.Decimal `json:"emi"`
	Paid            decimal.Decimal `json:"paid"`
	Remaining       decimal.Decimal `json:"remaining"`
	RemainingMonths int             `json:"remaining_months"`
	Completed       bool            `json:"completed"`
}

// nonNegative coerces invalid (negative) amounts to zero. Persisted
// snapshots may predate boundary validation, so bad values degrade instead
// of failing.
func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Compute derives the financial status of one loan from its raw fields and
// payment history. Paid is always the sum of payment amounts; nothing else
// in the module computes it.
func Compute(loan models.Loan) LoanStats {
	total := nonNegative(loan.TotalAmount)
	emi := nonNegative(loan.MonthlyEMI)

	paid := decimal.Zero
	for _, p := range loan.Payments {
		paid = paid.Add(nonNegative(p.Amount))
	}

	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return LoanStats{
		Total:           total,
		EMI:             emi,
		Paid:            paid,
		Remaining:       remaining,
		RemainingMonths: remainingMonths(remaining, emi, loan.TenureMonths, len(loan.Payments)),
		Completed:       completed(remaining, loan.TenureMonths, len(loan.Payments)),
	}
}

// remainingMonths reconciles two independent estimates of the months left to
// close the balance: the balance divided by the installment, and the agreed
// tenure minus the number of payments already recorded (a proxy for months
// covered, not checked against the calendar). The smaller estimate wins,
// except that a zero estimate defers to the other one, so the result is zero
// only when both are. The asymmetry around zero is long-standing behavior
// that existing data relies on.
func remainingMonths(remaining, emi decimal.Decimal, tenureMonths, paymentCount int) int {
	var emiEst int
	if emi.IsPositive() {
		emiEst = int(remaining.Div(emi).Ceil().IntPart())
	}

	var tenureEst int
	if tenureMonths > 0 {
		tenureEst = tenureMonths - paymentCount
		if tenureEst < 0 {
			tenureEst = 0
		}
	}

	a, b := emiEst, tenureEst
	if a == 0 {
		a = tenureEst
	}
	if b == 0 {
		b = emiEst
	}
	if a < b {
		return a
	}
	return b
}

// completed reports whether the loan is closed: either nothing is owed, or
// the agreed tenure has been exhausted by recorded payments. Tenure
// exhaustion closes the loan even when the balance is not fully paid.
func completed(remaining decimal.Decimal, tenureMonths, paymentCount int) bool {
	if !remaining.IsPositive() {
		return true
	}
	return tenureMonths > 0 && paymentCount >= tenureMonths
}
