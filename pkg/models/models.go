package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNameRequired       = errors.New("loan name is required")
	ErrAmountNotPositive  = errors.New("total amount must be positive")
	ErrEMINotPositive     = errors.New("monthly EMI must be positive")
	ErrTenureNegative     = errors.New("tenure months must not be negative")
	ErrPaymentNotPositive = errors.New("payment amount must be positive")
	ErrInvalidMonth       = errors.New("month must be in YYYY-MM form")
)

// IsValidation reports whether err came from record construction, i.e. the
// input was rejected before anything was admitted to the collection.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrNameRequired,
		ErrAmountNotPositive,
		ErrEMINotPositive,
		ErrTenureNegative,
		ErrPaymentNotPositive,
		ErrInvalidMonth,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// YearMonth marks the calendar month a value applies to, in "YYYY-MM" form.
// The zero value means "not set".
type YearMonth string

func (ym YearMonth) IsZero() bool { return ym == "" }

func (ym YearMonth) Valid() bool {
	_, err := time.Parse("2006-01", string(ym))
	return err == nil
}

// Loan is a single tracked loan together with its payment history. Loans are
// immutable once constructed; edits produce a new Loan value.
type Loan struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TenureMonths int             `json:"tenure_months"` // 0 means unknown/unbounded
	MonthlyEMI   decimal.Decimal `json:"monthly_emi"`   // 0 means no fixed installment
	StartMonth   YearMonth       `json:"start_month,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"` // set once, never cleared
	Payments     []Payment       `json:"payments"`               // newest first by convention
}

// Payment is one recorded installment. Date is the month the payment applies
// to, which is not necessarily the month it was entered.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      YearMonth       `json:"date"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewLoan validates the required fields and builds a new Loan record.
// Malformed loans are rejected here, at the boundary, so downstream
// derivations never have to re-validate.
func NewLoan(name string, totalAmount, monthlyEMI decimal.Decimal, tenureMonths int, startMonth YearMonth) (Loan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Loan{}, ErrNameRequired
	}
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return Loan{}, ErrAmountNotPositive
	}
	if monthlyEMI.LessThanOrEqual(decimal.Zero) {
		return Loan{}, ErrEMINotPositive
	}
	if tenureMonths < 0 {
		return Loan{}, ErrTenureNegative
	}
	if !startMonth.IsZero() && !startMonth.Valid() {
		return Loan{}, ErrInvalidMonth
	}

	return Loan{
		ID:           uuid.New(),
		Name:         name,
		TotalAmount:  totalAmount,
		TenureMonths: tenureMonths,
		MonthlyEMI:   monthlyEMI,
		StartMonth:   startMonth,
		CreatedAt:    time.Now(),
		Payments:     []Payment{},
	}, nil
}

// NewPayment validates and builds a new Payment record. Payments are never
// edited or individually deleted after construction.
func NewPayment(amount decimal.Decimal, date YearMonth, note string) (Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Payment{}, ErrPaymentNotPositive
	}
	if !date.Valid() {
		return Payment{}, ErrInvalidMonth
	}

	return Payment{
		ID:        uuid.New(),
		Amount:    amount,
		Date:      date,
		Note:      note,
		CreatedAt: time.Now(),
	}, nil
}

// WithPayment returns a copy of the loan with p prepended to its payment
// history. The payment slice is freshly allocated; the receiver and any
// collection holding it are left untouched.
func (l Loan) WithPayment(p Payment) Loan {
	payments := make([]Payment, 0, len(l.Payments)+1)
	payments = append(payments, p)
	payments = append(payments, l.Payments...)
	l.Payments = payments
	return l
}

// WithCompletedAt returns a copy of the loan stamped complete at t. A loan
// already stamped keeps its original stamp.
func (l Loan) WithCompletedAt(t time.Time) Loan {
	if l.CompletedAt != nil {
		return l
	}
	l.CompletedAt = &t
	return l
}
