package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNewLoanValidation(t *testing.T) {
	tests := []struct {
		name       string
		loanName   string
		total      decimal.Decimal
		emi        decimal.Decimal
		tenure     int
		startMonth YearMonth
		wantErr    error
	}{
		{"valid", "Car loan", decimal.NewFromInt(120000), decimal.NewFromInt(10000), 12, "2025-06", nil},
		{"valid without start month", "Car loan", decimal.NewFromInt(120000), decimal.NewFromInt(10000), 0, "", nil},
		{"blank name", "   ", decimal.NewFromInt(1000), decimal.NewFromInt(100), 0, "", ErrNameRequired},
		{"zero amount", "x", decimal.Zero, decimal.NewFromInt(100), 0, "", ErrAmountNotPositive},
		{"negative amount", "x", decimal.NewFromInt(-5), decimal.NewFromInt(100), 0, "", ErrAmountNotPositive},
		{"zero EMI", "x", decimal.NewFromInt(1000), decimal.Zero, 0, "", ErrEMINotPositive},
		{"negative tenure", "x", decimal.NewFromInt(1000), decimal.NewFromInt(100), -1, "", ErrTenureNegative},
		{"garbage start month", "x", decimal.NewFromInt(1000), decimal.NewFromInt(100), 0, "June 2025", ErrInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan, err := NewLoan(tt.loanName, tt.total, tt.emi, tt.tenure, tt.startMonth)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewLoan error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if loan.ID == uuid.Nil {
				t.Error("expected a generated loan ID")
			}
			if loan.Payments == nil || len(loan.Payments) != 0 {
				t.Error("new loan should start with an empty payment history")
			}
			if loan.CompletedAt != nil {
				t.Error("new loan must not be stamped complete")
			}
		})
	}
}

func TestNewLoanTrimsName(t *testing.T) {
	loan, err := NewLoan("  Bike loan  ", decimal.NewFromInt(1000), decimal.NewFromInt(100), 0, "")
	if err != nil {
		t.Fatalf("NewLoan: %v", err)
	}
	if loan.Name != "Bike loan" {
		t.Errorf("Name = %q, want %q", loan.Name, "Bike loan")
	}
}

func TestNewPaymentValidation(t *testing.T) {
	if _, err := NewPayment(decimal.Zero, "2025-01", ""); !errors.Is(err, ErrPaymentNotPositive) {
		t.Errorf("zero amount: error = %v, want %v", err, ErrPaymentNotPositive)
	}
	if _, err := NewPayment(decimal.NewFromInt(-10), "2025-01", ""); !errors.Is(err, ErrPaymentNotPositive) {
		t.Errorf("negative amount: error = %v, want %v", err, ErrPaymentNotPositive)
	}
	if _, err := NewPayment(decimal.NewFromInt(10), "", ""); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("missing month: error = %v, want %v", err, ErrInvalidMonth)
	}
	if _, err := NewPayment(decimal.NewFromInt(10), "2025-13", ""); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("month 13: error = %v, want %v", err, ErrInvalidMonth)
	}

	p, err := NewPayment(decimal.NewFromInt(500), "2025-03", "march installment")
	if err != nil {
		t.Fatalf("NewPayment: %v", err)
	}
	if p.Note != "march installment" {
		t.Errorf("Note = %q", p.Note)
	}
}

func TestWithPaymentPrependsAndCopies(t *testing.T) {
	loan, _ := NewLoan("Car loan", decimal.NewFromInt(1000), decimal.NewFromInt(100), 0, "")
	first, _ := NewPayment(decimal.NewFromInt(100), "2025-01", "")
	second, _ := NewPayment(decimal.NewFromInt(100), "2025-02", "")

	one := loan.WithPayment(first)
	two := one.WithPayment(second)

	if len(loan.Payments) != 0 {
		t.Error("original loan was mutated")
	}
	if len(one.Payments) != 1 {
		t.Errorf("intermediate loan has %d payments, want 1", len(one.Payments))
	}
	if len(two.Payments) != 2 {
		t.Fatalf("final loan has %d payments, want 2", len(two.Payments))
	}
	if two.Payments[0].ID != second.ID {
		t.Error("newest payment should come first")
	}
	if two.Payments[1].ID != first.ID {
		t.Error("older payment should follow")
	}
}

func TestWithCompletedAtIsMonotone(t *testing.T) {
	loan, _ := NewLoan("Car loan", decimal.NewFromInt(1000), decimal.NewFromInt(100), 0, "")

	original := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stamped := loan.WithCompletedAt(original)
	if stamped.CompletedAt == nil || !stamped.CompletedAt.Equal(original) {
		t.Fatal("first stamp should stick")
	}

	restamped := stamped.WithCompletedAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if !restamped.CompletedAt.Equal(original) {
		t.Error("a completion stamp must never move once set")
	}
}

func TestYearMonth(t *testing.T) {
	valid := []YearMonth{"2025-01", "1999-12", "2026-08"}
	for _, ym := range valid {
		if !ym.Valid() {
			t.Errorf("%q should be valid", ym)
		}
	}
	invalid := []YearMonth{"", "2025", "2025-00", "2025-13", "25-01", "2025/01"}
	for _, ym := range invalid {
		if ym.Valid() {
			t.Errorf("%q should be invalid", ym)
		}
	}
	if !YearMonth("").IsZero() {
		t.Error("empty YearMonth should be zero")
	}
}
