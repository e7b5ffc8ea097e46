package loan

import (
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/scheduler"
)

func TestScheduleZeroRate(t *testing.T) {
	l := core.Loan{
		Description: "interest-free",
		Principal:   core.Money{Cents: 120000}, // 1200.00
		AnnualRate:  0,
		TermMonths:  12,
		StartMonth:  1,
		StartYear:   2025,
	}
	rows, err := Schedule(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 12 {
		t.Fatalf("expected 12 installments, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Interest.Cents != 0 {
			t.Fatalf("installment %d: zero-rate loan accrued interest %d", row.Number, row.Interest.Cents)
		}
		if row.Payment.Cents != 10000 {
			t.Fatalf("installment %d: expected 100.00 payment, got %s", row.Number, row.Payment)
		}
	}
	if rows[11].Balance.Cents != 0 {
		t.Fatalf("balance must close at zero, got %d", rows[11].Balance.Cents)
	}
}

func TestScheduleClosesAtZero(t *testing.T) {
	l := core.Loan{
		Description: "car",
		Principal:   core.Money{Cents: 1_000_000}, // 10000.00
		AnnualRate:  0.06,
		TermMonths:  24,
		StartMonth:  3,
		StartYear:   2025,
	}
	rows, err := Schedule(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 24 {
		t.Fatalf("expected 24 installments, got %d", len(rows))
	}

	last := rows[len(rows)-1]
	if last.Balance.Cents != 0 {
		t.Fatalf("balance must close at zero, got %d", last.Balance.Cents)
	}

	// Principal parts must sum back to the borrowed amount.
	var principalSum int64
	for _, row := range rows {
		principalSum += row.Principal.Cents
		if row.Payment.Cents != row.Interest.Cents+row.Principal.Cents {
			t.Fatalf("installment %d: payment != interest + principal", row.Number)
		}
	}
	if principalSum != l.Principal.Cents {
		t.Fatalf("principal parts sum to %d, expected %d", principalSum, l.Principal.Cents)
	}

	// 10000 at 6% nominal over 24 months: installment near 443.21.
	if rows[0].Payment.Cents < 44000 || rows[0].Payment.Cents > 44600 {
		t.Fatalf("unexpected installment %s", rows[0].Payment)
	}
}

func TestScheduleDueDates(t *testing.T) {
	l := core.Loan{
		Description: "bridge",
		Principal:   core.Money{Cents: 50000},
		AnnualRate:  0.12,
		TermMonths:  4,
		StartMonth:  11,
		StartYear:   2024,
	}
	rows, err := Schedule(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []scheduler.MonthYear{
		{Month: 11, Year: 2024},
		{Month: 12, Year: 2024},
		{Month: 1, Year: 2025},
		{Month: 2, Year: 2025},
	}
	for i, row := range rows {
		if row.Due != want[i] {
			t.Fatalf("installment %d: expected due %+v, got %+v", row.Number, want[i], row.Due)
		}
	}
}

func TestScheduleInvalid(t *testing.T) {
	bad := core.Loan{
		Description: "broken",
		Principal:   core.Money{Cents: 1000},
		TermMonths:  0,
		StartMonth:  1,
		StartYear:   2025,
	}
	if _, err := Schedule(bad); err == nil {
		t.Fatalf("expected error for zero-term loan")
	}
}
