// Package loan computes amortization schedules for fixed-rate loans using the
// French (constant installment) method.
package loan

import (
	"errors"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/scheduler"
)

// ErrInvalidLoan is returned when a loan's terms cannot produce a schedule.
var ErrInvalidLoan = errors.New("invalid loan terms")

// Installment is one row of an amortization schedule. All amounts in cents.
type Installment struct {
	Number    int                 `json:"number"` // 1-based
	Due       scheduler.MonthYear `json:"due"`
	Payment   core.Money          `json:"payment"`
	Interest  core.Money          `json:"interest"`
	Principal core.Money          `json:"principal"`
	Balance   core.Money          `json:"balance"` // remaining after this installment
}

// Schedule computes the full amortization schedule for a loan. Decimal
// arithmetic throughout, half-up rounded to cents per row; the final
// installment absorbs the accumulated rounding difference so the balance
// closes at exactly zero.
func Schedule(l core.Loan) ([]Installment, error) {
	if err := l.Validate(); err != nil {
		return nil, ErrInvalidLoan
	}

	principal := decimal.New(l.Principal.Cents, -2)
	monthlyRate := decimal.NewFromFloat(l.AnnualRate).Div(decimal.NewFromInt(12))
	installment := monthlyPayment(principal, monthlyRate, l.TermMonths)

	rows := make([]Installment, 0, l.TermMonths)
	balance := principal
	for n := 1; n <= l.TermMonths; n++ {
		due, err := scheduler.ScheduleFor(l.StartMonth, l.StartYear, n)
		if err != nil {
			return nil, ErrInvalidLoan
		}

		interest := balance.Mul(monthlyRate).Round(2)
		payment := installment
		principalPart := payment.Sub(interest)
		if n == l.TermMonths {
			// Close the loan exactly; the last payment takes whatever the
			// remaining balance plus its interest happens to be.
			principalPart = balance
			payment = interest.Add(principalPart)
		}
		balance = balance.Sub(principalPart)

		rows = append(rows, Installment{
			Number:    n,
			Due:       due,
			Payment:   toMoney(payment),
			Interest:  toMoney(interest),
			Principal: toMoney(principalPart),
			Balance:   toMoney(balance),
		})
	}

	return rows, nil
}

// monthlyPayment computes the constant installment
// P*r / (1 - (1+r)^-n), rounded to cents. Zero-rate loans degrade to a plain
// P/n split.
func monthlyPayment(principal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return principal.Div(n).Round(2)
	}
	one := decimal.NewFromInt(1)
	compound := one.Add(monthlyRate).Pow(n)
	return principal.Mul(monthlyRate).Mul(compound).Div(compound.Sub(one)).Round(2)
}

func toMoney(d decimal.Decimal) core.Money {
	return core.Money{Cents: d.Round(2).Shift(2).IntPart()}
}
