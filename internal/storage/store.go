// Package storage provides SQLite persistence for the finance book:
// pasanaco groups, participants, payments, accounts, expenses, incomes,
// loans and savings plans.
package storage

import (
	"context"
	"errors"
	"time"

	"finanzas/internal/core"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness invariant would be violated,
	// e.g. two participants sharing an assigned number in one group.
	ErrConflict = errors.New("conflict")
)

// Store defines the persistence operations the services and handlers need.
// The interface keeps the HTTP and worker layers testable with fakes.
type Store interface {
	// Groups
	CreateGroup(ctx context.Context, g *core.Group) error
	GetGroup(ctx context.Context, id int64) (*core.Group, error)
	ListGroups(ctx context.Context) ([]core.Group, error)
	UpdateGroupRound(ctx context.Context, id int64, round int, completed bool) error
	DeleteGroup(ctx context.Context, id int64) error

	// Participants
	CreateParticipant(ctx context.Context, p *core.Participant) error
	ListParticipants(ctx context.Context, groupID int64) ([]core.Participant, error)
	GetParticipant(ctx context.Context, id int64) (*core.Participant, error)
	DeleteParticipant(ctx context.Context, groupID, id int64) error

	// Payments
	CreatePayment(ctx context.Context, p *core.Payment) error
	ListPayments(ctx context.Context, groupID int64) ([]core.Payment, error)
	ListPaymentsByMonth(ctx context.Context, groupID int64, month, year int) ([]core.Payment, error)
	GetPayment(ctx context.Context, id int64) (*core.Payment, error)
	MarkPaymentPaid(ctx context.Context, id int64, paidAt time.Time, transactionID string) error

	// Accounts and ledger
	CreateAccount(ctx context.Context, a *core.Account) error
	GetAccount(ctx context.Context, id int64) (*core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	AppendTransaction(ctx context.Context, tx *core.AccountTransaction) error
	ListTransactions(ctx context.Context, accountID int64) ([]core.AccountTransaction, error)

	// Expenses and incomes
	CreateExpense(ctx context.Context, e *core.Expense) error
	GetExpense(ctx context.Context, id int64) (*core.Expense, error)
	ListExpenses(ctx context.Context, year, month int) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	CreateIncome(ctx context.Context, i *core.Income) error
	GetIncome(ctx context.Context, id int64) (*core.Income, error)
	ListIncomes(ctx context.Context, year, month int) ([]core.Income, error)
	DeleteIncome(ctx context.Context, id int64) error
	MonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error)

	// Loans
	CreateLoan(ctx context.Context, l *core.Loan) error
	GetLoan(ctx context.Context, id int64) (*core.Loan, error)
	ListLoans(ctx context.Context) ([]core.Loan, error)

	// Savings plans
	CreateSavingsPlan(ctx context.Context, sp *core.SavingsPlan) error
	GetSavingsPlan(ctx context.Context, id int64) (*core.SavingsPlan, error)
	ListSavingsPlans(ctx context.Context) ([]core.SavingsPlan, error)
	AddSavingsDeposit(ctx context.Context, id int64, amount core.Money) error

	// Close releases the underlying database handle.
	Close() error
}
